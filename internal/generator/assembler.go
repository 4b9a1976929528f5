package generator

import (
	"fmt"
	"sort"
	"time"

	"payfile-synth/internal/calendar"
	"payfile-synth/internal/domain"
	"payfile-synth/internal/rules"
)

// Failure names a broken rule. Field is empty for cross-field rules.
type Failure struct {
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule"`
}

// Row is one assembled record and the rules deliberately broken on it.
type Row struct {
	Record  *domain.LogicalRecord
	Invalid []Failure
}

// IsValid reports whether no field was deliberately invalidated.
func (r Row) IsValid() bool {
	return len(r.Invalid) == 0
}

// BatchSpec is what the assembler needs to know about a request.
type BatchSpec struct {
	RowCount      int
	InjectInvalid bool
	InlineEdit    bool
	// Include reports whether a field is part of the column set. Nil includes
	// every field.
	Include func(field string) bool
}

func (s BatchSpec) includes(field string) bool {
	return s.Include == nil || s.Include(field)
}

// Assembler composes full logical records for a Layout.
type Assembler struct {
	src       Source
	cal       *calendar.Calendar
	today     time.Time
	validator *rules.Validator
}

// NewAssembler creates an assembler that dates records relative to today.
func NewAssembler(src Source, cal *calendar.Calendar, today time.Time, validator *rules.Validator) *Assembler {
	return &Assembler{
		src:       src,
		cal:       cal,
		today:     calendar.Day(today),
		validator: validator,
	}
}

// Today is the calendar day settlement dates are counted from.
func (a *Assembler) Today() time.Time {
	return a.today
}

// Build assembles spec.RowCount rows, invalidating the positions chosen by Plan.
func (a *Assembler) Build(layout *Layout, spec BatchSpec) ([]Row, error) {
	if spec.RowCount < 1 {
		return nil, fmt.Errorf("%w: rowCount must be at least 1, got %d", domain.ErrInvalidRequest, spec.RowCount)
	}

	plan := Plan(a.src, spec.RowCount, spec.InjectInvalid, spec.InlineEdit)
	rows := make([]Row, 0, len(plan))
	for i, invalid := range plan {
		row, err := a.buildRow(layout, spec, invalid)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (a *Assembler) buildRow(layout *Layout, spec BatchSpec, invalid bool) (Row, error) {
	rec := domain.NewLogicalRecord(layout.Names()...)
	ctx := a.context(layout, rec)

	for _, f := range layout.Fields {
		if !spec.includes(f.Name) {
			continue
		}
		v, err := f.Rule.Valid(ctx)
		if err != nil {
			return Row{}, fmt.Errorf("generating %s: %w", f.Name, err)
		}
		rec.Set(f.Name, v)
	}

	if err := applyConstraints(ctx); err != nil {
		return Row{}, fmt.Errorf("applying cross-field constraints: %w", err)
	}

	failures, err := a.Verify(layout, rec)
	if err != nil {
		return Row{}, err
	}
	if len(failures) > 0 {
		return Row{}, fmt.Errorf("generated record breaks %v", failures)
	}

	if !invalid {
		return Row{Record: rec}, nil
	}

	violated, err := a.invalidate(ctx, spec)
	if err != nil {
		return Row{}, err
	}
	return Row{Record: rec, Invalid: violated}, nil
}

// invalidate corrupts 1 to MaxInvalidFieldsPerRow fields of the record in ctx.
// It runs after the cross-field pass so nothing repairs the corrupted values.
func (a *Assembler) invalidate(ctx *FieldContext, spec BatchSpec) ([]Failure, error) {
	layout, rec := ctx.Layout, ctx.Record

	var candidates []FieldDef
	for _, f := range layout.Fields {
		if !spec.includes(f.Name) {
			continue
		}
		if len(f.Rule.eligibleViolations(ctx, layout.FixedWidth)) > 0 {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s has no field that can be invalidated", domain.ErrInvalidRequest, layout.Format)
	}

	picked := chooseFields(a.src, len(candidates))
	// the code goes first so later fields pick violations against the final code
	sort.SliceStable(picked, func(i, j int) bool {
		return candidates[picked[i]].Name == layout.CodeField && candidates[picked[j]].Name != layout.CodeField
	})

	var violated []Failure
	codeChanged, secondaryChanged := false, false
	for _, i := range picked {
		f := candidates[i]
		options := f.Rule.eligibleViolations(ctx, layout.FixedWidth)
		if len(options) == 0 {
			continue
		}
		v := options[a.src.IntRange(0, len(options)-1)]
		value, err := v.Generate(ctx)
		if err != nil {
			return nil, fmt.Errorf("invalidating %s: %w", f.Name, err)
		}
		rec.Set(f.Name, value)
		violated = append(violated, Failure{Field: f.Name, Rule: v.Rule})

		switch f.Name {
		case layout.CodeField:
			codeChanged = true
		case layout.SecondaryField:
			secondaryChanged = true
		}
	}

	if codeChanged && !secondaryChanged && layout.SecondaryField != "" {
		rec.Unset(layout.SecondaryField)
	}
	return violated, nil
}

// Verify checks a record against every standalone field constraint and the
// cross-field rules.
func (a *Assembler) Verify(layout *Layout, rec *domain.LogicalRecord) ([]Failure, error) {
	ctx := a.context(layout, rec)

	var out []Failure
	for _, f := range layout.Fields {
		v, ok := rec.Get(f.Name)
		if !ok {
			continue
		}
		failed, err := f.Rule.Failures(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", f.Name, err)
		}
		for _, r := range failed {
			out = append(out, Failure{Field: f.Name, Rule: r})
		}
	}

	facts, err := a.facts(layout, rec)
	if err != nil {
		return nil, err
	}
	crossFailed, err := a.validator.Evaluate(facts)
	if err != nil {
		return nil, err
	}
	for _, r := range crossFailed {
		out = append(out, Failure{Rule: r})
	}
	return out, nil
}

func (a *Assembler) facts(layout *Layout, rec *domain.LogicalRecord) (rules.Facts, error) {
	facts := rules.Facts{
		Code:       rec.Value(layout.CodeField),
		Amount:     rec.Value(layout.AmountField),
		ZeroCodes:  ZeroAmountCodes,
		ZeroOffset: layout.ZeroCodeDateOffset,
	}

	if layout.DateField == "" {
		return facts, nil
	}
	raw, ok := rec.Get(layout.DateField)
	if !ok {
		return facts, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		// malformed dates are reported by the field's own format constraint
		return facts, nil
	}
	offset, err := a.cal.WorkingDaysBetween(a.today, d)
	if err != nil {
		return rules.Facts{}, err
	}
	working, err := a.cal.IsWorkingDay(d)
	if err != nil {
		return rules.Facts{}, err
	}
	facts.HasDate, facts.DateOffset, facts.DateIsWorking = true, offset, working
	return facts, nil
}

func (a *Assembler) context(layout *Layout, rec *domain.LogicalRecord) *FieldContext {
	return &FieldContext{
		Src:    a.src,
		Cal:    a.cal,
		Today:  a.today,
		Layout: layout,
		Record: rec,
	}
}
