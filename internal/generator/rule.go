package generator

import (
	"time"

	"payfile-synth/internal/calendar"
	"payfile-synth/internal/domain"
)

// FieldContext is what a generator or constraint may look at while producing
// or checking one field of one record.
type FieldContext struct {
	Src    Source
	Cal    *calendar.Calendar
	Today  time.Time
	Layout *Layout
	Record *domain.LogicalRecord
}

// GenerateFunc produces one raw field value.
type GenerateFunc func(ctx *FieldContext) (string, error)

// Constraint is one standalone rule a field value must satisfy.
type Constraint struct {
	Rule string
	OK   func(ctx *FieldContext, value string) (bool, error)
}

// Violation generates a value that breaks exactly the constraint named Rule.
type Violation struct {
	Rule     string
	Generate GenerateFunc
	// FixedWidthSafe is set when the value still breaks Rule after fixed-width
	// padding, truncation and sanitisation.
	FixedWidthSafe bool
	// Applies limits the violation to records where it is meaningful; nil
	// means always.
	Applies func(ctx *FieldContext) bool
}

// FieldRule bundles the valid generator, the standalone constraints and the
// invalid-mode generators of a logical field.
type FieldRule struct {
	Name        string
	Valid       GenerateFunc
	Constraints []Constraint
	Violations  []Violation
}

// Failures lists the names of the constraints value does not satisfy.
func (r FieldRule) Failures(ctx *FieldContext, value string) ([]string, error) {
	var failed []string
	for _, c := range r.Constraints {
		ok, err := c.OK(ctx, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			failed = append(failed, c.Rule)
		}
	}
	return failed, nil
}

// eligibleViolations returns the violations usable on the record in ctx.
func (r FieldRule) eligibleViolations(ctx *FieldContext, fixedWidth bool) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if fixedWidth && !v.FixedWidthSafe {
			continue
		}
		if v.Applies != nil && !v.Applies(ctx) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func pure(fn func(value string) bool) func(*FieldContext, string) (bool, error) {
	return func(_ *FieldContext, value string) (bool, error) {
		return fn(value), nil
	}
}

func fixed(value string) GenerateFunc {
	return func(*FieldContext) (string, error) {
		return value, nil
	}
}
