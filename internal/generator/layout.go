package generator

import "payfile-synth/internal/domain"

// FieldDef places a FieldRule in a format's column order.
type FieldDef struct {
	Name     string
	Label    string
	Rule     FieldRule
	Optional bool
}

// Layout is the logical record shape of one format: which fields exist, in
// which order, and which of them take part in the cross-field constraints.
type Layout struct {
	Format domain.Format
	Fields []FieldDef

	CodeField      string
	AmountField    string
	DateField      string
	SecondaryField string

	// ZeroCodeDateOffset is the exact working-day offset of the date for
	// zero-amount codes; it is also the lower bound of the date window.
	ZeroCodeDateOffset int

	// FixedWidth restricts invalidation to violations that survive padding.
	FixedWidth bool
}

// Names returns the field names in layout order.
func (l *Layout) Names() []string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks a field up by name.
func (l *Layout) Field(name string) (FieldDef, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// MinDateOffset is the first working day a non-zero-amount record may settle on.
func (l *Layout) MinDateOffset() int {
	return l.ZeroCodeDateOffset
}
