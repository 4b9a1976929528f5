package format

import (
	"strings"

	"payfile-synth/internal/generator"
)

// Justify is where a value sits inside its fixed-width column.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyRight
)

// ColumnSpec is one column of a fixed-width line.
type ColumnSpec struct {
	Name        string
	Width       int
	PadChar     byte
	Justify     Justify
	NumericOnly bool
}

// Pad renders value at exactly c.Width bytes. Numeric columns keep only
// digits and pad with zeros by default; text columns are upper-cased, have
// characters outside the free-text charset replaced by spaces, and pad with
// spaces by default. Over-long values are truncated.
func (c ColumnSpec) Pad(value string) string {
	pad := c.PadChar
	if c.NumericOnly {
		value = digitsOnly(value)
		if pad == 0 {
			pad = '0'
		}
	} else {
		value = strings.ToUpper(generator.SanitizeToSpaces(value))
		if pad == 0 {
			pad = ' '
		}
	}

	if len(value) >= c.Width {
		return value[:c.Width]
	}
	fill := strings.Repeat(string(pad), c.Width-len(value))
	if c.Justify == JustifyRight {
		return fill + value
	}
	return value + fill
}

// LineWidth is the total width of a line made of cols.
func LineWidth(cols []ColumnSpec) int {
	total := 0
	for _, c := range cols {
		total += c.Width
	}
	return total
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func serializeFixedWidth(b *Batch) string {
	lines := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		lines[i] = strings.Join(row, "")
	}
	return strings.Join(lines, lineTerminator)
}
