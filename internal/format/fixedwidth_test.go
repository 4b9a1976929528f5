package format

import (
	"testing"

	"payfile-synth/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestColumnSpec_Pad(t *testing.T) {
	tests := []struct {
		name  string
		spec  ColumnSpec
		value string
		want  string
	}{
		{name: "numeric pads with zeros", spec: ColumnSpec{Width: 8, NumericOnly: true}, value: "1234", want: "12340000"},
		{name: "numeric strips non-digits", spec: ColumnSpec{Width: 6, NumericOnly: true}, value: "12-34-56", want: "123456"},
		{name: "numeric truncates", spec: ColumnSpec{Width: 4, NumericOnly: true}, value: "123456", want: "1234"},
		{name: "numeric right justified", spec: ColumnSpec{Width: 11, NumericOnly: true, Justify: JustifyRight}, value: "12550", want: "00000012550"},
		{name: "numeric empty", spec: ColumnSpec{Width: 3, NumericOnly: true}, value: "", want: "000"},
		{name: "text upper-cased and padded", spec: ColumnSpec{Width: 10}, value: "smith j", want: "SMITH J   "},
		{name: "text disallowed characters become spaces", spec: ColumnSpec{Width: 8}, value: "A@B#C", want: "A B C   "},
		{name: "text non-ascii becomes one space", spec: ColumnSpec{Width: 6}, value: "JOSÉ", want: "JOS   "},
		{name: "text truncates", spec: ColumnSpec{Width: 5}, value: "ABCDEFGH", want: "ABCDE"},
		{name: "custom pad char", spec: ColumnSpec{Width: 4, PadChar: '*'}, value: "AB", want: "AB**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Pad(tt.value)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.spec.Width)
		})
	}
}

func TestBacs18Columns_Widths(t *testing.T) {
	assert.Equal(t, 100, LineWidth(Bacs18Columns(domain.WidthNarrow)))
	assert.Equal(t, 106, LineWidth(Bacs18Columns(domain.WidthWide)))
	assert.Equal(t, 100, LineWidth(Bacs18Columns("")))
	assert.Len(t, Bacs18Columns(domain.WidthNarrow), 11)
	assert.Len(t, Bacs18Columns(domain.WidthWide), 12)
}
