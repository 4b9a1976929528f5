package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "", want: ""},
		{in: "a,b", want: `"a,b"`},
		{in: `say "hi"`, want: `"say ""hi"""`},
		{in: "two\nlines", want: "\"two\nlines\""},
		{in: " leading space", want: " leading space"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeCSV(tt.in))
		})
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	values := []string{
		"SMITH, \"JOHN\"\nLINE TWO",
		`""`,
		",",
		"plain",
	}
	for _, v := range values {
		assert.Equal(t, v, UnescapeCSV(EscapeCSV(v)))
	}

	fields, err := SplitCSV(JoinCSV(values))
	require.NoError(t, err)
	assert.Equal(t, values, fields)
}

func TestUnescapeCSV_Unquoted(t *testing.T) {
	assert.Equal(t, "abc", UnescapeCSV("abc"))
	assert.Equal(t, `"`, UnescapeCSV(`"`))
}

func TestSplitCSV_Malformed(t *testing.T) {
	_, err := SplitCSV(`"unterminated,field`)
	assert.Error(t, err)
}
