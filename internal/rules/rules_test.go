package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseFacts() Facts {
	return Facts{
		Code:          "17",
		Amount:        "125.00",
		HasDate:       true,
		DateOffset:    10,
		DateIsWorking: true,
		ZeroCodes:     []string{"0C", "0N", "0S"},
		ZeroOffset:    3,
	}
}

func TestValidator_Evaluate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(f *Facts)
		want   []string
	}{
		{
			name:   "valid debit",
			mutate: func(f *Facts) {},
		},
		{
			name: "valid zero-amount code",
			mutate: func(f *Facts) {
				f.Code, f.Amount, f.DateOffset = "0N", "0", 3
			},
		},
		{
			name: "zero-amount code with money",
			mutate: func(f *Facts) {
				f.Code, f.DateOffset = "0C", 3
			},
			want: []string{"zero-amount"},
		},
		{
			name: "zero-amount code on the wrong day",
			mutate: func(f *Facts) {
				f.Code, f.Amount, f.DateOffset = "0S", "0", 4
			},
			want: []string{"zero-code-date"},
		},
		{
			name: "zero-amount code with money on the wrong day",
			mutate: func(f *Facts) {
				f.Code, f.DateOffset = "0C", 5
			},
			want: []string{"zero-amount", "zero-code-date"},
		},
		{
			name: "zero-amount code on a weekend is left to the date field",
			mutate: func(f *Facts) {
				f.Code, f.Amount, f.DateOffset, f.DateIsWorking = "0N", "0", 4, false
			},
		},
		{
			name: "debit outside the date window is left to the date field",
			mutate: func(f *Facts) {
				f.DateOffset, f.DateIsWorking = 31, false
			},
		},
		{
			name: "no date column",
			mutate: func(f *Facts) {
				f.Code, f.Amount = "0S", "0"
				f.HasDate, f.DateOffset, f.DateIsWorking = false, 0, false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := baseFacts()
			tt.mutate(&facts)
			got, err := v.Evaluate(facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewValidatorWithRules_CompileErrors(t *testing.T) {
	_, err := NewValidatorWithRules([]Rule{{Name: "broken", Expression: "code ==="}})
	assert.Error(t, err)

	_, err = NewValidatorWithRules([]Rule{{Name: "not-bool", Expression: "date_offset + 1"}})
	assert.Error(t, err)

	_, err = NewValidatorWithRules([]Rule{{Name: "unknown-var", Expression: "payee == 'x'"}})
	assert.Error(t, err)
}
