package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format identifies one of the supported payment-instruction file layouts.
type Format string

const (
	FormatSDDirect           Format = "SDDirect"
	FormatBacs18PaymentLines Format = "Bacs18PaymentLines"
	FormatEaziPay            Format = "EaziPay"
)

// WidthVariant selects the Bacs18 line layout.
type WidthVariant string

const (
	WidthNarrow WidthVariant = "narrow"
	WidthWide   WidthVariant = "wide"
)

// DateFormat is the textual layout of the EaziPay processing date.
type DateFormat string

const (
	DateFormatISO        DateFormat = "YYYY-MM-DD"
	DateFormatDayMonthAb DateFormat = "DD-MMM-YYYY"
	DateFormatSlashed    DateFormat = "DD/MM/YYYY"
)

// ColumnSelection captures the includeOptionalColumns request field, which is
// either a boolean or an allow-list of optional column names.
type ColumnSelection struct {
	All   bool
	Names []string
}

// Enabled reports whether any optional column was requested.
func (s ColumnSelection) Enabled() bool {
	return s.All || len(s.Names) > 0
}

// Includes reports whether the optional column name was selected.
func (s ColumnSelection) Includes(name string) bool {
	if s.All {
		return true
	}
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (s ColumnSelection) MarshalJSON() ([]byte, error) {
	if len(s.Names) > 0 && !s.All {
		return json.Marshal(s.Names)
	}
	return json.Marshal(s.All)
}

func (s *ColumnSelection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ColumnSelection{}
		return nil
	}
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*s = ColumnSelection{All: flag}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("includeOptionalColumns must be a boolean or a list of column names: %w", err)
	}
	*s = ColumnSelection{Names: names}
	return nil
}

// GenerationRequest describes a single file to synthesize.
type GenerationRequest struct {
	Format            Format          `json:"format"`
	RowCount          int             `json:"rowCount"`
	OptionalColumns   ColumnSelection `json:"includeOptionalColumns"`
	InjectInvalidRows bool            `json:"injectInvalidRows"`
	AllowInlineEdit   bool            `json:"allowInlineEdit"`
	IncludeHeader     bool            `json:"headerFlag"`
	DateFormat        DateFormat      `json:"dateFormat,omitempty"`
	WidthVariant      WidthVariant    `json:"widthVariant,omitempty"`
}

// Validate rejects requests the pipeline cannot honour. The format itself is
// checked when the adapter is looked up.
func (r GenerationRequest) Validate() error {
	if r.RowCount < 1 {
		return fmt.Errorf("%w: rowCount must be at least 1, got %d", ErrInvalidRequest, r.RowCount)
	}
	switch r.DateFormat {
	case "", DateFormatISO, DateFormatDayMonthAb, DateFormatSlashed:
	default:
		return fmt.Errorf("%w: unknown dateFormat %q", ErrInvalidRequest, r.DateFormat)
	}
	switch r.WidthVariant {
	case "", WidthNarrow, WidthWide:
	default:
		return fmt.Errorf("%w: unknown widthVariant %q", ErrInvalidRequest, r.WidthVariant)
	}
	return nil
}
