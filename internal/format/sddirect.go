package format

import (
	"fmt"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/generator"
	"payfile-synth/internal/metadata"
)

// SDDirectZeroCodeOffset is the settlement offset, in working days, of
// zero-amount codes in SDDirect files.
const SDDirectZeroCodeOffset = 3

// SDDirect is the variable-column CSV format.
type SDDirect struct {
	layout *generator.Layout
}

// NewSDDirect builds the SDDirect adapter.
func NewSDDirect() *SDDirect {
	return &SDDirect{layout: &generator.Layout{
		Format: domain.FormatSDDirect,
		Fields: []generator.FieldDef{
			{Name: "destinationAccountName", Label: "Destination Account Name", Rule: generator.AccountName("destinationAccountName")},
			{Name: "destinationSortCode", Label: "Destination Sort Code", Rule: generator.NumericCode("destinationSortCode", 6)},
			{Name: "destinationAccountNumber", Label: "Destination Account Number", Rule: generator.NumericCode("destinationAccountNumber", 8)},
			{Name: "paymentReference", Label: "Payment Reference", Rule: generator.Reference("paymentReference")},
			{Name: "amount", Label: "Amount", Rule: generator.DecimalAmount("amount")},
			{Name: "transactionCode", Label: "Transaction code", Rule: generator.TransactionCode("transactionCode")},
			{Name: "realtimeInformationChecksum", Label: "Realtime Information Checksum", Rule: generator.RealtimeChecksum("realtimeInformationChecksum"), Optional: true},
			{Name: "payDate", Label: "Pay Date", Rule: generator.SettlementDate("payDate"), Optional: true},
			{Name: "originatingSortCode", Label: "Originating Sort Code", Rule: generator.NumericCode("originatingSortCode", 6), Optional: true},
			{Name: "originatingAccountNumber", Label: "Originating Account Number", Rule: generator.NumericCode("originatingAccountNumber", 8), Optional: true},
			{Name: "originatingAccountName", Label: "Originating Account Name", Rule: generator.AccountName("originatingAccountName"), Optional: true},
		},
		CodeField:          "transactionCode",
		AmountField:        "amount",
		DateField:          "payDate",
		ZeroCodeDateOffset: SDDirectZeroCodeOffset,
	}}
}

func (s *SDDirect) Format() domain.Format { return domain.FormatSDDirect }

func (s *SDDirect) Extension() string { return "csv" }

// Layout exposes the record shape, mainly for tests and verification.
func (s *SDDirect) Layout() *generator.Layout { return s.layout }

func (s *SDDirect) Info() Info {
	var required, optional []string
	for _, f := range s.layout.Fields {
		if f.Optional {
			optional = append(optional, f.Name)
		} else {
			required = append(required, f.Name)
		}
	}
	return Info{
		Format:          s.Format(),
		Extension:       s.Extension(),
		SupportsHeader:  true,
		Columns:         required,
		OptionalColumns: optional,
	}
}

// columns is the emitted column set. Without optional columns only the
// required ones are written; with any optional selection every column is
// written and unselected optional ones stay empty to keep alignment.
func (s *SDDirect) columns(req domain.GenerationRequest) []generator.FieldDef {
	if req.OptionalColumns.Enabled() {
		return s.layout.Fields
	}
	var out []generator.FieldDef
	for _, f := range s.layout.Fields {
		if !f.Optional {
			out = append(out, f)
		}
	}
	return out
}

func (s *SDDirect) checkSelection(sel domain.ColumnSelection) error {
	for _, name := range sel.Names {
		f, ok := s.layout.Field(name)
		if !ok || !f.Optional {
			return fmt.Errorf("%w: %q is not an optional %s column", domain.ErrInvalidRequest, name, s.Format())
		}
	}
	return nil
}

func (s *SDDirect) BuildRows(req domain.GenerationRequest, asm *generator.Assembler) (*Batch, error) {
	if err := s.checkSelection(req.OptionalColumns); err != nil {
		return nil, err
	}

	rows, err := asm.Build(s.layout, generator.BatchSpec{
		RowCount:      req.RowCount,
		InjectInvalid: req.InjectInvalidRows,
		InlineEdit:    req.AllowInlineEdit,
		Include: func(field string) bool {
			f, ok := s.layout.Field(field)
			return ok && (!f.Optional || req.OptionalColumns.Includes(field))
		},
	})
	if err != nil {
		return nil, err
	}

	cols := s.columns(req)
	b := &Batch{
		Rows:        make([][]string, len(rows)),
		Columns:     len(cols),
		InvalidRows: countInvalid(rows),
	}
	if req.IncludeHeader {
		b.Header = labels(cols)
	}
	for i, row := range rows {
		fields := make([]string, len(cols))
		for j, c := range cols {
			fields[j] = row.Record.Value(c.Name)
		}
		b.Rows[i] = fields
	}
	return b, nil
}

func (s *SDDirect) Serialize(b *Batch, _ domain.GenerationRequest) string {
	return serializeCSV(b)
}

func (s *SDDirect) Meta(b *Batch, _ domain.GenerationRequest) domain.FileMeta {
	return metadata.Derive(metadata.Stats{
		Rows:        len(b.Rows),
		Columns:     b.Columns,
		HasHeader:   b.Header != nil,
		InvalidRows: b.InvalidRows,
		Extension:   s.Extension(),
	})
}
