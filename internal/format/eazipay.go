package format

import (
	"payfile-synth/internal/domain"
	"payfile-synth/internal/generator"
	"payfile-synth/internal/metadata"
)

// EaziPayZeroCodeOffset is the processing-date offset, in working days, of
// zero-amount codes in EaziPay files.
const EaziPayZeroCodeOffset = 2

// EaziPayFieldCount is the fixed number of fields of every EaziPay row,
// including the two empty trailer columns.
const EaziPayFieldCount = 14

var eaziPayDateLayouts = map[domain.DateFormat]string{
	domain.DateFormatISO:        "2006-01-02",
	domain.DateFormatDayMonthAb: "02-Jan-2006",
	domain.DateFormatSlashed:    "02/01/2006",
}

// EaziPay is the CSV format with a positional trailer. It never has a header.
type EaziPay struct {
	layout *generator.Layout
}

// NewEaziPay builds the EaziPay adapter.
func NewEaziPay() *EaziPay {
	return &EaziPay{layout: &generator.Layout{
		Format: domain.FormatEaziPay,
		Fields: []generator.FieldDef{
			{Name: "transactionCode", Rule: generator.TransactionCode("transactionCode")},
			{Name: "originatingSortCode", Rule: generator.NumericCode("originatingSortCode", 6)},
			{Name: "originatingAccountNumber", Rule: generator.NumericCode("originatingAccountNumber", 8)},
			{Name: "destinationSortCode", Rule: generator.NumericCode("destinationSortCode", 6)},
			{Name: "destinationAccountNumber", Rule: generator.NumericCode("destinationAccountNumber", 8)},
			{Name: "destinationAccountName", Rule: generator.AccountName("destinationAccountName")},
			{Name: "fixedZero", Rule: generator.Constant("fixedZero", "0")},
			{Name: "amount", Rule: generator.DecimalAmount("amount")},
			{Name: "processingDate", Rule: generator.SettlementDate("processingDate")},
			{Name: "serviceUserName", Rule: generator.AccountName("serviceUserName")},
			{Name: "bacsReference", Rule: generator.Reference("bacsReference")},
			{Name: "sunNumber", Rule: generator.SecondaryIdentifier("sunNumber")},
			{Name: "emptyTrailer1", Rule: generator.Constant("emptyTrailer1", "")},
			{Name: "emptyTrailer2", Rule: generator.Constant("emptyTrailer2", "")},
		},
		CodeField:          "transactionCode",
		AmountField:        "amount",
		DateField:          "processingDate",
		SecondaryField:     "sunNumber",
		ZeroCodeDateOffset: EaziPayZeroCodeOffset,
	}}
}

func (e *EaziPay) Format() domain.Format { return domain.FormatEaziPay }

func (e *EaziPay) Extension() string { return "csv" }

// Layout exposes the record shape, mainly for tests and verification.
func (e *EaziPay) Layout() *generator.Layout { return e.layout }

func (e *EaziPay) Info() Info {
	return Info{
		Format:      e.Format(),
		Extension:   e.Extension(),
		Columns:     e.layout.Names(),
		DateFormats: []domain.DateFormat{domain.DateFormatISO, domain.DateFormatDayMonthAb, domain.DateFormatSlashed},
	}
}

func (e *EaziPay) BuildRows(req domain.GenerationRequest, asm *generator.Assembler) (*Batch, error) {
	rows, err := asm.Build(e.layout, generator.BatchSpec{
		RowCount:      req.RowCount,
		InjectInvalid: req.InjectInvalidRows,
		InlineEdit:    req.AllowInlineEdit,
	})
	if err != nil {
		return nil, err
	}

	dateLayout, ok := eaziPayDateLayouts[req.DateFormat]
	if !ok {
		dateLayout = eaziPayDateLayouts[domain.DateFormatISO]
	}

	b := &Batch{
		Rows:        make([][]string, len(rows)),
		Columns:     EaziPayFieldCount,
		InvalidRows: countInvalid(rows),
	}
	for i, row := range rows {
		fields := make([]string, 0, EaziPayFieldCount)
		for _, f := range e.layout.Fields {
			value := row.Record.Value(f.Name)
			if f.Name == e.layout.DateField {
				value = reformatDate(value, dateLayout)
			}
			fields = append(fields, value)
		}
		b.Rows[i] = fields
	}
	return b, nil
}

func (e *EaziPay) Serialize(b *Batch, _ domain.GenerationRequest) string {
	return serializeCSV(b)
}

func (e *EaziPay) Meta(b *Batch, _ domain.GenerationRequest) domain.FileMeta {
	return metadata.Derive(metadata.Stats{
		Rows:        len(b.Rows),
		Columns:     b.Columns,
		InvalidRows: b.InvalidRows,
		Extension:   e.Extension(),
	})
}
