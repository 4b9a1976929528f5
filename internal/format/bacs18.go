package format

import (
	"time"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/generator"
	"payfile-synth/internal/metadata"
)

// Bacs18ZeroCodeOffset is the processing-date offset, in working days, of
// zero-amount codes in Bacs18 payment lines.
const Bacs18ZeroCodeOffset = 2

const bacs18DateLayout = "060102"

var bacs18Columns = []ColumnSpec{
	{Name: "destinationSortCode", Width: 6, NumericOnly: true},
	{Name: "destinationAccountNumber", Width: 8, NumericOnly: true},
	{Name: "accountType", Width: 1, NumericOnly: true},
	{Name: "transactionCode", Width: 2},
	{Name: "originatingSortCode", Width: 6, NumericOnly: true},
	{Name: "originatingAccountNumber", Width: 8, NumericOnly: true},
	{Name: "freeFormat", Width: 4},
	{Name: "amount", Width: 11, NumericOnly: true, Justify: JustifyRight},
	{Name: "serviceUserName", Width: 18},
	{Name: "reference", Width: 18},
	{Name: "destinationAccountName", Width: 18},
}

var bacs18DateColumn = ColumnSpec{Name: "processingDate", Width: 6, NumericOnly: true}

// Bacs18PaymentLines is the fixed-width payment line format. It never has a
// header; the header flag is ignored.
type Bacs18PaymentLines struct {
	layout *generator.Layout
}

// NewBacs18PaymentLines builds the Bacs18 adapter.
func NewBacs18PaymentLines() *Bacs18PaymentLines {
	return &Bacs18PaymentLines{layout: &generator.Layout{
		Format: domain.FormatBacs18PaymentLines,
		Fields: []generator.FieldDef{
			{Name: "destinationSortCode", Rule: generator.NumericCode("destinationSortCode", 6)},
			{Name: "destinationAccountNumber", Rule: generator.NumericCode("destinationAccountNumber", 8)},
			{Name: "accountType", Rule: generator.Constant("accountType", "0")},
			{Name: "transactionCode", Rule: generator.TransactionCode("transactionCode")},
			{Name: "originatingSortCode", Rule: generator.NumericCode("originatingSortCode", 6)},
			{Name: "originatingAccountNumber", Rule: generator.NumericCode("originatingAccountNumber", 8)},
			{Name: "freeFormat", Rule: generator.Constant("freeFormat", "")},
			{Name: "amount", Rule: generator.PenceAmount("amount")},
			{Name: "serviceUserName", Rule: generator.AccountName("serviceUserName")},
			{Name: "reference", Rule: generator.Reference("reference")},
			{Name: "destinationAccountName", Rule: generator.AccountName("destinationAccountName")},
			{Name: "processingDate", Rule: generator.SettlementDate("processingDate"), Optional: true},
		},
		CodeField:          "transactionCode",
		AmountField:        "amount",
		DateField:          "processingDate",
		ZeroCodeDateOffset: Bacs18ZeroCodeOffset,
		FixedWidth:         true,
	}}
}

func (a *Bacs18PaymentLines) Format() domain.Format { return domain.FormatBacs18PaymentLines }

func (a *Bacs18PaymentLines) Extension() string { return "txt" }

// Layout exposes the record shape, mainly for tests and verification.
func (a *Bacs18PaymentLines) Layout() *generator.Layout { return a.layout }

func (a *Bacs18PaymentLines) Info() Info {
	names := make([]string, 0, len(bacs18Columns)+1)
	for _, c := range Bacs18Columns(domain.WidthWide) {
		names = append(names, c.Name)
	}
	return Info{
		Format:        a.Format(),
		Extension:     a.Extension(),
		Columns:       names,
		WidthVariants: []domain.WidthVariant{domain.WidthNarrow, domain.WidthWide},
	}
}

// Bacs18Columns returns the column specs of a width variant. An empty
// variant means narrow.
func Bacs18Columns(variant domain.WidthVariant) []ColumnSpec {
	cols := make([]ColumnSpec, len(bacs18Columns), len(bacs18Columns)+1)
	copy(cols, bacs18Columns)
	if variant == domain.WidthWide {
		cols = append(cols, bacs18DateColumn)
	}
	return cols
}

func (a *Bacs18PaymentLines) BuildRows(req domain.GenerationRequest, asm *generator.Assembler) (*Batch, error) {
	wide := req.WidthVariant == domain.WidthWide
	rows, err := asm.Build(a.layout, generator.BatchSpec{
		RowCount:      req.RowCount,
		InjectInvalid: req.InjectInvalidRows,
		InlineEdit:    req.AllowInlineEdit,
		Include: func(field string) bool {
			return field != bacs18DateColumn.Name || wide
		},
	})
	if err != nil {
		return nil, err
	}

	cols := Bacs18Columns(req.WidthVariant)
	b := &Batch{
		Rows:        make([][]string, len(rows)),
		Columns:     len(cols),
		InvalidRows: countInvalid(rows),
	}
	for i, row := range rows {
		fields := make([]string, len(cols))
		for j, c := range cols {
			value := row.Record.Value(c.Name)
			if c.Name == bacs18DateColumn.Name {
				value = reformatDate(value, bacs18DateLayout)
			}
			fields[j] = c.Pad(value)
		}
		b.Rows[i] = fields
	}
	return b, nil
}

func (a *Bacs18PaymentLines) Serialize(b *Batch, _ domain.GenerationRequest) string {
	return serializeFixedWidth(b)
}

func (a *Bacs18PaymentLines) Meta(b *Batch, _ domain.GenerationRequest) domain.FileMeta {
	return metadata.Derive(metadata.Stats{
		Rows:        len(b.Rows),
		Columns:     b.Columns,
		InvalidRows: b.InvalidRows,
		Extension:   a.Extension(),
	})
}

// reformatDate renders a record date in layout, passing unparseable values
// through untouched.
func reformatDate(value, layout string) string {
	d, err := time.Parse(generator.DateLayout, value)
	if err != nil {
		return value
	}
	return d.Format(layout)
}
