package format

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"payfile-synth/internal/calendar"
	"payfile-synth/internal/domain"
	"payfile-synth/internal/generator"
	"payfile-synth/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedToday = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newAssembler(t *testing.T, seed int64) *generator.Assembler {
	t.Helper()
	v, err := rules.NewValidator()
	require.NoError(t, err)
	return generator.NewAssembler(generator.NewSource(seed), calendar.New(), fixedToday, v)
}

func generate(t *testing.T, a Adapter, req domain.GenerationRequest, seed int64) (*Batch, string, domain.FileMeta) {
	t.Helper()
	b, err := a.BuildRows(req, newAssembler(t, seed))
	require.NoError(t, err)
	return b, a.Serialize(b, req), a.Meta(b, req)
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	for _, f := range []domain.Format{domain.FormatSDDirect, domain.FormatBacs18PaymentLines, domain.FormatEaziPay} {
		a, err := r.Lookup(f)
		require.NoError(t, err)
		assert.Equal(t, f, a.Format())
	}

	_, err := r.Lookup("Standard18")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, domain.FormatBacs18PaymentLines, all[0].Format())
}

func TestSDDirect_SingleRequiredRow(t *testing.T) {
	req := domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 1}
	b, content, meta := generate(t, NewSDDirect(), req, 1)

	lines := strings.Split(content, "\n")
	require.Len(t, lines, 1)
	fields, err := SplitCSV(lines[0])
	require.NoError(t, err)
	assert.Len(t, fields, 6)
	assert.Equal(t, 0, b.InvalidRows)
	assert.Equal(t, domain.FileMeta{RowCount: 1, ColumnCount: 6, IsValidBatch: true, Extension: "csv"}, meta)
}

func TestSDDirect_LineCounts(t *testing.T) {
	tests := []struct {
		name      string
		header    bool
		optional  domain.ColumnSelection
		rows      int
		wantLines int
		wantCols  int
	}{
		{name: "no header", rows: 10, wantLines: 10, wantCols: 6},
		{name: "header", header: true, rows: 10, wantLines: 11, wantCols: 6},
		{name: "all optional", header: true, optional: domain.ColumnSelection{All: true}, rows: 25, wantLines: 26, wantCols: 11},
		{name: "allow-list", optional: domain.ColumnSelection{Names: []string{"payDate"}}, rows: 5, wantLines: 5, wantCols: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.GenerationRequest{
				Format:          domain.FormatSDDirect,
				RowCount:        tt.rows,
				IncludeHeader:   tt.header,
				OptionalColumns: tt.optional,
			}
			_, content, meta := generate(t, NewSDDirect(), req, 2)

			lines := strings.Split(content, "\n")
			assert.Len(t, lines, tt.wantLines)
			for _, line := range lines {
				fields, err := SplitCSV(line)
				require.NoError(t, err)
				assert.Len(t, fields, tt.wantCols)
			}
			assert.Equal(t, tt.header, meta.HasHeader)
			assert.Equal(t, tt.wantCols, meta.ColumnCount)
		})
	}
}

func TestSDDirect_AllowListLeavesOtherOptionalColumnsEmpty(t *testing.T) {
	req := domain.GenerationRequest{
		Format:          domain.FormatSDDirect,
		RowCount:        20,
		IncludeHeader:   true,
		OptionalColumns: domain.ColumnSelection{Names: []string{"payDate", "originatingSortCode"}},
	}
	b, _, _ := generate(t, NewSDDirect(), req, 3)

	require.Equal(t, "Pay Date", b.Header[7])
	for _, row := range b.Rows {
		assert.Empty(t, row[6], "realtime checksum")
		assert.NotEmpty(t, row[7], "pay date")
		assert.NotEmpty(t, row[8], "originating sort code")
		assert.Empty(t, row[9], "originating account number")
		assert.Empty(t, row[10], "originating account name")
	}
}

func TestSDDirect_UnknownOptionalColumn(t *testing.T) {
	req := domain.GenerationRequest{
		Format:          domain.FormatSDDirect,
		RowCount:        1,
		OptionalColumns: domain.ColumnSelection{Names: []string{"amount"}},
	}
	_, err := NewSDDirect().BuildRows(req, newAssembler(t, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSDDirect_ZeroAmountCodes(t *testing.T) {
	req := domain.GenerationRequest{
		Format:          domain.FormatSDDirect,
		RowCount:        300,
		OptionalColumns: domain.ColumnSelection{All: true},
	}
	b, _, _ := generate(t, NewSDDirect(), req, 4)

	want, err := calendar.New().AddWorkingDays(fixedToday, SDDirectZeroCodeOffset)
	require.NoError(t, err)
	for _, row := range b.Rows {
		if generator.IsZeroAmountCode(row[5]) {
			assert.Equal(t, generator.ZeroAmount, row[4])
			assert.Equal(t, want.Format("2006-01-02"), row[7])
		}
	}
}

func TestSDDirect_InvalidRows(t *testing.T) {
	tests := []struct {
		name       string
		inlineEdit bool
		want       int
	}{
		{name: "inline edit", inlineEdit: true, want: 49},
		{name: "no inline edit", inlineEdit: false, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.GenerationRequest{
				Format:            domain.FormatSDDirect,
				RowCount:          100,
				InjectInvalidRows: true,
				AllowInlineEdit:   tt.inlineEdit,
			}
			b, _, meta := generate(t, NewSDDirect(), req, 5)
			assert.Equal(t, tt.want, b.InvalidRows)
			assert.Equal(t, tt.want, meta.InvalidRowCount)
			assert.False(t, meta.IsValidBatch)
		})
	}
}

func TestAdapters_InvalidRowsListEveryBrokenRule(t *testing.T) {
	tests := []struct {
		name   string
		layout *generator.Layout
	}{
		{name: "SDDirect", layout: NewSDDirect().Layout()},
		{name: "Bacs18PaymentLines", layout: NewBacs18PaymentLines().Layout()},
		{name: "EaziPay", layout: NewEaziPay().Layout()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := newAssembler(t, 23)
			rows, err := asm.Build(tt.layout, generator.BatchSpec{RowCount: 2000, InjectInvalid: true})
			require.NoError(t, err)

			invalid := 0
			for i, row := range rows {
				failures, err := asm.Verify(tt.layout, row.Record)
				require.NoError(t, err)
				if !row.IsValid() {
					invalid++
				}
				assert.ElementsMatch(t, row.Invalid, failures, "row %d", i)
			}
			assert.Equal(t, 1000, invalid)
		})
	}
}

func TestBacs18_LineWidths(t *testing.T) {
	tests := []struct {
		name    string
		variant domain.WidthVariant
		rows    int
		inject  bool
		want    int
	}{
		{name: "wide", variant: domain.WidthWide, rows: 3, want: 106},
		{name: "narrow", variant: domain.WidthNarrow, rows: 3, want: 100},
		{name: "wide with invalid rows", variant: domain.WidthWide, rows: 200, inject: true, want: 106},
		{name: "narrow with invalid rows", variant: domain.WidthNarrow, rows: 200, inject: true, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.GenerationRequest{
				Format:            domain.FormatBacs18PaymentLines,
				RowCount:          tt.rows,
				WidthVariant:      tt.variant,
				InjectInvalidRows: tt.inject,
				IncludeHeader:     true,
			}
			_, content, meta := generate(t, NewBacs18PaymentLines(), req, 6)

			lines := strings.Split(content, "\n")
			require.Len(t, lines, tt.rows)
			for _, line := range lines {
				assert.Len(t, line, tt.want)
			}
			assert.False(t, meta.HasHeader)
			assert.Equal(t, "txt", meta.Extension)
		})
	}
}

func TestBacs18_ZeroAmountCodes(t *testing.T) {
	req := domain.GenerationRequest{Format: domain.FormatBacs18PaymentLines, RowCount: 200, WidthVariant: domain.WidthWide}
	_, content, _ := generate(t, NewBacs18PaymentLines(), req, 7)

	want, err := calendar.New().AddWorkingDays(fixedToday, Bacs18ZeroCodeOffset)
	require.NoError(t, err)
	for _, line := range strings.Split(content, "\n") {
		code := line[15:17]
		if generator.IsZeroAmountCode(code) {
			assert.Equal(t, "00000000000", line[35:46])
			assert.Equal(t, want.Format("060102"), line[100:106])
		}
	}
}

func TestEaziPay_Shape(t *testing.T) {
	datePatterns := map[domain.DateFormat]*regexp.Regexp{
		domain.DateFormatISO:        regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		domain.DateFormatDayMonthAb: regexp.MustCompile(`^\d{2}-[A-Z][a-z]{2}-\d{4}$`),
		domain.DateFormatSlashed:    regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
		"":                          regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	}

	for df, pattern := range datePatterns {
		t.Run(string(df), func(t *testing.T) {
			req := domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 30, DateFormat: df, IncludeHeader: true}
			_, content, meta := generate(t, NewEaziPay(), req, 8)

			lines := strings.Split(content, "\n")
			require.Len(t, lines, 30)
			for _, line := range lines {
				fields, err := SplitCSV(line)
				require.NoError(t, err)
				require.Len(t, fields, EaziPayFieldCount)
				assert.Equal(t, "0", fields[6])
				assert.Regexp(t, pattern, fields[8])
				assert.Empty(t, fields[12])
				assert.Empty(t, fields[13])
			}
			assert.False(t, meta.HasHeader)
			assert.Equal(t, EaziPayFieldCount, meta.ColumnCount)
		})
	}
}

func TestEaziPay_SecondaryIdentifierEligibility(t *testing.T) {
	req := domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 400}
	b, _, _ := generate(t, NewEaziPay(), req, 9)

	want, err := calendar.New().AddWorkingDays(fixedToday, EaziPayZeroCodeOffset)
	require.NoError(t, err)

	present := 0
	for _, row := range b.Rows {
		code, amount, date, sun := row[0], row[7], row[8], row[11]
		if generator.IsZeroAmountCode(code) {
			assert.Equal(t, generator.ZeroAmount, amount)
			assert.Equal(t, want.Format("2006-01-02"), date)
			if sun != "" {
				present++
			}
			continue
		}
		assert.Empty(t, sun, "code %s", code)
	}
	assert.Greater(t, present, 0)
}

func TestAdapters_SameShapeForSameRequest(t *testing.T) {
	for _, a := range DefaultRegistry().All() {
		t.Run(string(a.Format()), func(t *testing.T) {
			req := domain.GenerationRequest{Format: a.Format(), RowCount: 12, InjectInvalidRows: true, IncludeHeader: true}
			_, first, firstMeta := generate(t, a, req, 10)
			_, second, secondMeta := generate(t, a, req, 11)

			assert.Equal(t, firstMeta, secondMeta)
			assert.Equal(t, len(strings.Split(first, "\n")), len(strings.Split(second, "\n")))
		})
	}
}
