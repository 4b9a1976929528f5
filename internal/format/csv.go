package format

import (
	"encoding/csv"
	"fmt"
	"strings"
)

const lineTerminator = "\n"

// EscapeCSV quotes v when it contains a comma, a double quote or a line
// break, doubling any inner quotes. Other values are returned unchanged.
func EscapeCSV(v string) string {
	if !strings.ContainsAny(v, ",\"\r\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// UnescapeCSV reverses EscapeCSV for a single field.
func UnescapeCSV(v string) string {
	if len(v) < 2 || !strings.HasPrefix(v, `"`) || !strings.HasSuffix(v, `"`) {
		return v
	}
	return strings.ReplaceAll(v[1:len(v)-1], `""`, `"`)
}

// JoinCSV escapes and comma-joins one record.
func JoinCSV(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeCSV(f)
	}
	return strings.Join(escaped, ",")
}

// SplitCSV parses one record produced by JoinCSV.
func SplitCSV(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("could not parse CSV record: %w", err)
	}
	return record, nil
}

func serializeCSV(b *Batch) string {
	lines := make([]string, 0, len(b.Rows)+1)
	if b.Header != nil {
		lines = append(lines, JoinCSV(b.Header))
	}
	for _, row := range b.Rows {
		lines = append(lines, JoinCSV(row))
	}
	return strings.Join(lines, lineTerminator)
}
