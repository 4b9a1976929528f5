// Package metadata derives file statistics and the deterministic filename of
// a generated payment file.
package metadata

import (
	"fmt"
	"time"

	"payfile-synth/internal/domain"
)

// TimestampLayout is the timestamp embedded in filenames, always UTC.
const TimestampLayout = "20060102T150405"

// Stats are the raw counts a format adapter reports for a batch.
type Stats struct {
	Rows        int
	Columns     int
	HasHeader   bool
	InvalidRows int
	Extension   string
}

// Derive turns batch statistics into file metadata.
func Derive(s Stats) domain.FileMeta {
	return domain.FileMeta{
		RowCount:        s.Rows,
		ColumnCount:     s.Columns,
		HasHeader:       s.HasHeader,
		IsValidBatch:    s.InvalidRows == 0,
		InvalidRowCount: s.InvalidRows,
		Extension:       s.Extension,
	}
}

// Filename builds
// {format}_{columns:2 digits}_x_{rows}_{H|NH}_{V|I}_{timestamp}.{ext}.
// The result depends only on its arguments.
func Filename(format domain.Format, meta domain.FileMeta, now time.Time) string {
	header := "NH"
	if meta.HasHeader {
		header = "H"
	}
	validity := "I"
	if meta.IsValidBatch {
		validity = "V"
	}
	return fmt.Sprintf("%s_%02d_x_%d_%s_%s_%s.%s",
		format,
		meta.ColumnCount,
		meta.RowCount,
		header,
		validity,
		now.UTC().Format(TimestampLayout),
		meta.Extension,
	)
}
