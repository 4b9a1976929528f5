package domain

import "errors"

var (
	// ErrUnsupportedFormat is returned when no adapter is registered for a format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrHolidayTableMissing is returned when the working-day calendar has no
	// bank holiday table for a year it was asked about.
	ErrHolidayTableMissing = errors.New("bank holiday table missing for year")

	// ErrInvalidRequest marks requests rejected before generation starts.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrInvalidPath is returned for namespaces or file names that would
	// escape the storage root.
	ErrInvalidPath = errors.New("invalid storage path")

	// ErrFileNotFound is returned when a stored file does not exist.
	ErrFileNotFound = errors.New("file not found")
)
