// Package format turns assembled records into payment files. Each supported
// layout is an Adapter; a Registry maps format identifiers to adapters so
// callers never switch on the format themselves.
package format

import (
	"fmt"
	"sort"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/generator"
)

// Batch is a serialisable set of rows in column order.
type Batch struct {
	Header      []string
	Rows        [][]string
	Columns     int
	InvalidRows int
}

// Info describes an adapter to API clients.
type Info struct {
	Format          domain.Format         `json:"format"`
	Extension       string                `json:"extension"`
	SupportsHeader  bool                  `json:"supportsHeader"`
	Columns         []string              `json:"columns"`
	OptionalColumns []string              `json:"optionalColumns,omitempty"`
	WidthVariants   []domain.WidthVariant `json:"widthVariants,omitempty"`
	DateFormats     []domain.DateFormat   `json:"dateFormats,omitempty"`
}

// Adapter builds, serialises and describes one file format.
type Adapter interface {
	Format() domain.Format
	Extension() string
	Info() Info

	// BuildRows assembles req.RowCount rows as ordered field lists.
	BuildRows(req domain.GenerationRequest, asm *generator.Assembler) (*Batch, error)

	// Serialize renders a batch as file content.
	Serialize(b *Batch, req domain.GenerationRequest) string

	// Meta summarises a batch.
	Meta(b *Batch, req domain.GenerationRequest) domain.FileMeta
}

// Registry maps format identifiers to adapters.
type Registry struct {
	adapters map[domain.Format]Adapter
}

// NewRegistry registers adapters; a later adapter replaces an earlier one
// for the same format.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[domain.Format]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry holds every built-in format.
func DefaultRegistry() *Registry {
	return NewRegistry(NewSDDirect(), NewBacs18PaymentLines(), NewEaziPay())
}

// Register adds or replaces the adapter for a.Format().
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Format()] = a
}

// Lookup returns the adapter for f or domain.ErrUnsupportedFormat.
func (r *Registry) Lookup(f domain.Format) (Adapter, error) {
	a, ok := r.adapters[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}
	return a, nil
}

// All returns the registered adapters sorted by format identifier.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format() < out[j].Format() })
	return out
}

func countInvalid(rows []generator.Row) int {
	n := 0
	for _, row := range rows {
		if !row.IsValid() {
			n++
		}
	}
	return n
}

func labels(fields []generator.FieldDef) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label
	}
	return out
}
