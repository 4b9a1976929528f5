package domain

// LogicalRecord is an ordered mapping of field name to raw value for a single
// generated row. A field that was never set, or was unset, is absent.
type LogicalRecord struct {
	names  []string
	values map[string]string
}

// NewLogicalRecord creates an empty record whose field order is names.
func NewLogicalRecord(names ...string) *LogicalRecord {
	order := make([]string, len(names))
	copy(order, names)
	return &LogicalRecord{
		names:  order,
		values: make(map[string]string, len(names)),
	}
}

// Set stores value under name, appending name to the field order if needed.
func (r *LogicalRecord) Set(name, value string) {
	if !r.known(name) {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value and whether the field is present.
func (r *LogicalRecord) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value of name, or "" when absent.
func (r *LogicalRecord) Value(name string) string {
	return r.values[name]
}

// Has reports whether name is present.
func (r *LogicalRecord) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Unset makes name absent while keeping its position.
func (r *LogicalRecord) Unset(name string) {
	delete(r.values, name)
}

// Names returns the field order.
func (r *LogicalRecord) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *LogicalRecord) known(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}
