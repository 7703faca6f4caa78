// Package naming allocates unique output column names for the column groups
// transformers fan out to, and maps them back to their owning fields.
package naming

import (
	"fmt"
	"sync"
)

// Separator joins a field name and an output suffix.
const Separator = "."

// Resolver maps fields to their output column names.
//
// Names are built as "<field>.<suffix>" (or "<field>" for an empty suffix).
// When a candidate is already taken an ordinal is appended: "<candidate>_1",
// "<candidate>_2", and so on. Allocation order therefore decides the result;
// callers allocate fields in fit order from a single goroutine and treat the
// resolver as read-only afterwards.
type Resolver struct {
	mu sync.RWMutex

	// byField maps a field to its output names in suffix order:
	// "age" → ["age.value", "age.is_null"]
	byField map[string][]string

	// owner maps an output name back to its field: "age.is_null" → "age"
	owner map[string]string

	// order lists fields in allocation order.
	order []string
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		byField: make(map[string][]string),
		owner:   make(map[string]string),
	}
}

// Allocate reserves names for the field's suffixes and returns them in suffix
// order. A field can only be allocated once.
func (r *Resolver) Allocate(field string, suffixes []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byField[field]; ok {
		return nil, fmt.Errorf("field %q already has output columns", field)
	}

	names := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		candidate := field
		if suffix != "" {
			candidate = field + Separator + suffix
		}
		name := candidate
		for n := 1; ; n++ {
			if _, taken := r.owner[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s_%d", candidate, n)
		}
		r.owner[name] = field
		names[i] = name
	}

	r.byField[field] = names
	r.order = append(r.order, field)
	return names, nil
}

// Outputs returns the output names of a field in suffix order.
func (r *Resolver) Outputs(field string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names, ok := r.byField[field]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// Owner returns the field that owns an output name.
func (r *Resolver) Owner(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.owner[name]
	return f, ok
}

// Fields returns fields in allocation order.
func (r *Resolver) Fields() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns every output name, grouped by field in allocation order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, f := range r.order {
		out = append(out, r.byField[f]...)
	}
	return out
}

// Count returns the number of allocated output names.
func (r *Resolver) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owner)
}

// Check compares a set of column names against the allocated outputs.
// It returns the allocated names that are absent and the given names that
// no field owns, both in a deterministic order.
func (r *Resolver) Check(names []string) (missing, unknown []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
		if _, ok := r.owner[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	for _, f := range r.order {
		for _, n := range r.byField[f] {
			if _, ok := present[n]; !ok {
				missing = append(missing, n)
			}
		}
	}
	return missing, unknown
}
