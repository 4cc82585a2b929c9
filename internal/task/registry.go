// Package task derives the canonical task set from a parameter variation.
package task

import (
	"errors"
	"fmt"
	"sort"

	"ctwrap/internal/config"
)

// ErrUnknownTask marks a lookup of a task ID that is not part of the
// derived task set.
var ErrUnknownTask = errors.New("unknown task")

// ErrDuplicateTask marks a variation whose values collapse to the same
// canonical task ID.
var ErrDuplicateTask = errors.New("duplicate task id")

// Variation declares which configuration path to sweep and over what values.
type Variation struct {
	Entry  string
	Values []any
}

// ID returns the canonical task identifier for one value of an entry.
func ID(entry string, value any) string {
	return fmt.Sprintf("%s_%v", entry, value)
}

// Registry holds the task set derived from a variation. It carries no
// mutable state beyond the entry/values pair and can be re-derived from it
// at any time.
type Registry struct {
	defaults config.Map
	entry    string
	values   []any
	byID     map[string]any
}

// NewRegistry validates the variation against the defaults and derives the
// task set. The entry path must resolve inside defaults, values must be
// non-empty, and the derived task IDs must be unique.
func NewRegistry(defaults config.Map, v Variation) (*Registry, error) {
	if v.Entry == "" {
		return nil, fmt.Errorf("%w: empty entry", config.ErrEntryPath)
	}
	if len(v.Values) == 0 {
		return nil, errors.New("variation has no values")
	}
	if _, err := config.Lookup(defaults, v.Entry); err != nil {
		return nil, err
	}

	byID := make(map[string]any, len(v.Values))
	for _, val := range v.Values {
		id := ID(v.Entry, val)
		if _, exists := byID[id]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTask, id)
		}
		byID[id] = val
	}

	return &Registry{
		defaults: defaults,
		entry:    v.Entry,
		values:   v.Values,
		byID:     byID,
	}, nil
}

// Entry returns the swept configuration path.
func (r *Registry) Entry() string { return r.entry }

// Values returns the declared sweep values in declaration order.
func (r *Registry) Values() []any { return r.values }

// Tasks returns the task set as a mapping from canonical ID to swept value.
func (r *Registry) Tasks() map[string]any {
	out := make(map[string]any, len(r.byID))
	for id, v := range r.byID {
		out[id] = v
	}
	return out
}

// Enumerate returns the sorted task IDs. Sorting keeps dispatch order
// deterministic even when completion order is not.
func (r *Registry) Enumerate() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Configuration resolves the full per-task configuration for one task ID:
// a deep copy of the defaults with the swept value substituted at the entry
// path.
func (r *Registry) Configuration(id string) (config.Map, error) {
	value, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, id)
	}
	return config.Resolve(r.defaults, r.entry, value)
}
