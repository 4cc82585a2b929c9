// Package config holds the nested simulation configuration and the
// single-path substitution used to derive per-task variants.
package config

import (
	"fmt"
	"strings"
)

// Map is an arbitrarily nested configuration mapping. Values are scalars,
// sequences, or nested mappings, exactly as decoded from YAML.
type Map map[string]any

// DeepCopy returns a fully independent copy of the map. Nested mappings and
// sequences are copied recursively; the result shares no structure with the
// receiver.
func (m Map) DeepCopy() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case Map:
		return val.DeepCopy()
	case map[string]any:
		return Map(val).DeepCopy()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	default:
		return val
	}
}

// Resolve returns a deep copy of base with the value at the dot-separated
// entry path replaced. If the existing value at the path is a sequence, only
// its first element is overwritten and the remaining elements are kept; any
// other value is replaced outright. The base map is never mutated.
//
// Every non-final path segment must already exist as a nested mapping in
// base; a missing or non-mapping segment yields an error wrapping ErrEntryPath.
func Resolve(base Map, entry string, value any) (Map, error) {
	if entry == "" {
		return nil, fmt.Errorf("%w: empty entry", ErrEntryPath)
	}
	keys := strings.Split(entry, ".")
	out := base.DeepCopy()

	sub := out
	for i, key := range keys[:len(keys)-1] {
		next, ok := sub[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q (missing %q)", ErrEntryPath, entry, strings.Join(keys[:i+1], "."))
		}
		nested, ok := asMap(next)
		if !ok {
			return nil, fmt.Errorf("%w: %q (%q is not a mapping)", ErrEntryPath, entry, strings.Join(keys[:i+1], "."))
		}
		sub[key] = nested
		sub = nested
	}

	last := keys[len(keys)-1]
	existing, ok := sub[last]
	if !ok {
		return nil, fmt.Errorf("%w: %q (missing %q)", ErrEntryPath, entry, entry)
	}
	if seq, isSeq := existing.([]any); isSeq && len(seq) > 0 {
		seq[0] = value
	} else {
		sub[last] = value
	}
	return out, nil
}

// asMap normalizes the two mapping shapes that can appear after a YAML
// decode into a Map, without copying.
func asMap(v any) (Map, bool) {
	switch val := v.(type) {
	case Map:
		return val, true
	case map[string]any:
		return Map(val), true
	default:
		return nil, false
	}
}

// Lookup walks the dot-separated entry path and returns the value at its
// end. Used by tests and by registry validation at construction time.
func Lookup(m Map, entry string) (any, error) {
	keys := strings.Split(entry, ".")
	var cur any = m
	for i, key := range keys {
		nested, ok := asMap(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %q (%q is not a mapping)", ErrEntryPath, entry, strings.Join(keys[:i], "."))
		}
		cur, ok = nested[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q (missing %q)", ErrEntryPath, entry, strings.Join(keys[:i+1], "."))
		}
	}
	return cur, nil
}
