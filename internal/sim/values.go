package sim

import (
	"fmt"

	"ctwrap/internal/config"
)

// Map aliases the nested configuration mapping so module implementations
// do not need to import the config package directly.
type Map = config.Map

// Float coerces a decoded YAML scalar to float64. YAML numbers decode as
// int or float64 depending on their spelling; sweep values may be either.
func Float(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

// lookupSeq resolves a dot-path expecting a sequence value.
func lookupSeq(cfg Map, path string) ([]any, error) {
	v, err := config.Lookup(cfg, path)
	if err != nil {
		return nil, err
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: not a sequence", path)
	}
	return seq, nil
}

// FloatAt resolves a dot-path inside a configuration and coerces the value
// to float64. A sequence value yields its first element, mirroring the
// substitution rule used by the sweep.
func FloatAt(cfg Map, path string) (float64, error) {
	v, err := config.Lookup(cfg, path)
	if err != nil {
		return 0, err
	}
	if seq, ok := v.([]any); ok && len(seq) > 0 {
		v = seq[0]
	}
	f, err := Float(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
