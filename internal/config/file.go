package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VariationBlock declares the configuration path to sweep and the values to
// sweep it over.
type VariationBlock struct {
	Entry  string `yaml:"entry"`
	Values []any  `yaml:"values"`
}

// Sweep is a parsed sweep file: simulation defaults, an optional parameter
// variation, and an optional output declaration. The raw output block is kept
// as a mapping so that downstream parsing can distinguish absent keys from
// explicit nulls.
type Sweep struct {
	Defaults  Map
	Variation *VariationBlock
	Output    map[string]any
}

// Parse decodes a sweep document. The top-level keys "ctwrap" and "defaults"
// are required; their absence yields an error wrapping ErrObsoleteFormat.
func Parse(data []byte) (*Sweep, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse sweep file: %w", err)
	}

	if _, ok := raw["ctwrap"]; !ok {
		return nil, fmt.Errorf("%w: missing ctwrap marker", ErrObsoleteFormat)
	}
	defaults, ok := raw["defaults"]
	if !ok {
		return nil, fmt.Errorf("%w: missing defaults", ErrObsoleteFormat)
	}
	defaultsMap, ok := asMap(defaults)
	if !ok {
		return nil, fmt.Errorf("%w: defaults is not a mapping", ErrObsoleteFormat)
	}

	sweep := &Sweep{Defaults: defaultsMap}

	if v, ok := raw["variation"]; ok && v != nil {
		vm, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("%w: variation is not a mapping", ErrObsoleteFormat)
		}
		entry, _ := vm["entry"].(string)
		if entry == "" {
			return nil, fmt.Errorf("%w: variation is missing entry", ErrObsoleteFormat)
		}
		values, ok := vm["values"].([]any)
		if !ok || len(values) == 0 {
			return nil, fmt.Errorf("%w: variation is missing values", ErrObsoleteFormat)
		}
		sweep.Variation = &VariationBlock{Entry: entry, Values: values}
	}

	if o, ok := raw["output"]; ok && o != nil {
		om, ok := asMap(o)
		if !ok {
			return nil, fmt.Errorf("%w: output is not a mapping", ErrObsoleteFormat)
		}
		sweep.Output = om
	}

	return sweep, nil
}

// Load reads and parses a sweep file from disk.
func Load(file string) (*Sweep, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read sweep file: %w", err)
	}
	return Parse(data)
}
