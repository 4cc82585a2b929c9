// Package sim defines the simulation module contract and the registry of
// bundled modules.
//
// A module exposes its default configuration and a run function; the sweep
// machinery treats it as an opaque collaborator. Workers each construct
// their own module instance through a Factory, so module state never
// crosses a worker boundary.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Module is the simulation contract: defaults plus a run function keyed by
// task name.
type Module interface {
	// Defaults returns the module's base configuration. The caller owns
	// the returned map and may mutate it.
	Defaults() Map

	// Run executes one task and returns its result. Errors are passed
	// through to the caller unchanged; the sweep machinery adds no retry.
	Run(ctx context.Context, name string, cfg Map) (*Result, error)
}

// Factory constructs a fresh, independent module instance.
type Factory func() Module

// Result holds the output of one simulation task: scalar attributes plus
// ordered columns of samples.
type Result struct {
	Attrs   map[string]any       `json:"attrs,omitempty"`
	Columns []string             `json:"columns,omitempty"`
	Data    map[string][]float64 `json:"data,omitempty"`
}

// ErrUnknownModule marks a lookup of a module name that was never
// registered.
var ErrUnknownModule = errors.New("unknown simulation module")

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a module factory under a name. Bundled modules register
// themselves from init; registering a duplicate name panics, as that is a
// programming error.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("sim: duplicate module %q", name))
	}
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return f, nil
}

// Names returns the sorted names of all registered modules.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
