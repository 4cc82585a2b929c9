// Package engine runs a task set against a simulation module, serially or
// on a worker pool, and routes results to the output artifact under mutual
// exclusion.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"ctwrap/internal/config"
	"ctwrap/internal/logging"
	"ctwrap/internal/output"
	"ctwrap/internal/sim"
	"ctwrap/internal/store"
	"ctwrap/internal/task"
)

// Metadata is the run provenance record persisted alongside task results.
type Metadata struct {
	Defaults  config.Map        `json:"defaults"`
	Variation VariationMetadata `json:"variation"`
}

// VariationMetadata is the variation block enriched with the sorted task
// list it expands to.
type VariationMetadata struct {
	Entry  string   `json:"entry"`
	Values []any    `json:"values"`
	Tasks  []string `json:"tasks"`
}

// Handler coordinates one sweep: the task set, the output spec, and the
// artifact. All artifact access, including the final metadata write, takes
// the same lock, so container writes never interleave.
type Handler struct {
	registry *task.Registry
	spec     *output.Spec
	artifact store.Artifact
	metadata Metadata

	mu  sync.Mutex
	log *slog.Logger
}

// New builds a handler from already-resolved parts. The variation is
// validated against the defaults here, before any task executes. A nil
// artifact means no output was requested; every save becomes a no-op.
func New(defaults config.Map, v task.Variation, spec *output.Spec, art store.Artifact) (*Handler, error) {
	registry, err := task.NewRegistry(defaults, v)
	if err != nil {
		return nil, err
	}
	return &Handler{
		registry: registry,
		spec:     spec,
		artifact: art,
		metadata: Metadata{
			Defaults: defaults,
			Variation: VariationMetadata{
				Entry:  v.Entry,
				Values: v.Values,
				Tasks:  registry.Enumerate(),
			},
		},
		log: logging.New("engine"),
	}, nil
}

// Options carries the explicit overrides of the command surface.
type Options struct {
	Name string // output name, overrides the sweep file's declaration
	Path string // output directory, overrides the sweep file's declaration
}

// FromFile loads a sweep file and builds a handler for it. When neither the
// file nor the options name the output, the sweep file's own base name is
// used, matching the file-derived default of the command surface.
func FromFile(file string, opts Options) (*Handler, error) {
	sweep, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if sweep.Variation == nil {
		return nil, fmt.Errorf("%w: sweep file declares no variation", config.ErrObsoleteFormat)
	}

	name := opts.Name
	if name == "" {
		if _, declared := sweep.Output["name"]; !declared {
			base := filepath.Base(file)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}

	spec, err := output.Parse(sweep.Output, name, opts.Path)
	if err != nil {
		return nil, err
	}

	var art store.Artifact
	if spec.Requested() {
		art, err = store.Open(spec.Target(), spec.Format)
		if err != nil {
			return nil, err
		}
	}

	h, err := New(sweep.Defaults, task.Variation(*sweep.Variation), spec, art)
	if err != nil {
		if art != nil {
			art.Close()
		}
		return nil, err
	}
	return h, nil
}

// Tasks returns the sorted task IDs of the sweep.
func (h *Handler) Tasks() []string { return h.registry.Enumerate() }

// Output returns the resolved output spec.
func (h *Handler) Output() *output.Spec { return h.spec }

// Close releases the output artifact, if any.
func (h *Handler) Close() error {
	if h.artifact == nil {
		return nil
	}
	return h.artifact.Close()
}

// DefaultWorkers returns the default worker count: half the available
// hardware concurrency, floored, and at least one.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// save writes one result group under the caller-held lock.
func (h *Handler) save(id string, res *sim.Result) error {
	if h.artifact == nil {
		return nil
	}
	force := h.spec != nil && h.spec.ForceOverwrite
	if err := h.artifact.WriteGroup(id, res, force); err != nil {
		if errors.Is(err, store.ErrGroupExists) {
			return err
		}
		return fmt.Errorf("save %q: %w", id, err)
	}
	return nil
}

// saveMetadata writes the provenance record under the caller-held lock.
func (h *Handler) saveMetadata() error {
	if h.artifact == nil {
		return nil
	}
	if err := h.artifact.WriteMetadata(h.metadata); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}
