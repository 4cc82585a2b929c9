package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"ctwrap/internal/sim"
)

// jsonDoc is the on-disk shape of a JSON container.
type jsonDoc struct {
	Groups   map[string]*sim.Result `json:"groups"`
	Metadata json.RawMessage        `json:"metadata,omitempty"`
}

// jsonArtifact keeps the whole container in memory and rewrites the file on
// every group write. Append mode is read-modify-write; callers hold the
// artifact lock across check and write, so the rewrite never interleaves.
type jsonArtifact struct {
	path string
	doc  jsonDoc
}

func openJSON(path string) (Artifact, error) {
	a := &jsonArtifact{path: path, doc: jsonDoc{Groups: map[string]*sim.Result{}}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &a.doc); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if a.doc.Groups == nil {
		a.doc.Groups = map[string]*sim.Result{}
	}
	return a, nil
}

func (a *jsonArtifact) flush() error {
	data, err := json.MarshalIndent(&a.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(a.path, data, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", a.path, err)
	}
	return nil
}

func (a *jsonArtifact) Groups() ([]string, error) {
	names := make([]string, 0, len(a.doc.Groups))
	for name := range a.doc.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *jsonArtifact) ReadGroup(name string) (*sim.Result, error) {
	res, ok := a.doc.Groups[name]
	if !ok {
		return nil, fmt.Errorf("group %q not found", name)
	}
	return res, nil
}

func (a *jsonArtifact) WriteGroup(name string, result *sim.Result, force bool) error {
	if _, exists := a.doc.Groups[name]; exists && !force {
		return fmt.Errorf("%w: %q (use force to override)", ErrGroupExists, name)
	}
	a.doc.Groups[name] = result
	return a.flush()
}

func (a *jsonArtifact) WriteMetadata(meta any) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	a.doc.Metadata = payload
	return a.flush()
}

func (a *jsonArtifact) Metadata() (json.RawMessage, error) {
	return a.doc.Metadata, nil
}

func (a *jsonArtifact) Close() error { return nil }
