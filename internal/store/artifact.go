// Package store persists sweep results into a structured container file:
// one named group per completed task plus one run-level provenance record.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"ctwrap/internal/output"
	"ctwrap/internal/sim"
)

// ErrGroupExists marks a write that would clobber an existing result group
// without force being set.
var ErrGroupExists = errors.New("cannot overwrite existing group")

// Artifact is one container file. Implementations are not safe for
// concurrent use; callers serialize access, holding their lock across any
// existence check and the write that depends on it.
type Artifact interface {
	// Groups lists the names of all persisted result groups, sorted.
	Groups() ([]string, error)

	// ReadGroup loads one persisted result group.
	ReadGroup(name string) (*sim.Result, error)

	// WriteGroup appends one result group. If a group of the same name
	// already exists it is replaced when force is true and rejected with
	// ErrGroupExists otherwise.
	WriteGroup(name string, result *sim.Result, force bool) error

	// WriteMetadata writes the run provenance record, replacing any
	// previous one.
	WriteMetadata(meta any) error

	// Metadata returns the provenance record as raw JSON, or nil if none
	// was written.
	Metadata() (json.RawMessage, error)

	Close() error
}

// Open opens (or creates) the container file at target in the given format.
func Open(target, format string) (Artifact, error) {
	switch format {
	case "db", "sqlite":
		return openSQLite(target)
	case "json":
		return openJSON(target)
	case "csv":
		return openCSV(target)
	default:
		return nil, fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
	}
}

// Summary describes an existing artifact for inspection.
type Summary struct {
	Groups   []string
	Metadata json.RawMessage
}

// Inspect opens an artifact by file extension and summarizes its contents.
func Inspect(file string) (*Summary, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("inspect artifact: %w", err)
	}
	format, err := output.FormatOf(file)
	if err != nil {
		return nil, err
	}
	art, err := Open(file, format)
	if err != nil {
		return nil, err
	}
	defer art.Close()

	groups, err := art.Groups()
	if err != nil {
		return nil, err
	}
	meta, err := art.Metadata()
	if err != nil {
		return nil, err
	}
	return &Summary{Groups: groups, Metadata: meta}, nil
}
