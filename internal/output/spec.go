// Package output resolves where and how sweep results are persisted.
package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultFormat is the container format used when none is declared.
const DefaultFormat = "db"

// Formats is the allow-list of container formats. "sqlite" is an alias
// accepted on input; both open the same SQLite-backed container.
var Formats = map[string]bool{
	"db":     true,
	"sqlite": true,
	"json":   true,
	"csv":    true,
}

var (
	// ErrAmbiguousPath marks an explicit path argument combined with a
	// path embedded in the explicit name.
	ErrAmbiguousPath = errors.New("contradictory path specification")

	// ErrUnsupportedFormat marks a requested container format outside the
	// allow-list.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Spec is the resolved output declaration. It is computed once and is
// immutable afterwards. An empty FileName means no output was requested and
// every downstream save becomes a no-op.
type Spec struct {
	Name           string
	Path           string
	Format         string
	FileName       string
	ForceOverwrite bool
}

// Requested reports whether any output was requested at all.
func (s *Spec) Requested() bool {
	return s != nil && s.FileName != ""
}

// Target returns the save target: the file name joined onto the path when a
// path is set.
func (s *Spec) Target() string {
	if s.Path != "" {
		return filepath.Join(s.Path, s.FileName)
	}
	return s.FileName
}

// Parse resolves an output declaration against explicit overrides.
//
// Precedence: explicit name/path arguments override the raw declaration; a
// recognized file extension embedded in the explicit name overrides the
// declared format; an explicit path and a path embedded in the explicit name
// are contradictory and fail with ErrAmbiguousPath. A declared format of
// null means no output; an absent or empty format falls back to
// DefaultFormat. ForceOverwrite defaults to false.
//
// The raw mapping is the undecoded output block of the sweep file, so that
// an explicit `format: null` can be told apart from an absent key.
func Parse(raw map[string]any, explicitName, explicitPath string) (*Spec, error) {
	spec := &Spec{}

	name, _ := raw["name"].(string)
	path, _ := raw["path"].(string)
	spec.Name = name
	spec.Path = path
	if force, ok := raw["force_overwrite"].(bool); ok {
		spec.ForceOverwrite = force
	}

	format := ""
	noOutput := false
	if v, declared := raw["format"]; declared {
		if v == nil {
			noOutput = true
		} else if s, ok := v.(string); ok {
			format = s
		} else {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, v)
		}
	}

	if explicitName != "" {
		dir, base := filepath.Split(explicitName)
		if dir != "" && explicitPath != "" {
			return nil, fmt.Errorf("%w: path %q and name %q", ErrAmbiguousPath, explicitPath, explicitName)
		}
		if dir != "" {
			spec.Path = filepath.Clean(dir)
		}
		ext := filepath.Ext(base)
		if Formats[strings.TrimPrefix(ext, ".")] {
			format = ext
			noOutput = false
		}
		spec.Name = strings.TrimSuffix(base, ext)
	}

	if explicitPath != "" {
		spec.Path = explicitPath
	}

	if noOutput {
		return spec, nil
	}

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = DefaultFormat
	}
	if !Formats[format] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	spec.Format = format

	if spec.Name == "" {
		return nil, errors.New("output requested but no name given")
	}
	spec.FileName = spec.Name + "." + spec.Format
	return spec, nil
}

// FormatOf infers the container format from a file name's extension.
func FormatOf(file string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if !Formats[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}
