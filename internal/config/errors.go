package config

import "errors"

var (
	// ErrObsoleteFormat marks a sweep file missing the ctwrap format marker
	// or the defaults block.
	ErrObsoleteFormat = errors.New("obsolete or invalid sweep file format")

	// ErrEntryPath marks a variation entry that does not resolve to an
	// existing path inside the defaults.
	ErrEntryPath = errors.New("entry path not found in defaults")
)
