// Package diagfmt renders diagnostic bags for people and for tools.
package diagfmt

import (
	"fmt"
	"strings"

	"rusttypes/internal/observ"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses the path as it was given.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) mode() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return ""
	}
}

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
}

// StructuredOpts configures JSON and YAML output.
type StructuredOpts struct {
	IncludePositions bool
	PathMode         PathMode
	Max              int // 0 keeps everything
	IncludeNotes     bool
	// Timings is embedded in the document when non-nil.
	Timings *observ.Report
}

// Format selects a renderer.
type Format uint8

const (
	FormatShort Format = iota
	FormatPretty
	FormatJSON
	FormatYAML
)

// ParseFormat accepts short|pretty|json|yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "short":
		return FormatShort, nil
	case "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatShort, fmt.Errorf("unknown diagnostic format %q (expected short|pretty|json|yaml)", s)
}
