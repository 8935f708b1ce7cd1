package fixture

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// IsSourceFile reports whether path names Rust source, the language whose
// debug info the type model describes.
func IsSourceFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".rs")
}

// SyntaxOf picks the fixture syntax from the file extension.
func SyntaxOf(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return SyntaxTOML
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxUnknown
	}
}

// IsFixtureFile reports whether path has a fixture extension.
func IsFixtureFile(path string) bool {
	return SyntaxOf(path) != SyntaxUnknown
}

// Discover expands directories into the fixture files below them, sorted.
// Plain file arguments are kept as given, missing ones included, so the
// loader reports them.
func Discover(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == p && errors.Is(err, fs.ErrNotExist) {
					out = append(out, p)
					return nil
				}
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if path == p || IsFixtureFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
