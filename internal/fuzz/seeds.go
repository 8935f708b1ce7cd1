package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

var seedRoots = []string{
	filepath.Join("..", "fixture", "testdata"),
	filepath.Join("..", "..", "cmd", "rusttypes", "testdata"),
}

// addFixtureSeeds adds every committed fixture with extension ext, plus a few
// hand-written edge cases.
func addFixtureSeeds(f *testing.F, ext string) {
	for _, root := range seedRoots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		// walk errors only cost seeds
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || filepath.Ext(path) != ext {
				return nil
			}
			// #nosec G304 -- path comes from repository testdata walk
			src, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f.Add(clampSeed(src))
			return nil
		})
	}
	for _, s := range handSeeds[ext] {
		f.Add([]byte(s))
	}
}

var handSeeds = map[string][]string{
	".toml": {
		"",
		"pointer_size = 3\n",
		"[[types]]\nname = \"T\"\nkind = \"enum\"\nsize = 1\ndiscr_size = 9\n",
		"[[types]]\nname = \"S\"\nkind = \"struct\"\nsize = 4\n[[types.fields]]\nname = \"s\"\ntype = \"S\"\n",
	},
	".yaml": {
		"",
		"types: [{name: A, kind: typedef, target: A}]\n",
		"types:\n  - name: E\n    kind: clike-enum\n    target: E\n",
	},
}

func clampSeed(b []byte) []byte {
	if len(b) > maxSeedBytes {
		b = b[:maxSeedBytes]
	}
	return append([]byte(nil), b...)
}
