package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet keeps every fixture document a run has read so diagnostics can be
// resolved back to lines.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores already-normalized content and returns a fresh FileID, even
// when path was added before.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	norm := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    norm,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[norm] = id
	return id
}

// Load reads path, strips a UTF-8 BOM and folds CRLF before calling Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content flagged FileVirtual.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	return fs.Add(name, content, FileVirtual)
}

// Len reports how many files were added.
func (fs *FileSet) Len() int { return len(fs.files) }

// Get returns the file for id; it panics on an unknown id.
func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

// GetLatest returns the newest id recorded for path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineSpan returns the span covering 1-based line n without its newline.
// Lines past the end collapse to an empty span at EOF.
func (f *File) LineSpan(n uint32) Span {
	size := uint32(len(f.Content)) // #nosec G115 -- checked by Add
	if n == 0 {
		n = 1
	}
	var start uint32
	if n > 1 {
		if int(n-2) >= len(f.LineIdx) {
			return Span{File: f.ID, Start: size, End: size}
		}
		start = f.LineIdx[n-2] + 1
	}
	end := size
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return Span{File: f.ID, Start: start, End: end}
}

// GetLine returns 1-based line n, "" when out of range.
func (f *File) GetLine(n uint32) string {
	sp := f.LineSpan(n)
	return string(f.Content[sp.Start:sp.End])
}

// FormatPath renders the path for output: "absolute", "relative" (to
// baseDir, or the working directory when empty), "basename" or as stored.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}
