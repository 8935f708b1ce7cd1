package fixture

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"rusttypes/internal/diag"
	"rusttypes/internal/source"
	"rusttypes/internal/trace"
	"rusttypes/internal/types"
)

// Cache stores snapshots of fixtures that built without any diagnostic. A
// snapshot carries no diagnostics, so a build that warned is never cached.
type Cache interface {
	Get(key [32]byte) (*Snapshot, bool)
	Put(key [32]byte, s *Snapshot) error
}

// Loader reads fixture documents into registries. One Loader may serve
// several goroutines; each fixture gets its own Registry.
type Loader struct {
	Files    *source.FileSet
	Reporter diag.Reporter
	// PointerSize applies when a document leaves pointer_size unset.
	PointerSize uint64
	Cache       Cache

	mu sync.Mutex // guards Files
}

// NewLoader creates a Loader over files reporting to rep.
func NewLoader(files *source.FileSet, rep diag.Reporter) *Loader {
	if files == nil {
		files = source.NewFileSet()
	}
	return &Loader{Files: files, Reporter: rep}
}

// LoadFile reads and builds one fixture. On build errors the partial fixture
// is returned together with an error wrapping ErrInvalidFixture; the details
// went to the Reporter.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Fixture, error) {
	sp, ctx := trace.BeginCtx(ctx, trace.ScopeFile, "file:"+path)
	defer sp.End("")

	if IsSourceFile(path) {
		diag.ReportAbout(l.Reporter, diag.SevError, diag.FixUnsupportedFile, path,
			"Rust source is not a fixture; describe its types in .toml or .yaml").Emit()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSyntax, path)
	}
	syntax := SyntaxOf(path)
	if syntax == SyntaxUnknown {
		diag.ReportAbout(l.Reporter, diag.SevError, diag.FixUnsupportedFile, path, "unknown fixture extension").Emit()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSyntax, path)
	}

	l.mu.Lock()
	id, err := l.Files.Load(path)
	var file source.File
	if err == nil {
		file = *l.Files.Get(id)
	}
	l.mu.Unlock()
	if err != nil {
		diag.ReportAbout(l.Reporter, diag.SevError, diag.IOLoadFileError, path, err.Error()).Emit()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return l.build(ctx, &file, syntax)
}

// LoadBytes builds a fixture from in-memory content; name picks the syntax.
func (l *Loader) LoadBytes(ctx context.Context, name string, content []byte) (*Fixture, error) {
	syntax := SyntaxOf(name)
	if syntax == SyntaxUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSyntax, name)
	}
	l.mu.Lock()
	id := l.Files.AddVirtual(name, content)
	file := *l.Files.Get(id)
	l.mu.Unlock()
	return l.build(ctx, &file, syntax)
}

func (l *Loader) pointerSize(doc *Document) uint64 {
	if doc.PointerSize != 0 {
		return doc.PointerSize
	}
	if l.PointerSize != 0 {
		return l.PointerSize
	}
	return types.DefaultPointerByteSize
}

func (l *Loader) cacheKey(file *source.File) [32]byte {
	h := sha256.New()
	h.Write(file.Hash[:])
	h.Write(binary.LittleEndian.AppendUint64(nil, l.PointerSize))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (l *Loader) build(ctx context.Context, file *source.File, syntax Syntax) (*Fixture, error) {
	key := l.cacheKey(file)
	if l.Cache != nil {
		if snap, ok := l.Cache.Get(key); ok {
			f, err := Restore(*snap, file.Path, nil)
			if err == nil {
				f.File = file.ID
				trace.Point(trace.FromContext(ctx), trace.ScopeFile, "cache-hit", file.Path, trace.CurrentSpan(ctx))
				return f, nil
			}
			diag.ReportAbout(l.Reporter, diag.SevWarning, diag.IOCacheError, file.Path, err.Error()).Emit()
		}
	}

	rep := &countingReporter{next: l.Reporter}
	doc, err := Decode(file.Content, syntax)
	if err != nil {
		var perr *ParseError
		sp := source.Span{File: file.ID}
		if errors.As(err, &perr) && perr.Line > 0 {
			sp = file.LineSpan(perr.Line)
		}
		diag.ReportError(rep, diag.FixParse, sp, err.Error()).Emit()
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFixture, file.Path, err)
	}

	reg := types.NewRegistry(types.Options{PointerByteSize: l.pointerSize(doc)})
	f := newFixture(file.Path, reg)
	f.File = file.ID
	b := &builder{
		ctx:   ctx,
		fix:   f,
		reg:   reg,
		doc:   doc,
		file:  file,
		rep:   rep,
		kinds: make(map[string]string, len(doc.Types)),
		specs: make(map[string]*TypeSpec, len(doc.Types)),
	}
	b.run()
	trace.Point(trace.FromContext(ctx), trace.ScopeFile, "built", strconv.Itoa(reg.Len())+" types", trace.CurrentSpan(ctx))

	if rep.errors > 0 {
		return f, fmt.Errorf("%w: %s: %d error(s)", ErrInvalidFixture, file.Path, rep.errors)
	}
	if l.Cache != nil && rep.total == 0 {
		snap := f.Snapshot()
		if err := l.Cache.Put(key, &snap); err != nil {
			diag.ReportAbout(l.Reporter, diag.SevWarning, diag.IOCacheError, file.Path, err.Error()).Emit()
		}
	}
	return f, nil
}
