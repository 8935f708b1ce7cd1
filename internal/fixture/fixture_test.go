package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rusttypes/internal/decl"
	"rusttypes/internal/diag"
	"rusttypes/internal/source"
	"rusttypes/internal/types"
)

func load(t *testing.T, path string) (*Fixture, *diag.Bag, *source.FileSet, error) {
	t.Helper()
	files := source.NewFileSet()
	bag := diag.NewBag(0)
	l := NewLoader(files, diag.NewBagReporter(bag))
	f, err := l.LoadFile(context.Background(), path)
	return f, bag, files, err
}

func TestLoadOptionTOML(t *testing.T) {
	f, bag, _, err := load(t, filepath.Join("testdata", "option.toml"))
	require.NoError(t, err)
	require.Zero(t, bag.Len(), "unexpected diagnostics: %v", bag.Items())

	r := f.Registry
	assert.Equal(t, uint64(8), r.PointerByteSize())

	i32 := f.MustType("i32")
	assert.Equal(t, "i32", r.Name(i32))
	isInt, signed := r.IsInteger(i32)
	assert.True(t, isInt)
	assert.True(t, signed)

	point := f.MustType("Point")
	require.Equal(t, 2, r.NumFields(point))
	y, ok := r.FieldAt(point, 1)
	require.True(t, ok)
	assert.Equal(t, "y", r.FieldName(y))
	assert.Equal(t, uint64(4), y.Offset)
	assert.True(t, r.IsSealed(point))

	opt := f.MustType("Option<i32>")
	assert.Equal(t, types.KindEnum, r.Kind(opt))
	arg, ok := r.TemplateArg(opt, 0)
	require.True(t, ok)
	assert.Equal(t, i32, arg)

	some, ok := r.FindEnumVariant(opt, 1)
	require.True(t, ok)
	assert.Equal(t, f.MustType("Option::Some"), some)
	_, ok = r.FindEnumVariant(opt, 7)
	assert.False(t, ok, "no default variant, so 7 must not resolve")

	ref := f.MustType("&Point")
	pointee, ok := r.Pointee(ref)
	require.True(t, ok)
	assert.Equal(t, point, pointee)
	size, ok := r.ByteSize(ref)
	require.True(t, ok)
	assert.Equal(t, uint64(8), size)

	arr := f.MustType("[i32; 3]")
	n, ok := r.ArrayLength(arr)
	require.True(t, ok)
	assert.Equal(t, uint64(3), n)

	key, ok := f.KeyOf(opt)
	require.True(t, ok)
	assert.Equal(t, "Option<i32>", key)
	assert.Equal(t, []string{"i32", "u32", "Point", "Option::None", "Option::Some", "Option<i32>", "&Point", "[i32; 3]"}, f.Keys())
}

func TestLoadDeclarations(t *testing.T) {
	f, _, _, err := load(t, filepath.Join("testdata", "option.toml"))
	require.NoError(t, err)

	item, ok := f.Decls.Resolve("core::option::unwrap")
	require.True(t, ok)
	require.Equal(t, decl.ItemDecl, item.Kind)
	assert.Equal(t, "core::option::unwrap", f.Decls.DeclQualifiedName(item.Decl))
	assert.Equal(t, "_ZN4core6option6unwrap17h0000000000000000E", f.Decls.DeclMangledName(item.Decl))

	ns, ok := f.Decls.Resolve("core::option")
	require.True(t, ok)
	assert.Equal(t, decl.ItemNamespace, ns.Kind)
	assert.Equal(t, "core::option", f.Decls.QualifiedName(ns.Context))
}

func TestLoadOrderingYAML(t *testing.T) {
	f, bag, _, err := load(t, filepath.Join("testdata", "ordering.yaml"))
	require.NoError(t, err)
	require.Zero(t, bag.Len())

	r := f.Registry
	assert.Equal(t, uint64(4), r.PointerByteSize())

	ord := f.MustType("Ordering")
	name, ok := r.CLikeName(ord, ^uint64(0))
	require.True(t, ok, "-1 should wrap to all ones")
	assert.Equal(t, "Less", name)
	name, ok = r.CLikeName(ord, 1)
	require.True(t, ok)
	assert.Equal(t, "Greater", name)

	cmp := f.MustType("Cmp")
	assert.Equal(t, ord, r.Canonical(cmp))

	fn := f.MustType("cmp")
	assert.Equal(t, 2, r.FunctionArgCount(fn))
	ret, ok := r.FunctionReturn(fn)
	require.True(t, ok)
	assert.Equal(t, ord, ret)
	size, ok := r.ByteSize(fn)
	require.True(t, ok)
	assert.Equal(t, uint64(4), size, "functions take the pointer size")

	_, ok = f.Decls.Resolve("core::cmp::Ordering")
	assert.True(t, ok)
}

func TestLoadBrokenReportsWithLines(t *testing.T) {
	f, bag, files, err := load(t, filepath.Join("testdata", "broken.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidFixture)
	require.NotNil(t, f, "a partial fixture is still returned")
	_, ok := f.Type("u8")
	assert.True(t, ok)

	byCode := map[diag.Code][]diag.Diagnostic{}
	for _, d := range bag.Items() {
		byCode[d.Code] = append(byCode[d.Code], d)
	}

	require.Len(t, byCode[diag.FixUnknownKind], 1)
	weird := byCode[diag.FixUnknownKind][0]
	start, _ := files.Resolve(weird.Primary)
	assert.Equal(t, uint32(18), start.Line)
	assert.Equal(t, "Weird", weird.Subject)

	unknown := byCode[diag.FixUnknownType]
	require.Len(t, unknown, 3)
	var cycles int
	for _, d := range unknown {
		if strings.Contains(d.Message, "cycle") {
			cycles++
		}
	}
	assert.Equal(t, 2, cycles)
	var missing bool
	for _, d := range unknown {
		if d.Subject == "Node" {
			missing = true
			start, _ := files.Resolve(d.Primary)
			assert.Equal(t, uint32(5), start.Line)
			assert.Contains(t, d.Message, `"Missing"`)
		}
	}
	assert.True(t, missing)
}

func TestLoadParseError(t *testing.T) {
	files := source.NewFileSet()
	bag := diag.NewBag(0)
	l := NewLoader(files, diag.NewBagReporter(bag))

	_, err := l.LoadBytes(context.Background(), "bad.toml", []byte("pointer_size = 8\n[[types]]\nname = \n"))
	require.ErrorIs(t, err, ErrInvalidFixture)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, uint32(3), perr.Line)

	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Equal(t, diag.FixParse, d.Code)
	start, _ := files.Resolve(d.Primary)
	assert.Equal(t, uint32(3), start.Line)
}

func TestTOMLErrorLineStaysInsideDocument(t *testing.T) {
	content := []byte("pointer_size = 8\n[[types]]\nname = \n")
	newline := toml.ParseError{Message: `expected value but found '\n' instead`, Position: toml.Position{Line: 4}}
	assert.Equal(t, uint32(3), tomlErrorLine(content, newline))

	past := toml.ParseError{Message: "unexpected EOF", Position: toml.Position{Line: 9}}
	assert.Equal(t, uint32(3), tomlErrorLine(content, past))

	first := toml.ParseError{Message: `expected value but found '\n' instead`, Position: toml.Position{Line: 1}}
	assert.Equal(t, uint32(1), tomlErrorLine([]byte("a =\n"), first))

	_, err := Decode([]byte("pointer_size = 8\nname ="), SyntaxTOML)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.LessOrEqual(t, perr.Line, uint32(2))
	assert.NotZero(t, perr.Line)
}

func TestLoadRejectsRustSource(t *testing.T) {
	f, bag, _, err := load(t, "main.rs")
	require.ErrorIs(t, err, ErrUnsupportedSyntax)
	assert.Nil(t, f)
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.FixUnsupportedFile, bag.Items()[0].Code)
	assert.Equal(t, "main.rs", bag.Items()[0].Subject)
}

func TestLoadMissingFile(t *testing.T) {
	_, bag, _, err := load(t, filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.IOLoadFileError, bag.Items()[0].Code)
}

func TestDuplicateDeclarationWarns(t *testing.T) {
	bag := diag.NewBag(0)
	l := NewLoader(nil, diag.NewBagReporter(bag))
	doc := "decls:\n  - path: a::b\n  - path: a::b\n"
	f, err := l.LoadBytes(context.Background(), "dup.yaml", []byte(doc))
	require.NoError(t, err, "warnings do not fail the load")
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.FixDuplicatePath, bag.Items()[0].Code)
	assert.Equal(t, diag.SevWarning, bag.Items()[0].Severity)
	_, decls := f.Decls.Len()
	assert.Equal(t, 1, decls)
}

func TestEnumDiscriminantWidthIsChecked(t *testing.T) {
	files := source.NewFileSet()
	bag := diag.NewBag(0)
	l := NewLoader(files, diag.NewBagReporter(bag))
	doc := `pointer_size = 8

[[types]]
name = "u8"
kind = "integral"
size = 1

[[types]]
name = "E"
kind = "enum"
size = 4
discr_size = 3
variants = [
  { name = "A", type = "u8", discr = 0 },
  { name = "B", type = "u8", discr = 1 },
]
`
	_, err := l.LoadBytes(context.Background(), "discr.toml", []byte(doc))
	require.ErrorIs(t, err, ErrInvalidFixture)
	var bad []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Code == diag.FixBadValue {
			bad = append(bad, d)
		}
	}
	require.Len(t, bad, 1)
	assert.Equal(t, "E", bad[0].Subject)
	assert.Contains(t, bad[0].Message, "discr_size 3")

	for _, size := range []uint32{1, 2, 4, 8} {
		assert.True(t, validDiscrSize(&TypeSpec{DiscrSize: size, Variants: make([]VariantSpec, 2)}), "size %d", size)
	}
	assert.False(t, validDiscrSize(&TypeSpec{DiscrSize: 16, Variants: make([]VariantSpec, 2)}))
	assert.False(t, validDiscrSize(&TypeSpec{Variants: make([]VariantSpec, 2)}))
	assert.True(t, validDiscrSize(&TypeSpec{Variants: make([]VariantSpec, 1)}))
}

func TestSnapshotRestore(t *testing.T) {
	f, _, _, err := load(t, filepath.Join("testdata", "option.toml"))
	require.NoError(t, err)

	snap := f.Snapshot()
	g, err := Restore(snap, f.Path, nil)
	require.NoError(t, err)

	assert.True(t, snap.Image.Equal(g.Registry.Export()))
	assert.Equal(t, f.Keys(), g.Keys())

	opt := g.MustType("Option<i32>")
	variant, ok := g.Registry.FindEnumVariant(opt, 0)
	require.True(t, ok)
	assert.Equal(t, g.MustType("Option::None"), variant)

	_, ok = g.Decls.Resolve("core::option::unwrap")
	assert.True(t, ok)

	_, ok = g.Registry.Lookup(f.MustType("Point"))
	assert.False(t, ok, "handles from the original registry must not resolve")
}

type memCache struct {
	mu   sync.Mutex
	m    map[[32]byte]*Snapshot
	puts int
}

func (c *memCache) Get(key [32]byte) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.m[key]
	return s, ok
}

func (c *memCache) Put(key [32]byte, s *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = s
	c.puts++
	return nil
}

func TestLoaderUsesCache(t *testing.T) {
	cache := &memCache{m: map[[32]byte]*Snapshot{}}
	l := NewLoader(nil, diag.NopReporter{})
	l.Cache = cache

	path := filepath.Join("testdata", "option.toml")
	first, err := l.LoadFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, cache.puts)

	second, err := l.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts, "a hit must not store again")
	assert.Equal(t, first.Keys(), second.Keys())
	assert.True(t, first.Registry.Export().Equal(second.Registry.Export()))

	_, err = l.LoadFile(context.Background(), filepath.Join("testdata", "broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, 1, cache.puts, "failed builds are not cached")
}

func TestCachedLoadKeepsWarnings(t *testing.T) {
	cache := &memCache{m: map[[32]byte]*Snapshot{}}
	doc := []byte("decls:\n  - path: a::b\n  - path: a::b\n")

	for i := range 2 {
		bag := diag.NewBag(0)
		l := NewLoader(nil, diag.NewBagReporter(bag))
		l.Cache = cache
		_, err := l.LoadBytes(context.Background(), "dup.yaml", doc)
		require.NoError(t, err)
		require.Equal(t, 1, bag.Len(), "load %d", i)
		assert.Equal(t, diag.FixDuplicatePath, bag.Items()[0].Code)
	}
	assert.Equal(t, 0, cache.puts, "a build that warned is not cached")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	write := func(rel string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("types = []\n"), 0o600))
	}
	write("b.toml")
	write("a.yaml")
	write("sub/c.yml")
	write("notes.txt")
	write(".hidden/d.toml")

	got, err := Discover([]string{dir, filepath.Join(dir, "a.yaml")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.toml"),
		filepath.Join(dir, "sub", "c.yml"),
	}, got)

	missing := filepath.Join(dir, "gone.toml")
	got, err = Discover([]string{missing})
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, got, "missing arguments are left for the loader to report")

	assert.True(t, IsSourceFile("lib.RS"))
	assert.False(t, IsFixtureFile("lib.rs"))
	assert.Equal(t, SyntaxYAML, SyntaxOf("x.yml"))
}
