package fixture

import (
	"fmt"
	"slices"

	"rusttypes/internal/decl"
	"rusttypes/internal/source"
	"rusttypes/internal/types"
)

// Fixture is a populated registry and declaration tree built from one
// document.
type Fixture struct {
	Path     string
	File     source.FileID
	Registry *types.Registry
	Decls    *decl.Tree

	keys       map[string]types.TypeID
	order      []string // key of registry slot i+1, "" when none
	namespaces []string
	decls      []DeclSpec
}

func newFixture(path string, reg *types.Registry) *Fixture {
	return &Fixture{
		Path:     path,
		Registry: reg,
		Decls:    decl.NewTree(reg.Strings()),
		keys:     make(map[string]types.TypeID),
	}
}

func (f *Fixture) bind(key string, id types.TypeID) {
	f.keys[key] = id
	f.order = append(f.order, key)
}

// Type looks a type up by its fixture key.
func (f *Fixture) Type(key string) (types.TypeID, bool) {
	id, ok := f.keys[key]
	return id, ok
}

// MustType panics when key is unknown.
func (f *Fixture) MustType(key string) types.TypeID {
	id, ok := f.keys[key]
	if !ok {
		panic(fmt.Sprintf("fixture %s: %v %q", f.Path, ErrUnknownType, key))
	}
	return id
}

// Keys lists type keys in creation order.
func (f *Fixture) Keys() []string {
	out := make([]string, 0, len(f.order))
	for _, k := range f.order {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// KeyOf is the inverse of Type.
func (f *Fixture) KeyOf(id types.TypeID) (string, bool) {
	for _, k := range f.order {
		if k != "" && f.keys[k] == id {
			return k, true
		}
	}
	return "", false
}

// Snapshot is the plain-data form of a fixture stored by the type cache.
// Keys is aligned with Image.Types.
type Snapshot struct {
	Image      types.Image
	Keys       []string
	Namespaces []string
	Decls      []DeclSpec
}

// Snapshot exports the fixture.
func (f *Fixture) Snapshot() Snapshot {
	return Snapshot{
		Image:      f.Registry.Export(),
		Keys:       slices.Clone(f.order),
		Namespaces: slices.Clone(f.namespaces),
		Decls:      slices.Clone(f.decls),
	}
}

// Restore rebuilds a fixture from a snapshot without re-reading the document.
func Restore(s Snapshot, path string, strings *source.Interner) (*Fixture, error) {
	reg, err := types.Import(s.Image, strings)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}
	ids := reg.All()
	if len(ids) != len(s.Keys) {
		return nil, fmt.Errorf("restore %s: %w: %d keys for %d types", path, types.ErrBadImage, len(s.Keys), len(ids))
	}
	f := newFixture(path, reg)
	for i, id := range ids {
		f.bind(s.Keys[i], id)
	}
	delete(f.keys, "")
	for _, ns := range s.Namespaces {
		if _, err := declareNamespace(f.Decls, ns); err != nil {
			return nil, fmt.Errorf("restore %s: %w", path, err)
		}
	}
	for _, d := range s.Decls {
		if _, err := declarePath(f.Decls, d.Path, d.Mangled); err != nil {
			return nil, fmt.Errorf("restore %s: %w", path, err)
		}
	}
	f.namespaces = slices.Clone(s.Namespaces)
	f.decls = slices.Clone(s.Decls)
	return f, nil
}
