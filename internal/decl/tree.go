package decl

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"rusttypes/internal/source"
)

// Separator joins the components of a qualified name.
const Separator = "::"

// ErrInvalidContext is returned when a parent context does not exist.
var ErrInvalidContext = errors.New("invalid declaration context")

type context struct {
	Name   source.StringID
	Parent ContextID
	Items  map[source.StringID]Item

	qualified source.StringID
	memo      bool
}

type declaration struct {
	Name    source.StringID
	Mangled source.StringID
	Parent  ContextID

	qualified source.StringID
	memo      bool
}

// Tree is the declaration-context tree of one translation unit.
//
// Population is not safe for concurrent use; callers serialize it. Items
// replaced under an existing name stay allocated but are no longer reachable
// through lookups.
type Tree struct {
	strings  *source.Interner
	contexts []context
	decls    []declaration
	root     ContextID
}

// NewTree creates a tree holding only the unnamed translation-unit context.
// If strings is nil, a fresh interner is allocated.
func NewTree(strings *source.Interner) *Tree {
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Tree{
		strings:  strings,
		contexts: make([]context, 1, 16), // index 0 reserved for NoContextID
		decls:    make([]declaration, 1, 16),
	}
	t.root = t.newContext(source.NoStringID, NoContextID)
	return t
}

// Strings exposes the name interner.
func (t *Tree) Strings() *source.Interner { return t.strings }

// Root returns the translation-unit context.
func (t *Tree) Root() ContextID { return t.root }

// Len reports the number of contexts and declarations, excluding sentinels.
func (t *Tree) Len() (contexts, decls int) { return len(t.contexts) - 1, len(t.decls) - 1 }

func (t *Tree) newContext(name source.StringID, parent ContextID) ContextID {
	value, err := safecast.Conv[uint32](len(t.contexts))
	if err != nil {
		panic(fmt.Errorf("decl context arena overflow: %w", err))
	}
	t.contexts = append(t.contexts, context{
		Name:   name,
		Parent: parent,
		Items:  make(map[source.StringID]Item),
	})
	return ContextID(value)
}

func (t *Tree) newDecl(name, mangled source.StringID, parent ContextID) DeclID {
	value, err := safecast.Conv[uint32](len(t.decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	t.decls = append(t.decls, declaration{Name: name, Mangled: mangled, Parent: parent})
	return DeclID(value)
}

func (t *Tree) ctx(id ContextID) *context {
	if !id.IsValid() || int(id) >= len(t.contexts) {
		return nil
	}
	return &t.contexts[id]
}

func (t *Tree) decl(id DeclID) *declaration {
	if !id.IsValid() || int(id) >= len(t.decls) {
		return nil
	}
	return &t.decls[id]
}

func (t *Tree) str(id source.StringID) string {
	s, _ := t.strings.Lookup(id)
	return s
}

// Name returns the unqualified name of a context.
func (t *Tree) Name(id ContextID) string {
	c := t.ctx(id)
	if c == nil {
		return ""
	}
	return t.str(c.Name)
}

// Parent returns the enclosing context; the root has none.
func (t *Tree) Parent(id ContextID) (ContextID, bool) {
	c := t.ctx(id)
	if c == nil || !c.Parent.IsValid() {
		return NoContextID, false
	}
	return c.Parent, true
}

// Rename changes the name of a context and rekeys it in its parent. Qualified
// names already computed for it or its descendants keep their old value.
func (t *Tree) Rename(id ContextID, name string) error {
	c := t.ctx(id)
	if c == nil {
		return fmt.Errorf("%w: %d", ErrInvalidContext, id)
	}
	newName := t.strings.Intern(name)
	if p := t.ctx(c.Parent); p != nil {
		if it, ok := p.Items[c.Name]; ok && it.Kind == ItemNamespace && it.Context == id {
			delete(p.Items, c.Name)
		}
		p.Items[newName] = Item{Kind: ItemNamespace, Context: id}
	}
	c.Name = newName
	return nil
}

// QualifiedName joins the names from the outermost named context down to id
// with "::". The result is computed once and then served from a memo.
func (t *Tree) QualifiedName(id ContextID) string {
	c := t.ctx(id)
	if c == nil {
		return ""
	}
	if !c.Parent.IsValid() {
		return t.str(c.Name)
	}
	if !c.memo {
		c.qualified = t.strings.Intern(t.join(t.QualifiedName(c.Parent), t.str(c.Name)))
		c.memo = true
	}
	return t.str(c.qualified)
}

// DeclQualifiedName is QualifiedName for a leaf declaration.
func (t *Tree) DeclQualifiedName(id DeclID) string {
	d := t.decl(id)
	if d == nil {
		return ""
	}
	if !d.memo {
		d.qualified = t.strings.Intern(t.join(t.QualifiedName(d.Parent), t.str(d.Name)))
		d.memo = true
	}
	return t.str(d.qualified)
}

func (t *Tree) join(base, name string) string {
	if base == "" {
		return name
	}
	return base + Separator + name
}

// FindByName looks name up in id only; descendants are not searched.
func (t *Tree) FindByName(id ContextID, name string) (Item, bool) {
	c := t.ctx(id)
	if c == nil {
		return Item{}, false
	}
	key, ok := t.strings.Find(name)
	if !ok {
		return Item{}, false
	}
	it, ok := c.Items[key]
	return it, ok
}

// FindDeclByName is FindByName restricted to leaf declarations.
func (t *Tree) FindDeclByName(id ContextID, name string) (DeclID, bool) {
	it, ok := t.FindByName(id, name)
	if !ok || it.Kind != ItemDecl {
		return NoDeclID, false
	}
	return it.Decl, true
}

// GetOrCreateNamespace returns the namespace called name under parent,
// creating it when absent. A leaf declaration of the same name is replaced.
func (t *Tree) GetOrCreateNamespace(parent ContextID, name string) (ContextID, error) {
	p := t.ctx(parent)
	if p == nil {
		return NoContextID, fmt.Errorf("%w: %d", ErrInvalidContext, parent)
	}
	key := t.strings.Intern(name)
	if it, ok := p.Items[key]; ok && it.Kind == ItemNamespace {
		return it.Context, nil
	}
	id := t.newContext(key, parent)
	t.contexts[parent].Items[key] = Item{Kind: ItemNamespace, Context: id}
	return id, nil
}

// GetOrCreateDecl returns the declaration called name under parent, creating
// it with the given mangled name when absent. A namespace of the same name is
// replaced.
func (t *Tree) GetOrCreateDecl(parent ContextID, name, mangled string) (DeclID, error) {
	p := t.ctx(parent)
	if p == nil {
		return NoDeclID, fmt.Errorf("%w: %d", ErrInvalidContext, parent)
	}
	key := t.strings.Intern(name)
	if it, ok := p.Items[key]; ok && it.Kind == ItemDecl {
		return it.Decl, nil
	}
	id := t.newDecl(key, t.strings.Intern(mangled), parent)
	p.Items[key] = Item{Kind: ItemDecl, Decl: id}
	return id, nil
}

// DeclName returns the unqualified name of a declaration.
func (t *Tree) DeclName(id DeclID) string {
	d := t.decl(id)
	if d == nil {
		return ""
	}
	return t.str(d.Name)
}

// DeclMangledName returns the linkage name recorded for a declaration.
func (t *Tree) DeclMangledName(id DeclID) string {
	d := t.decl(id)
	if d == nil {
		return ""
	}
	return t.str(d.Mangled)
}

// DeclContext returns the context that owns a declaration.
func (t *Tree) DeclContext(id DeclID) ContextID {
	d := t.decl(id)
	if d == nil {
		return NoContextID
	}
	return d.Parent
}

// IsContainedInLookup reports whether a lookup in other covers ctx. Contexts
// are not transparent, so only identity matches.
func (t *Tree) IsContainedInLookup(ctx, other ContextID) bool {
	return ctx.IsValid() && ctx == other
}

// Children lists the items of a context ordered by name.
func (t *Tree) Children(id ContextID) []Item {
	c := t.ctx(id)
	if c == nil || len(c.Items) == 0 {
		return nil
	}
	keys := make([]source.StringID, 0, len(c.Items))
	for k := range c.Items {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b source.StringID) int {
		return strings.Compare(t.str(a), t.str(b))
	})
	out := make([]Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Items[k])
	}
	return out
}

// Resolve walks a "::"-separated path from the root. Every component but the
// last must name a namespace.
func (t *Tree) Resolve(path string) (Item, bool) {
	path = strings.TrimPrefix(path, Separator)
	if path == "" {
		return Item{Kind: ItemNamespace, Context: t.root}, true
	}
	parts := strings.Split(path, Separator)
	cur := t.root
	for i, part := range parts {
		it, ok := t.FindByName(cur, part)
		if !ok {
			return Item{}, false
		}
		if i == len(parts)-1 {
			return it, true
		}
		if it.Kind != ItemNamespace {
			return Item{}, false
		}
		cur = it.Context
	}
	return Item{}, false
}
