package decl

// ContextID identifies a declaration context in the tree arena.
type ContextID uint32

const (
	// NoContextID marks the absence of a context reference.
	NoContextID ContextID = 0
)

// IsValid reports whether the context ID refers to an allocated context.
func (id ContextID) IsValid() bool { return id != NoContextID }

// DeclID identifies a leaf declaration inside the tree arena.
type DeclID uint32

const (
	// NoDeclID marks the absence of a declaration reference.
	NoDeclID DeclID = 0
)

// IsValid reports whether the declaration ID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }

// ItemKind distinguishes the two things a context can hold under a name.
type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemNamespace
	ItemDecl
)

func (k ItemKind) String() string {
	switch k {
	case ItemNamespace:
		return "namespace"
	case ItemDecl:
		return "decl"
	default:
		return "invalid"
	}
}

// Item is an entry of a context's name map.
type Item struct {
	Kind    ItemKind
	Context ContextID // for ItemNamespace
	Decl    DeclID    // for ItemDecl
}
