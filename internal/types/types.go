package types

import (
	"fmt"

	"rusttypes/internal/source"
)

// TypeID is a stable handle to a type owned by a Registry.
//
// The high 32 bits carry the owning registry's scope stamp and the low 32 bits
// the arena slot, so a handle from one registry is never valid in another.
type TypeID uint64

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

func makeTypeID(scope, index uint32) TypeID {
	return TypeID(uint64(scope)<<32 | uint64(index))
}

func (id TypeID) scope() uint32 { return uint32(id >> 32) }
func (id TypeID) index() uint32 { return uint32(id) }

// IsValid reports whether id is not NoTypeID. It does not check ownership.
func (id TypeID) IsValid() bool { return id != NoTypeID }

func (id TypeID) String() string {
	if id == NoTypeID {
		return "type#none"
	}
	return fmt.Sprintf("type#%d.%d", id.scope(), id.index())
}

// Kind enumerates the closed set of Rust type shapes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindIntegral
	KindFloat
	KindPointer
	KindArray
	KindTuple
	KindStruct
	KindUnion
	KindEnum
	KindCLikeEnum
	KindFunction
	KindTypedef
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindIntegral:
		return "integral"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindCLikeEnum:
		return "clike-enum"
	case KindFunction:
		return "function"
	case KindTypedef:
		return "typedef"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindBool; k <= KindTypedef; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// IsAggregate reports whether values of the kind are field containers.
func (k Kind) IsAggregate() bool {
	switch k {
	case KindTuple, KindStruct, KindUnion, KindEnum:
		return true
	default:
		return false
	}
}

// TupleKind separates anonymous tuples from tuple structs.
type TupleKind uint8

const (
	TupleAnonymous TupleKind = iota
	TupleNamed
)

// ClassifyTuple applies the debug-info naming convention: rustc names anonymous
// tuples "(T, U)" and leaves nothing else to tell them from tuple structs.
func ClassifyTuple(name string) TupleKind {
	if name == "" || name[0] == '(' {
		return TupleAnonymous
	}
	return TupleNamed
}

// Type is the compact descriptor stored in the registry arena.
type Type struct {
	Kind Kind
	Name source.StringID
	Size uint64 // authoritative for leaves, pointers, functions and aggregates
	// Elem is the pointee, array element, typedef target or C-like enum
	// underlying integer.
	Elem    TypeID
	Count   uint64 // array length
	Signed  bool
	Char    bool
	Payload uint32 // side-table slot for aggregates, C-like enums and functions
}

// Field is a member of an aggregate. Enum variants are fields too.
type Field struct {
	Name   source.StringID
	Type   TypeID
	Offset uint64
}

// Discriminant attributes a tag value (or the default role) to a variant.
type Discriminant struct {
	Default bool
	Value   uint64
}
