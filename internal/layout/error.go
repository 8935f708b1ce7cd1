package layout

import (
	"fmt"
	"strings"

	"rusttypes/internal/types"
)

// LayoutErrorKind enumerates the layout problems a registry can carry.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a type that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrFieldOverflow indicates a field extending past its aggregate.
	LayoutErrFieldOverflow
	// LayoutErrDiscriminantOverflow indicates an enum tag outside the enum.
	LayoutErrDiscriminantOverflow
	// LayoutErrIncomplete indicates a reference to a type the registry does not own.
	LayoutErrIncomplete
	// LayoutErrPointerSize indicates a pointer whose size disagrees with the target.
	LayoutErrPointerSize
	// LayoutErrSizeOverflow indicates a size or offset beyond 64 bits.
	LayoutErrSizeOverflow
)

func (k LayoutErrorKind) String() string {
	switch k {
	case LayoutErrRecursiveUnsized:
		return "recursive-unsized"
	case LayoutErrFieldOverflow:
		return "field-overflow"
	case LayoutErrDiscriminantOverflow:
		return "discriminant-overflow"
	case LayoutErrIncomplete:
		return "incomplete"
	case LayoutErrPointerSize:
		return "pointer-size"
	case LayoutErrSizeOverflow:
		return "size-overflow"
	default:
		return fmt.Sprintf("LayoutErrorKind(%d)", k)
	}
}

// LayoutError represents an inconsistency found while checking a layout.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Name  string
	Cycle []string // for LayoutErrRecursiveUnsized
	Field string   // for LayoutErrFieldOverflow and LayoutErrSizeOverflow
	End   uint64   // first byte past the offending member
	Size  uint64   // size of the containing type, or pointer size
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.Name)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrFieldOverflow:
		return fmt.Sprintf("field %q of %s ends at byte %d, past its size %d", e.Field, e.Name, e.End, e.Size)
	case LayoutErrDiscriminantOverflow:
		return fmt.Sprintf("discriminant of %s ends at byte %d, past its size %d", e.Name, e.End, e.Size)
	case LayoutErrIncomplete:
		return fmt.Sprintf("%s refers to an incomplete type", e.Name)
	case LayoutErrPointerSize:
		return fmt.Sprintf("pointer %s has size %d, target pointers are %d bytes", e.Name, e.End, e.Size)
	case LayoutErrSizeOverflow:
		if e.Field != "" {
			return fmt.Sprintf("field %q of %s does not fit in 64 bits", e.Field, e.Name)
		}
		return fmt.Sprintf("size of %s does not fit in 64 bits", e.Name)
	default:
		return fmt.Sprintf("layout error kind=%d %s", e.Kind, e.Name)
	}
}
