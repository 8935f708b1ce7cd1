package cabi

import (
	"errors"
	"fmt"

	"rusttypes/internal/types"
)

// ErrIncompleteType matches every *IncompleteTypeError.
var ErrIncompleteType = errors.New("cannot emit declaration for incomplete type")

// IncompleteTypeError reports a handle the emitter could not resolve while
// walking a type graph.
type IncompleteTypeError struct {
	Type types.TypeID
	// Path locates the reference, e.g. "Point._x" or "*Node".
	Path string
}

func (e *IncompleteTypeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrIncompleteType, e.Type)
	}
	return fmt.Sprintf("%v: %s (at %s)", ErrIncompleteType, e.Type, e.Path)
}

func (e *IncompleteTypeError) Is(target error) bool { return target == ErrIncompleteType }
