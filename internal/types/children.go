package types

import (
	"fmt"
	"math"
)

// ChildOptions tune ChildAt the way a value-object tree walks types.
type ChildOptions struct {
	// TransparentPointers makes a pointer to an aggregate expose the
	// pointee's children instead of a single dereference child.
	TransparentPointers bool
	// IgnoreArrayBounds allows indexing past an array's declared length.
	IgnoreArrayBounds bool
	// ParentName names the value being expanded; pointer children are
	// called "*ParentName".
	ParentName string
}

// Child describes one synthetic child of a value.
type Child struct {
	Name            string
	Type            TypeID
	ByteSize        uint64
	ByteOffset      uint64
	IsDerefOfParent bool
}

// NumChildren counts the children a value of type id shows. Array lengths
// saturate at math.MaxInt32.
func (r *Registry) NumChildren(id TypeID) int {
	tt, ok := r.Lookup(id)
	if !ok {
		return 0
	}
	switch tt.Kind {
	case KindPointer:
		// a pointer to a scalar still has its dereference as a child
		if n := r.NumChildren(tt.Elem); n > 0 {
			return n
		}
		return 1
	case KindArray:
		return int(min(tt.Count, math.MaxInt32)) // #nosec G115 -- clamped
	case KindTypedef:
		return r.NumChildren(tt.Elem)
	case KindTuple, KindStruct, KindUnion, KindEnum:
		return r.NumFields(id)
	default:
		return 0
	}
}

// ChildAt returns child idx of a value of type id.
func (r *Registry) ChildAt(id TypeID, idx int, opts ChildOptions) (Child, bool) {
	tt, ok := r.Lookup(id)
	if !ok || idx < 0 {
		return Child{}, false
	}
	switch tt.Kind {
	case KindTuple, KindStruct, KindUnion, KindEnum:
		f, ok := r.FieldAt(id, idx)
		if !ok {
			return Child{}, false
		}
		size, ok := r.ByteSize(f.Type)
		if !ok {
			return Child{}, false
		}
		return Child{Name: r.FieldName(f), Type: f.Type, ByteSize: size, ByteOffset: f.Offset}, true
	case KindPointer:
		pointee := tt.Elem
		if !r.Owns(pointee) || r.IsVoid(pointee) {
			return Child{}, false
		}
		if opts.TransparentPointers && r.IsAggregate(pointee) {
			child, ok := r.ChildAt(pointee, idx, opts)
			child.IsDerefOfParent = false
			return child, ok
		}
		if idx != 0 {
			return Child{}, false
		}
		size, ok := r.ByteSize(pointee)
		if !ok {
			return Child{}, false
		}
		child := Child{Type: pointee, ByteSize: size, IsDerefOfParent: true}
		if opts.ParentName != "" {
			child.Name = "*" + opts.ParentName
		}
		return child, true
	case KindArray:
		if !opts.IgnoreArrayBounds && uint64(idx) >= tt.Count {
			return Child{}, false
		}
		size, ok := r.ByteSize(tt.Elem)
		if !ok {
			return Child{}, false
		}
		return Child{
			Name:       fmt.Sprintf("[%d]", idx),
			Type:       tt.Elem,
			ByteSize:   size,
			ByteOffset: uint64(idx) * size,
		}, true
	case KindTypedef:
		return r.ChildAt(tt.Elem, idx, opts)
	default:
		return Child{}, false
	}
}

// IndexOfChildWithName finds a direct child by name. Pointers forward to
// their pointee and typedefs to their target.
func (r *Registry) IndexOfChildWithName(id TypeID, name string) (int, bool) {
	tt, ok := r.Lookup(id)
	if !ok {
		return -1, false
	}
	switch tt.Kind {
	case KindTuple, KindStruct, KindUnion, KindEnum:
		info, ok := r.AggregateInfoOf(id)
		if !ok {
			return -1, false
		}
		for i, f := range info.Fields {
			if r.FieldName(f) == name {
				return i, true
			}
		}
	case KindPointer, KindTypedef:
		return r.IndexOfChildWithName(tt.Elem, name)
	}
	return -1, false
}
