package format

import (
	"fmt"
	"strings"

	"rusttypes/internal/types"
)

// maxRenderDepth bounds nesting when rendering values of recursive shapes.
const maxRenderDepth = 16

// Render prints a whole value on one line. Aggregates show their fields,
// enums their active variant, pointers their address:
//
//	Point { x: 1, y: -2 }
//	Option<i32>::Some(7)
//	[1, 2, 3]
func Render(r *types.Registry, id types.TypeID, data []byte, opts ValueOptions) (string, error) {
	var b strings.Builder
	if err := render(&b, r, id, data, opts, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, r *types.Registry, id types.TypeID, data []byte, opts ValueOptions, depth int) error {
	if depth > maxRenderDepth {
		b.WriteString("...")
		return nil
	}
	tt, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrInvalidHandle, id)
	}
	switch tt.Kind {
	case types.KindTypedef:
		return render(b, r, tt.Elem, data, opts, depth)

	case types.KindArray:
		elem, stride, _ := r.ArrayElement(id)
		b.WriteByte('[')
		for i := uint64(0); i < tt.Count; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			sub, err := slice(data, i*stride, stride)
			if err != nil {
				return err
			}
			if err := render(b, r, elem, sub, opts, depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil

	case types.KindEnum:
		v, err := Variant(r, id, data, opts)
		if err != nil {
			return err
		}
		b.WriteString(v.String())
		if !v.Resolved || r.NumFields(v.Type) == 0 {
			return nil
		}
		if v.Offset > uint64(len(data)) {
			return fmt.Errorf("%w: variant %s at %d", ErrShortData, v, v.Offset)
		}
		braced := r.Kind(v.Type) == types.KindStruct || r.Kind(v.Type) == types.KindUnion
		return renderFields(b, r, v.Type, data[v.Offset:], opts, depth, braced)

	case types.KindStruct, types.KindUnion, types.KindTuple:
		if r.IsVoid(id) {
			b.WriteString(types.VoidName)
			return nil
		}
		anonymous := false
		if tk, _ := r.TupleKindOf(id); tt.Kind == types.KindTuple && tk == types.TupleAnonymous {
			anonymous = true
		} else {
			b.WriteString(r.Name(id))
		}
		if anonymous && r.NumFields(id) == 0 {
			b.WriteString("()")
			return nil
		}
		return renderFields(b, r, id, data, opts, depth, !anonymous && tt.Kind != types.KindTuple)

	default:
		s, err := Value(r, id, data, opts)
		if err != nil {
			return err
		}
		b.WriteString(s)
		return nil
	}
}

// renderFields prints "{ a: v, b: w }" when braced, "(v, w)" otherwise.
// Field offsets are relative to data.
func renderFields(b *strings.Builder, r *types.Registry, id types.TypeID, data []byte, opts ValueOptions, depth int, braced bool) error {
	fields := r.Fields(id)
	if braced {
		b.WriteString(" { ")
	} else {
		b.WriteByte('(')
	}
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		size, _ := r.ByteSize(f.Type)
		sub, err := slice(data, f.Offset, size)
		if err != nil {
			return fmt.Errorf("field %q of %q: %w", r.FieldName(f), r.Name(id), err)
		}
		if braced {
			b.WriteString(r.FieldName(f) + ": ")
		}
		if err := render(b, r, f.Type, sub, opts, depth+1); err != nil {
			return err
		}
	}
	if braced {
		if len(fields) == 0 {
			b.WriteString("}")
		} else {
			b.WriteString(" }")
		}
	} else {
		b.WriteByte(')')
	}
	return nil
}

func slice(data []byte, off, size uint64) ([]byte, error) {
	end := off + size
	if end < off || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: need bytes [%d, %d), have %d", ErrShortData, off, end, len(data))
	}
	return data[off:end], nil
}
