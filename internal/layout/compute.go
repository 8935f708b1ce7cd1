package layout

import (
	"math/bits"

	"rusttypes/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	reg := e.Types
	tt, ok := reg.Lookup(id)
	if !ok {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
	}

	switch tt.Kind {
	case types.KindBool, types.KindIntegral, types.KindFloat, types.KindFunction:
		return TypeLayout{Size: tt.Size}, nil

	case types.KindPointer:
		// pointers break value containment; the pointee is not visited
		if e.Target.PtrSize != 0 && tt.Size != e.Target.PtrSize {
			return TypeLayout{Size: tt.Size}, &LayoutError{
				Kind: LayoutErrPointerSize,
				Type: id,
				Name: reg.Name(id),
				End:  tt.Size,
				Size: e.Target.PtrSize,
			}
		}
		return TypeLayout{Size: tt.Size}, nil

	case types.KindArray:
		elem, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{}, err
		}
		hi, size := bits.Mul64(elem.Size, tt.Count)
		if hi != 0 {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: id, Name: reg.Name(id)}
		}
		return TypeLayout{Size: size}, nil

	case types.KindCLikeEnum:
		under, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{}, err
		}
		return TypeLayout{Size: under.Size}, nil

	case types.KindTuple, types.KindStruct, types.KindUnion, types.KindEnum:
		return e.aggregateLayout(id, tt, state)

	case types.KindTypedef:
		return e.layoutOf(tt.Elem, state)

	default:
		return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id, Name: reg.Name(id)}
	}
}

func (e *LayoutEngine) aggregateLayout(id types.TypeID, tt types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	reg := e.Types
	fields := reg.Fields(id)
	out := TypeLayout{
		Size:         tt.Size,
		FieldOffsets: make([]uint64, len(fields)),
		FieldSizes:   make([]uint64, len(fields)),
	}
	for i, f := range fields {
		fl, err := e.layoutOf(f.Type, state)
		if err != nil {
			return out, err
		}
		out.FieldOffsets[i] = f.Offset
		out.FieldSizes[i] = fl.Size
		end, carry := bits.Add64(f.Offset, fl.Size, 0)
		if carry != 0 || end > tt.Size {
			name := reg.FieldName(f)
			if name == "" {
				name = reg.Name(f.Type)
			}
			if carry != 0 {
				return out, &LayoutError{Kind: LayoutErrSizeOverflow, Type: id, Name: reg.Name(id), Field: name}
			}
			return out, &LayoutError{
				Kind:  LayoutErrFieldOverflow,
				Type:  id,
				Name:  reg.Name(id),
				Field: name,
				End:   end,
				Size:  tt.Size,
			}
		}
	}
	if tt.Kind == types.KindEnum && len(fields) > 1 {
		off, size, _ := reg.DiscriminantLocation(id)
		out.DiscrOffset, out.DiscrSize = uint64(off), uint64(size)
		if end := out.DiscrOffset + out.DiscrSize; end > tt.Size {
			return out, &LayoutError{
				Kind: LayoutErrDiscriminantOverflow,
				Type: id,
				Name: reg.Name(id),
				End:  end,
				Size: tt.Size,
			}
		}
	}
	return out, nil
}
