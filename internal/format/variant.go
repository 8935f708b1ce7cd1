package format

import (
	"fmt"

	"rusttypes/internal/diag"
	"rusttypes/internal/types"
)

// VariantValue is the outcome of decoding an enum's active variant.
type VariantValue struct {
	Enum         types.TypeID
	EnumName     string
	Discriminant uint64
	Resolved     bool
	Index        int
	Name         string
	Type         types.TypeID
	Offset       uint64
}

func (v VariantValue) String() string {
	if !v.Resolved {
		return fmt.Sprintf("<unrecognized discriminant %d>", v.Discriminant)
	}
	return v.EnumName + "::" + v.Name
}

// ReadDiscriminant decodes the tag bytes of enum id from data.
func ReadDiscriminant(r *types.Registry, id types.TypeID, data []byte, opts ValueOptions) (uint64, error) {
	off, size, ok := r.DiscriminantLocation(id)
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrNotEnum, r.Name(id))
	}
	if size == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoTagBytes, r.Name(id))
	}
	end := uint64(off) + uint64(size)
	if uint64(len(data)) < end {
		return 0, fmt.Errorf("%w: discriminant of %q ends at %d, have %d", ErrShortData, r.Name(id), end, len(data))
	}
	return asUint64(decodeInt(data[off:end], false, opts.order())), nil
}

// Variant reads the discriminant of enum id from data and picks the active
// variant. A discriminant no variant claims is not an error: the result is
// unresolved and a TypeUnresolvedDiscriminant diagnostic is reported.
func Variant(r *types.Registry, id types.TypeID, data []byte, opts ValueOptions) (VariantValue, error) {
	if r.Kind(id) != types.KindEnum {
		if !r.Owns(id) {
			return VariantValue{}, fmt.Errorf("%w: %s", types.ErrInvalidHandle, id)
		}
		return VariantValue{}, fmt.Errorf("%w: %q", types.ErrNotEnum, r.Name(id))
	}
	if !r.IsSealed(id) {
		return VariantValue{}, fmt.Errorf("%w: %q", types.ErrNotSealed, r.Name(id))
	}
	out := VariantValue{Enum: id, EnumName: r.Name(id), Index: -1}

	if r.NumFields(id) == 1 && !r.HasDiscriminant(id) {
		// univariant enums carry no tag
		out.Index = 0
	} else {
		value, err := ReadDiscriminant(r, id, data, opts)
		if err != nil {
			return VariantValue{}, err
		}
		out.Discriminant = value
		idx, ok := r.VariantIndex(id, value)
		if !ok {
			opts.report(diag.SevWarning, diag.TypeUnresolvedDiscriminant, out.EnumName,
				fmt.Sprintf("discriminant %d matches no variant", value))
			return out, nil
		}
		out.Index = idx
	}

	f, ok := r.FieldAt(id, out.Index)
	if !ok {
		out.Index = -1
		return out, nil
	}
	out.Resolved = true
	out.Name = r.FieldName(f)
	out.Type = f.Type
	out.Offset = f.Offset
	return out, nil
}
