package types

import "fmt"

// EnumInfo carries the discriminant layout and the value-to-variant map of a
// tagged enum. Default is -1 when no default variant was recorded.
type EnumInfo struct {
	DiscrOffset   uint32
	DiscrByteSize uint32
	Discriminants map[uint64]int
	Default       int
}

func (r *Registry) enumInfo(id TypeID) (*AggregateInfo, error) {
	info, kind, err := r.aggregate(id)
	if err != nil {
		if kind != KindInvalid {
			return nil, fmt.Errorf("%w: %q", ErrNotEnum, r.Name(id))
		}
		return nil, err
	}
	if kind != KindEnum || info.Enum == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotEnum, r.Name(id))
	}
	return info, nil
}

// RecordDiscriminant attributes value, or the default role, to the most
// recently appended variant. A later record for the same value wins.
func (r *Registry) RecordDiscriminant(id TypeID, isDefault bool, value uint64) error {
	info, err := r.enumInfo(id)
	if err != nil {
		return err
	}
	if info.State == StateSealed {
		return fmt.Errorf("%w: enum %q", ErrSealed, r.Name(id))
	}
	if len(info.Fields) == 0 {
		return fmt.Errorf("%w: enum %q", ErrNoVariant, r.Name(id))
	}
	last := len(info.Fields) - 1
	if isDefault {
		info.Enum.Default = last
	} else {
		info.Enum.Discriminants[value] = last
	}
	return nil
}

// ResolveEnumVariant maps a runtime discriminant to the variant type. A miss
// falls back to the default variant; with neither, ok is false.
func (r *Registry) ResolveEnumVariant(id TypeID, value uint64) (variant TypeID, ok bool, err error) {
	info, err := r.enumInfo(id)
	if err != nil {
		return NoTypeID, false, err
	}
	if info.State != StateSealed {
		return NoTypeID, false, fmt.Errorf("%w: %q", ErrNotSealed, r.Name(id))
	}
	idx, hit := info.Enum.Discriminants[value]
	if !hit {
		idx = info.Enum.Default
	}
	if idx < 0 || idx >= len(info.Fields) {
		return NoTypeID, false, nil
	}
	return info.Fields[idx].Type, true, nil
}

// FindEnumVariant is ResolveEnumVariant without the error detail.
func (r *Registry) FindEnumVariant(id TypeID, value uint64) (TypeID, bool) {
	variant, ok, err := r.ResolveEnumVariant(id, value)
	if err != nil {
		return NoTypeID, false
	}
	return variant, ok
}

// VariantIndex reports the field index a discriminant selects.
func (r *Registry) VariantIndex(id TypeID, value uint64) (int, bool) {
	info, err := r.enumInfo(id)
	if err != nil || info.State != StateSealed {
		return -1, false
	}
	if idx, hit := info.Enum.Discriminants[value]; hit {
		return idx, true
	}
	if info.Enum.Default >= 0 && info.Enum.Default < len(info.Fields) {
		return info.Enum.Default, true
	}
	return -1, false
}

// DiscriminantLocation returns the byte offset and byte size of an enum's tag.
func (r *Registry) DiscriminantLocation(id TypeID) (offset, byteSize uint32, ok bool) {
	info, err := r.enumInfo(id)
	if err != nil {
		return 0, 0, false
	}
	return info.Enum.DiscrOffset, info.Enum.DiscrByteSize, true
}

// DefaultVariant returns the field index of the default variant, -1 when none.
func (r *Registry) DefaultVariant(id TypeID) int {
	info, err := r.enumInfo(id)
	if err != nil {
		return -1
	}
	return info.Enum.Default
}

// HasDiscriminant reports the flag of an aggregate. Enums themselves always
// carry a tag once they hold more than one variant.
func (r *Registry) HasDiscriminant(id TypeID) bool {
	info, kind, err := r.aggregate(id)
	if err != nil {
		return false
	}
	if kind == KindEnum {
		return len(info.Fields) > 1
	}
	return info.HasDiscriminant
}
