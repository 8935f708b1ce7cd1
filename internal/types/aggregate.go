package types

import (
	"fmt"
	"slices"
	"strconv"
)

// AggregateState tracks the two-phase life of an aggregate.
type AggregateState uint8

const (
	StateBuilding AggregateState = iota
	StateSealed
)

func (s AggregateState) String() string {
	if s == StateSealed {
		return "sealed"
	}
	return "building"
}

// AggregateInfo stores the members of a tuple, struct, union or enum.
type AggregateInfo struct {
	Fields          []Field
	TemplateArgs    []TypeID
	HasDiscriminant bool
	TupleKind       TupleKind
	State           AggregateState
	Enum            *EnumInfo // nil unless the owner is KindEnum
}

func (r *Registry) aggregate(id TypeID) (*AggregateInfo, Kind, error) {
	tt, ok := r.Lookup(id)
	if !ok {
		return nil, KindInvalid, fmt.Errorf("%w: %s", ErrInvalidHandle, id)
	}
	if !tt.Kind.IsAggregate() || int(tt.Payload) >= len(r.aggregates) || tt.Payload == 0 {
		return nil, tt.Kind, fmt.Errorf("%w: %s is %s", ErrNotAggregate, id, tt.Kind)
	}
	return &r.aggregates[tt.Payload], tt.Kind, nil
}

func (r *Registry) building(id TypeID) (*AggregateInfo, Kind, error) {
	info, kind, err := r.aggregate(id)
	if err != nil {
		return nil, kind, err
	}
	if info.State == StateSealed {
		return nil, kind, fmt.Errorf("%w: %s %q", ErrSealed, kind, r.Name(id))
	}
	return info, kind, nil
}

// AggregateInfoOf returns a read-only view of the aggregate side table entry.
func (r *Registry) AggregateInfoOf(id TypeID) (*AggregateInfo, bool) {
	info, _, err := r.aggregate(id)
	if err != nil {
		return nil, false
	}
	return info, true
}

// AddField appends a field to an aggregate under construction. An empty name
// leaves the field unnamed.
func (r *Registry) AddField(id TypeID, name string, fieldType TypeID, offset uint64) error {
	info, _, err := r.building(id)
	if err != nil {
		return err
	}
	if !r.Owns(fieldType) {
		return fmt.Errorf("%w: field %q of %q", ErrInvalidHandle, name, r.Name(id))
	}
	info.Fields = append(info.Fields, Field{Name: r.strings.Intern(name), Type: fieldType, Offset: offset})
	return nil
}

// AddEnumVariant appends a variant field to an enum and records its discriminant.
func (r *Registry) AddEnumVariant(id TypeID, name string, variant TypeID, offset uint64, d Discriminant) error {
	if r.Kind(id) != KindEnum {
		if !r.Owns(id) {
			return fmt.Errorf("%w: %s", ErrInvalidHandle, id)
		}
		return fmt.Errorf("%w: %q", ErrNotEnum, r.Name(id))
	}
	if err := r.AddField(id, name, variant, offset); err != nil {
		return err
	}
	return r.RecordDiscriminant(id, d.Default, d.Value)
}

// AddTemplateArgument records a generic argument of an aggregate.
func (r *Registry) AddTemplateArgument(id TypeID, arg TypeID) error {
	info, _, err := r.building(id)
	if err != nil {
		return err
	}
	if !r.Owns(arg) {
		return fmt.Errorf("%w: template argument of %q", ErrInvalidHandle, r.Name(id))
	}
	info.TemplateArgs = append(info.TemplateArgs, arg)
	return nil
}

// DropDiscriminant removes the duplicated leading discriminant field of a
// variant layout. Tuple fields are renamed positionally afterwards. Calling it
// again is a no-op apart from the renaming, which yields the same names.
func (r *Registry) DropDiscriminant(id TypeID) error {
	info, kind, err := r.aggregate(id)
	if err != nil {
		return err
	}
	if info.HasDiscriminant {
		info.HasDiscriminant = false
		if len(info.Fields) > 0 {
			info.Fields = slices.Delete(info.Fields, 0, 1)
		}
	}
	if kind == KindTuple {
		for i := range info.Fields {
			info.Fields[i].Name = r.strings.Intern(strconv.Itoa(i))
		}
	}
	return nil
}

// FinishAggregateInitialization seals an aggregate. For enums it also drops
// the discriminant carried by every aggregate variant type.
func (r *Registry) FinishAggregateInitialization(id TypeID) error {
	info, kind, err := r.building(id)
	if err != nil {
		return err
	}
	if kind == KindEnum {
		for _, f := range info.Fields {
			if !r.Kind(f.Type).IsAggregate() {
				continue
			}
			if err := r.DropDiscriminant(f.Type); err != nil {
				return fmt.Errorf("sealing %q: %w", r.Name(id), err)
			}
		}
	}
	info.State = StateSealed
	return nil
}

// IsSealed reports whether an aggregate has been finished.
func (r *Registry) IsSealed(id TypeID) bool {
	info, _, err := r.aggregate(id)
	return err == nil && info.State == StateSealed
}
