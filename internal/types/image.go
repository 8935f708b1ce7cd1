package types

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"rusttypes/internal/source"
)

// ErrBadImage is returned when an Image does not describe a well-formed registry.
var ErrBadImage = errors.New("malformed registry image")

// Image is a plain-data snapshot of a Registry. Type references are arena
// indices (0 means none) so that an image is independent of handle scopes.
type Image struct {
	PointerByteSize uint64
	Types           []ImageType
}

// ImageType mirrors one arena slot.
type ImageType struct {
	Kind   Kind
	Name   string
	Size   uint64
	Elem   uint32
	Count  uint64
	Signed bool
	Char   bool

	Fields          []ImageField
	TemplateArgs    []uint32
	HasDiscriminant bool
	TupleKind       TupleKind
	Sealed          bool

	DiscrOffset   uint32
	DiscrByteSize uint32
	Discriminants map[uint64]int
	Default       int

	Values map[uint64]string

	Return uint32
	Args   []uint32
}

// ImageField mirrors Field.
type ImageField struct {
	Name   string
	Type   uint32
	Offset uint64
}

// Export snapshots every type in creation order.
func (r *Registry) Export() Image {
	img := Image{PointerByteSize: r.ptrSize, Types: make([]ImageType, 0, r.Len())}
	for _, id := range r.All() {
		tt := r.types[id.index()]
		it := ImageType{
			Kind:    tt.Kind,
			Name:    r.Name(id),
			Size:    tt.Size,
			Elem:    tt.Elem.index(),
			Count:   tt.Count,
			Signed:  tt.Signed,
			Char:    tt.Char,
			Default: -1,
		}
		switch tt.Kind {
		case KindTuple, KindStruct, KindUnion, KindEnum:
			info := &r.aggregates[tt.Payload]
			for _, f := range info.Fields {
				it.Fields = append(it.Fields, ImageField{Name: r.FieldName(f), Type: f.Type.index(), Offset: f.Offset})
			}
			it.TemplateArgs = indices(info.TemplateArgs)
			it.HasDiscriminant = info.HasDiscriminant
			it.TupleKind = info.TupleKind
			it.Sealed = info.State == StateSealed
			if info.Enum != nil {
				it.DiscrOffset = info.Enum.DiscrOffset
				it.DiscrByteSize = info.Enum.DiscrByteSize
				it.Discriminants = maps.Clone(info.Enum.Discriminants)
				it.Default = info.Enum.Default
			}
		case KindCLikeEnum:
			it.Values = maps.Clone(r.clikes[tt.Payload].Values)
		case KindFunction:
			fn := &r.fns[tt.Payload]
			it.Return = fn.Return.index()
			it.Args = indices(fn.Args)
			it.TemplateArgs = indices(fn.TemplateArgs)
		}
		img.Types = append(img.Types, it)
	}
	return img
}

func indices(ids []TypeID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = id.index()
	}
	return out
}

// Import rebuilds a registry from an image. The result has a fresh handle scope.
func Import(img Image, strings *source.Interner) (*Registry, error) {
	r := NewRegistry(Options{PointerByteSize: img.PointerByteSize, Strings: strings})
	n := len(img.Types)
	ref := func(own int, idx uint32, before bool) (TypeID, error) {
		if idx == 0 {
			return NoTypeID, nil
		}
		if int(idx) > n || (before && int(idx) >= own) {
			return NoTypeID, fmt.Errorf("%w: type %d references %d", ErrBadImage, own, idx)
		}
		return makeTypeID(r.scope, idx), nil
	}
	refs := func(own int, idxs []uint32) ([]TypeID, error) {
		if len(idxs) == 0 {
			return nil, nil
		}
		out := make([]TypeID, len(idxs))
		for i, idx := range idxs {
			id, err := ref(own, idx, false)
			if err != nil {
				return nil, err
			}
			if id == NoTypeID {
				return nil, fmt.Errorf("%w: type %d has an empty reference", ErrBadImage, own)
			}
			out[i] = id
		}
		return out, nil
	}

	for i, it := range img.Types {
		own := i + 1
		tt := Type{
			Kind:   it.Kind,
			Name:   r.strings.Intern(it.Name),
			Size:   it.Size,
			Count:  it.Count,
			Signed: it.Signed,
			Char:   it.Char,
		}
		switch it.Kind {
		case KindBool, KindIntegral, KindFloat:
		case KindPointer, KindArray, KindTypedef, KindCLikeEnum:
			elem, err := ref(own, it.Elem, true)
			if err != nil {
				return nil, err
			}
			if elem == NoTypeID && it.Kind != KindPointer {
				return nil, fmt.Errorf("%w: %s %q has no target", ErrBadImage, it.Kind, it.Name)
			}
			tt.Elem = elem
			if it.Kind == KindCLikeEnum {
				tt.Payload = r.appendCLike(CLikeEnumInfo{Values: maps.Clone(it.Values)})
			}
		case KindTuple, KindStruct, KindUnion, KindEnum:
			info := AggregateInfo{HasDiscriminant: it.HasDiscriminant, TupleKind: it.TupleKind}
			if it.Sealed {
				info.State = StateSealed
			}
			for _, f := range it.Fields {
				ft, err := ref(own, f.Type, false)
				if err != nil {
					return nil, err
				}
				if ft == NoTypeID {
					return nil, fmt.Errorf("%w: field %q of %q has no type", ErrBadImage, f.Name, it.Name)
				}
				info.Fields = append(info.Fields, Field{Name: r.strings.Intern(f.Name), Type: ft, Offset: f.Offset})
			}
			args, err := refs(own, it.TemplateArgs)
			if err != nil {
				return nil, err
			}
			info.TemplateArgs = args
			if it.Kind == KindEnum {
				enum := &EnumInfo{
					DiscrOffset:   it.DiscrOffset,
					DiscrByteSize: it.DiscrByteSize,
					Discriminants: make(map[uint64]int, len(it.Discriminants)),
					Default:       it.Default,
				}
				for v, idx := range it.Discriminants {
					if idx < 0 || idx >= len(info.Fields) {
						return nil, fmt.Errorf("%w: enum %q maps %d to field %d", ErrBadImage, it.Name, v, idx)
					}
					enum.Discriminants[v] = idx
				}
				if enum.Default >= len(info.Fields) {
					return nil, fmt.Errorf("%w: enum %q default %d out of range", ErrBadImage, it.Name, enum.Default)
				}
				if enum.Default < 0 {
					enum.Default = -1
				}
				info.Enum = enum
			}
			tt.Payload = r.appendAggregate(info)
		case KindFunction:
			ret, err := ref(own, it.Return, false)
			if err != nil {
				return nil, err
			}
			args, err := refs(own, it.Args)
			if err != nil {
				return nil, err
			}
			targs, err := refs(own, it.TemplateArgs)
			if err != nil {
				return nil, err
			}
			tt.Payload = r.appendFn(FnInfo{Return: ret, Args: args, TemplateArgs: targs})
		default:
			return nil, fmt.Errorf("%w: unknown kind %d", ErrBadImage, it.Kind)
		}
		r.add(tt)
	}
	return r, nil
}

// Equal reports whether two images describe the same registry.
func (img Image) Equal(other Image) bool {
	return img.PointerByteSize == other.PointerByteSize &&
		slices.EqualFunc(img.Types, other.Types, func(a, b ImageType) bool {
			return a.Kind == b.Kind && a.Name == b.Name && a.Size == b.Size &&
				a.Elem == b.Elem && a.Count == b.Count && a.Signed == b.Signed && a.Char == b.Char &&
				slices.Equal(a.Fields, b.Fields) && slices.Equal(a.TemplateArgs, b.TemplateArgs) &&
				a.HasDiscriminant == b.HasDiscriminant && a.TupleKind == b.TupleKind && a.Sealed == b.Sealed &&
				a.DiscrOffset == b.DiscrOffset && a.DiscrByteSize == b.DiscrByteSize &&
				maps.Equal(a.Discriminants, b.Discriminants) && a.Default == b.Default &&
				maps.Equal(a.Values, b.Values) && a.Return == b.Return && slices.Equal(a.Args, b.Args)
		})
}
