package types

import (
	"fmt"
	"maps"
	"slices"
)

// VoidName is the display name of the unit type.
const VoidName = "()"

// CreateBool creates a one-byte boolean.
func (r *Registry) CreateBool(name string) TypeID {
	return r.add(Type{Kind: KindBool, Name: r.strings.Intern(name), Size: 1})
}

// CreateIntegral creates an integer (or char, when isChar is set) type.
func (r *Registry) CreateIntegral(name string, signed bool, byteSize uint64, isChar bool) TypeID {
	return r.add(Type{
		Kind:   KindIntegral,
		Name:   r.strings.Intern(name),
		Size:   byteSize,
		Signed: signed,
		Char:   isChar,
	})
}

// CreateIntrinsicIntegral creates i{bits} or u{bits}.
func (r *Registry) CreateIntrinsicIntegral(signed bool, byteSize uint64) TypeID {
	prefix := "u"
	if signed {
		prefix = "i"
	}
	return r.CreateIntegral(fmt.Sprintf("%s%d", prefix, byteSize*8), signed, byteSize, false)
}

// CreateChar creates the four-byte Unicode scalar type.
func (r *Registry) CreateChar() TypeID {
	return r.CreateIntegral("char", false, 4, true)
}

// CreateFloat creates a float of the given byte size.
func (r *Registry) CreateFloat(name string, byteSize uint64) TypeID {
	return r.add(Type{Kind: KindFloat, Name: r.strings.Intern(name), Size: byteSize})
}

// CreatePointer creates a pointer or reference. The pointee is referenced, not
// owned, and may be NoTypeID for an opaque target.
func (r *Registry) CreatePointer(name string, pointee TypeID, byteSize uint64) TypeID {
	return r.add(Type{Kind: KindPointer, Name: r.strings.Intern(name), Elem: pointee, Size: byteSize})
}

// CreateArray creates [T; length]. Its size is derived from the element.
func (r *Registry) CreateArray(elem TypeID, length uint64) TypeID {
	name := "[" + r.Name(elem)
	if length != 0 {
		name += fmt.Sprintf("; %d", length)
	}
	name += "]"
	return r.add(Type{Kind: KindArray, Name: r.strings.Intern(name), Elem: elem, Count: length})
}

// CreateTypedef creates a transparent alias of an existing type.
func (r *Registry) CreateTypedef(name string, underlying TypeID) TypeID {
	return r.add(Type{Kind: KindTypedef, Name: r.strings.Intern(name), Elem: underlying})
}

// CreateStruct creates a struct shell; fields are appended afterwards.
func (r *Registry) CreateStruct(name string, byteSize uint64, hasDiscriminant bool) TypeID {
	return r.createAggregate(KindStruct, name, byteSize, AggregateInfo{HasDiscriminant: hasDiscriminant})
}

// CreateTuple creates a tuple or tuple struct, classified once from name.
func (r *Registry) CreateTuple(name string, byteSize uint64, hasDiscriminant bool) TypeID {
	return r.CreateTupleKind(name, byteSize, hasDiscriminant, ClassifyTuple(name))
}

// CreateTupleKind creates a tuple with an explicit anonymous/named flag.
func (r *Registry) CreateTupleKind(name string, byteSize uint64, hasDiscriminant bool, kind TupleKind) TypeID {
	return r.createAggregate(KindTuple, name, byteSize, AggregateInfo{
		HasDiscriminant: hasDiscriminant,
		TupleKind:       kind,
	})
}

// CreateUnion creates an untagged union shell.
func (r *Registry) CreateUnion(name string, byteSize uint64) TypeID {
	return r.createAggregate(KindUnion, name, byteSize, AggregateInfo{})
}

// CreateEnum creates a tagged enum shell whose discriminant lives at
// discrOffset and spans discrByteSize bytes.
func (r *Registry) CreateEnum(name string, byteSize uint64, discrOffset, discrByteSize uint32) TypeID {
	return r.createAggregate(KindEnum, name, byteSize, AggregateInfo{
		Enum: &EnumInfo{
			DiscrOffset:   discrOffset,
			DiscrByteSize: discrByteSize,
			Discriminants: make(map[uint64]int),
			Default:       -1,
		},
	})
}

// CreateVoid creates the unit type: a sealed, empty anonymous tuple named "()".
func (r *Registry) CreateVoid() TypeID {
	return r.createAggregate(KindTuple, VoidName, 0, AggregateInfo{
		TupleKind: TupleAnonymous,
		State:     StateSealed,
	})
}

// CreateCLikeEnum creates a field-less enum backed by an integer type.
func (r *Registry) CreateCLikeEnum(name string, underlying TypeID, values map[uint64]string) TypeID {
	slot := r.appendCLike(CLikeEnumInfo{Values: maps.Clone(values)})
	return r.add(Type{Kind: KindCLikeEnum, Name: r.strings.Intern(name), Elem: underlying, Payload: slot})
}

// CreateFunction creates a function type. Its byte size is the pointer size.
func (r *Registry) CreateFunction(name string, ret TypeID, args, templateArgs []TypeID) TypeID {
	slot := r.appendFn(FnInfo{
		Return:       ret,
		Args:         slices.Clone(args),
		TemplateArgs: slices.Clone(templateArgs),
	})
	return r.add(Type{Kind: KindFunction, Name: r.strings.Intern(name), Size: r.ptrSize, Payload: slot})
}

// PointerTo creates a raw pointer "*mut T" to id.
func (r *Registry) PointerTo(id TypeID) TypeID {
	if !r.Owns(id) {
		return NoTypeID
	}
	return r.CreatePointer("*mut "+r.Name(id), id, r.ptrSize)
}

// ArrayOf creates [T; length] for an owned element type.
func (r *Registry) ArrayOf(id TypeID, length uint64) TypeID {
	if !r.Owns(id) {
		return NoTypeID
	}
	return r.CreateArray(id, length)
}

func (r *Registry) createAggregate(kind Kind, name string, byteSize uint64, info AggregateInfo) TypeID {
	slot := r.appendAggregate(info)
	return r.add(Type{Kind: kind, Name: r.strings.Intern(name), Size: byteSize, Payload: slot})
}
