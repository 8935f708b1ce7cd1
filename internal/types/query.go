package types

import "math/bits"

// ByteSize reports the size of a value of type id. Arrays derive it from their
// element; typedefs and C-like enums from their underlying type.
func (r *Registry) ByteSize(id TypeID) (uint64, bool) {
	tt, ok := r.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindArray:
		elem, ok := r.ByteSize(tt.Elem)
		if !ok {
			return 0, false
		}
		hi, n := bits.Mul64(elem, tt.Count)
		if hi != 0 {
			return 0, false
		}
		return n, true
	case KindTypedef, KindCLikeEnum:
		return r.ByteSize(tt.Elem)
	case KindBool, KindIntegral, KindFloat, KindPointer, KindFunction,
		KindTuple, KindStruct, KindUnion, KindEnum:
		return tt.Size, true
	default:
		return 0, false
	}
}

// BitSize is ByteSize in bits.
func (r *Registry) BitSize(id TypeID) (uint64, bool) {
	n, ok := r.ByteSize(id)
	if !ok || n > ^uint64(0)/8 {
		return 0, false
	}
	return n * 8, true
}

// Info reports the capability flags of id. For pointers and arrays the second
// result is the pointee or element type.
func (r *Registry) Info(id TypeID) (Flags, TypeID) {
	tt, ok := r.Lookup(id)
	if !ok {
		return 0, NoTypeID
	}
	switch tt.Kind {
	case KindBool:
		return FlagBuiltIn | FlagHasValue | FlagScalar, NoTypeID
	case KindIntegral:
		f := FlagBuiltIn | FlagHasValue | FlagScalar | FlagInteger
		if tt.Signed {
			f |= FlagSigned
		}
		return f, NoTypeID
	case KindFloat:
		return FlagBuiltIn | FlagHasValue | FlagFloat, NoTypeID
	case KindPointer:
		return FlagBuiltIn | FlagHasValue | FlagPointer, tt.Elem
	case KindArray:
		return FlagHasChildren | FlagArray, tt.Elem
	case KindTuple, KindStruct, KindUnion, KindEnum:
		return FlagHasChildren | FlagStructUnion, NoTypeID
	case KindCLikeEnum:
		return FlagHasValue | FlagEnumeration | FlagScalar, NoTypeID
	case KindFunction:
		return FlagFuncPrototype | FlagHasValue, NoTypeID
	case KindTypedef:
		return FlagTypedef, NoTypeID
	default:
		return 0, NoTypeID
	}
}

// Class reports the coarse class of id.
func (r *Registry) Class(id TypeID) Class {
	switch r.Kind(id) {
	case KindBool, KindIntegral, KindFloat:
		return ClassBuiltin
	case KindCLikeEnum:
		return ClassEnumeration
	case KindPointer:
		return ClassPointer
	case KindArray:
		return ClassArray
	case KindTuple, KindStruct, KindUnion, KindEnum:
		return ClassStruct
	case KindFunction:
		return ClassFunction
	case KindTypedef:
		return ClassTypedef
	default:
		return ClassInvalid
	}
}

// Format picks the display format a value formatter starts from.
func (r *Registry) Format(id TypeID) Format {
	tt, ok := r.Lookup(id)
	if !ok {
		return FormatDefault
	}
	switch tt.Kind {
	case KindBool:
		return FormatBoolean
	case KindIntegral:
		switch {
		case tt.Char:
			return FormatUnicode32
		case tt.Signed:
			return FormatDecimal
		default:
			return FormatUnsigned
		}
	case KindFloat:
		return FormatFloat
	case KindPointer:
		return FormatPointer
	case KindCLikeEnum:
		return FormatEnum
	default:
		return FormatBytes
	}
}

// BasicType maps id onto the host's builtin enumeration.
func (r *Registry) BasicType(id TypeID) BasicType {
	tt, ok := r.Lookup(id)
	if !ok {
		return BasicInvalid
	}
	switch tt.Kind {
	case KindBool:
		return BasicBool
	case KindFloat:
		switch tt.Size {
		case 4:
			return BasicFloat
		case 8:
			return BasicDouble
		}
	case KindIntegral:
		if tt.Char {
			return BasicChar32
		}
		return integerBasicType(tt.Size, tt.Signed)
	case KindTuple:
		if r.IsVoid(id) {
			return BasicVoid
		}
	}
	return BasicOther
}

func integerBasicType(size uint64, signed bool) BasicType {
	pick := func(s, u BasicType) BasicType {
		if signed {
			return s
		}
		return u
	}
	switch size {
	case 1:
		return pick(BasicSignedChar, BasicUnsignedChar)
	case 2:
		return pick(BasicShort, BasicUnsignedShort)
	case 4:
		return pick(BasicInt, BasicUnsignedInt)
	case 8:
		return pick(BasicLongLong, BasicUnsignedLongLong)
	case 16:
		return pick(BasicInt128, BasicUnsignedInt128)
	default:
		return BasicOther
	}
}

// Encoding reports how the bits of a scalar are read.
func (r *Registry) Encoding(id TypeID) Encoding {
	tt, ok := r.Lookup(id)
	if !ok {
		return EncodingInvalid
	}
	switch tt.Kind {
	case KindIntegral:
		if tt.Signed {
			return EncodingSint
		}
		return EncodingUint
	case KindBool, KindPointer:
		return EncodingUint
	case KindFloat:
		return EncodingIEEE754
	default:
		return EncodingInvalid
	}
}

// FloatKind reports the IEEE semantics of a float type.
func (r *Registry) FloatKind(id TypeID) FloatKind {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindFloat {
		return FloatBogus
	}
	return FloatKindForSize(tt.Size)
}

// Pointee returns the target of a pointer.
func (r *Registry) Pointee(id TypeID) (TypeID, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindPointer {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// ArrayElement returns the element type of an array and its stride.
func (r *Registry) ArrayElement(id TypeID) (elem TypeID, stride uint64, ok bool) {
	tt, found := r.Lookup(id)
	if !found || tt.Kind != KindArray {
		return NoTypeID, 0, false
	}
	stride, _ = r.ByteSize(tt.Elem)
	return tt.Elem, stride, true
}

// ArrayLength returns the element count of an array.
func (r *Registry) ArrayLength(id TypeID) (uint64, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return 0, false
	}
	return tt.Count, true
}

// TypedefTarget returns the aliased type of a typedef.
func (r *Registry) TypedefTarget(id TypeID) (TypeID, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindTypedef {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// CLikeUnderlying returns the integer type backing a C-like enum.
func (r *Registry) CLikeUnderlying(id TypeID) (TypeID, bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindCLikeEnum {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// Canonical strips every typedef layer.
func (r *Registry) Canonical(id TypeID) TypeID {
	for {
		target, ok := r.TypedefTarget(id)
		if !ok {
			return id
		}
		id = target
	}
}

// NumFields counts the fields of an aggregate, looking through typedefs.
func (r *Registry) NumFields(id TypeID) int {
	info, ok := r.AggregateInfoOf(r.Canonical(id))
	if !ok {
		return 0
	}
	return len(info.Fields)
}

// FieldAt returns the field at idx, looking through typedefs.
func (r *Registry) FieldAt(id TypeID, idx int) (Field, bool) {
	info, ok := r.AggregateInfoOf(r.Canonical(id))
	if !ok || idx < 0 || idx >= len(info.Fields) {
		return Field{}, false
	}
	return info.Fields[idx], true
}

// Fields returns a copy of the field list.
func (r *Registry) Fields(id TypeID) []Field {
	info, ok := r.AggregateInfoOf(r.Canonical(id))
	if !ok || len(info.Fields) == 0 {
		return nil
	}
	out := make([]Field, len(info.Fields))
	copy(out, info.Fields)
	return out
}

// FieldName resolves the interned name of f.
func (r *Registry) FieldName(f Field) string {
	s, _ := r.strings.Lookup(f.Name)
	return s
}

// NumTemplateArgs counts recorded generic arguments of an aggregate or function.
func (r *Registry) NumTemplateArgs(id TypeID) int {
	return len(r.templateArgs(id))
}

// TemplateArg returns the generic argument at idx.
func (r *Registry) TemplateArg(id TypeID, idx int) (TypeID, bool) {
	args := r.templateArgs(id)
	if idx < 0 || idx >= len(args) {
		return NoTypeID, false
	}
	return args[idx], true
}

func (r *Registry) templateArgs(id TypeID) []TypeID {
	if info, ok := r.fnInfo(id); ok {
		return info.TemplateArgs
	}
	if info, ok := r.AggregateInfoOf(id); ok {
		return info.TemplateArgs
	}
	return nil
}

// IsAggregate reports whether values of id have children: arrays and field
// containers.
func (r *Registry) IsAggregate(id TypeID) bool {
	k := r.Kind(id)
	return k == KindArray || k.IsAggregate()
}

// IsScalar is the complement of IsAggregate over valid handles.
func (r *Registry) IsScalar(id TypeID) bool {
	return r.Owns(id) && !r.IsAggregate(id)
}

// IsChar reports whether id is the Unicode scalar type.
func (r *Registry) IsChar(id TypeID) bool {
	tt, ok := r.Lookup(id)
	return ok && tt.Kind == KindIntegral && tt.Char
}

// IsInteger reports whether id is integral (char included) and its signedness.
func (r *Registry) IsInteger(id TypeID) (integer, signed bool) {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindIntegral {
		return false, false
	}
	return true, tt.Signed
}

func (r *Registry) IsFloat(id TypeID) bool    { return r.Kind(id) == KindFloat }
func (r *Registry) IsBool(id TypeID) bool     { return r.Kind(id) == KindBool }
func (r *Registry) IsPointer(id TypeID) bool  { return r.Kind(id) == KindPointer }
func (r *Registry) IsFunction(id TypeID) bool { return r.Kind(id) == KindFunction }
func (r *Registry) IsTypedef(id TypeID) bool  { return r.Kind(id) == KindTypedef }
func (r *Registry) IsArray(id TypeID) bool    { return r.Kind(id) == KindArray }
func (r *Registry) IsTuple(id TypeID) bool    { return r.Kind(id) == KindTuple }

// IsFunctionPointer reports whether id points at a function type.
func (r *Registry) IsFunctionPointer(id TypeID) bool {
	pointee, ok := r.Pointee(id)
	return ok && r.IsFunction(pointee)
}

// IsVoid matches the unit type: a tuple with no fields named exactly "()".
func (r *Registry) IsVoid(id TypeID) bool {
	tt, ok := r.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return false
	}
	return r.Name(id) == VoidName && r.NumFields(id) == 0
}

// IsPossibleDynamic reports whether the concrete layout of a value depends on
// runtime data, which is the case for tagged enums.
func (r *Registry) IsPossibleDynamic(id TypeID) bool {
	return r.Kind(id) == KindEnum
}

// TupleKindOf reports the anonymous/named classification of a tuple.
func (r *Registry) TupleKindOf(id TypeID) (TupleKind, bool) {
	if r.Kind(id) != KindTuple {
		return TupleAnonymous, false
	}
	info, ok := r.AggregateInfoOf(id)
	if !ok {
		return TupleAnonymous, false
	}
	return info.TupleKind, true
}
