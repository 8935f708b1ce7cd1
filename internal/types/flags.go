package types

import "strings"

// Flags is the capability bitset reported by Registry.Info.
type Flags uint32

const (
	FlagBuiltIn Flags = 1 << iota
	FlagHasValue
	FlagScalar
	FlagInteger
	FlagSigned
	FlagFloat
	FlagPointer
	FlagArray
	FlagHasChildren
	FlagStructUnion
	FlagEnumeration
	FlagFuncPrototype
	FlagTypedef
)

var flagNames = [...]string{
	"builtin", "value", "scalar", "integer", "signed", "float", "pointer",
	"array", "children", "struct-union", "enumeration", "func-prototype", "typedef",
}

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	parts := make([]string, 0, 4)
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Class is the coarse type class exposed to the host debugger.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassBuiltin
	ClassEnumeration
	ClassPointer
	ClassArray
	ClassStruct
	ClassFunction
	ClassTypedef
)

func (c Class) String() string {
	switch c {
	case ClassBuiltin:
		return "builtin"
	case ClassEnumeration:
		return "enumeration"
	case ClassPointer:
		return "pointer"
	case ClassArray:
		return "array"
	case ClassStruct:
		return "struct"
	case ClassFunction:
		return "function"
	case ClassTypedef:
		return "typedef"
	default:
		return "invalid"
	}
}

// Format is the display-format tag a value formatter starts from.
type Format uint8

const (
	FormatDefault Format = iota
	FormatBytes
	FormatBoolean
	FormatDecimal
	FormatUnsigned
	FormatUnicode32
	FormatFloat
	FormatPointer
	FormatEnum
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatBytes:
		return "bytes"
	case FormatBoolean:
		return "boolean"
	case FormatDecimal:
		return "decimal"
	case FormatUnsigned:
		return "unsigned"
	case FormatUnicode32:
		return "unicode32"
	case FormatFloat:
		return "float"
	case FormatPointer:
		return "pointer"
	case FormatEnum:
		return "enum"
	case FormatHex:
		return "hex"
	default:
		return "default"
	}
}

// BasicType maps a type onto the host's builtin C type enumeration.
type BasicType uint8

const (
	BasicInvalid BasicType = iota
	BasicVoid
	BasicBool
	BasicSignedChar
	BasicUnsignedChar
	BasicShort
	BasicUnsignedShort
	BasicInt
	BasicUnsignedInt
	BasicLongLong
	BasicUnsignedLongLong
	BasicInt128
	BasicUnsignedInt128
	BasicChar32
	BasicFloat
	BasicDouble
	BasicOther
)

// Encoding describes how a scalar's bits are interpreted.
type Encoding uint8

const (
	EncodingInvalid Encoding = iota
	EncodingUint
	EncodingSint
	EncodingIEEE754
)

// FloatKind names the IEEE semantics of a float of a given byte size.
type FloatKind uint8

const (
	FloatBogus FloatKind = iota
	FloatHalf
	FloatSingle
	FloatDouble
	FloatQuad
)

// FloatKindForSize picks the IEEE format matching byteSize.
func FloatKindForSize(byteSize uint64) FloatKind {
	switch byteSize {
	case 2:
		return FloatHalf
	case 4:
		return FloatSingle
	case 8:
		return FloatDouble
	case 16:
		return FloatQuad
	default:
		return FloatBogus
	}
}
