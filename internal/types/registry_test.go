package types

import (
	"errors"
	"testing"
)

func TestIntrinsicIntegralNaming(t *testing.T) {
	r := NewRegistry(Options{})
	cases := []struct {
		signed bool
		bytes  uint64
		name   string
	}{
		{true, 1, "i8"},
		{false, 1, "u8"},
		{true, 2, "i16"},
		{false, 4, "u32"},
		{true, 8, "i64"},
		{false, 16, "u128"},
	}
	for _, tc := range cases {
		id := r.CreateIntrinsicIntegral(tc.signed, tc.bytes)
		if got := r.Name(id); got != tc.name {
			t.Fatalf("name = %q, want %q", got, tc.name)
		}
		bits, ok := r.BitSize(id)
		if !ok || bits != tc.bytes*8 {
			t.Fatalf("%s: bit size = %d ok=%v", tc.name, bits, ok)
		}
		integer, signed := r.IsInteger(id)
		if !integer || signed != tc.signed {
			t.Fatalf("%s: IsInteger = %v/%v", tc.name, integer, signed)
		}
	}
}

func TestInvalidHandlesAreAbsent(t *testing.T) {
	r := NewRegistry(Options{})
	other := NewRegistry(Options{})
	foreign := other.CreateBool("bool")

	for _, id := range []TypeID{NoTypeID, foreign, makeTypeID(r.scope, 99)} {
		if r.Owns(id) {
			t.Fatalf("%s should not be owned", id)
		}
		if _, ok := r.ByteSize(id); ok {
			t.Fatalf("%s: ByteSize should be absent", id)
		}
		if r.Kind(id) != KindInvalid || r.Name(id) != "" {
			t.Fatalf("%s: expected invalid kind and empty name", id)
		}
		if r.Format(id) != FormatDefault || r.Class(id) != ClassInvalid {
			t.Fatalf("%s: expected default format and invalid class", id)
		}
		if r.NumChildren(id) != 0 || r.NumFields(id) != 0 {
			t.Fatalf("%s: expected no children", id)
		}
		if r.FunctionArgCount(id) != -1 {
			t.Fatalf("%s: expected -1 arg count", id)
		}
	}
}

func TestSizes(t *testing.T) {
	r := NewRegistry(Options{PointerByteSize: 4})
	i32 := r.CreateIntrinsicIntegral(true, 4)
	arr := r.ArrayOf(i32, 3)
	alias := r.CreateTypedef("Word", i32)
	nested := r.CreateArray(arr, 2)
	fn := r.CreateFunction("fn(i32)", NoTypeID, []TypeID{i32}, nil)
	ptr := r.PointerTo(i32)

	cases := []struct {
		id   TypeID
		want uint64
	}{
		{arr, 12},
		{alias, 4},
		{nested, 24},
		{fn, 4},
		{ptr, 4},
	}
	for _, tc := range cases {
		got, ok := r.ByteSize(tc.id)
		if !ok || got != tc.want {
			t.Fatalf("%s: size = %d ok=%v, want %d", r.Name(tc.id), got, ok, tc.want)
		}
	}
	if r.Name(arr) != "[i32; 3]" || r.Name(ptr) != "*mut i32" {
		t.Fatalf("derived names: %q %q", r.Name(arr), r.Name(ptr))
	}
	if r.Name(r.ArrayOf(i32, 0)) != "[i32]" {
		t.Fatalf("unsized array name: %q", r.Name(r.ArrayOf(i32, 0)))
	}
	if r.Canonical(r.CreateTypedef("W2", alias)) != i32 {
		t.Fatalf("Canonical should strip every typedef")
	}
}

func TestSizesThatOverflowAreAbsent(t *testing.T) {
	r := NewRegistry(Options{})
	u64 := r.CreateIntrinsicIntegral(false, 8)
	huge := r.ArrayOf(u64, 1<<61)
	if n, ok := r.ByteSize(huge); ok {
		t.Fatalf("[u64; 1<<61] size = %d, want absent", n)
	}
	if n, ok := r.ByteSize(r.ArrayOf(huge, 2)); ok {
		t.Fatalf("nested overflow size = %d, want absent", n)
	}
	big := r.ArrayOf(r.CreateIntrinsicIntegral(false, 1), 1<<62)
	if n, ok := r.ByteSize(big); !ok || n != 1<<62 {
		t.Fatalf("[u8; 1<<62] size = %d ok=%v", n, ok)
	}
	if n, ok := r.BitSize(big); ok {
		t.Fatalf("bit size of [u8; 1<<62] = %d, want absent", n)
	}
}

func TestFormatsAndClasses(t *testing.T) {
	r := NewRegistry(Options{})
	b := r.CreateBool("bool")
	i := r.CreateIntrinsicIntegral(true, 4)
	u := r.CreateIntrinsicIntegral(false, 8)
	c := r.CreateChar()
	f := r.CreateFloat("f64", 8)
	p := r.PointerTo(i)
	e := r.CreateCLikeEnum("Color", u, map[uint64]string{0: "Red"})
	s := r.BeginStruct("S", 0, false).MustFinish()

	cases := []struct {
		id     TypeID
		format Format
		class  Class
		basic  BasicType
	}{
		{b, FormatBoolean, ClassBuiltin, BasicBool},
		{i, FormatDecimal, ClassBuiltin, BasicInt},
		{u, FormatUnsigned, ClassBuiltin, BasicUnsignedLongLong},
		{c, FormatUnicode32, ClassBuiltin, BasicChar32},
		{f, FormatFloat, ClassBuiltin, BasicDouble},
		{p, FormatPointer, ClassPointer, BasicOther},
		{e, FormatEnum, ClassEnumeration, BasicOther},
		{s, FormatBytes, ClassStruct, BasicOther},
	}
	for _, tc := range cases {
		if got := r.Format(tc.id); got != tc.format {
			t.Fatalf("%s: format %s, want %s", r.Name(tc.id), got, tc.format)
		}
		if got := r.Class(tc.id); got != tc.class {
			t.Fatalf("%s: class %s, want %s", r.Name(tc.id), got, tc.class)
		}
		if got := r.BasicType(tc.id); got != tc.basic {
			t.Fatalf("%s: basic type %d, want %d", r.Name(tc.id), got, tc.basic)
		}
	}
	if r.Encoding(f) != EncodingIEEE754 || r.Encoding(i) != EncodingSint || r.Encoding(p) != EncodingUint {
		t.Fatalf("unexpected encodings")
	}
	if r.FloatKind(f) != FloatDouble {
		t.Fatalf("f64 should be double precision")
	}
	if flags, _ := r.Info(i); !flags.Has(FlagInteger | FlagSigned | FlagScalar) {
		t.Fatalf("i32 flags = %s", flags)
	}
	if flags, pointee := r.Info(p); !flags.Has(FlagPointer) || pointee != i {
		t.Fatalf("pointer info = %s %s", flags, pointee)
	}
}

func TestVoidPredicate(t *testing.T) {
	r := NewRegistry(Options{})
	void := r.CreateVoid()
	if !r.IsVoid(void) || r.BasicType(void) != BasicVoid {
		t.Fatalf("() should be void")
	}
	other, err := r.BeginTuple("(u8,)", 0, false).Finish()
	if err != nil {
		t.Fatal(err)
	}
	if r.IsVoid(other) {
		t.Fatalf("empty tuple with another name must not be void")
	}
	i8 := r.CreateIntrinsicIntegral(true, 1)
	nonEmpty := r.BeginTuple(VoidName, 1, false).Field("", i8, 0).MustFinish()
	if r.IsVoid(nonEmpty) {
		t.Fatalf("tuple with fields must not be void")
	}
	if r.IsVoid(r.BeginStruct(VoidName, 0, false).MustFinish()) {
		t.Fatalf("struct named () must not be void")
	}
}

func TestTupleClassification(t *testing.T) {
	r := NewRegistry(Options{})
	cases := []struct {
		name string
		want TupleKind
	}{
		{"", TupleAnonymous},
		{"(i32, u8)", TupleAnonymous},
		{"Wrapper", TupleNamed},
	}
	for _, tc := range cases {
		id := r.CreateTuple(tc.name, 0, false)
		if got, ok := r.TupleKindOf(id); !ok || got != tc.want {
			t.Fatalf("%q classified as %d", tc.name, got)
		}
	}
	explicit := r.CreateTupleKind("(odd", 0, false, TupleNamed)
	if got, _ := r.TupleKindOf(explicit); got != TupleNamed {
		t.Fatalf("explicit flag ignored")
	}
}

func TestSealingIsEnforced(t *testing.T) {
	r := NewRegistry(Options{})
	i32 := r.CreateIntrinsicIntegral(true, 4)
	s := r.CreateStruct("S", 4, false)
	if err := r.AddField(s, "a", i32, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.FinishAggregateInitialization(s); err != nil {
		t.Fatal(err)
	}
	if err := r.AddField(s, "b", i32, 4); !errors.Is(err, ErrSealed) {
		t.Fatalf("AddField after seal: %v", err)
	}
	if err := r.AddTemplateArgument(s, i32); !errors.Is(err, ErrSealed) {
		t.Fatalf("AddTemplateArgument after seal: %v", err)
	}
	if err := r.FinishAggregateInitialization(s); !errors.Is(err, ErrSealed) {
		t.Fatalf("second finish: %v", err)
	}
	if err := r.AddField(i32, "x", i32, 0); !errors.Is(err, ErrNotAggregate) {
		t.Fatalf("AddField on scalar: %v", err)
	}
	if err := r.AddField(NoTypeID, "x", i32, 0); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("AddField on absent: %v", err)
	}
	if err := r.RecordDiscriminant(s, false, 0); !errors.Is(err, ErrNotEnum) {
		t.Fatalf("RecordDiscriminant on struct: %v", err)
	}

	b := r.BeginStruct("T", 4, false)
	if _, err := b.Finish(); err != nil {
		t.Fatal(err)
	}
	b.Field("late", i32, 0)
	if !errors.Is(b.Err(), ErrSealed) {
		t.Fatalf("builder mutation after Finish: %v", b.Err())
	}
}

func TestDropDiscriminantIdempotent(t *testing.T) {
	r := NewRegistry(Options{})
	u8 := r.CreateIntrinsicIntegral(false, 1)
	i32 := r.CreateIntrinsicIntegral(true, 4)

	tup := r.BeginTuple("Some", 8, true).Field("", u8, 0).Field("", i32, 4).MustFinish()
	if err := r.DropDiscriminant(tup); err != nil {
		t.Fatal(err)
	}
	once := r.Fields(tup)
	if err := r.DropDiscriminant(tup); err != nil {
		t.Fatal(err)
	}
	twice := r.Fields(tup)
	if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
		t.Fatalf("fields changed on second drop: %v vs %v", once, twice)
	}
	if r.HasDiscriminant(tup) {
		t.Fatalf("flag should be cleared")
	}
	if r.FieldName(once[0]) != "0" || once[0].Type != i32 {
		t.Fatalf("tuple field should be renumbered: %q", r.FieldName(once[0]))
	}

	st := r.BeginStruct("V", 8, true).Field("RUST$ENUM$DISR", u8, 0).Field("x", i32, 4).MustFinish()
	for range 2 {
		if err := r.DropDiscriminant(st); err != nil {
			t.Fatal(err)
		}
	}
	if r.NumFields(st) != 1 {
		t.Fatalf("struct should keep one field, has %d", r.NumFields(st))
	}
	if idx, ok := r.IndexOfChildWithName(st, "x"); !ok || idx != 0 {
		t.Fatalf("struct field names are preserved")
	}
}

func TestFunctionQueries(t *testing.T) {
	r := NewRegistry(Options{})
	i32 := r.CreateIntrinsicIntegral(true, 4)
	f64 := r.CreateFloat("f64", 8)
	fn := r.CreateFunction("fn(i32, f64) -> i32", i32, []TypeID{i32, f64}, []TypeID{f64})
	if r.FunctionArgCount(fn) != 2 || r.FunctionArgCount(i32) != -1 {
		t.Fatalf("arg counts")
	}
	if a, ok := r.FunctionArg(fn, 1); !ok || a != f64 {
		t.Fatalf("second arg = %s", a)
	}
	if _, ok := r.FunctionArg(fn, 2); ok {
		t.Fatalf("out of range arg")
	}
	if ret, _ := r.FunctionReturn(fn); ret != i32 {
		t.Fatalf("return = %s", ret)
	}
	if r.NumTemplateArgs(fn) != 1 {
		t.Fatalf("template args")
	}
	if !r.IsFunctionPointer(r.PointerTo(fn)) {
		t.Fatalf("pointer to fn should be a function pointer")
	}
}
