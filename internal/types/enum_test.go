package types

import (
	"errors"
	"testing"
)

func buildOption(t *testing.T, r *Registry, withDefault bool) (enum, a, b, c TypeID) {
	t.Helper()
	a = r.BeginStruct("A", 1, false).MustFinish()
	b = r.BeginStruct("B", 1, false).MustFinish()
	c = r.BeginStruct("C", 1, false).MustFinish()
	bld := r.BeginEnum("E", 2, 0, 1).
		Variant("A", a, 0, 0).
		Variant("B", b, 0, 1)
	if withDefault {
		bld.DefaultVariant("C", c, 0)
	}
	enum, err := bld.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	return enum, a, b, c
}

func TestFindEnumVariantWithDefault(t *testing.T) {
	r := NewRegistry(Options{})
	e, a, b, c := buildOption(t, r, true)
	cases := []struct {
		value uint64
		want  TypeID
	}{
		{0, a},
		{1, b},
		{42, c},
	}
	for _, tc := range cases {
		got, ok := r.FindEnumVariant(e, tc.value)
		if !ok || got != tc.want {
			t.Fatalf("FindEnumVariant(%d) = %s ok=%v, want %s", tc.value, got, ok, tc.want)
		}
	}
	if idx, ok := r.VariantIndex(e, 42); !ok || idx != 2 {
		t.Fatalf("VariantIndex(42) = %d", idx)
	}
}

func TestFindEnumVariantWithoutDefault(t *testing.T) {
	r := NewRegistry(Options{})
	e, a, _, _ := buildOption(t, r, false)
	if got, ok := r.FindEnumVariant(e, 0); !ok || got != a {
		t.Fatalf("FindEnumVariant(0) = %s", got)
	}
	if got, ok := r.FindEnumVariant(e, 42); ok || got != NoTypeID {
		t.Fatalf("unmatched discriminant should be absent, got %s", got)
	}
	if r.DefaultVariant(e) != -1 {
		t.Fatalf("no default expected")
	}
}

func TestRecordDiscriminantLastWriteWins(t *testing.T) {
	r := NewRegistry(Options{})
	a := r.BeginStruct("A", 0, false).MustFinish()
	b := r.BeginStruct("B", 0, false).MustFinish()
	e := r.BeginEnum("E", 1, 0, 1).Variant("A", a, 0, 7).Variant("B", b, 0, 7).MustFinish()
	if got, _ := r.FindEnumVariant(e, 7); got != b {
		t.Fatalf("later record should win, got %s", got)
	}
}

func TestResolveBeforeSeal(t *testing.T) {
	r := NewRegistry(Options{})
	a := r.BeginStruct("A", 0, false).MustFinish()
	e := r.CreateEnum("E", 1, 0, 1)
	if err := r.RecordDiscriminant(e, false, 0); !errors.Is(err, ErrNoVariant) {
		t.Fatalf("record without variant: %v", err)
	}
	if err := r.AddEnumVariant(e, "A", a, 0, Discriminant{Value: 0}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.ResolveEnumVariant(e, 0); !errors.Is(err, ErrNotSealed) {
		t.Fatalf("resolve before seal: %v", err)
	}
	if _, ok := r.FindEnumVariant(e, 0); ok {
		t.Fatalf("unsealed enum must not resolve")
	}
	if err := r.FinishAggregateInitialization(e); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordDiscriminant(e, true, 0); !errors.Is(err, ErrSealed) {
		t.Fatalf("record after seal: %v", err)
	}
	if _, _, err := r.ResolveEnumVariant(a, 0); !errors.Is(err, ErrNotEnum) {
		t.Fatalf("resolve on struct: %v", err)
	}
}

func TestSealingDropsVariantDiscriminants(t *testing.T) {
	r := NewRegistry(Options{})
	u8 := r.CreateIntrinsicIntegral(false, 1)
	i32 := r.CreateIntrinsicIntegral(true, 4)
	some := r.BeginTuple("Some", 8, true).Field("", u8, 0).Field("", i32, 4).MustFinish()
	none := r.BeginTuple("None", 1, true).Field("", u8, 0).MustFinish()
	e := r.BeginEnum("Option<i32>", 8, 0, 1).
		Variant("None", none, 0, 0).
		Variant("Some", some, 0, 1).
		MustFinish()

	if r.NumFields(none) != 0 || r.NumFields(some) != 1 {
		t.Fatalf("variant discriminants not dropped: none=%d some=%d", r.NumFields(none), r.NumFields(some))
	}
	if f, _ := r.FieldAt(some, 0); r.FieldName(f) != "0" || f.Offset != 4 {
		t.Fatalf("Some payload = %q@%d", r.FieldName(f), f.Offset)
	}
	if off, size, ok := r.DiscriminantLocation(e); !ok || off != 0 || size != 1 {
		t.Fatalf("discriminant location %d/%d", off, size)
	}
	if !r.IsPossibleDynamic(e) || !r.HasDiscriminant(e) {
		t.Fatalf("tagged enum predicates")
	}
}
