package types

import (
	"math"
	"testing"
)

func TestChildrenOfAggregatesAndArrays(t *testing.T) {
	r := NewRegistry(Options{})
	i32 := r.CreateIntrinsicIntegral(true, 4)
	point := r.BeginStruct("Point", 8, false).Field("x", i32, 0).Field("y", i32, 4).MustFinish()
	arr := r.ArrayOf(point, 3)

	if n := r.NumChildren(point); n != 2 {
		t.Fatalf("Point children = %d", n)
	}
	y, ok := r.ChildAt(point, 1, ChildOptions{})
	if !ok || y.Name != "y" || y.ByteOffset != 4 || y.ByteSize != 4 {
		t.Fatalf("Point.y = %+v", y)
	}
	if n := r.NumChildren(arr); n != 3 {
		t.Fatalf("array children = %d", n)
	}
	el, ok := r.ChildAt(arr, 2, ChildOptions{})
	if !ok || el.Name != "[2]" || el.ByteOffset != 16 || el.Type != point {
		t.Fatalf("arr[2] = %+v", el)
	}
	if _, ok := r.ChildAt(arr, 3, ChildOptions{}); ok {
		t.Fatalf("index past the end should be absent")
	}
	if el, ok := r.ChildAt(arr, 3, ChildOptions{IgnoreArrayBounds: true}); !ok || el.ByteOffset != 24 {
		t.Fatalf("unbounded index = %+v", el)
	}
	if idx, ok := r.IndexOfChildWithName(r.CreateTypedef("P", point), "y"); !ok || idx != 1 {
		t.Fatalf("typedef lookup = %d", idx)
	}
}

func TestChildrenOfPointers(t *testing.T) {
	r := NewRegistry(Options{})
	i32 := r.CreateIntrinsicIntegral(true, 4)
	point := r.BeginStruct("Point", 8, false).Field("x", i32, 0).Field("y", i32, 4).MustFinish()
	pp := r.PointerTo(point)
	pi := r.PointerTo(i32)
	pv := r.PointerTo(r.CreateVoid())

	if n := r.NumChildren(pi); n != 1 {
		t.Fatalf("pointer to scalar should have one child, got %d", n)
	}
	if n := r.NumChildren(pp); n != 2 {
		t.Fatalf("pointer to Point should forward child count, got %d", n)
	}
	deref, ok := r.ChildAt(pi, 0, ChildOptions{ParentName: "p"})
	if !ok || deref.Name != "*p" || !deref.IsDerefOfParent || deref.Type != i32 {
		t.Fatalf("deref child = %+v", deref)
	}
	if _, ok := r.ChildAt(pi, 1, ChildOptions{}); ok {
		t.Fatalf("only index 0 dereferences")
	}
	x, ok := r.ChildAt(pp, 1, ChildOptions{TransparentPointers: true})
	if !ok || x.Name != "y" || x.IsDerefOfParent {
		t.Fatalf("transparent child = %+v", x)
	}
	if d, ok := r.ChildAt(pp, 0, ChildOptions{}); !ok || d.Type != point || d.Name != "" {
		t.Fatalf("opaque deref of Point = %+v", d)
	}
	if _, ok := r.ChildAt(pv, 0, ChildOptions{}); ok {
		t.Fatalf("void pointee has no child")
	}
	if idx, ok := r.IndexOfChildWithName(pp, "x"); !ok || idx != 0 {
		t.Fatalf("pointer forwards name lookup, got %d", idx)
	}
	if _, ok := r.IndexOfChildWithName(pp, "z"); ok {
		t.Fatalf("missing field found")
	}
}

func TestNumChildrenSaturatesHugeArrays(t *testing.T) {
	r := NewRegistry(Options{})
	u8 := r.CreateIntrinsicIntegral(false, 1)
	for _, count := range []uint64{1 << 32, 1<<63 + 1, ^uint64(0)} {
		if n := r.NumChildren(r.ArrayOf(u8, count)); n != math.MaxInt32 {
			t.Fatalf("[u8; %d] children = %d, want %d", count, n, math.MaxInt32)
		}
	}
	if n := r.NumChildren(r.ArrayOf(u8, 7)); n != 7 {
		t.Fatalf("[u8; 7] children = %d", n)
	}
}
