package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to the empty string, got %q ok=%v", s, ok)
	}

	a := in.Intern("Point")
	if a == NoStringID {
		t.Fatalf("non-empty string interned as NoStringID")
	}
	if b := in.Intern("Point"); a != b {
		t.Fatalf("expected stable ID, got %d and %d", a, b)
	}
	if c := in.Intern("Option"); c == a {
		t.Fatalf("distinct strings share ID %d", c)
	}
	if in.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", in.Len())
	}
	if s := in.MustLookup(a); s != "Point" {
		t.Fatalf("lookup returned %q", s)
	}
}

func TestInternerNormalizesToNFC(t *testing.T) {
	in := NewInterner()
	composed := in.Intern("caf\u00e9")
	decomposed := in.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("NFC and NFD spellings should intern to one ID: %d vs %d", composed, decomposed)
	}
	if id, ok := in.Find("cafe\u0301"); !ok || id != composed {
		t.Fatalf("Find should normalize too, got %d ok=%v", id, ok)
	}
}

func TestInternerHas(t *testing.T) {
	in := NewInterner()
	id := in.Intern("x")
	if !in.Has(id) {
		t.Fatalf("issued ID reported missing")
	}
	if in.Has(id + 10) {
		t.Fatalf("unknown ID reported present")
	}
	if _, ok := in.Lookup(id + 10); ok {
		t.Fatalf("lookup of unknown ID succeeded")
	}
}

func TestInternerSnapshotIsCopy(t *testing.T) {
	in := NewInterner()
	in.Intern("a")
	snap := in.Snapshot()
	snap[1] = "mutated"
	if in.MustLookup(1) != "a" {
		t.Fatalf("snapshot aliases interner storage")
	}
}
