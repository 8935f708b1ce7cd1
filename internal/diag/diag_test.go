package diag

import (
	"sync"
	"testing"

	"rusttypes/internal/source"
)

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		FixParse:                   "FIX1001",
		TypeUnresolvedDiscriminant: "TYP2002",
		DeclNotFound:               "DCL3002",
		IOLoadFileError:            "IO4001",
		ObsInfo:                    "OBS6000",
		UnknownCode:                "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if Code(2999).Title() != codeDescription[UnknownCode] {
		t.Fatalf("unregistered code should fall back to the unknown title")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("fixtures/option.toml", []byte("a = 1\nb = 2\n"))

	diags := []Diagnostic{
		NewUnlocated(SevWarning, TypeInvalidEnumValue, "Color", "value 7 matches no enumerator"),
		NewError(FixUnknownType, source.Span{File: file, Start: 6, End: 11}, "unknown type \"u128\"\nin field x").
			WithNote(source.Span{File: file, Start: 0, End: 1}, "declared here"),
	}

	want := "error FIX1003 fixtures/option.toml:2:1 unknown type \"u128\" in field x\n" +
		"warning TYP2003 Color: value 7 matches no enumerator"
	if got := FormatShort(diags, fs, false); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}

	withNotes := FormatShort(diags, fs, true)
	wantNotes := "note FIX1003 fixtures/option.toml:1:1 declared here\n" +
		"error FIX1003 fixtures/option.toml:2:1 unknown type \"u128\" in field x\n" +
		"warning TYP2003 Color: value 7 matches no enumerator"
	if withNotes != wantNotes {
		t.Fatalf("unexpected output with notes:\nwant:\n%s\ngot:\n%s", wantNotes, withNotes)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	r := NewBagReporter(bag)
	ReportAbout(r, SevWarning, TypeInvalidEnumValue, "Zed", "late").Emit()
	ReportAbout(r, SevError, TypeUnresolvedDiscriminant, "Alpha", "early").Emit()
	ReportError(r, FixParse, source.Span{File: 0, Start: 4, End: 5}, "located").Emit()
	ReportAbout(r, SevError, TypeUnresolvedDiscriminant, "Alpha", "early").Emit()

	bag.Dedup()
	if bag.Len() != 3 {
		t.Fatalf("expected 3 after dedup, got %d", bag.Len())
	}
	bag.Sort()
	items := bag.Items()
	if !items[0].Located || items[1].Subject != "Alpha" || items[2].Subject != "Zed" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("severity queries disagree with contents")
	}
}

func TestBagCap(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewUnlocated(SevInfo, TypeInfo, "a", "x")) {
		t.Fatalf("first add rejected")
	}
	if bag.Add(NewUnlocated(SevInfo, TypeInfo, "b", "y")) {
		t.Fatalf("add past cap accepted")
	}
	other := NewBag(0)
	other.Add(NewUnlocated(SevInfo, TypeInfo, "c", "z"))
	bag.Merge(other)
	if bag.Len() != 2 || bag.Cap() != 2 {
		t.Fatalf("merge should grow the cap: len=%d cap=%d", bag.Len(), bag.Cap())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(NewBagReporter(bag))
	for range 3 {
		ReportAbout(r, SevError, TypeRecursiveContainment, "List", "contains itself").Emit()
	}
	ReportAbout(r, SevError, TypeRecursiveContainment, "Tree", "contains itself").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestBagReporterConcurrent(t *testing.T) {
	bag := NewBag(0)
	r := NewBagReporter(bag)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(NewUnlocated(SevInfo, TypeInfo, string(rune('a'+i)), "tick"))
		}()
	}
	wg.Wait()
	if bag.Len() != 8 {
		t.Fatalf("expected 8 diagnostics, got %d", bag.Len())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportWarning(NewBagReporter(bag), FixBadValue, source.Span{}, "size overflows").WithSubject("Big")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("builder emitted %d times", bag.Len())
	}
	if d := b.Diagnostic(); d.Subject != "Big" || !d.Located {
		t.Fatalf("builder lost details: %+v", d)
	}
}

func TestSeverityNames(t *testing.T) {
	cases := []struct {
		sev          Severity
		upper, lower string
	}{
		{SevInfo, "INFO", "info"},
		{SevWarning, "WARNING", "warning"},
		{SevError, "ERROR", "error"},
	}
	for _, c := range cases {
		if got := c.sev.String(); got != c.upper {
			t.Fatalf("String() = %q, want %q", got, c.upper)
		}
		if got := c.sev.Label(); got != c.lower {
			t.Fatalf("Label() = %q, want %q", got, c.lower)
		}
	}
	if Severity(9).String() != "UNKNOWN" {
		t.Fatalf("out-of-range severity must print UNKNOWN")
	}
}
