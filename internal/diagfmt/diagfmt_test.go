package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"rusttypes/internal/diag"
	"rusttypes/internal/observ"
	"rusttypes/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("list.yaml", []byte("types:\n  - name: Node\n    kind: struct\n"))
	f := fs.Get(id)

	bag := diag.NewBag(0)
	rep := diag.NewBagReporter(bag)
	diag.ReportError(rep, diag.FixUnknownType, f.LineSpan(2), `"Node" references unknown type "Missing"`).
		WithSubject("Node").
		WithNote(f.LineSpan(3), "declared as a struct").
		Emit()
	diag.ReportAbout(rep, diag.SevWarning, diag.TypeUnresolvedDiscriminant, "Option<i32>", "discriminant 5 matches no variant").Emit()
	bag.Sort()
	return bag, fs
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, StructuredOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.Errors != 1 {
		t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
	}
	first := out.Diagnostics[0]
	if first.Code != "FIX1003" || first.Location == nil || first.Location.StartLine != 2 || first.Location.File != "list.yaml" {
		t.Fatalf("unexpected located diagnostic %+v", first)
	}
	if len(first.Notes) != 1 || first.Notes[0].Location.StartLine != 3 {
		t.Fatalf("notes = %+v", first.Notes)
	}
	second := out.Diagnostics[1]
	if second.Location != nil || second.Subject != "Option<i32>" || second.Severity != "WARNING" {
		t.Fatalf("unexpected unlocated diagnostic %+v", second)
	}
}

func TestYAMLRespectsMax(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := YAML(&buf, bag, fs, StructuredOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "FIX1003" {
		t.Fatalf("out = %+v", out)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("positions were not requested: %+v", out.Diagnostics[0].Location)
	}
}

func TestStructuredCarriesTimings(t *testing.T) {
	bag, fs := sampleBag(t)
	report := observ.Report{TotalMS: 1.5, Phases: []observ.PhaseReport{{Name: "load", DurationMS: 1.5}}}
	var buf bytes.Buffer
	if err := YAML(&buf, bag, fs, StructuredOpts{Timings: &report}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Timings == nil || out.Timings.TotalMS != 1.5 || out.Timings.Phases[0].Name != "load" {
		t.Fatalf("timings = %+v", out.Timings)
	}

	buf.Reset()
	if err := JSON(&buf, bag, fs, StructuredOpts{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "timings") {
		t.Fatalf("timings must be omitted when absent:\n%s", buf.String())
	}
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"error[FIX1003]: \"Node\" references unknown type \"Missing\"\n",
		"  --> list.yaml:2:1\n",
		" 2 |   - name: Node\n",
		"   |   ^^^^^^^^^^^^\n",
		"  = subject: Node\n",
		"  = note: declared as a struct\n",
		"warning[TYP2002]: discriminant 5 matches no variant\n  --> Option<i32>\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatShort, "Pretty": FormatPretty, "json": FormatJSON, "yml": FormatYAML} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Fatal("expected error for sarif")
	}
}
