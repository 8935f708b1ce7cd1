package diagfmt

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"rusttypes/internal/diag"
	"rusttypes/internal/observ"
	"rusttypes/internal/source"
)

// LocationJSON is a span inside a fixture file.
type LocationJSON struct {
	File      string `json:"file" yaml:"file"`
	StartByte uint32 `json:"start_byte" yaml:"start_byte"`
	EndByte   uint32 `json:"end_byte" yaml:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message" yaml:"message"`
	Location LocationJSON `json:"location" yaml:"location"`
}

// DiagnosticJSON is one diagnostic. Location is absent for diagnostics about
// a type or path rather than a place in a file; Subject names it instead.
type DiagnosticJSON struct {
	Severity string        `json:"severity" yaml:"severity"`
	Code     string        `json:"code" yaml:"code"`
	Title    string        `json:"title,omitempty" yaml:"title,omitempty"`
	Message  string        `json:"message" yaml:"message"`
	Subject  string        `json:"subject,omitempty" yaml:"subject,omitempty"`
	Location *LocationJSON `json:"location,omitempty" yaml:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DiagnosticsOutput is the document root.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" yaml:"diagnostics"`
	Count       int              `json:"count" yaml:"count"`
	Errors      int              `json:"errors" yaml:"errors"`
	Timings     *observ.Report   `json:"timings,omitempty" yaml:"timings,omitempty"`
}

func makeLocation(span source.Span, fs *source.FileSet, opts StructuredOpts) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      f.FormatPath(opts.PathMode.mode(), ""),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func located(fs *source.FileSet, span source.Span, ok bool) bool {
	return ok && fs != nil && int(span.File) < fs.Len()
}

// BuildDiagnosticsOutput assembles the structured form without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts StructuredOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n), Timings: opts.Timings}
	for i := range n {
		d := &items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Subject:  d.Subject,
		}
		if located(fs, d.Primary, d.Located) {
			loc := makeLocation(d.Primary, fs, opts)
			dj.Location = &loc
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				if !located(fs, note.Span, true) {
					continue
				}
				dj.Notes = append(dj.Notes, NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, fs, opts)})
			}
		}
		if d.Severity >= diag.SevError {
			out.Errors++
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the bag as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts StructuredOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

// YAML writes the bag as a YAML document.
func YAML(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts StructuredOpts) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(BuildDiagnosticsOutput(bag, fs, opts)); err != nil {
		return err
	}
	return enc.Close()
}
