package diag

import (
	"fmt"
	"sort"
	"strings"

	"rusttypes/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Where    string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders one line per diagnostic:
//
//	error TYP2002 fixtures/option.toml:12:1 discriminant matches no variant
//	warning TYP2003 Color: value 7 matches no enumerator
//
// Located entries resolve through fs and come first; output is sorted and
// has no trailing newline.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if (di.Path == "") != (dj.Path == "") {
			return di.Path != ""
		}
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Where != dj.Where {
			return di.Where < dj.Where
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Where, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []shortDiagnostic, d *Diagnostic, fs *source.FileSet, includeNotes bool) []shortDiagnostic {
	entry := shortDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Message:  sanitizeMessage(d.Message),
	}
	if loc, ok := resolveSpan(fs, d.Primary, d.Located); ok {
		entry.Path, entry.Line, entry.Column = loc.Path, loc.Line, loc.Column
		entry.Where = fmt.Sprintf("%s:%d:%d", loc.Path, loc.Line, loc.Column)
		if d.Subject != "" {
			entry.Message = d.Subject + ": " + entry.Message
		}
	} else {
		entry.Where = d.Subject + ":"
		if d.Subject == "" {
			entry.Where = "-"
		}
	}
	out = append(out, entry)

	if includeNotes {
		for _, note := range d.Notes {
			nloc, ok := resolveSpan(fs, note.Span, true)
			if !ok {
				continue
			}
			out = append(out, shortDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Where:    fmt.Sprintf("%s:%d:%d", nloc.Path, nloc.Line, nloc.Column),
				Path:     nloc.Path,
				Line:     nloc.Line,
				Column:   nloc.Column,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

type resolvedSpan struct {
	Path   string
	Line   uint32
	Column uint32
}

func resolveSpan(fs *source.FileSet, span source.Span, located bool) (resolvedSpan, bool) {
	if !located || fs == nil || int(span.File) >= fs.Len() {
		return resolvedSpan{}, false
	}
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return resolvedSpan{
		Path:   strings.TrimPrefix(file.FormatPath("relative", ""), "./"),
		Line:   start.Line,
		Column: start.Col,
	}, true
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
