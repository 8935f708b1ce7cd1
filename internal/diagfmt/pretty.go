package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rusttypes/internal/diag"
	"rusttypes/internal/source"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow, color.Bold)
	infoStyle    = color.New(color.FgCyan, color.Bold)
	gutterStyle  = color.New(color.FgBlue)
)

// Pretty renders each diagnostic of bag (sorted by the caller) as
//
//	error[FIX1003]: "Node" references unknown type "Missing"
//	  --> fixtures/list.yaml:5:3
//	   |
//	 5 |   - name: Node
//	   |   ^^^^^^^^^^^^
//
// Diagnostics without a location print the subject instead of the snippet.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := printer{w: w, fs: fs, opts: opts}
	for i, d := range bag.Items() {
		if i > 0 {
			p.line("")
		}
		p.diagnostic(&d)
	}
	return p.err
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	err  error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	return c.Sprint(s)
}

func (p *printer) label(sev diag.Severity) string {
	style := infoStyle
	switch sev {
	case diag.SevError:
		style = errorStyle
	case diag.SevWarning:
		style = warningStyle
	}
	return p.paint(style, sev.Label())
}

func (p *printer) diagnostic(d *diag.Diagnostic) {
	p.line("%s[%s]: %s", p.label(d.Severity), d.Code.ID(), d.Message)
	if !located(p.fs, d.Primary, d.Located) {
		if d.Subject != "" {
			p.line("  %s %s", p.paint(gutterStyle, "-->"), d.Subject)
		}
		return
	}
	p.snippet(d.Primary, "")
	if d.Subject != "" {
		p.line("  %s subject: %s", p.paint(gutterStyle, "="), d.Subject)
	}
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if located(p.fs, n.Span, true) {
			p.line("  %s note: %s", p.paint(gutterStyle, "="), n.Msg)
			p.snippet(n.Span, "")
		}
	}
}

func (p *printer) snippet(span source.Span, msg string) {
	f := p.fs.Get(span.File)
	start, end := p.fs.Resolve(span)
	p.line("  %s %s:%d:%d", p.paint(gutterStyle, "-->"), f.FormatPath(p.opts.PathMode.mode(), ""), start.Line, start.Col)

	text := strings.TrimRight(f.GetLine(start.Line), "\r")
	num := fmt.Sprint(start.Line)
	pad := strings.Repeat(" ", len(num))
	bar := p.paint(gutterStyle, "|")
	p.line(" %s %s", pad, bar)
	p.line(" %s %s %s", p.paint(gutterStyle, num), bar, text)

	// caret under the span's first line, measured in terminal cells
	from := int(start.Col) - 1
	to := len(text)
	if end.Line == start.Line {
		to = min(int(end.Col)-1, len(text))
	}
	from = min(max(from, 0), len(text))
	for from < to && (text[from] == ' ' || text[from] == '\t') {
		from++
	}
	to = max(to, from+1)
	lead := runewidth.StringWidth(text[:from])
	width := max(1, runewidth.StringWidth(text[from:min(to, len(text))]))
	carets := strings.Repeat(" ", lead) + p.paint(errorStyle, strings.Repeat("^", width))
	if msg != "" {
		carets += " " + msg
	}
	p.line(" %s %s %s", pad, bar, carets)
}
