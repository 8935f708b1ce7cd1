package format

import "strings"

// Options tune the text layout.
type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 2
	}
	return o
}

// Writer accumulates output and indents the first write on each line.
type Writer struct {
	opt         Options
	buf         strings.Builder
	indentLevel int
	atLineStart bool
}

func NewWriter(opt Options) *Writer {
	return &Writer{opt: opt.withDefaults()}
}

func (w *Writer) String() string { return w.buf.String() }

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.opt.UseTabs {
		w.buf.WriteString(strings.Repeat("\t", w.indentLevel))
	} else {
		w.buf.WriteString(strings.Repeat(" ", w.indentLevel*w.opt.IndentWidth))
	}
	w.atLineStart = false
}

// WriteString writes s, indenting when it starts a line.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf.WriteString(s)
	w.atLineStart = s[len(s)-1] == '\n'
}

func (w *Writer) WriteByte(b byte) error {
	w.writeIndent()
	w.buf.WriteByte(b)
	w.atLineStart = b == '\n'
	return nil
}

// Newline ends the current line.
func (w *Writer) Newline() {
	w.buf.WriteByte('\n')
	w.atLineStart = true
}

func (w *Writer) IndentPush() { w.indentLevel++ }

func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
