package diag

import "rusttypes/internal/source"

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding. Subject names the type or declaration it is
// about when it has no place in a file (registries built in code).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Primary  source.Span
	Located  bool
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Located: true, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewUnlocated builds a diagnostic tied to a subject name only.
func NewUnlocated(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Subject: subject, Message: msg}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
