package diag

import (
	"sync"

	"rusttypes/internal/source"
)

// Reporter receives diagnostics from the loader, checks and formatters.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates details before emitting to a Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, primary, msg)}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// ReportAbout starts an unlocated diagnostic about subject.
func ReportAbout(r Reporter, sev Severity, code Code, subject, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: NewUnlocated(sev, code, subject, msg)}
}

// WithNote appends a note.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithSubject names the type or declaration involved.
func (b *ReportBuilder) WithSubject(subject string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Subject = subject
	return b
}

// Emit sends the diagnostic exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter writes into a Bag. It is safe for concurrent use when the
// same BagReporter value is shared.
type BagReporter struct {
	Bag *Bag
	mu  *sync.Mutex
}

// NewBagReporter wraps bag with a lock.
func NewBagReporter(bag *Bag) BagReporter {
	return BagReporter{Bag: bag, mu: &sync.Mutex{}}
}

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
