package diag

import "rusttypes/internal/source"

type dedupKey struct {
	code    Code
	sev     Severity
	located bool
	span    source.Span
	subject string
	msg     string
}

// DedupReporter suppresses repeats with the same code, severity, location
// and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter forwards unique diagnostics to next.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:    d.Code,
		sev:     d.Severity,
		located: d.Located,
		span:    d.Primary,
		subject: d.Subject,
		msg:     d.Message,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
