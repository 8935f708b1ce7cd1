package diag

import (
	"fmt"
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means no cap.
func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{items: make([]Diagnostic, 0, min(max, 64)), max: max}
}

// Add appends d unless the cap is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int { return b.max }

// HasErrors reports whether any diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is SevWarning or worse.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int { return len(b.items) }

// Items exposes the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends other's diagnostics, growing the cap when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if n := len(b.items) + len(other.items); b.max > 0 && n > b.max {
		b.max = n
	}
	b.items = append(b.items, other.items...)
}

// Sort orders located diagnostics by file and offset before unlocated ones
// by subject, then by severity (desc) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Located != dj.Located {
			return di.Located
		}
		if di.Located {
			if di.Primary.File != dj.Primary.File {
				return di.Primary.File < dj.Primary.File
			}
			if di.Primary.Start != dj.Primary.Start {
				return di.Primary.Start < dj.Primary.Start
			}
			if di.Primary.End != dj.Primary.End {
				return di.Primary.End < dj.Primary.End
			}
		} else if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops repeats keyed by code, location and message.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s|%t|%s|%s|%s", d.Code.ID(), d.Located, d.Primary, d.Subject, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
