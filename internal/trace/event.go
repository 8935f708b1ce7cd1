package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command
	ScopePhase                    // load, build, check, emit
	ScopeFile                     // one fixture document
	ScopeType                     // one type node
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopePhase:
		return "phase"
	case ScopeFile:
		return "file"
	case ScopeType:
		return "type"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "load", "file:fixtures/option.toml"
	Detail   string
	Extra    map[string]string
}
