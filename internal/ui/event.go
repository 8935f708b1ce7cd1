// Package ui renders live progress for multi-fixture commands.
package ui

// Stage is the step a fixture is in.
type Stage string

const (
	// StageLoad decodes and builds the fixture's registry.
	StageLoad Stage = "load"
	// StageLayout validates every type's layout.
	StageLayout Stage = "layout"
	// StageEmit emits C declarations.
	StageEmit Stage = "emit"
)

// Status is the state of a fixture within its stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one fixture, or for the whole run when File is
// empty.
type Event struct {
	File   string
	Stage  Stage
	Status Status
	Err    error
}

// Sink consumes progress events. Implementations must be safe for
// concurrent use.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// Emit sends evt to sink when it is non-nil.
func Emit(sink Sink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
