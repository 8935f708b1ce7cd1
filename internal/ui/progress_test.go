package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestProgressModelTracksFixtures(t *testing.T) {
	events := make(chan Event)
	m := NewProgressModel("check", []string{"a.toml", "b.yaml"}, events).(*progressModel)

	m.Update(eventMsg{Stage: StageLoad, Status: StatusWorking})
	if m.stageLabel != "loading" {
		t.Fatalf("run-wide stage label = %q", m.stageLabel)
	}

	m.Update(eventMsg{File: "a.toml", Stage: StageLayout, Status: StatusWorking})
	if got := m.items[0].status; got != "checking" {
		t.Fatalf("a.toml status = %q, want checking", got)
	}
	if got := m.fraction(); got != 0.3 {
		t.Fatalf("fraction = %v, want 0.3", got)
	}

	m.Update(eventMsg{File: "a.toml", Stage: StageLayout, Status: StatusDone})
	m.Update(eventMsg{File: "b.yaml", Stage: StageLoad, Status: StatusError, Err: errors.New("boom")})
	m.Update(eventMsg{File: "b.yaml", Stage: StageLayout, Status: StatusDone})
	if got := m.items[1].status; got != "error" {
		t.Fatalf("error must stick, got %q", got)
	}
	if got := m.fraction(); got != 1.0 {
		t.Fatalf("fraction = %v, want 1", got)
	}

	m.Update(eventMsg{File: "unknown.toml", Stage: StageLoad, Status: StatusDone})

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done message must finish the model")
	}
	view := m.View()
	for _, want := range []string{"done: check (loading)", "a.toml", "b.yaml", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelEmptyView(t *testing.T) {
	m := NewProgressModel("check", nil, nil)
	if v := m.View(); v != "" {
		t.Fatalf("empty model rendered %q", v)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ChannelSink{Ch: ch}, Event{File: "x", Status: StatusDone})
	if ev := <-ch; ev.File != "x" {
		t.Fatalf("unexpected event %+v", ev)
	}
	Emit(nil, Event{})
	ChannelSink{}.OnEvent(Event{})
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("fixtures/very/long/path.toml", 10); got != "fixture..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
