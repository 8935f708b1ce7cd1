package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeCommand, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeType, false},
		{LevelDebug, ScopeType, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: ModeStream, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	root := Begin(tr, ScopePhase, "load", 0)
	child := Begin(tr, ScopeFile, "file:a.toml", root.ID())
	child.WithExtra("types", "3").End("")
	Begin(tr, ScopeType, "type:i32", child.ID()).End("") // filtered
	root.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Name != "file:a.toml" || ev.Extra["types"] != "3" || ev.ParentID == 0 {
		t.Fatalf("unexpected child end event: %+v", ev)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelPhase)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(r, ScopePhase, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "*  d") {
		t.Fatalf("dump missing last event:\n%s", buf.String())
	}
}

func TestModeBothKeepsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeCommand, "check", 0).End("")
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth should build a MultiTracer, got %T", tr)
	}
	ring, ok := multi.Ring()
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring did not receive both events")
	}
	if !strings.Contains(buf.String(), "-> check") {
		t.Fatalf("stream output missing begin:\n%s", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	outer, ctx := BeginCtx(ctx, ScopePhase, "build")
	inner, _ := BeginCtx(ctx, ScopeType, "type:Point")
	inner.End("")
	outer.End("")

	snap := r.Snapshot()
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", snap[1].ParentID, outer.ID())
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("bare context should yield Nop")
	}
}

func TestOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff should give a disabled tracer")
	}
	if sp := Begin(tr, ScopeCommand, "x", 0); sp.ID() != 0 || sp.End("") != 0 {
		t.Fatalf("disabled span should be inert")
	}
}
