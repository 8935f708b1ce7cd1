package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.End(load, "2 files")
	check := tm.Begin("check")
	tm.End(check, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Note != "2 files" {
		t.Fatalf("note lost: %+v", rep.Phases[0])
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "load", "// 2 files", "total"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Phases != nil {
		t.Fatalf("empty timer should report nothing: %+v", rep)
	}
}
