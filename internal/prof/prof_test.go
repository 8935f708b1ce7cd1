package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPUPath:   filepath.Join(dir, "cpu.pprof"),
		MemPath:   filepath.Join(dir, "mem.pprof"),
		TracePath: filepath.Join(dir, "exec.trace"),
	}
	if !cfg.Enabled() {
		t.Fatal("config with paths should be enabled")
	}
	s, err := Start(cfg)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
	for _, p := range []string{cfg.CPUPath, cfg.MemPath, cfg.TracePath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s not written: %v", filepath.Base(p), err)
		}
	}
}

func TestStartFailsOnBadPath(t *testing.T) {
	_, err := Start(Config{CPUPath: filepath.Join(t.TempDir(), "missing", "cpu.pprof")})
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
	if (Config{}).Enabled() {
		t.Fatal("empty config should be disabled")
	}
}
