// Package prof wires Go's CPU, heap and execution-trace profilers to the
// CLI's --cpu-profile, --mem-profile and --exec-trace flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Config names output files; empty paths disable that profile.
type Config struct {
	CPUPath   string
	MemPath   string
	TracePath string
}

// Enabled reports whether any profile was requested.
func (c Config) Enabled() bool {
	return c.CPUPath != "" || c.MemPath != "" || c.TracePath != ""
}

// Session is an active set of profiles. Stop must be called once.
type Session struct {
	cfg       Config
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and execution tracing as configured. On error
// anything already started is stopped.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPUPath != "" {
		f, err := os.Create(cfg.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			_ = s.Stop()
			return nil, fmt.Errorf("exec trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			_ = s.Stop()
			return nil, fmt.Errorf("exec trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends running profiles and writes the heap profile, if requested.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpuFile.Close())
		s.cpuFile = nil
	}
	if s.traceFile != nil {
		rtrace.Stop()
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	if s.cfg.MemPath != "" {
		errs = append(errs, writeHeap(s.cfg.MemPath))
		s.cfg.MemPath = ""
	}
	return errors.Join(errs...)
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
