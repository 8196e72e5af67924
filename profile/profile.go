package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Session is a running profiling session.
//
// Create instances with [Config.Start].
type Session struct {
	cpuFile   *os.File
	traceFile *os.File
	cfg       Config
}

// Start applies the configured sampling rates and starts CPU profiling and
// execution tracing when enabled. Call [Session.Stop] to finish them and
// write snapshot profiles.
func (c *Config) Start() (*Session, error) {
	s := &Session{cfg: *c}

	if c.MemProfileRate > 0 {
		runtime.MemProfileRate = c.MemProfileRate
	}

	switch {
	case c.BlockProfileRate > 0:
		runtime.SetBlockProfileRate(c.BlockProfileRate)
	case c.BlockProfile != "":
		runtime.SetBlockProfileRate(1)
	}

	if c.CPUProfile != "" {
		f, err := os.Create(c.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
		if err != nil {
			return nil, fmt.Errorf("creating CPU profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("starting CPU profile: %w", err), f.Close())
		}

		s.cpuFile = f
	}

	if c.Trace != "" {
		f, err := os.Create(c.Trace) //nolint:gosec // Trace path from CLI flag is expected.
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating trace: %w", err), s.stopCPU())
		}

		err = trace.Start(f)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("starting trace: %w", err), f.Close(), s.stopCPU())
		}

		s.traceFile = f
	}

	return s, nil
}

// Stop finishes CPU profiling and tracing, then writes all enabled snapshot
// profiles. Stop is idempotent for the CPU profile and trace.
func (s *Session) Stop() error {
	errs := []error{s.stopCPU(), s.stopTrace()}

	for _, p := range []struct {
		name string
		path string
	}{
		{"heap", s.cfg.HeapProfile},
		{"allocs", s.cfg.AllocsProfile},
		{"goroutine", s.cfg.GoroutineProfile},
		{"block", s.cfg.BlockProfile},
	} {
		if p.path == "" {
			continue
		}

		errs = append(errs, writeProfile(p.name, p.path))
	}

	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}

	pprof.StopCPUProfile()

	err := s.cpuFile.Close()
	s.cpuFile = nil

	if err != nil {
		return fmt.Errorf("closing CPU profile: %w", err)
	}

	return nil
}

func (s *Session) stopTrace() error {
	if s.traceFile == nil {
		return nil
	}

	trace.Stop()

	err := s.traceFile.Close()
	s.traceFile = nil

	if err != nil {
		return fmt.Errorf("closing trace: %w", err)
	}

	return nil
}

// writeProfile writes a named pprof profile to path.
func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("write %s profile: %w", name, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}

	return nil
}
