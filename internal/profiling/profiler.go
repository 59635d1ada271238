// Package profiling captures CPU, heap and execution-trace profiles for a
// single indentstat invocation.
package profiling

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/dustin/go-humanize"

	ierrors "github.com/Aman-CERP/indentstat/internal/errors"
)

// Options names the output file for each profile kind. Empty disables it.
type Options struct {
	CPU   string
	Mem   string
	Trace string
}

// Enabled reports whether any profile was requested.
func (o Options) Enabled() bool {
	return o.CPU != "" || o.Mem != "" || o.Trace != ""
}

// Profiler manages the underlying runtime profilers.
type Profiler struct {
	cpuFile   *os.File
	traceFile *os.File
}

// NewProfiler creates a new Profiler instance.
func NewProfiler() *Profiler {
	return &Profiler{}
}

// StartCPU starts CPU profiling to path.
// The returned function stops profiling and flushes the file.
func (p *Profiler) StartCPU(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, ierrors.IOError(path, err).WithDetail("profile", "cpu")
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, ierrors.InternalError("failed to start CPU profile", err)
	}
	p.cpuFile = f

	return func() {
		pprof.StopCPUProfile()
		_ = p.cpuFile.Close()
		p.cpuFile = nil
	}, nil
}

// StartTrace starts execution tracing to path.
func (p *Profiler) StartTrace(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, ierrors.IOError(path, err).WithDetail("profile", "trace")
	}

	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return nil, ierrors.InternalError("failed to start trace", err)
	}
	p.traceFile = f

	return func() {
		trace.Stop()
		_ = p.traceFile.Close()
		p.traceFile = nil
	}, nil
}

// WriteHeap writes a point-in-time heap profile to path.
func (p *Profiler) WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return ierrors.IOError(path, err).WithDetail("profile", "heap")
	}
	defer func() { _ = f.Close() }()

	// GC first so the profile reflects live objects only.
	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return ierrors.InternalError("failed to write heap profile", err)
	}
	return nil
}

// Session is one profiled invocation: CPU and trace run from Start until
// Stop, and the heap snapshot is taken at Stop.
type Session struct {
	opts     Options
	profiler *Profiler
	stops    []func()
}

// Start begins every profile requested in opts. A failure stops whatever
// was already started.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts, profiler: NewProfiler()}

	if opts.CPU != "" {
		stop, err := s.profiler.StartCPU(opts.CPU)
		if err != nil {
			return nil, err
		}
		s.stops = append(s.stops, stop)
		slog.Info("CPU profiling started", slog.String("file", opts.CPU))
	}

	if opts.Trace != "" {
		stop, err := s.profiler.StartTrace(opts.Trace)
		if err != nil {
			s.stopAll()
			return nil, err
		}
		s.stops = append(s.stops, stop)
		slog.Info("execution tracing started", slog.String("file", opts.Trace))
	}

	return s, nil
}

// Stop ends the running profiles and writes the heap profile, if requested.
// Safe to call more than once.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.stopAll()

	if s.opts.Mem != "" {
		if err := s.profiler.WriteHeap(s.opts.Mem); err != nil {
			return err
		}
		slog.Info("heap profile written", slog.String("file", s.opts.Mem))
		s.opts.Mem = ""
	}

	m := MemStats()
	slog.Debug("memory at exit",
		slog.String("heap_alloc", FormatBytes(m.HeapAlloc)),
		slog.String("total_alloc", FormatBytes(m.TotalAlloc)),
		slog.Uint64("num_gc", uint64(m.NumGC)))
	return nil
}

func (s *Session) stopAll() {
	// Reverse order of start.
	for i := len(s.stops) - 1; i >= 0; i-- {
		s.stops[i]()
	}
	s.stops = nil
}

// MemStats returns the current runtime memory statistics.
func MemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(b uint64) string {
	return humanize.IBytes(b)
}
