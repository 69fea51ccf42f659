package profiler

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stats is one profiler sample covering the frames since the previous sample.
type Stats struct {
	FPS         float64
	Frames      int
	HeapMB      float64
	SysMB       float64
	AllocRateMB float64 // MB allocated per second over the interval
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration // longest GC pause during the interval
}

// Fields returns s as structured log fields.
func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Float64("fps", s.FPS),
		zap.Int("frames", s.Frames),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_rate_mb_s", s.AllocRateMB),
		zap.Uint32("gc_count", s.GCCount),
		zap.Duration("gc_last_pause", s.LastPause),
		zap.Duration("gc_max_pause", s.MaxPause),
		zap.Float64("sys_mb", s.SysMB),
	}
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Logs a sample at a configurable interval.
type Profiler struct {
	mu     *sync.Mutex
	logger *zap.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerOption is a functional option applied by NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick takes and logs a sample.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger samples are written to.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - ProfilerOption: a function that applies the logger to a profiler
func WithLogger(logger *zap.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger.Named("profiler")
		}
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing. When the update interval has
// elapsed it samples memory statistics and logs them along with extra.
//
// Parameters:
//   - extra: additional fields logged with the sample, e.g. renderer counters
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(extra ...zap.Field) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := sample(&p.memStats, p.frameCount, elapsed, p.lastGCCount, p.lastTotalAlloc)
	p.logger.Info("frame stats", append(s.Fields(), extra...)...)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent sample.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// sample computes Stats for frames rendered over elapsed.
func sample(m *runtime.MemStats, frames int, elapsed time.Duration, lastGCCount uint32, lastTotalAlloc uint64) Stats {
	const mb = 1024 * 1024
	seconds := elapsed.Seconds()

	s := Stats{
		FPS:         float64(frames) / seconds,
		Frames:      frames,
		HeapMB:      float64(m.Alloc) / mb,
		SysMB:       float64(m.Sys) / mb,
		AllocRateMB: float64(m.TotalAlloc-lastTotalAlloc) / mb / seconds,
		GCCount:     m.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 pauses.
	if m.NumGC > 0 {
		s.LastPause = time.Duration(m.PauseNs[(m.NumGC-1)%256])

		start := lastGCCount
		if m.NumGC-start > 256 {
			start = m.NumGC - 256
		}
		for i := start; i < m.NumGC; i++ {
			if pause := time.Duration(m.PauseNs[i%256]); pause > s.MaxPause {
				s.MaxPause = pause
			}
		}
	}
	return s
}
