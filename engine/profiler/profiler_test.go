package profiler

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTick(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	clock := &fakeClock{t: time.Unix(0, 0)}

	p := NewProfiler(WithLogger(zap.New(core)), WithInterval(time.Second))
	p.now = clock.now
	p.lastTime = clock.now()

	for range 29 {
		clock.advance(time.Second / 60)
		assert.False(t, p.Tick())
	}
	clock.advance(time.Second)
	assert.True(t, p.Tick(zap.Int("draw_calls", 3)))

	last := p.Last()
	assert.Equal(t, 30, last.Frames)
	assert.InDelta(t, 30/(29.0/60+1), last.FPS, 1e-6)

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(30), fields["frames"])
	assert.Equal(t, int64(3), fields["draw_calls"])
	assert.Equal(t, "profiler", entries[0].LoggerName)

	clock.advance(time.Millisecond)
	assert.False(t, p.Tick())
}

func TestSample(t *testing.T) {
	var m runtime.MemStats
	m.Alloc = 2 * 1024 * 1024
	m.Sys = 8 * 1024 * 1024
	m.TotalAlloc = 5 * 1024 * 1024
	m.NumGC = 3
	m.PauseNs[0] = 1000
	m.PauseNs[1] = 5000
	m.PauseNs[2] = 2000

	s := sample(&m, 120, 2*time.Second, 1, 1024*1024)

	assert.Equal(t, 60.0, s.FPS)
	assert.Equal(t, 2.0, s.HeapMB)
	assert.Equal(t, 8.0, s.SysMB)
	assert.Equal(t, 2.0, s.AllocRateMB)
	assert.Equal(t, uint32(3), s.GCCount)
	assert.Equal(t, 2*time.Microsecond, s.LastPause)
	assert.Equal(t, 5*time.Microsecond, s.MaxPause)
}

func TestSampleNoGC(t *testing.T) {
	var m runtime.MemStats
	s := sample(&m, 10, time.Second, 0, 0)
	assert.Zero(t, s.LastPause)
	assert.Zero(t, s.MaxPause)
	assert.Len(t, s.Fields(), 8)
}
