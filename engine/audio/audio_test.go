package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer mixes into memory; pull plays the role of the speaker goroutine.
type fakePlayer struct {
	mu         sync.Mutex
	mixer      beep.Mixer
	rate       beep.SampleRate
	bufferSize int
	initErr    error
	closed     bool
}

func (p *fakePlayer) Init(rate beep.SampleRate, bufferSize int) error {
	p.rate = rate
	p.bufferSize = bufferSize
	return p.initErr
}

func (p *fakePlayer) Play(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Add(s)
}

func (p *fakePlayer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Clear()
}

func (p *fakePlayer) Lock()   { p.mu.Lock() }
func (p *fakePlayer) Unlock() { p.mu.Unlock() }
func (p *fakePlayer) Close()  { p.closed = true }

func (p *fakePlayer) pull(n int) [][2]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	samples := make([][2]float64, n)
	p.mixer.Stream(samples)
	return samples
}

func constant(n int, v float64) beep.Streamer {
	return beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	}))
}

func writeWav(t *testing.T, name string, rate beep.SampleRate, n int, v float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, constant(n, v), format))
	return path
}

func newTestManager(t *testing.T, options ...ManagerBuilderOption) (*manager, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{}
	m, err := NewManager(append([]ManagerBuilderOption{withPlayer(p)}, options...)...)
	require.NoError(t, err)
	return m.(*manager), p
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestNewManager(t *testing.T) {
	m, p := newTestManager(t)
	assert.Equal(t, defaultSampleRate, m.SampleRate())
	assert.Equal(t, defaultSampleRate, p.rate)
	assert.Equal(t, defaultSampleRate.N(defaultBuffer), p.bufferSize)
	assert.Equal(t, 1.0, m.MasterVolume())

	_, err := NewManager(withPlayer(&fakePlayer{initErr: errors.New("no device")}))
	assert.ErrorContains(t, err, "no device")
}

func TestManagerWithConfig(t *testing.T) {
	m, p := newTestManager(t, WithConfig(config.AudioConfig{
		SampleRate:   48000,
		BufferMillis: 50,
		Volume:       0.8,
	}))

	assert.Equal(t, beep.SampleRate(48000), m.SampleRate())
	assert.Equal(t, beep.SampleRate(48000).N(50*time.Millisecond), p.bufferSize)
	assert.Equal(t, 0.8, m.MasterVolume())
}

func TestLoadSound(t *testing.T) {
	m, _ := newTestManager(t)
	path := writeWav(t, "tone.wav", 44100, 1000, 0.5)

	s, err := m.LoadSound(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Name())
	assert.Equal(t, 1000, s.Len())
	assert.Equal(t, 2, s.Format().NumChannels)
	assert.Equal(t, beep.SampleRate(44100).D(1000), s.Duration())

	again, err := m.LoadSound(path)
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestLoadSoundResamples(t *testing.T) {
	m, _ := newTestManager(t)
	path := writeWav(t, "low.wav", 22050, 1000, 0.5)

	s, err := m.LoadSound(path)
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(44100), s.Format().SampleRate)
	assert.InDelta(t, 2000, s.Len(), 8)
}

func TestLoadSoundErrors(t *testing.T) {
	m, _ := newTestManager(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))
	_, err := m.LoadSound(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = m.LoadSound(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlay(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 1000, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, InstanceSettings{Volume: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Playing())

	samples := p.pull(100)
	assert.InDelta(t, 0.25, samples[0][0], 1e-3)
	assert.InDelta(t, 0.25, samples[99][1], 1e-3)
	assert.False(t, closed(inst.Done()))

	p.pull(2000)
	assert.True(t, closed(inst.Done()))
	assert.Zero(t, m.Playing())
}

func TestInstancePauseResume(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 1000, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, InstanceSettings{Volume: 1, Paused: true})
	require.NoError(t, err)
	assert.True(t, inst.Paused())
	assert.Zero(t, p.pull(10)[5][0])

	inst.Resume()
	assert.False(t, inst.Paused())
	assert.InDelta(t, 0.5, p.pull(10)[5][0], 1e-3)

	inst.Pause()
	p.pull(5000)
	assert.False(t, closed(inst.Done()))
}

func TestInstanceStop(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 1000, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, DefaultInstanceSettings())
	require.NoError(t, err)

	inst.Stop()
	assert.True(t, closed(inst.Done()))
	assert.Zero(t, m.Playing())
	assert.Zero(t, p.pull(10)[0][0])

	inst.Stop()
}

func TestInstanceLoop(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 100, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, InstanceSettings{Volume: 1, Loop: true})
	require.NoError(t, err)

	samples := p.pull(1000)
	assert.InDelta(t, 0.5, samples[999][0], 1e-3)
	assert.False(t, closed(inst.Done()))

	m.StopAll()
	assert.True(t, closed(inst.Done()))
}

func TestVolume(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 1000, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, DefaultInstanceSettings())
	require.NoError(t, err)

	m.SetMasterVolume(0.5)
	assert.InDelta(t, 0.25, p.pull(10)[0][0], 1e-3)

	inst.SetVolume(2)
	assert.Equal(t, 2.0, inst.Volume())
	assert.InDelta(t, 0.5, p.pull(10)[0][0], 1e-3)

	inst.SetVolume(0)
	assert.Zero(t, p.pull(10)[0][0])
}

func TestManagerClose(t *testing.T) {
	m, p := newTestManager(t)
	s, err := m.LoadSound(writeWav(t, "tone.wav", 44100, 1000, 0.5))
	require.NoError(t, err)

	inst, err := m.Play(s, DefaultInstanceSettings())
	require.NoError(t, err)

	m.Close()
	assert.True(t, p.closed)
	assert.True(t, closed(inst.Done()))

	_, err = m.Play(s, DefaultInstanceSettings())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.LoadSound("other.wav")
	assert.ErrorIs(t, err, ErrClosed)

	m.Close()
}
