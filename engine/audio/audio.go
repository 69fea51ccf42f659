// Package audio loads sound files into memory and plays them through the system speaker.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"go.uber.org/zap"
)

// ErrClosed is returned by a Manager after Close.
var ErrClosed = errors.New("audio: manager closed")

const (
	defaultSampleRate beep.SampleRate = 44100
	defaultBuffer                     = 100 * time.Millisecond
)

type manager struct {
	mu     *sync.Mutex
	logger *zap.Logger
	player player

	sampleRate   beep.SampleRate
	bufferSize   time.Duration
	masterVolume float64

	sounds map[string]*sound
	active map[*instance]struct{}
	closed bool
}

// Manager owns the speaker, the loaded sounds and the playing instances.
//
// Usage pattern:
//  1. NewManager initializes the speaker
//  2. LoadSound decodes a file once
//  3. Play starts an Instance of a Sound; the Instance controls that playback only
//  4. Close stops everything and releases the speaker
type Manager interface {
	// LoadSound decodes a WAV, MP3, OGG Vorbis or FLAC file, resampled to SampleRate. Loading the
	// same path twice returns the cached Sound.
	//
	// Parameters:
	//   - path: the sound file path; the format is chosen by extension
	//
	// Returns:
	//   - Sound: the decoded sound
	//   - error: ErrUnsupportedFormat for an unknown extension, or a decode error
	LoadSound(path string) (Sound, error)

	// Play starts a new playback of s.
	//
	// Parameters:
	//   - s: a Sound returned by LoadSound
	//   - settings: volume, looping and initial pause state
	//
	// Returns:
	//   - Instance: the playback handle
	//   - error: ErrClosed after Close
	Play(s Sound, settings InstanceSettings) (Instance, error)

	// SetMasterVolume sets a linear gain applied to every instance.
	SetMasterVolume(volume float64)

	// MasterVolume returns the master gain.
	MasterVolume() float64

	// SampleRate returns the speaker sample rate all sounds are resampled to.
	SampleRate() beep.SampleRate

	// Playing returns the number of instances that have not finished.
	Playing() int

	// StopAll stops every playing instance.
	StopAll()

	// Close stops every instance and closes the speaker.
	Close()
}

var _ Manager = &manager{}

// NewManager initializes the speaker and returns a Manager.
//
// Parameters:
//   - options: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the audio manager
//   - error: an error if the speaker cannot be initialized
func NewManager(options ...ManagerBuilderOption) (Manager, error) {
	m := &manager{
		mu:           &sync.Mutex{},
		logger:       zap.NewNop(),
		player:       speakerPlayer{},
		sampleRate:   defaultSampleRate,
		bufferSize:   defaultBuffer,
		masterVolume: 1,
		sounds:       make(map[string]*sound),
		active:       make(map[*instance]struct{}),
	}
	for _, opt := range options {
		opt(m)
	}

	if err := m.player.Init(m.sampleRate, m.sampleRate.N(m.bufferSize)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	m.logger.Info("speaker initialized",
		zap.Int("sample_rate", int(m.sampleRate)),
		zap.Duration("buffer", m.bufferSize),
	)
	return m, nil
}

func (m *manager) LoadSound(path string) (Sound, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if s, ok := m.sounds[path]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	start := time.Now()
	s, err := loadSound(path, m.sampleRate)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.sounds[path]; ok {
		return cached, nil
	}
	m.sounds[path] = s

	m.logger.Debug("sound loaded",
		zap.String("path", path),
		zap.Duration("length", s.Duration()),
		zap.Int("channels", s.Format().NumChannels),
		zap.Duration("elapsed", time.Since(start)),
	)
	return s, nil
}

func (m *manager) Play(s Sound, settings InstanceSettings) (Instance, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	inst := newInstance(m, s, settings, m.masterVolume)
	m.active[inst] = struct{}{}
	m.mu.Unlock()

	m.player.Play(inst.stream())
	m.logger.Debug("sound playing", zap.String("sound", s.Name()), zap.Bool("loop", settings.Loop))
	return inst, nil
}

// forget drops a finished instance.
func (m *manager) forget(i *instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, i)
}

// snapshot returns the active instances.
func (m *manager) snapshot() []*instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*instance, 0, len(m.active))
	for i := range m.active {
		out = append(out, i)
	}
	return out
}

func (m *manager) SetMasterVolume(volume float64) {
	m.mu.Lock()
	m.masterVolume = volume
	m.mu.Unlock()

	instances := m.snapshot()
	m.player.Lock()
	for _, i := range instances {
		i.applyGain(volume)
	}
	m.player.Unlock()
}

func (m *manager) MasterVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masterVolume
}

func (m *manager) SampleRate() beep.SampleRate {
	return m.sampleRate
}

func (m *manager) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *manager) StopAll() {
	for _, i := range m.snapshot() {
		i.Stop()
	}
}

func (m *manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.StopAll()
	m.player.Clear()
	m.player.Close()
	m.logger.Info("speaker closed")
}
