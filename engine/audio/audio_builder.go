package audio

import (
	"time"

	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/faiface/beep"
	"go.uber.org/zap"
)

// ManagerBuilderOption is a functional option applied to a manager during NewManager.
type ManagerBuilderOption func(*manager)

// WithSampleRate sets the speaker sample rate. Sounds are resampled to it on load.
func WithSampleRate(rate int) ManagerBuilderOption {
	return func(m *manager) {
		if rate > 0 {
			m.sampleRate = beep.SampleRate(rate)
		}
	}
}

// WithBufferSize sets the speaker buffer length. Longer buffers trade latency for fewer underruns.
func WithBufferSize(d time.Duration) ManagerBuilderOption {
	return func(m *manager) {
		if d > 0 {
			m.bufferSize = d
		}
	}
}

// WithMasterVolume sets the initial master gain.
func WithMasterVolume(volume float64) ManagerBuilderOption {
	return func(m *manager) {
		m.masterVolume = volume
	}
}

// WithLogger sets the logger used by the manager.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - ManagerBuilderOption: a function that applies the logger to a manager
func WithLogger(logger *zap.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if logger != nil {
			m.logger = logger.Named("audio")
		}
	}
}

// WithConfig applies the audio section of the configuration.
func WithConfig(cfg config.AudioConfig) ManagerBuilderOption {
	return func(m *manager) {
		WithSampleRate(cfg.SampleRate)(m)
		WithBufferSize(time.Duration(cfg.BufferMillis) * time.Millisecond)(m)
		m.masterVolume = cfg.Volume
	}
}

// withPlayer replaces the speaker.
func withPlayer(p player) ManagerBuilderOption {
	return func(m *manager) {
		m.player = p
	}
}
