package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// resampleQuality is passed to beep.Resample; 4 is the quality beep documents as a good default.
const resampleQuality = 4

// Sound is a fully decoded clip held in memory at the manager's sample rate. A Sound can be played
// any number of times concurrently.
type Sound interface {
	// Name returns the path or name the sound was loaded from.
	Name() string

	// Format returns the sample format of the decoded buffer.
	Format() beep.Format

	// Len returns the number of samples.
	Len() int

	// Duration returns the playback length.
	Duration() time.Duration

	// streamer returns a fresh streamer over the whole buffer.
	streamer() beep.StreamSeeker
}

type sound struct {
	name   string
	buffer *beep.Buffer
}

var _ Sound = &sound{}

func (s *sound) Name() string {
	return s.name
}

func (s *sound) Format() beep.Format {
	return s.buffer.Format()
}

func (s *sound) Len() int {
	return s.buffer.Len()
}

func (s *sound) Duration() time.Duration {
	return s.buffer.Format().SampleRate.D(s.buffer.Len())
}

func (s *sound) streamer() beep.StreamSeeker {
	return s.buffer.Streamer(0, s.buffer.Len())
}

// decode picks a decoder by file extension. The returned streamer owns r.
func decode(r io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".wav", ".wave":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".ogg", ".oga":
		return vorbis.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// loadSound decodes the file at path and buffers it at rate.
func loadSound(path string, rate beep.SampleRate) (*sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound: %w", err)
	}
	return readSound(f, path, filepath.Ext(path), rate)
}

// readSound decodes r as ext and buffers it at rate. r is closed before returning.
func readSound(r io.ReadCloser, name, ext string, rate beep.SampleRate) (*sound, error) {
	streamer, format, err := decode(r, ext)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  rate,
		NumChannels: format.NumChannels,
		Precision:   format.Precision,
	})
	buffer.Append(src)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return &sound{name: name, buffer: buffer}, nil
}
