package audio

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// player is the output device streams are mixed into. Lock must be held while changing the state
// of a stream the player is reading from.
type player interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

// speakerPlayer plays through the process-wide beep speaker.
type speakerPlayer struct{}

func (speakerPlayer) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerPlayer) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerPlayer) Clear()               { speaker.Clear() }
func (speakerPlayer) Lock()                { speaker.Lock() }
func (speakerPlayer) Unlock()              { speaker.Unlock() }
func (speakerPlayer) Close()               { speaker.Close() }
