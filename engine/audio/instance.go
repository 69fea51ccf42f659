package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// InstanceSettings control a single playback of a Sound.
type InstanceSettings struct {
	// Volume is a linear gain; 1 plays the sound unchanged and 0 silences it.
	Volume float64
	// Loop repeats the sound until the instance is stopped.
	Loop bool
	// Paused starts the instance paused.
	Paused bool
}

// DefaultInstanceSettings plays a sound once at full volume.
func DefaultInstanceSettings() InstanceSettings {
	return InstanceSettings{Volume: 1}
}

// Instance is one playback of a Sound.
type Instance interface {
	// Pause silences the instance and holds its position.
	Pause()

	// Resume continues a paused instance.
	Resume()

	// Paused reports whether the instance is paused.
	Paused() bool

	// Stop ends playback. Stopping a finished instance does nothing.
	Stop()

	// SetVolume sets the instance's linear gain. The manager's master volume is applied on top.
	SetVolume(volume float64)

	// Volume returns the instance's linear gain.
	Volume() float64

	// Done is closed when the instance finishes or is stopped.
	Done() <-chan struct{}
}

type instance struct {
	manager *manager

	ctrl   *beep.Ctrl
	volume *effects.Volume
	gain   float64

	done chan struct{}
	once sync.Once
}

var _ Instance = &instance{}

func newInstance(m *manager, s Sound, settings InstanceSettings, master float64) *instance {
	var src beep.Streamer = s.streamer()
	if settings.Loop {
		src = beep.Loop(-1, s.streamer())
	}

	inst := &instance{
		manager: m,
		ctrl:    &beep.Ctrl{Streamer: src, Paused: settings.Paused},
		gain:    settings.Volume,
		done:    make(chan struct{}),
	}
	inst.volume = &effects.Volume{Streamer: inst.ctrl, Base: 2}
	inst.applyGain(master)
	return inst
}

// stream is what the manager hands to the player: the controlled sound followed by a callback
// marking the instance done.
func (i *instance) stream() beep.Streamer {
	return beep.Seq(i.volume, beep.Callback(i.finish))
}

// applyGain sets the effective gain. Caller must hold the player lock.
func (i *instance) applyGain(master float64) {
	g := i.gain * master
	if g <= 0 {
		i.volume.Silent = true
		i.volume.Volume = 0
		return
	}
	i.volume.Silent = false
	i.volume.Volume = math.Log2(g)
}

func (i *instance) finish() {
	i.once.Do(func() {
		close(i.done)
		i.manager.forget(i)
	})
}

func (i *instance) Pause() {
	i.manager.player.Lock()
	i.ctrl.Paused = true
	i.manager.player.Unlock()
}

func (i *instance) Resume() {
	i.manager.player.Lock()
	i.ctrl.Paused = false
	i.manager.player.Unlock()
}

func (i *instance) Paused() bool {
	i.manager.player.Lock()
	defer i.manager.player.Unlock()
	return i.ctrl.Paused
}

func (i *instance) Stop() {
	i.manager.player.Lock()
	i.ctrl.Streamer = nil
	i.ctrl.Paused = false
	i.manager.player.Unlock()
	i.finish()
}

func (i *instance) SetVolume(volume float64) {
	i.manager.player.Lock()
	defer i.manager.player.Unlock()
	i.gain = volume
	i.applyGain(i.manager.MasterVolume())
}

func (i *instance) Volume() float64 {
	i.manager.player.Lock()
	defer i.manager.player.Unlock()
	return i.gain
}

func (i *instance) Done() <-chan struct{} {
	return i.done
}
