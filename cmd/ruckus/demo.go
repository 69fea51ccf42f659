package main

import (
	"math"

	"github.com/Carmen-Shannon/ruckus/engine"
	"github.com/spf13/cobra"
)

// demoFlags are the flags shared by the window demos.
type demoFlags struct {
	frames int
	title  string
}

func (d *demoFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&d.frames, "frames", 0, "quit after this many frames (0 = run until closed)")
	cmd.Flags().StringVar(&d.title, "title", "", "window title (defaults to the configured title)")
}

// apply sets the title and, when a frame count is set, wraps render so the engine quits after it.
func (d *demoFlags) apply(eng engine.Engine, render func(dt float32) error) {
	if d.title != "" {
		eng.Window().SetTitle(d.title)
	}
	eng.SetRenderCallback(limitFrames(eng.Quit, d.frames, render))
}

// abort stops an engine that has not run yet and returns err. Run drains the quit signal,
// releases the renderer and audio, and closes the window on this goroutine.
func abort(eng engine.Engine, err error) error {
	eng.Quit()
	_ = eng.Run()
	return err
}

// limitFrames returns a render callback that calls quit once n frames have been drawn.
// n <= 0 returns render unchanged.
func limitFrames(quit func(), n int, render func(dt float32) error) func(dt float32) error {
	if n <= 0 {
		return render
	}
	drawn := 0
	return func(dt float32) error {
		err := render(dt)
		drawn++
		if drawn == n {
			quit()
		}
		return err
	}
}

// hueColor returns the fully saturated color at hue degrees, with alpha 1.
func hueColor(hue float64) [4]float64 {
	h := math.Mod(hue, 360)
	if h < 0 {
		h += 360
	}
	x := 1 - math.Abs(math.Mod(h/60, 2)-1)

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = 1, x, 0
	case h < 120:
		r, g, b = x, 1, 0
	case h < 180:
		r, g, b = 0, 1, x
	case h < 240:
		r, g, b = 0, x, 1
	case h < 300:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}
	return [4]float64{r, g, b, 1}
}
