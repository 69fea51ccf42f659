package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/ruckus/engine/audio"
	"github.com/Carmen-Shannon/ruckus/engine/camera"
	"github.com/Carmen-Shannon/ruckus/engine/profiler"
	"github.com/Carmen-Shannon/ruckus/engine/renderer"
	"github.com/Carmen-Shannon/ruckus/engine/window"
	"go.uber.org/zap"
)

// ErrRunning is returned by Run when the engine is already running.
var ErrRunning = errors.New("engine: already running")

// skipBackoff is how long the render loop waits after a frame could not be acquired, e.g. while
// the window is minimized.
const skipBackoff = 10 * time.Millisecond

// frameTarget is the part of the renderer the render loop drives.
type frameTarget interface {
	BeginFrame() error
	Present()
	Stats() renderer.FrameStats
}

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	mu     *sync.Mutex
	logger *zap.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once // Ensures quitChannel is only closed once
	shutdownOnce sync.Once

	window          window.Window
	windowOptions   []window.WindowBuilderOption
	renderer        renderer.Renderer
	rendererOptions []renderer.RendererBuilderOption
	frames          frameTarget
	cameraOptions   []camera.CameraBuilderOption
	flyCamera       bool
	controller      camera.FlyController
	audioEnabled    bool
	audioOptions    []audio.ManagerBuilderOption
	audio           audio.Manager

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32) error

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
//
// Usage pattern:
//  1. NewEngine creates the window, renderer and optional audio manager
//  2. SetTickCallback and SetRenderCallback register game logic and drawing
//  3. Run blocks on the calling goroutine, which must be the main goroutine, until the window
//     closes or Quit is called
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing into the window.
	Renderer() renderer.Renderer

	// Camera returns the renderer's camera.
	Camera() camera.Camera

	// Controller returns the fly controller, or nil when WithFlyCamera was not enabled.
	Controller() camera.FlyController

	// Audio returns the audio manager, or nil when audio is disabled or no device was available.
	Audio() audio.Manager

	// Logger returns the engine logger.
	Logger() *zap.Logger

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame, between the renderer's
	// BeginFrame and Present. The frame has already been cleared to the configured clear color.
	// A returned error is logged and the frame is still presented.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32) error)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine and render loops and processes window messages until the window
	// closes or Quit is called. GPU and audio resources are released before it returns.
	//
	// Returns:
	//   - error: ErrRunning if Run was already called
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates the window, renderer and, when enabled, the audio manager.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// A missing audio device is logged and leaves Audio nil rather than failing.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the renderer cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := newEngine(options...)

	if e.window == nil {
		e.window = window.NewWindow(append([]window.WindowBuilderOption{window.WithLogger(e.logger)}, e.windowOptions...)...)
	}

	cam := camera.NewCamera(e.cameraOptions...)
	r, err := renderer.NewRenderer(e.window, append([]renderer.RendererBuilderOption{
		renderer.WithLogger(e.logger),
		renderer.WithCamera(cam),
	}, e.rendererOptions...)...)
	if err != nil {
		_ = e.window.Close()
		return nil, err
	}
	e.renderer = r
	e.frames = r

	if e.flyCamera {
		e.controller = camera.NewFlyController(cam)
		e.controller.Attach(e.window)
	}

	if e.audioEnabled {
		m, err := audio.NewManager(append([]audio.ManagerBuilderOption{audio.WithLogger(e.logger)}, e.audioOptions...)...)
		if err != nil {
			e.logger.Warn("audio disabled", zap.Error(err))
		} else {
			e.audio = m
		}
	}

	e.window.SetResizeCallback(func(width, height int) {
		if err := r.Resize(width, height); err != nil {
			e.logger.Error("resize failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		}
	})
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.shutdown()
		default:
		}
	})

	return e, nil
}

// newEngine applies defaults and options without creating any platform object.
func newEngine(options ...EngineBuilderOption) *engine {
	e := &engine{
		mu:              &sync.Mutex{},
		logger:          zap.NewNop(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	if e.renderer == nil {
		return nil
	}
	return e.renderer.Camera()
}

func (e *engine) Controller() camera.FlyController {
	return e.controller
}

func (e *engine) Audio() audio.Manager {
	return e.audio
}

func (e *engine) Logger() *zap.Logger {
	return e.logger
}

func (e *engine) Run() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrRunning
	}
	e.running = true
	e.mu.Unlock()

	e.logger.Info("engine running",
		zap.Duration("tick_rate", e.engineTickRate),
		zap.Duration("frame_limit", e.renderFrameLimit),
	)

	e.handle()
	e.window.ProcessMessages()

	// The window closed on its own; stop the loops and release on this goroutine.
	e.signalQuit()
	e.shutdown()
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// shutdown waits for the loops, then releases audio, the renderer and the window in that order.
// It runs on the goroutine processing window messages.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.wg.Wait()
		if e.audio != nil {
			e.audio.Close()
		}
		if e.renderer != nil {
			e.renderer.Release()
		}
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				e.logger.Debug("window already closed", zap.Error(err))
			}
		}
		e.logger.Info("engine stopped")
	})
}

// handle launches the engine and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Advances the fly controller, then fires the tick callback at the configured tick rate and
// listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) tick(dt float32) {
	if e.controller != nil {
		e.controller.Update(dt)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if !e.renderFrame(dt) {
				time.Sleep(skipBackoff)
				continue
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame runs one BeginFrame, render callback, Present cycle. It reports false when no frame
// could be acquired.
func (e *engine) renderFrame(dt float32) bool {
	if err := e.frames.BeginFrame(); err != nil {
		e.logger.Debug("frame skipped", zap.Error(err))
		return false
	}

	if e.renderCallback != nil {
		if err := e.renderCallback(dt); err != nil {
			e.logger.Error("render callback failed", zap.Error(err))
		}
	}

	stats := e.frames.Stats()
	e.frames.Present()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(
			zap.Int("draw_calls", stats.DrawCalls),
			zap.Int("clears", stats.Clears),
			zap.Int("pipelines", stats.Pipelines),
		)
	}
	return true
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32) error) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameInterval(fps)
}

// tickInterval converts a tick rate to a ticker period; rates <= 0 mean 60Hz.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// frameInterval converts a frame cap to a minimum frame duration; caps <= 0 mean uncapped.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
