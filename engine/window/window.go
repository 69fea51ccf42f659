package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// MouseButton identifies a mouse button. Values match GLFW button numbers.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(key common.Key))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(key common.Key))

	// SetMouseButtonDownCallback sets the callback for mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor position
	SetMouseButtonDownCallback(callback func(button MouseButton, x, y float64))

	// SetMouseButtonUpCallback sets the callback for mouse button releases.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor position
	SetMouseButtonUpCallback(callback func(button MouseButton, x, y float64))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetMouseMoveCallback(callback func(x, y float64))

	// SetCursorCaptured hides and locks the cursor to the window when captured, so mouse
	// movement reports unbounded offsets suitable for mouse look.
	SetCursorCaptured(captured bool)

	// CursorCaptured reports whether the cursor is captured.
	CursorCaptured() bool

	// SetTitle changes the title bar text.
	SetTitle(title string)

	// Title returns the title bar text.
	Title() string

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	logger *zap.Logger

	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize; 0 means no limit.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize; 0 means no limit.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	resizable      bool
	closeOnEscape  bool
	cursorCaptured bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	onKeyDown func(key common.Key)
	onKeyUp   func(key common.Key)

	onMouseButtonDown func(button MouseButton, x, y float64)
	onMouseButtonUp   func(button MouseButton, x, y float64)

	// onMouseMove is called when the cursor moves within the window.
	onMouseMove func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order. Panics if the platform window
// cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	w.logger.Info("window created",
		zap.String("title", w.title),
		zap.Int("width", w.width),
		zap.Int("height", w.height),
	)
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		title:         "ruckus",
		minWidth:      320,
		minHeight:     240,
		width:         800,
		height:        600,
		resizable:     true,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key common.Key)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key common.Key)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonDownCallback(callback func(button MouseButton, x, y float64)) {
	w.onMouseButtonDown = callback
}

func (w *engineWindow) SetMouseButtonUpCallback(callback func(button MouseButton, x, y float64)) {
	w.onMouseButtonUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	w.mu.Lock()
	w.cursorCaptured = captured
	w.mu.Unlock()
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) CursorCaptured() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorCaptured
}

func (w *engineWindow) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	platformSetTitle(w, title)
}

func (w *engineWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// dispatchKey forwards a key transition to the registered key callbacks.
func (w *engineWindow) dispatchKey(key common.Key, pressed bool) {
	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(key)
		}
		return
	}
	if w.onKeyUp != nil {
		w.onKeyUp(key)
	}
}

// dispatchMouseButton forwards a button transition to the registered mouse button callbacks.
func (w *engineWindow) dispatchMouseButton(button MouseButton, pressed bool, x, y float64) {
	if pressed {
		if w.onMouseButtonDown != nil {
			w.onMouseButtonDown(button, x, y)
		}
		return
	}
	if w.onMouseButtonUp != nil {
		w.onMouseButtonUp(button, x, y)
	}
}

func (w *engineWindow) dispatchMouseMove(x, y float64) {
	if w.onMouseMove != nil {
		w.onMouseMove(x, y)
	}
}

func (w *engineWindow) dispatchScroll(delta float32) {
	if w.onScroll != nil {
		w.onScroll(delta)
	}
}

// dispatchResize records the new framebuffer size and forwards it to the resize callback.
// Minimizing reports a zero size, which is recorded but not forwarded.
func (w *engineWindow) dispatchResize(width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()

	if width == 0 || height == 0 {
		return
	}
	w.logger.Debug("window resized", zap.Int("width", width), zap.Int("height", height))
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
