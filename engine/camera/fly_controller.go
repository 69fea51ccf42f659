package camera

import (
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
)

// InputSource is the subset of the window's callback registration used by FlyController.
type InputSource interface {
	SetKeyDownCallback(callback func(key common.Key))
	SetKeyUpCallback(callback func(key common.Key))
	SetMouseMoveCallback(callback func(x, y float64))
	SetScrollCallback(callback func(delta float32))
}

// FlyController turns key and mouse events into camera motion. Key state is latched by the
// event callbacks and applied by Update once per tick, so movement speed is independent of the
// key repeat rate.
type FlyController interface {
	// Attach registers the controller's handlers on src, replacing any previously registered
	// key, mouse move and scroll callbacks.
	Attach(src InputSource)

	// KeyDown marks key as held.
	KeyDown(key common.Key)

	// KeyUp marks key as released.
	KeyUp(key common.Key)

	// MouseMove rotates the camera by the offset from the previous cursor position.
	// The first sample only records the position.
	MouseMove(x, y float64)

	// Scroll zooms the camera.
	Scroll(delta float32)

	// ResetMouse forgets the last cursor position, e.g. after the cursor is re-captured.
	ResetMouse()

	// SetEnabled toggles whether events and updates affect the camera.
	SetEnabled(enabled bool)

	// Enabled reports whether events and updates affect the camera.
	Enabled() bool

	// Update moves the camera for every held key.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous update
	Update(dt float32)

	// Camera returns the controlled camera.
	Camera() Camera
}

type flyControllerImpl struct {
	mu *sync.Mutex

	camera   Camera
	bindings map[common.Key]Movement
	held     map[common.Key]bool

	lastX, lastY float64
	hasLast      bool
	enabled      bool
}

var _ FlyController = &flyControllerImpl{}

// NewFlyController creates a controller for cam with WASD movement, Space and left Shift for
// vertical movement, mouse look and scroll zoom.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - FlyController: the newly created controller
func NewFlyController(cam Camera, options ...FlyControllerOption) FlyController {
	fc := &flyControllerImpl{
		mu:     &sync.Mutex{},
		camera: cam,
		bindings: map[common.Key]Movement{
			common.KeyW:         MoveForward,
			common.KeyS:         MoveBackward,
			common.KeyA:         MoveLeft,
			common.KeyD:         MoveRight,
			common.KeySpace:     MoveUp,
			common.KeyLeftShift: MoveDown,
		},
		held:    make(map[common.Key]bool),
		enabled: true,
	}
	for _, option := range options {
		option(fc)
	}
	return fc
}

func (fc *flyControllerImpl) Attach(src InputSource) {
	src.SetKeyDownCallback(fc.KeyDown)
	src.SetKeyUpCallback(fc.KeyUp)
	src.SetMouseMoveCallback(fc.MouseMove)
	src.SetScrollCallback(fc.Scroll)
}

func (fc *flyControllerImpl) KeyDown(key common.Key) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if _, ok := fc.bindings[key]; ok {
		fc.held[key] = true
	}
}

func (fc *flyControllerImpl) KeyUp(key common.Key) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	delete(fc.held, key)
}

func (fc *flyControllerImpl) MouseMove(x, y float64) {
	fc.mu.Lock()
	if !fc.enabled {
		fc.mu.Unlock()
		return
	}
	if !fc.hasLast {
		fc.lastX, fc.lastY, fc.hasLast = x, y, true
		fc.mu.Unlock()
		return
	}
	// window y grows downward
	dx := float32(x - fc.lastX)
	dy := float32(fc.lastY - y)
	fc.lastX, fc.lastY = x, y
	fc.mu.Unlock()

	fc.camera.Rotate(dx, dy)
}

func (fc *flyControllerImpl) Scroll(delta float32) {
	if !fc.Enabled() {
		return
	}
	fc.camera.Zoom(delta)
}

func (fc *flyControllerImpl) ResetMouse() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.hasLast = false
}

func (fc *flyControllerImpl) SetEnabled(enabled bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.enabled = enabled
	fc.hasLast = false
	if !enabled {
		clear(fc.held)
	}
}

func (fc *flyControllerImpl) Enabled() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.enabled
}

func (fc *flyControllerImpl) Update(dt float32) {
	fc.mu.Lock()
	if !fc.enabled || len(fc.held) == 0 {
		fc.mu.Unlock()
		return
	}
	moves := make([]Movement, 0, len(fc.held))
	for key := range fc.held {
		moves = append(moves, fc.bindings[key])
	}
	fc.mu.Unlock()

	for _, m := range moves {
		fc.camera.Move(m, dt)
	}
}

func (fc *flyControllerImpl) Camera() Camera {
	return fc.camera
}
