package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if w.closeOnEscape && key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.dispatchKey(common.Key(key), true)
		case glfw.Release:
			w.dispatchKey(common.Key(key), false)
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.dispatchScroll(float32(yoff))
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		xpos, ypos := win.GetCursorPos()
		switch action {
		case glfw.Press:
			w.dispatchMouseButton(MouseButton(button), true, xpos, ypos)
		case glfw.Release:
			w.dispatchMouseButton(MouseButton(button), false, xpos, ypos)
		}
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.dispatchMouseMove(xpos, ypos)
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// The renderer requires pixel dimensions for correct surface configuration.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.dispatchResize(width, height)
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	fbWidth, fbHeight := win.GetFramebufferSize()
	w.mu.Lock()
	w.width = fbWidth
	w.height = fbHeight
	w.mu.Unlock()

	if w.cursorCaptured {
		platformSetCursorCaptured(w, true)
	}
	return nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func sizeLimit(n int) int {
	if n <= 0 {
		return glfw.DontCare
	}
	return n
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformSetCursorCaptured switches between the disabled and normal cursor modes, enabling raw
// mouse motion where the platform supports it.
//
// Reference: https://www.glfw.org/docs/latest/input_guide.html#cursor_mode
func platformSetCursorCaptured(w *engineWindow, captured bool) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow.(*glfwWindow)
	if captured {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			gw.window.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
		return
	}
	if glfw.RawMouseMotionSupported() {
		gw.window.SetInputMode(glfw.RawMouseMotion, glfw.False)
	}
	gw.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
}

func platformSetTitle(w *engineWindow, title string) {
	if w.internalWindow == nil {
		return
	}
	w.internalWindow.(*glfwWindow).window.SetTitle(title)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal window is nil, the running flag is cleared, or GLFW reports ShouldClose.
//
// Parameters:
//   - w: the engineWindow to check
//
// Returns:
//   - bool: true if the window is still running
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
// Returns an error if the internal window has not been initialized.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: error if the window is not initialized
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	w.logger.Info("window closed")
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
