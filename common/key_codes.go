package common

// Key is a keyboard key code as reported by the window. Values match GLFW key codes, which use
// ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeySpace Key = 32
	KeyA     Key = 65
	KeyD     Key = 68
	KeyE     Key = 69
	KeyF     Key = 70
	KeyP     Key = 80
	KeyQ     Key = 81
	KeyS     Key = 83
	KeyW     Key = 87

	KeyEsc       Key = 256
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265

	KeyLeftShift    Key = 340
	KeyLeftControl  Key = 341
	KeyRightShift   Key = 344
	KeyRightControl Key = 345
)
