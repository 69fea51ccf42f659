package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinPitch and MaxPitch bound the pitch in degrees so the view never flips over the poles.
	MinPitch float32 = -89
	MaxPitch float32 = 89

	// MinFov and MaxFov bound the vertical field of view in degrees.
	MinFov float32 = 1
	MaxFov float32 = 45
)

// Movement is a direction relative to the camera's orientation.
type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3
	worldUp  mgl32.Vec3

	yaw   float32 // degrees
	pitch float32 // degrees
	fov   float32 // degrees

	moveSpeed   float32
	sensitivity float32

	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera is a fly camera: a position plus yaw and pitch angles from which the view basis is
// derived, and a perspective projection whose field of view doubles as the zoom level.
type Camera interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// SetPosition moves the camera to p.
	SetPosition(p mgl32.Vec3)

	// Front returns the unit view direction.
	Front() mgl32.Vec3

	// Right returns the unit right vector of the view basis.
	Right() mgl32.Vec3

	// Up returns the unit up vector of the view basis.
	Up() mgl32.Vec3

	// WorldUp returns the reference up vector used to derive the view basis.
	WorldUp() mgl32.Vec3

	// SetWorldUp sets the reference up vector.
	SetWorldUp(up mgl32.Vec3)

	// Yaw returns the heading in degrees. -90 looks down -Z.
	Yaw() float32

	// Pitch returns the elevation in degrees.
	Pitch() float32

	// SetRotation sets yaw and pitch in degrees. Pitch is clamped to [MinPitch, MaxPitch].
	SetRotation(yaw, pitch float32)

	// SetLookDirection points the camera along dir. A zero vector is ignored.
	//
	// Parameters:
	//   - dir: the direction to look along; it does not need to be normalized
	SetLookDirection(dir mgl32.Vec3)

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// SetFov sets the vertical field of view in degrees, clamped to [MinFov, MaxFov].
	SetFov(fov float32)

	// Aspect returns the projection aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the projection aspect ratio. Non-positive values are ignored.
	SetAspect(aspect float32)

	// Near returns the near clip plane distance.
	Near() float32

	// Far returns the far clip plane distance.
	Far() float32

	// SetClipPlanes sets the near and far clip plane distances.
	SetClipPlanes(near, far float32)

	// MoveSpeed returns the movement speed in world units per second.
	MoveSpeed() float32

	// SetMoveSpeed sets the movement speed in world units per second.
	SetMoveSpeed(speed float32)

	// Sensitivity returns the degrees of rotation per unit of mouse offset.
	Sensitivity() float32

	// SetSensitivity sets the degrees of rotation per unit of mouse offset.
	SetSensitivity(sensitivity float32)

	// Move translates the camera along one of its local axes by MoveSpeed * dt.
	// MoveUp and MoveDown travel along the world up vector.
	//
	// Parameters:
	//   - direction: the local direction to move in
	//   - dt: elapsed time in seconds
	Move(direction Movement, dt float32)

	// Rotate applies a mouse offset scaled by Sensitivity to yaw and pitch.
	// Positive dy looks up.
	//
	// Parameters:
	//   - dx: horizontal offset
	//   - dy: vertical offset
	Rotate(dx, dy float32)

	// Zoom narrows the field of view by dy degrees, clamped to [MinFov, MaxFov].
	Zoom(dy float32)

	// View returns the view matrix.
	View() mgl32.Mat4

	// Projection returns the perspective projection matrix with WebGPU depth range.
	Projection() mgl32.Mat4

	// ViewProjection returns Projection() * View().
	ViewProjection() mgl32.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a fly camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 0, 0},
		worldUp:     mgl32.Vec3{0, 1, 0},
		yaw:         -90,
		pitch:       0,
		fov:         MaxFov,
		moveSpeed:   2.5,
		sensitivity: 0.1,
		aspect:      1,
		near:        0.1,
		far:         100,
	}
	for _, option := range options {
		option(c)
	}
	c.pitch = common.Clamp(c.pitch, MinPitch, MaxPitch)
	c.fov = common.Clamp(c.fov, MinFov, MaxFov)
	c.updateVectors()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) Front() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) WorldUp() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldUp
}

func (c *cameraImpl) SetWorldUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if up.Len() == 0 {
		return
	}
	c.worldUp = up.Normalize()
	c.updateVectors()
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) SetRotation(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw = yaw
	c.pitch = common.Clamp(pitch, MinPitch, MaxPitch)
	c.updateVectors()
}

func (c *cameraImpl) SetLookDirection(dir mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.yaw = common.Degrees(float32(math.Atan2(float64(dir.Z()), float64(dir.X()))))
	c.pitch = common.Clamp(common.Degrees(float32(math.Asin(float64(dir.Y())))), MinPitch, MaxPitch)
	c.updateVectors()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, MinFov, MaxFov)
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) MoveSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moveSpeed
}

func (c *cameraImpl) SetMoveSpeed(speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveSpeed = speed
}

func (c *cameraImpl) Sensitivity() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensitivity
}

func (c *cameraImpl) SetSensitivity(sensitivity float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sensitivity = sensitivity
}

func (c *cameraImpl) Move(direction Movement, dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	velocity := c.moveSpeed * dt
	switch direction {
	case MoveForward:
		c.position = c.position.Add(c.front.Mul(velocity))
	case MoveBackward:
		c.position = c.position.Sub(c.front.Mul(velocity))
	case MoveLeft:
		c.position = c.position.Sub(c.right.Mul(velocity))
	case MoveRight:
		c.position = c.position.Add(c.right.Mul(velocity))
	case MoveUp:
		c.position = c.position.Add(c.worldUp.Mul(velocity))
	case MoveDown:
		c.position = c.position.Sub(c.worldUp.Mul(velocity))
	default:
		return
	}
	c.updateMatrices()
}

func (c *cameraImpl) Rotate(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += dx * c.sensitivity
	c.pitch = common.Clamp(c.pitch+dy*c.sensitivity, MinPitch, MaxPitch)
	c.updateVectors()
}

func (c *cameraImpl) Zoom(dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(c.fov-dy, MinFov, MaxFov)
	c.updateMatrices()
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

// updateVectors recomputes the front, right and up basis from yaw and pitch, then the matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateVectors() {
	yaw := float64(common.Radians(c.yaw))
	pitch := float64(common.Radians(c.pitch))

	c.front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()

	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
	c.projectionMatrix = common.Perspective(common.Radians(c.fov), c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
