package camera

import (
	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's starting position.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = p
	}
}

// WithRotation sets the starting yaw and pitch in degrees.
//
// Parameters:
//   - yaw: heading in degrees (-90 looks down -Z)
//   - pitch: elevation in degrees, clamped to [MinPitch, MaxPitch]
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's rotation
func WithRotation(yaw, pitch float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.yaw = yaw
		c.pitch = pitch
	}
}

// WithWorldUp sets the reference up vector.
func WithWorldUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		if up.Len() > 0 {
			c.worldUp = up.Normalize()
		}
	}
}

// WithFov sets the vertical field of view in degrees, clamped to [MinFov, MaxFov].
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the projection aspect ratio (width / height).
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clip plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithMoveSpeed sets the movement speed in world units per second.
func WithMoveSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.moveSpeed = speed
	}
}

// WithSensitivity sets the degrees of rotation per unit of mouse offset.
func WithSensitivity(sensitivity float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.sensitivity = sensitivity
	}
}

// WithConfig applies the camera section of the configuration.
//
// Parameters:
//   - cfg: the camera configuration
//
// Returns:
//   - CameraBuilderOption: a function that applies every configured camera setting
func WithConfig(cfg config.CameraConfig) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3(cfg.Position)
		c.yaw = cfg.Yaw
		c.pitch = cfg.Pitch
		if cfg.Fov > 0 {
			c.fov = cfg.Fov
		}
		if cfg.MoveSpeed > 0 {
			c.moveSpeed = cfg.MoveSpeed
		}
		if cfg.Sensitivity > 0 {
			c.sensitivity = cfg.Sensitivity
		}
	}
}
