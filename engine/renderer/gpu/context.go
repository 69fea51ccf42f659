// Package gpu holds the small pieces of WebGPU plumbing shared by the resource packages:
// the device/queue context they are created against, and synchronous readback helpers.
package gpu

import "github.com/cogentcore/webgpu/wgpu"

// Context exposes the device and queue that GPU resources are created on and written through.
// The renderer satisfies it, so buffers, textures and framebuffers can be built from a Renderer.
type Context interface {
	// Device returns the logical device used to create GPU objects.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the queue used for buffer and texture uploads and command submission.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue
}
