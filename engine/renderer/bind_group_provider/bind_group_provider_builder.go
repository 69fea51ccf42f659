package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets a layout shared with the pipeline. The provider does not release it.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
		p.ownsLayout = false
	}
}

// WithBuffer sets a buffer for a specific binding index. The provider takes ownership of it.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
