package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineBuilderOption is a functional option used to configure a State.
type PipelineBuilderOption func(*State)

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology, e.g. wgpu.PrimitiveTopologyTriangleList
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(s *State) {
		s.Topology = topology
	}
}

// WithStripIndexFormat sets the index format used by indexed strip topologies.
func WithStripIndexFormat(format wgpu.IndexFormat) PipelineBuilderOption {
	return func(s *State) {
		s.StripIndexFormat = format
	}
}

// WithCullMode sets which faces are culled.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(s *State) {
		s.CullMode = mode
	}
}

// WithFrontFace sets the winding order of front faces.
func WithFrontFace(face wgpu.FrontFace) PipelineBuilderOption {
	return func(s *State) {
		s.FrontFace = face
	}
}

// WithBlendEnabled toggles blending with the configured blend state.
//
// Parameters:
//   - enabled: whether blending is applied to every color target
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend enabled state
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(s *State) {
		s.BlendEnabled = enabled
	}
}

// WithBlendState sets the blend equation used when blending is enabled.
func WithBlendState(blend wgpu.BlendState) PipelineBuilderOption {
	return func(s *State) {
		s.Blend = blend
	}
}

// WithWriteMask sets the color write mask of every color target.
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(s *State) {
		s.WriteMask = mask
	}
}

// WithDepthTestEnabled sets whether fragments are depth tested. Without testing every
// fragment passes, but depth is still written when depth writing is enabled.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test enabled state
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(s *State) {
		s.DepthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether passing fragments write depth.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(s *State) {
		s.DepthWriteEnabled = enabled
	}
}

// WithDepthBias sets the depth bias parameters.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(s *State) {
		s.DepthBias = bias
		s.DepthBiasSlopeScale = slopeScale
	}
}

// WithColorFormats sets the formats of the color attachments drawn into.
func WithColorFormats(formats ...wgpu.TextureFormat) PipelineBuilderOption {
	return func(s *State) {
		s.ColorFormats = append([]wgpu.TextureFormat(nil), formats...)
	}
}

// WithDepthFormat sets the depth attachment format, or wgpu.TextureFormatUndefined for none.
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(s *State) {
		s.DepthFormat = format
	}
}

// WithVertexLayouts sets the vertex buffer layouts, one per vertex buffer slot.
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(s *State) {
		s.VertexLayouts = append([]wgpu.VertexBufferLayout(nil), layouts...)
	}
}
