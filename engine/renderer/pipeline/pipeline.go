// Package pipeline describes the fixed-function render state a draw runs with and turns a
// shader plus that state into a cached wgpu.RenderPipeline.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// State is the render state baked into a pipeline. Two states with equal keys produce
// interchangeable pipelines for the same shader.
type State struct {
	Topology         wgpu.PrimitiveTopology
	StripIndexFormat wgpu.IndexFormat
	CullMode         wgpu.CullMode
	FrontFace        wgpu.FrontFace

	BlendEnabled bool
	Blend        wgpu.BlendState
	WriteMask    wgpu.ColorWriteMask

	DepthTestEnabled    bool
	DepthWriteEnabled   bool
	DepthBias           int32
	DepthBiasSlopeScale float32

	// ColorFormats has one entry per color attachment of the target being drawn into.
	ColorFormats []wgpu.TextureFormat

	// DepthFormat is TextureFormatUndefined when the target has no depth attachment.
	DepthFormat wgpu.TextureFormat

	VertexLayouts []wgpu.VertexBufferLayout
}

// AlphaBlend is the straight-alpha blend state used when blending is enabled.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// NewState returns a triangle-list state with depth testing and writing enabled, no culling,
// counter-clockwise front faces and alpha blending disabled, then applies options.
//
// Parameters:
//   - options: a variadic list of PipelineBuilderOption functions
//
// Returns:
//   - State: the configured state
func NewState(options ...PipelineBuilderOption) State {
	s := State{
		Topology:          wgpu.PrimitiveTopologyTriangleList,
		CullMode:          wgpu.CullModeNone,
		FrontFace:         wgpu.FrontFaceCCW,
		Blend:             AlphaBlend,
		WriteMask:         wgpu.ColorWriteMaskAll,
		DepthTestEnabled:  true,
		DepthWriteEnabled: true,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// With returns a copy of s with options applied. Slices are copied so the result can be
// changed without touching s.
func (s State) With(options ...PipelineBuilderOption) State {
	s.ColorFormats = append([]wgpu.TextureFormat(nil), s.ColorFormats...)
	s.VertexLayouts = append([]wgpu.VertexBufferLayout(nil), s.VertexLayouts...)
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// Key encodes every field that affects pipeline creation. Equal states have equal keys.
func (s State) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p%d.%d.%d.%d", s.Topology, s.StripIndexFormat, s.CullMode, s.FrontFace)
	if s.BlendEnabled {
		c, a := s.Blend.Color, s.Blend.Alpha
		fmt.Fprintf(&sb, "|b%d.%d.%d.%d.%d.%d", c.SrcFactor, c.DstFactor, c.Operation, a.SrcFactor, a.DstFactor, a.Operation)
	}
	fmt.Fprintf(&sb, "|w%d", s.WriteMask)
	if s.DepthFormat != wgpu.TextureFormatUndefined {
		fmt.Fprintf(&sb, "|d%d.%t.%t.%d.%g", s.DepthFormat, s.DepthTestEnabled, s.DepthWriteEnabled, s.DepthBias, s.DepthBiasSlopeScale)
	}
	sb.WriteString("|c")
	for _, f := range s.ColorFormats {
		fmt.Fprintf(&sb, "%d.", f)
	}
	sb.WriteString("|v")
	sb.WriteString(buffer.LayoutKey(s.VertexLayouts))
	return sb.String()
}

// primitiveState builds the primitive stage. The strip index format only applies to strip
// topologies.
func (s State) primitiveState() wgpu.PrimitiveState {
	ps := wgpu.PrimitiveState{
		Topology:  s.Topology,
		FrontFace: s.FrontFace,
		CullMode:  s.CullMode,
	}
	if s.Topology == wgpu.PrimitiveTopologyLineStrip || s.Topology == wgpu.PrimitiveTopologyTriangleStrip {
		ps.StripIndexFormat = s.StripIndexFormat
	}
	return ps
}

// depthStencilState returns nil when the target has no depth attachment.
func (s State) depthStencilState() *wgpu.DepthStencilState {
	if s.DepthFormat == wgpu.TextureFormatUndefined {
		return nil
	}
	depthCompare := wgpu.CompareFunctionLess
	if !s.DepthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              s.DepthFormat,
		DepthWriteEnabled:   s.DepthWriteEnabled,
		DepthCompare:        depthCompare,
		DepthBias:           s.DepthBias,
		DepthBiasSlopeScale: s.DepthBiasSlopeScale,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (s State) colorTargets() []wgpu.ColorTargetState {
	targets := make([]wgpu.ColorTargetState, len(s.ColorFormats))
	for i, f := range s.ColorFormats {
		targets[i] = wgpu.ColorTargetState{
			Format:    f,
			WriteMask: s.WriteMask,
		}
		if s.BlendEnabled {
			blend := s.Blend
			targets[i].Blend = &blend
		}
	}
	return targets
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key            string
	shader         shader.Shader
	state          State
	layout         *wgpu.PipelineLayout
	renderPipeline *wgpu.RenderPipeline
}

// Pipeline is a compiled render pipeline for one shader and one State.
type Pipeline interface {
	// Key returns the cache key, the shader key joined with the state key.
	Key() string

	// Shader returns the shader the pipeline was built from.
	Shader() shader.Shader

	// State returns the render state the pipeline was built with.
	State() State

	// RenderPipeline returns the underlying WebGPU pipeline.
	RenderPipeline() *wgpu.RenderPipeline

	// Release frees the pipeline and its layout. The shader is not released.
	Release()
}

var _ Pipeline = &pipeline{}

// CacheKey joins a shader key and a state key.
func CacheKey(s shader.Shader, state State) string {
	return s.Key() + "#" + state.Key()
}

// NewPipeline creates a render pipeline for s with state. The shader must have been prepared
// so its bind group layouts exist.
//
// Parameters:
//   - device: the device to create the pipeline on
//   - s: the shader providing modules, entry points and bind group layouts
//   - state: the render state
//
// Returns:
//   - Pipeline: the compiled pipeline
//   - error: an error if the state has no color target or creation fails
func NewPipeline(device *wgpu.Device, s shader.Shader, state State) (Pipeline, error) {
	if len(state.ColorFormats) == 0 {
		return nil, errors.New("render state has no color formats")
	}
	key := CacheKey(s, state)

	layouts := s.BindGroupLayouts()
	for g, l := range layouts {
		if l == nil {
			return nil, fmt.Errorf("shader %s: bind group %d has no layout, prepare the shader first", s.Key(), g)
		}
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout for %s: %w", s.Key(), err)
	}

	created, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     s.VertexModule(),
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    state.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     s.FragmentModule(),
			EntryPoint: s.FragmentEntryPoint(),
			Targets:    state.colorTargets(),
		},
		Primitive:    state.primitiveState(),
		DepthStencil: state.depthStencilState(),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("failed to create render pipeline for %s: %w", s.Key(), err)
	}

	return &pipeline{
		key:            key,
		shader:         s,
		state:          state.With(),
		layout:         layout,
		renderPipeline: created,
	}, nil
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) State() State {
	return p.state
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
