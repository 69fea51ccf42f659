package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShader struct {
	shader.Shader
	key string
}

func (f *fakeShader) Key() string { return f.key }

type fakePipeline struct {
	shader   shader.Shader
	released bool
}

func (f *fakePipeline) Key() string                          { return "" }
func (f *fakePipeline) Shader() shader.Shader                { return f.shader }
func (f *fakePipeline) State() State                         { return State{} }
func (f *fakePipeline) RenderPipeline() *wgpu.RenderPipeline { return nil }
func (f *fakePipeline) Release()                             { f.released = true }

func spriteLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 36,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState()
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, s.Topology)
	assert.True(t, s.DepthTestEnabled)
	assert.True(t, s.DepthWriteEnabled)
	assert.False(t, s.BlendEnabled)
	assert.Equal(t, AlphaBlend, s.Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, s.WriteMask)
}

func TestStateKey_Deterministic(t *testing.T) {
	build := func() State {
		return NewState(
			WithColorFormats(wgpu.TextureFormatBGRA8Unorm),
			WithDepthFormat(wgpu.TextureFormatDepth24PlusStencil8),
			WithVertexLayouts(spriteLayout()),
			WithBlendEnabled(true),
		)
	}
	assert.Equal(t, build().Key(), build().Key())
}

func TestStateKey_Distinguishes(t *testing.T) {
	base := NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm), WithDepthFormat(wgpu.TextureFormatDepth24PlusStencil8))

	variants := []State{
		base.With(WithTopology(wgpu.PrimitiveTopologyLineStrip)),
		base.With(WithCullMode(wgpu.CullModeBack)),
		base.With(WithFrontFace(wgpu.FrontFaceCW)),
		base.With(WithBlendEnabled(true)),
		base.With(WithDepthTestEnabled(false)),
		base.With(WithDepthWriteEnabled(false)),
		base.With(WithDepthBias(2, 1.5)),
		base.With(WithDepthFormat(wgpu.TextureFormatUndefined)),
		base.With(WithColorFormats(wgpu.TextureFormatRGBA8Unorm)),
		base.With(WithColorFormats(wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm)),
		base.With(WithVertexLayouts(spriteLayout())),
		base.With(WithWriteMask(wgpu.ColorWriteMaskRed)),
	}

	seen := map[string]int{base.Key(): -1}
	for i, v := range variants {
		prev, dup := seen[v.Key()]
		assert.False(t, dup, "variant %d collides with %d", i, prev)
		seen[v.Key()] = i
	}
}

func TestStateKey_IgnoresInactiveFields(t *testing.T) {
	base := NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm))

	// blend equation only matters when blending is on, depth settings only with a depth target
	assert.Equal(t, base.Key(), base.With(WithBlendState(wgpu.BlendState{})).Key())
	assert.Equal(t, base.Key(), base.With(WithDepthTestEnabled(false)).Key())
}

func TestStateWith_CopiesSlices(t *testing.T) {
	base := NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm))
	derived := base.With()
	derived.ColorFormats[0] = wgpu.TextureFormatRGBA8Unorm

	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, base.ColorFormats[0])
}

func TestPrimitiveState(t *testing.T) {
	strip := NewState(WithTopology(wgpu.PrimitiveTopologyLineStrip), WithStripIndexFormat(wgpu.IndexFormatUint32))
	assert.Equal(t, wgpu.IndexFormatUint32, strip.primitiveState().StripIndexFormat)

	list := NewState(WithStripIndexFormat(wgpu.IndexFormatUint32))
	assert.Equal(t, wgpu.IndexFormatUndefined, list.primitiveState().StripIndexFormat)
}

func TestDepthStencilState(t *testing.T) {
	assert.Nil(t, NewState().depthStencilState())

	ds := NewState(WithDepthFormat(wgpu.TextureFormatDepth24PlusStencil8), WithDepthTestEnabled(false)).depthStencilState()
	require.NotNil(t, ds)
	assert.Equal(t, wgpu.CompareFunctionAlways, ds.DepthCompare)
	assert.True(t, ds.DepthWriteEnabled)

	ds = NewState(WithDepthFormat(wgpu.TextureFormatDepth24PlusStencil8)).depthStencilState()
	assert.Equal(t, wgpu.CompareFunctionLess, ds.DepthCompare)
}

func TestColorTargets(t *testing.T) {
	targets := NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm)).colorTargets()
	require.Len(t, targets, 2)
	assert.Nil(t, targets[0].Blend)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, targets[1].Format)

	targets = NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm), WithBlendEnabled(true)).colorTargets()
	require.NotNil(t, targets[0].Blend)
	assert.Equal(t, AlphaBlend, *targets[0].Blend)
}

func TestNewPipeline_RequiresColorFormats(t *testing.T) {
	_, err := NewPipeline(nil, &fakeShader{key: "sprite"}, NewState())
	assert.ErrorContains(t, err, "no color formats")
}

func TestCache(t *testing.T) {
	c := NewCache(nil, nil)
	builds := 0
	c.build = func(_ *wgpu.Device, s shader.Shader, _ State) (Pipeline, error) {
		builds++
		return &fakePipeline{shader: s}, nil
	}

	sprite := &fakeShader{key: "sprite"}
	mesh := &fakeShader{key: "mesh"}
	state := NewState(WithColorFormats(wgpu.TextureFormatBGRA8Unorm))

	p1, err := c.Get(sprite, state)
	require.NoError(t, err)
	p2, err := c.Get(sprite, state.With())
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, builds)

	_, err = c.Get(sprite, state.With(WithBlendEnabled(true)))
	require.NoError(t, err)
	_, err = c.Get(mesh, state)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	c.Evict("sprite")
	assert.Equal(t, 1, c.Len())
	assert.True(t, p1.(*fakePipeline).released)

	c.Release()
	assert.Equal(t, 0, c.Len())
}

func TestCache_FailureNotCached(t *testing.T) {
	c := NewCache(nil, nil)
	c.build = func(*wgpu.Device, shader.Shader, State) (Pipeline, error) {
		return nil, errors.New("compile failed")
	}

	_, err := c.Get(&fakeShader{key: "bad"}, NewState())
	assert.ErrorContains(t, err, "compile failed")
	assert.Equal(t, 0, c.Len())
}
