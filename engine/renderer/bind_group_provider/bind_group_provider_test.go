package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spriteLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 64},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	}
}

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("sprite group 0", 0)
	assert.Equal(t, "sprite group 0", p.Label())
	assert.Equal(t, uint32(0), p.Group())
	assert.True(t, p.Dirty())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Empty(t, p.Buffers())
}

func TestEntries_MissingResources(t *testing.T) {
	p := NewBindGroupProvider("sprite", 0)

	_, err := p.Entries(spriteLayout())
	assert.ErrorContains(t, err, "buffer binding 0")

	p.SetBuffer(0, &wgpu.Buffer{})
	_, err = p.Entries(spriteLayout())
	assert.ErrorContains(t, err, "texture binding 1")

	p.SetTextureView(1, &wgpu.TextureView{})
	_, err = p.Entries(spriteLayout())
	assert.ErrorContains(t, err, "sampler binding 2")
}

func TestEntries_Resolved(t *testing.T) {
	buf := &wgpu.Buffer{}
	view := &wgpu.TextureView{}
	samp := &wgpu.Sampler{}

	p := NewBindGroupProvider("sprite", 1, WithBuffer(0, buf))
	p.SetTextureView(1, view)
	p.SetSampler(2, samp)

	entries, err := p.Entries(spriteLayout())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Same(t, buf, entries[0].Buffer)
	assert.Equal(t, uint64(wgpu.WholeSize), entries[0].Size)
	assert.Same(t, view, entries[1].TextureView)
	assert.Same(t, samp, entries[2].Sampler)
	assert.Equal(t, uint32(2), entries[2].Binding)
}

func TestDirtyTracking(t *testing.T) {
	p := NewBindGroupProvider("sprite", 0).(*bindGroupProvider)
	view := &wgpu.TextureView{}

	p.dirty = false
	p.SetTextureView(1, view)
	assert.True(t, p.Dirty())

	p.dirty = false
	p.SetTextureView(1, view)
	assert.False(t, p.Dirty(), "rebinding the same view keeps the bind group")

	p.SetSampler(2, &wgpu.Sampler{})
	assert.True(t, p.Dirty())
}

func TestBuild_EmptyLayout(t *testing.T) {
	p := NewBindGroupProvider("empty", 3)
	assert.NoError(t, p.Build(nil, wgpu.BindGroupLayoutDescriptor{}, nil))
}
