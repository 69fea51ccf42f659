package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lightingSource = `
struct Light {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
};

struct Scene {
    view_proj: mat4x4<f32>,
    lights: array<Light, 2>,
    count: u32,
};

@group(0) @binding(0) var<uniform> scene: Scene;
@group(0) @binding(1) var<uniform> time: f32;
/* @group(0) @binding(5) var<uniform> ignored: f32; */
@group(1) @binding(0) var albedo: texture_2d<f32>;
@group(1) @binding(1) var albedo_sampler: sampler;
@group(1) @binding(2) var shadow: texture_depth_2d;
`

func TestLayoutStructFields(t *testing.T) {
	structs := parseStructBlocks(stripComments(lightingSource))
	sizes := computeStructSizes(structs)

	assert.Equal(t, wgslTypeLayout{32, 16}, sizes["Light"])
	// 64 (mat) + 2*32 (lights) + 4 (count), rounded to 16
	assert.Equal(t, wgslTypeLayout{144, 16}, sizes["Scene"])

	offsets, fieldSizes, _, ok := layoutStructFields(structs[0], sizes)
	require.True(t, ok)
	assert.Equal(t, []uint64{0, 12, 16}, offsets)
	assert.Equal(t, []uint64{12, 4, 12}, fieldSizes)
}

func TestParseUniforms(t *testing.T) {
	uniforms := parseUniforms(lightingSource)

	assert.Equal(t, UniformInfo{Name: "view_proj", Type: "mat4x4<f32>", Group: 0, Binding: 0, Offset: 0, Size: 64}, uniforms["view_proj"])
	assert.Equal(t, uint64(128), uniforms["scene.count"].Offset)
	assert.Equal(t, uint64(64), uniforms["lights"].Offset)
	assert.Equal(t, uint64(64), uniforms["lights"].Size)
	assert.Equal(t, UniformInfo{Name: "time", Type: "f32", Group: 0, Binding: 1, Size: 4}, uniforms["time"])
	assert.NotContains(t, uniforms, "ignored")
	assert.NotContains(t, uniforms, "albedo")
}

func TestParseUniforms_MemberNameCollision(t *testing.T) {
	src := `
struct A { color: vec4<f32>, };
struct B { scale: f32, color: vec4<f32>, };
@group(0) @binding(0) var<uniform> a: A;
@group(0) @binding(1) var<uniform> b: B;
`
	uniforms := parseUniforms(src)
	assert.Equal(t, uint32(0), uniforms["color"].Binding)
	assert.Equal(t, uint32(1), uniforms["b.color"].Binding)
	assert.Equal(t, uint64(16), uniforms["b.color"].Offset)
}

func TestParseUniforms_VariableNameWinsOverMember(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"variable after struct", `
struct U { a: vec3<f32>, b: f32, };
@group(0) @binding(0) var<uniform> u: U;
@group(0) @binding(1) var<uniform> b: vec4<f32>;
`},
		{"variable before struct", `
struct U { a: vec3<f32>, b: f32, };
@group(0) @binding(1) var<uniform> b: vec4<f32>;
@group(0) @binding(0) var<uniform> u: U;
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uniforms := parseUniforms(tt.src)

			assert.Equal(t, UniformInfo{Name: "b", Type: "vec4<f32>", Group: 0, Binding: 1, Size: 16}, uniforms["b"])
			assert.Equal(t, uint32(0), uniforms["u.b"].Binding)
			assert.Equal(t, uint64(12), uniforms["u.b"].Offset)
			assert.Equal(t, uint32(0), uniforms["a"].Binding)
		})
	}
}

func TestParseBindGroupLayouts(t *testing.T) {
	layouts, names, err := parseBindGroupLayouts(lightingSource, wgpu.ShaderStageFragment)
	require.NoError(t, err)
	require.Len(t, layouts, 2)

	g0 := layouts[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0[0].Buffer.Type)
	assert.Equal(t, uint64(144), g0[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(4), g0[1].Buffer.MinBindingSize)

	g1 := layouts[1].Entries
	require.Len(t, g1, 3)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, g1[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, g1[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, g1[1].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, g1[2].Texture.SampleType)
	assert.Equal(t, wgpu.ShaderStageFragment, g1[2].Visibility)

	assert.Equal(t, "albedo_sampler", names[1][1])
}

func TestParseBindGroupLayouts_Unsupported(t *testing.T) {
	_, _, err := parseBindGroupLayouts("@group(0) @binding(0) var<storage, read> data: array<f32>;", wgpu.ShaderStageVertex)
	assert.ErrorContains(t, err, "unsupported address space")

	_, _, err = parseBindGroupLayouts("@group(0) @binding(0) var out: texture_storage_2d<rgba8unorm, write>;", wgpu.ShaderStageVertex)
	assert.ErrorContains(t, err, "storage textures")

	_, _, err = parseBindGroupLayouts("@group(0) @binding(0) var<uniform> a: f32;\n@group(0) @binding(0) var<uniform> b: f32;", wgpu.ShaderStageVertex)
	assert.ErrorContains(t, err, "declared twice")

	_, _, err = parseBindGroupLayouts("@group(0) @binding(0) var<uniform> a: Missing;", wgpu.ShaderStageVertex)
	assert.ErrorContains(t, err, "cannot resolve layout")
}

func TestParseEntryPoint(t *testing.T) {
	src := "// @vertex fn commented() {}\n@vertex\nfn vs_main() {}\n@fragment fn fs_main() {}"
	assert.Equal(t, "vs_main", parseEntryPoint(src, StageVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(src, StageFragment))
	assert.Equal(t, "", parseEntryPoint("fn helper() {}", StageVertex))
	assert.True(t, hasComputeEntry("@compute @workgroup_size(8) fn main() {}"))
	assert.False(t, hasComputeEntry(src))
}

func TestParseVertexLayouts(t *testing.T) {
	layouts := parseVertexLayouts(Vertex2DSource + "struct Out { @builtin(position) p: vec4<f32>, @location(0) uv: vec2<f32>, };")
	require.Len(t, layouts, 1)

	l := layouts[0][0]
	assert.Equal(t, uint64(36), l.ArrayStride)
	require.Len(t, l.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, l.Attributes[0].Format)
	assert.Equal(t, uint64(12), l.Attributes[1].Offset)
	assert.Equal(t, uint32(2), l.Attributes[2].ShaderLocation)
}

func TestResolveTypeLayout_Arrays(t *testing.T) {
	layout, ok := resolveTypeLayout("array<f32, 4>", nil)
	require.True(t, ok)
	assert.Equal(t, wgslTypeLayout{64, 16}, layout)

	_, ok = resolveTypeLayout("array<f32>", nil)
	assert.False(t, ok)
}
