package shader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	unit    uint32
}

func (f *fakeTexture) View() *wgpu.TextureView { return f.view }
func (f *fakeTexture) Sampler() *wgpu.Sampler  { return f.sampler }
func (f *fakeTexture) Unit() uint32            { return f.unit }

func newFakeTexture(unit uint32) *fakeTexture {
	return &fakeTexture{view: &wgpu.TextureView{}, sampler: &wgpu.Sampler{}, unit: unit}
}

func parseSprite(t *testing.T, options ...ShaderBuilderOption) *shader {
	t.Helper()
	s, err := parseShader(SpriteSource, SpriteSource, true, newShaderOptions(options))
	require.NoError(t, err)
	return s
}

func TestSprite_Untextured(t *testing.T) {
	s := parseSprite(t)

	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
	assert.Empty(t, s.Textures())
	assert.NotContains(t, s.VertexSource(), "textureSample")
	require.Len(t, s.BindGroupLayoutDescriptors(), 1)
	assert.Len(t, s.BindGroupLayoutDescriptors()[0].Entries, 1)
	assert.Len(t, s.VertexLayouts(), 1)

	names := make([]string, 0)
	for _, u := range s.ActiveUniforms() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"mvp", "sprite.mvp", "sprite.tint", "tint"}, names)
}

func TestSprite_Textured(t *testing.T) {
	s := parseSprite(t, WithDefine("TEXTURED", ""))

	assert.Contains(t, s.FragmentSource(), "textureSample")
	require.Len(t, s.Textures(), 1)
	assert.Equal(t, TextureBinding{Name: "sprite_texture", Group: 0, Binding: 1, Unit: 0, Sampler: 2}, s.Textures()[0])
	assert.Equal(t, "sprite_texture_sampler", s.BindGroupVarName(0, 2))
	assert.Equal(t, "", s.BindGroupVarName(3, 0))
}

func TestShaderKey(t *testing.T) {
	plain := parseSprite(t)
	textured := parseSprite(t, WithDefine("TEXTURED", ""))
	again := parseSprite(t)

	assert.Equal(t, plain.Key(), again.Key())
	assert.NotEqual(t, plain.Key(), textured.Key())
	assert.Equal(t, "sprite", parseSprite(t, WithKey("sprite")).Key())
}

func TestSetUniform(t *testing.T) {
	s := parseSprite(t)
	ub := s.staging[bindingKey{0, 0}]
	require.Len(t, ub.data, 80)
	ub.dirty = false

	require.NoError(t, s.SetUniformMatrix("mvp", mgl32.Translate3D(1, 2, 3)))
	require.NoError(t, s.SetUniformVec4("sprite.tint", mgl32.Vec4{0.5, 0.25, 1, 1}))
	assert.True(t, ub.dirty)

	// column-major: translation lives in floats 12..14
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(ub.data[13*4:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(ub.data[64+4:])))
}

func TestSetUniform_Errors(t *testing.T) {
	s := parseSprite(t)

	err := s.SetUniformFloat("missing", 1)
	assert.ErrorIs(t, err, ErrUniformNotFound)

	err = s.SetUniformVec3("tint", mgl32.Vec3{1, 1, 1})
	assert.ErrorContains(t, err, "is 16 bytes, got 12")

	assert.Error(t, s.SetUniformBytes("mvp", make([]byte, 63)))
}

func TestSetUniform_Scalars(t *testing.T) {
	src := `
@group(0) @binding(0) var<uniform> time: f32;
@group(0) @binding(1) var<uniform> frame: u32;
@group(0) @binding(2) var<uniform> mode: i32;
@group(0) @binding(3) var<uniform> offset: vec2<f32>;
@group(0) @binding(4) var<uniform> light_dir: vec3<f32>;
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(time); }
`
	s, err := parseShader(src, src, true, newShaderOptions(nil))
	require.NoError(t, err)

	assert.NoError(t, s.SetUniformFloat("time", 1.5))
	assert.NoError(t, s.SetUniformUint("frame", 7))
	assert.NoError(t, s.SetUniformInt("mode", -1))
	assert.NoError(t, s.SetUniformVec2("offset", mgl32.Vec2{1, 2}))
	assert.NoError(t, s.SetUniformVec3("light_dir", mgl32.Vec3{0, -1, 0}))

	assert.Len(t, s.staging[bindingKey{0, 4}].data, 16)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(s.staging[bindingKey{0, 1}].data))
	assert.Equal(t, map[int]uint64{0: 16, 1: 16, 2: 16, 3: 16, 4: 16}, s.bufferSizes(0))
}

func TestSetTexture(t *testing.T) {
	s := parseSprite(t, WithDefine("TEXTURED", ""))
	tex := newFakeTexture(0)

	require.NoError(t, s.SetTexture("sprite_texture", tex))
	assert.Same(t, tex.view, s.providers[0].TextureView(1))
	assert.Same(t, tex.sampler, s.providers[0].Sampler(2))

	assert.ErrorIs(t, s.SetTexture("normal_map", tex), ErrTextureNotFound)
}

func TestSetTextureUnit(t *testing.T) {
	src := `
@group(0) @binding(0) var diffuse: texture_2d<f32>;
@group(0) @binding(1) var diffuse_sampler: sampler;
@group(0) @binding(2) var mask: texture_2d<f32>;
@group(0) @binding(3) var mask_sampler: sampler;
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	s, err := parseShader(src, src, true, newShaderOptions(nil))
	require.NoError(t, err)
	require.Len(t, s.Textures(), 2)
	assert.Equal(t, 3, s.Textures()[1].Sampler)

	mask := newFakeTexture(1)
	require.NoError(t, s.SetTextureUnit(mask))
	assert.Same(t, mask.view, s.providers[0].TextureView(2))
	assert.Same(t, mask.sampler, s.providers[0].Sampler(3))
	assert.Nil(t, s.providers[0].TextureView(0))

	assert.ErrorIs(t, s.SetTextureUnit(newFakeTexture(2)), ErrTextureNotFound)
}

func TestPairTextures_NoSampler(t *testing.T) {
	src := `
@group(0) @binding(0) var a: texture_2d<f32>;
@group(0) @binding(1) var b: texture_2d<f32>;
@group(0) @binding(2) var s0: sampler;
@group(0) @binding(3) var s1: sampler;
@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	r, err := reflectSources(src, src)
	require.NoError(t, err)
	require.Len(t, r.textures, 2)
	assert.Equal(t, -1, r.textures[0].Sampler)
	assert.Equal(t, -1, r.textures[1].Sampler)
}

func TestReflectSources_Separate(t *testing.T) {
	vs := `
//#include <vertex_3d>
struct Camera { view_proj: mat4x4<f32>, };
@group(0) @binding(0) var<uniform> camera: Camera;
@vertex fn main_vs(in: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.view_proj * vec4<f32>(in.position, 1.0);
}
`
	fs := `
struct Camera { view_proj: mat4x4<f32>, };
@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(0) var albedo: texture_2d<f32>;
@group(1) @binding(1) var albedo_sampler: sampler;
@fragment fn main_fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	s, err := parseShader(vs, fs, false, newShaderOptions([]ShaderBuilderOption{WithKey("mesh")}))
	require.NoError(t, err)

	assert.Equal(t, "main_vs", s.VertexEntryPoint())
	assert.Equal(t, "main_fs", s.FragmentEntryPoint())
	assert.Len(t, s.providers, 2)
	assert.Len(t, s.BindGroupLayoutDescriptors()[0].Entries, 1)
	_, ok := s.Uniform("camera.view_proj")
	assert.True(t, ok)
	assert.Equal(t, "albedo", s.Textures()[0].Name)
	assert.Equal(t, uint32(1), s.Textures()[0].Group)
}

func TestReflectSources_Errors(t *testing.T) {
	const entries = "@vertex fn vs() {}\n@fragment fn fs() {}\n"

	_, err := reflectSources("@fragment fn fs() {}", "@fragment fn fs() {}")
	assert.ErrorContains(t, err, "no @vertex")

	_, err = reflectSources("@vertex fn vs() {}", "fn helper() {}")
	assert.ErrorContains(t, err, "no @fragment")

	_, err = reflectSources(entries+"@compute @workgroup_size(1) fn cs() {}", entries)
	assert.ErrorContains(t, err, "compute")

	src := entries + "@group(1) @binding(0) var<uniform> t: f32;"
	_, err = reflectSources(src, src)
	assert.ErrorContains(t, err, "group 0 is missing")

	_, err = reflectSources(entries+"@group(0) @binding(0) var<uniform> t: f32;", entries+"@group(0) @binding(0) var<uniform> t: vec4<f32>;")
	assert.ErrorContains(t, err, "differs")
}

func TestParseShader_PreProcessError(t *testing.T) {
	_, err := parseShader("//#ifdef A", "//#ifdef A", true, newShaderOptions([]ShaderBuilderOption{WithKey("broken")}))
	assert.ErrorContains(t, err, "shader broken")
	assert.ErrorContains(t, err, "unterminated")
}

func TestWithChunk(t *testing.T) {
	src := "//#include <entry>\n"
	chunk := "@vertex fn vs() {}\n@fragment fn fs() {}\n"
	s, err := parseShader(src, src, true, newShaderOptions([]ShaderBuilderOption{WithChunk("entry", chunk), WithLogger(nil)}))
	require.NoError(t, err)
	assert.Equal(t, "vs", s.VertexEntryPoint())
	assert.NotNil(t, s.logger)
}
