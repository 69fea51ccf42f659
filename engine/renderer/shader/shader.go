// Package shader compiles WGSL programs and manages the uniform buffers, textures and samplers
// they bind. Resource layouts are reflected from the source, so a program only declares its
// @group/@binding variables and the shader allocates and binds the rest.
package shader

import (
	"errors"
	"fmt"
	"hash/fnv"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrUniformNotFound is returned when a uniform name is not declared by the program.
	ErrUniformNotFound = errors.New("uniform not found")

	// ErrTextureNotFound is returned when a texture name or unit is not declared by the program.
	ErrTextureNotFound = errors.New("texture binding not found")
)

// Bindable is the part of a texture a shader needs to bind it. texture.Texture satisfies it.
type Bindable interface {
	View() *wgpu.TextureView
	Sampler() *wgpu.Sampler
	Unit() uint32
}

// bindingKey addresses one uniform buffer.
type bindingKey struct {
	group   uint32
	binding uint32
}

// uniformBuffer is the CPU copy of one uniform buffer.
type uniformBuffer struct {
	data  []byte
	dirty bool
}

type shader struct {
	mu     *sync.Mutex
	key    string
	gpu    gpu.Context
	logger *zap.Logger

	vsSource string
	fsSource string
	refl     *reflection

	vsModule *wgpu.ShaderModule
	fsModule *wgpu.ShaderModule

	providers []bind_group_provider.BindGroupProvider
	staging   map[bindingKey]*uniformBuffer
}

// Shader is a compiled vertex and fragment program together with the resources it binds.
// Uniform and texture setters only record values; Prepare uploads them before a draw.
type Shader interface {
	// Key returns the shader's unique key.
	Key() string

	// VertexSource returns the pre-processed vertex source.
	VertexSource() string

	// FragmentSource returns the pre-processed fragment source. It equals VertexSource for
	// single-source programs.
	FragmentSource() string

	// VertexModule returns the compiled module holding the vertex entry point.
	VertexModule() *wgpu.ShaderModule

	// FragmentModule returns the compiled module holding the fragment entry point.
	FragmentModule() *wgpu.ShaderModule

	// VertexEntryPoint returns the name of the @vertex function.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	FragmentEntryPoint() string

	// VertexLayouts returns the vertex buffer layouts reflected from the vertex input structs.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by sequential index
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the reflected bind group layouts keyed by group.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable bound at group and binding, or an empty string.
	BindGroupVarName(group, binding int) string

	// ActiveUniforms lists every settable uniform sorted by name. Struct members appear both
	// by member name and as "variable.member".
	//
	// Returns:
	//   - []UniformInfo: the uniform locations
	ActiveUniforms() []UniformInfo

	// Uniform looks up a single uniform location.
	Uniform(name string) (UniformInfo, bool)

	// Textures lists the texture bindings in unit order.
	Textures() []TextureBinding

	SetUniformMatrix(name string, m mgl32.Mat4) error
	SetUniformVec4(name string, v mgl32.Vec4) error
	SetUniformVec3(name string, v mgl32.Vec3) error
	SetUniformVec2(name string, v mgl32.Vec2) error
	SetUniformFloat(name string, f float32) error
	SetUniformInt(name string, i int32) error
	SetUniformUint(name string, u uint32) error

	// SetUniformBytes copies raw bytes into a uniform. The length must equal the uniform's size.
	//
	// Parameters:
	//   - name: the uniform name
	//   - data: the value in WGSL memory layout
	//
	// Returns:
	//   - error: ErrUniformNotFound for unknown names, or an error if the size does not match
	SetUniformBytes(name string, data []byte) error

	// SetTexture binds tex to the texture variable called name, and its sampler to the paired
	// sampler binding.
	//
	// Parameters:
	//   - name: the WGSL texture variable name
	//   - tex: the texture to bind
	//
	// Returns:
	//   - error: ErrTextureNotFound if no texture variable has that name
	SetTexture(name string, tex Bindable) error

	// SetTextureUnit binds tex to the texture binding whose unit equals tex.Unit().
	SetTextureUnit(tex Bindable) error

	// Prepare creates missing uniform buffers, rebuilds bind groups whose resources changed and
	// uploads dirty uniform data. Call it before recording a draw with this shader.
	//
	// Returns:
	//   - error: an error if a binding has no resource or a GPU object cannot be created
	Prepare() error

	// BindGroups returns the bind groups in group order. Valid after a successful Prepare.
	BindGroups() []*wgpu.BindGroup

	// BindGroupLayouts returns the bind group layouts in group order. Valid after a successful Prepare.
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// Release frees the modules, uniform buffers and bind groups. Bound textures are not released.
	Release()
}

var _ Shader = &shader{}

// FromMemory builds a shader from one WGSL source that holds both the @vertex and the
// @fragment entry point.
//
// Parameters:
//   - g: the GPU context to compile on
//   - src: the WGSL source, before pre-processing
//   - options: functional options such as WithKey and WithDefine
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error if pre-processing, reflection or compilation fails
func FromMemory(g gpu.Context, src string, options ...ShaderBuilderOption) (Shader, error) {
	return newShader(g, src, src, true, options)
}

// FromSources builds a shader from separate vertex and fragment sources.
//
// Parameters:
//   - g: the GPU context to compile on
//   - vs: the source holding the @vertex entry point
//   - fs: the source holding the @fragment entry point
//   - options: functional options such as WithKey and WithDefine
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error if pre-processing, reflection or compilation fails
func FromSources(g gpu.Context, vs, fs string, options ...ShaderBuilderOption) (Shader, error) {
	return newShader(g, vs, fs, false, options)
}

// FromFile builds a shader from a single WGSL file. The key defaults to the file name.
func FromFile(g gpu.Context, path string, options ...ShaderBuilderOption) (Shader, error) {
	src, err := common.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %q: %w", path, err)
	}
	options = append([]ShaderBuilderOption{WithKey(filepath.Base(path))}, options...)
	return newShader(g, src, src, true, options)
}

func newShader(g gpu.Context, vsRaw, fsRaw string, single bool, options []ShaderBuilderOption) (*shader, error) {
	s, err := parseShader(vsRaw, fsRaw, single, newShaderOptions(options))
	if err != nil {
		return nil, err
	}
	s.gpu = g
	if err := s.compile(single); err != nil {
		s.Release()
		return nil, err
	}
	s.logger.Debug("shader compiled",
		zap.String("key", s.key),
		zap.Int("uniforms", len(s.refl.uniforms)),
		zap.Int("textures", len(s.refl.textures)),
		zap.Int("groups", len(s.providers)),
	)
	return s, nil
}

// parseShader pre-processes and reflects the sources and allocates the CPU-side uniform copies.
// No GPU object is created.
func parseShader(vsRaw, fsRaw string, single bool, opts shaderOptions) (*shader, error) {
	pp := NewPreProcessor()
	for name, value := range opts.defines {
		pp.Define(name, value)
	}
	for name, src := range opts.chunks {
		pp.RegisterChunk(name, src)
	}

	label := opts.key
	if label == "" {
		label = "shader"
	}
	vs, err := pp.Process(vsRaw)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process: %w", label, err)
	}
	fs := vs
	if !single {
		if fs, err = pp.Process(fsRaw); err != nil {
			return nil, fmt.Errorf("shader %s: failed to pre-process fragment source: %w", label, err)
		}
	}

	key := opts.key
	if key == "" {
		h := fnv.New64a()
		h.Write([]byte(vs))
		h.Write([]byte{0})
		h.Write([]byte(fs))
		key = fmt.Sprintf("shader-%016x", h.Sum64())
	}

	refl, err := reflectSources(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		mu:       &sync.Mutex{},
		key:      key,
		logger:   opts.logger,
		vsSource: vs,
		fsSource: fs,
		refl:     refl,
		staging:  make(map[bindingKey]*uniformBuffer),
	}

	for g := range len(refl.layouts) {
		s.providers = append(s.providers, bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s group %d", key, g), uint32(g)))
		for _, e := range refl.layouts[g].Entries {
			if e.Buffer.Type == wgpu.BufferBindingTypeUndefined {
				continue
			}
			s.staging[bindingKey{uint32(g), e.Binding}] = &uniformBuffer{
				data:  make([]byte, gpu.AlignUp(e.Buffer.MinBindingSize, 16)),
				dirty: true,
			}
		}
	}
	return s, nil
}

// compile creates the shader modules. A single-source program shares one module.
func (s *shader) compile(single bool) error {
	device := s.gpu.Device()
	vs, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.vsSource,
		},
	})
	if err != nil {
		return fmt.Errorf("shader %s: failed to compile vertex stage: %w", s.key, err)
	}
	s.vsModule = vs
	if single {
		s.fsModule = vs
		return nil
	}

	fs, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.key + " fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.fsSource,
		},
	})
	if err != nil {
		return fmt.Errorf("shader %s: failed to compile fragment stage: %w", s.key, err)
	}
	s.fsModule = fs
	return nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) VertexSource() string {
	return s.vsSource
}

func (s *shader) FragmentSource() string {
	return s.fsSource
}

func (s *shader) VertexModule() *wgpu.ShaderModule {
	return s.vsModule
}

func (s *shader) FragmentModule() *wgpu.ShaderModule {
	return s.fsModule
}

func (s *shader) VertexEntryPoint() string {
	return s.refl.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.refl.fragmentEntry
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.refl.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.refl.layouts
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.refl.varNames[group] == nil {
		return ""
	}
	return s.refl.varNames[group][binding]
}

func (s *shader) ActiveUniforms() []UniformInfo {
	result := make([]UniformInfo, 0, len(s.refl.uniforms))
	for _, name := range slices.Sorted(maps.Keys(s.refl.uniforms)) {
		result = append(result, s.refl.uniforms[name])
	}
	return result
}

func (s *shader) Uniform(name string) (UniformInfo, bool) {
	info, ok := s.refl.uniforms[name]
	return info, ok
}

func (s *shader) Textures() []TextureBinding {
	return slices.Clone(s.refl.textures)
}

func (s *shader) SetUniformMatrix(name string, m mgl32.Mat4) error {
	return s.SetUniformBytes(name, common.SliceToBytes(m[:]))
}

func (s *shader) SetUniformVec4(name string, v mgl32.Vec4) error {
	return s.SetUniformBytes(name, common.SliceToBytes(v[:]))
}

func (s *shader) SetUniformVec3(name string, v mgl32.Vec3) error {
	return s.SetUniformBytes(name, common.SliceToBytes(v[:]))
}

func (s *shader) SetUniformVec2(name string, v mgl32.Vec2) error {
	return s.SetUniformBytes(name, common.SliceToBytes(v[:]))
}

func (s *shader) SetUniformFloat(name string, f float32) error {
	return s.SetUniformBytes(name, common.SliceToBytes([]float32{f}))
}

func (s *shader) SetUniformInt(name string, i int32) error {
	return s.SetUniformBytes(name, common.SliceToBytes([]int32{i}))
}

func (s *shader) SetUniformUint(name string, u uint32) error {
	return s.SetUniformBytes(name, common.SliceToBytes([]uint32{u}))
}

func (s *shader) SetUniformBytes(name string, data []byte) error {
	info, ok := s.refl.uniforms[name]
	if !ok {
		return fmt.Errorf("shader %s: %w: %q", s.key, ErrUniformNotFound, name)
	}
	if uint64(len(data)) != info.Size {
		return fmt.Errorf("shader %s: uniform %q (%s) is %d bytes, got %d", s.key, name, info.Type, info.Size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ub := s.staging[bindingKey{info.Group, info.Binding}]
	copy(ub.data[info.Offset:], data)
	ub.dirty = true
	return nil
}

func (s *shader) SetTexture(name string, tex Bindable) error {
	idx := slices.IndexFunc(s.refl.textures, func(tb TextureBinding) bool {
		return tb.Name == name
	})
	if idx < 0 {
		return fmt.Errorf("shader %s: %w: %q", s.key, ErrTextureNotFound, name)
	}
	s.bindTexture(s.refl.textures[idx], tex)
	return nil
}

func (s *shader) SetTextureUnit(tex Bindable) error {
	unit := tex.Unit()
	if int(unit) >= len(s.refl.textures) {
		return fmt.Errorf("shader %s: %w: unit %d of %d", s.key, ErrTextureNotFound, unit, len(s.refl.textures))
	}
	s.bindTexture(s.refl.textures[unit], tex)
	return nil
}

func (s *shader) bindTexture(tb TextureBinding, tex Bindable) {
	p := s.providers[tb.Group]
	p.SetTextureView(int(tb.Binding), tex.View())
	if tb.Sampler >= 0 {
		p.SetSampler(tb.Sampler, tex.Sampler())
	}
}

func (s *shader) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	device := s.gpu.Device()
	for g, p := range s.providers {
		if err := p.Build(device, s.refl.layouts[g], s.bufferSizes(uint32(g))); err != nil {
			return fmt.Errorf("shader %s: %w", s.key, err)
		}
	}

	queue := s.gpu.Queue()
	for k, ub := range s.staging {
		if !ub.dirty {
			continue
		}
		buf := s.providers[k.group].Buffer(int(k.binding))
		if err := queue.WriteBuffer(buf, 0, ub.data); err != nil {
			return fmt.Errorf("shader %s: failed to upload uniforms for group %d binding %d: %w", s.key, k.group, k.binding, err)
		}
		ub.dirty = false
	}
	return nil
}

// bufferSizes returns the allocation size of each uniform buffer in group.
func (s *shader) bufferSizes(group uint32) map[int]uint64 {
	sizes := make(map[int]uint64)
	for k, ub := range s.staging {
		if k.group == group {
			sizes[int(k.binding)] = uint64(len(ub.data))
		}
	}
	return sizes
}

func (s *shader) BindGroups() []*wgpu.BindGroup {
	result := make([]*wgpu.BindGroup, len(s.providers))
	for i, p := range s.providers {
		result[i] = p.BindGroup()
	}
	return result
}

func (s *shader) BindGroupLayouts() []*wgpu.BindGroupLayout {
	result := make([]*wgpu.BindGroupLayout, len(s.providers))
	for i, p := range s.providers {
		result[i] = p.BindGroupLayout()
	}
	return result
}

func (s *shader) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.providers {
		p.Release()
	}
	if s.fsModule != nil && s.fsModule != s.vsModule {
		s.fsModule.Release()
	}
	if s.vsModule != nil {
		s.vsModule.Release()
	}
	s.vsModule = nil
	s.fsModule = nil
}
