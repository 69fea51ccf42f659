package bind_group_provider

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	mu *sync.Mutex

	// label is a debug label added for convenience.
	label string
	// group is the @group index the provider feeds.
	group uint32

	// bindGroup is rebuilt by Build whenever a resource changes.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is created on the first Build, or supplied with WithBindGroupLayout.
	bindGroupLayout *wgpu.BindGroupLayout
	ownsLayout      bool

	// buffers are owned by the provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews and samplers are borrowed from textures, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	dirty bool
}

// BindGroupProvider holds the resources bound at one @group index of a shader and builds the GPU
// bind group from them.
//
// Usage pattern:
//  1. The shader creates a provider per group from its parsed layout
//  2. Uniform buffers are created by Build, or set with SetBuffer
//  3. Textures are bound with SetTextureView and SetSampler, which mark the provider dirty
//  4. Before a draw, Build recreates the bind group if the provider is dirty
//  5. The render pass binds BindGroup() at Group()
type BindGroupProvider interface {
	// Release releases the bind group, the layout if the provider created it, and the owned buffers.
	// Borrowed texture views and samplers are forgotten but not released.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Group returns the @group index this provider feeds.
	Group() uint32

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if Build has not succeeded yet.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout for this provider, or nil before the first Build.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer for a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns a copy of the buffer map, keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: a map of buffers keyed by binding index
	Buffers() map[int]*wgpu.Buffer

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// SetBuffer stores a buffer the provider takes ownership of. A replaced buffer is released.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a borrowed texture view, marking the provider dirty if it changed.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores a borrowed sampler, marking the provider dirty if it changed.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// Dirty reports whether the bind group must be rebuilt before the next draw.
	Dirty() bool

	// Entries resolves the bind group entries for the layout from the stored resources.
	//
	// Parameters:
	//   - descriptor: the layout the entries must satisfy
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: one entry per layout entry
	//   - error: an error naming the first binding that has no resource
	Entries(descriptor wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error)

	// Build creates missing uniform buffers and, if the provider is dirty, recreates the bind group.
	//
	// Parameters:
	//   - device: the device to allocate on
	//   - descriptor: the layout of this group as parsed from the shader
	//   - bufferSizes: overrides of MinBindingSize per binding
	//
	// Returns:
	//   - error: an error if a resource is missing or GPU creation fails
	Build(device *wgpu.Device, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label
//   - group: the @group index the provider feeds
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, group uint32, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		mu:           &sync.Mutex{},
		label:        label,
		group:        group,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		dirty:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() uint32 {
	return p.group
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make(map[int]*wgpu.Buffer, len(p.buffers))
	for k, v := range p.buffers {
		result[k] = v
	}
	return result
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
	p.dirty = true
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.textureViews[binding] != tv {
		p.textureViews[binding] = tv
		p.dirty = true
	}
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.samplers[binding] != s {
		p.samplers[binding] = s
		p.dirty = true
	}
}

func (p *bindGroupProvider) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

func (p *bindGroupProvider) Entries(descriptor wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries(descriptor)
}

func (p *bindGroupProvider) Build(device *wgpu.Device, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	for _, entry := range descriptor.Entries {
		if !isBufferEntry(entry) {
			continue
		}
		binding := int(entry.Binding)
		if p.buffers[binding] != nil {
			continue
		}

		size := entry.Buffer.MinBindingSize
		if override, ok := bufferSizes[binding]; ok {
			size = override
		}
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Buffer %d", p.label, binding),
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create buffer for %s binding %d: %w", p.label, binding, err)
		}
		p.buffers[binding] = buf
		p.dirty = true
	}

	if !p.dirty && p.bindGroup != nil {
		return nil
	}

	entries, err := p.entries(descriptor)
	if err != nil {
		return err
	}

	if p.bindGroupLayout == nil {
		layout, err := device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("failed to create bind group layout for %s: %w", p.label, err)
		}
		p.bindGroupLayout = layout
		p.ownsLayout = true
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  p.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group for %s: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bindGroup
	p.dirty = false
	return nil
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.textureViews)
	clear(p.samplers)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil && p.ownsLayout {
		p.bindGroupLayout.Release()
	}
	p.bindGroupLayout = nil
	p.dirty = true
}

func (p *bindGroupProvider) entries(descriptor wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error) {
	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		if isTexture {
			tv := p.textureViews[binding]
			if tv == nil {
				return nil, fmt.Errorf("%s: texture binding %d has no texture view", p.label, binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		} else if isSampler {
			samp := p.samplers[binding]
			if samp == nil {
				return nil, fmt.Errorf("%s: sampler binding %d has no sampler", p.label, binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		} else {
			buf := p.buffers[binding]
			if buf == nil {
				return nil, fmt.Errorf("%s: buffer binding %d has no buffer", p.label, binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}
	return bindGroupEntries, nil
}

func isBufferEntry(entry wgpu.BindGroupLayoutEntry) bool {
	return entry.Buffer.Type != wgpu.BufferBindingTypeUndefined
}
