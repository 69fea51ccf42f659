package shader

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// reflection is everything read from pre-processed WGSL before any GPU object exists.
type reflection struct {
	vertexEntry   string
	fragmentEntry string
	layouts       map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	uniforms      map[string]UniformInfo
	textures      []TextureBinding
	vertexLayouts map[int][]wgpu.VertexBufferLayout
}

// reflectSources reads the entry points and resources of a vertex and a fragment source, which may
// be the same text. Resources declared by both sources must agree.
func reflectSources(vs, fs string) (*reflection, error) {
	if hasComputeEntry(vs) || hasComputeEntry(fs) {
		return nil, errors.New("compute entry points are not supported")
	}

	r := &reflection{
		vertexEntry:   parseEntryPoint(vs, StageVertex),
		fragmentEntry: parseEntryPoint(fs, StageFragment),
		vertexLayouts: parseVertexLayouts(vs),
	}
	if r.vertexEntry == "" {
		return nil, errors.New("no @vertex entry point")
	}
	if r.fragmentEntry == "" {
		return nil, errors.New("no @fragment entry point")
	}

	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	layouts, names, err := parseBindGroupLayouts(vs, visibility)
	if err != nil {
		return nil, err
	}
	r.uniforms = parseUniforms(vs)
	if fs != vs {
		fsLayouts, fsNames, err := parseBindGroupLayouts(fs, visibility)
		if err != nil {
			return nil, err
		}
		if err := mergeLayouts(layouts, names, fsLayouts, fsNames); err != nil {
			return nil, err
		}
		for name, info := range parseUniforms(fs) {
			if _, ok := r.uniforms[name]; !ok {
				r.uniforms[name] = info
			}
		}
	}
	r.layouts = layouts
	r.varNames = names

	for g := range len(layouts) {
		if _, ok := layouts[g]; !ok {
			return nil, fmt.Errorf("bind groups must be numbered from 0 without gaps, group %d is missing", g)
		}
	}

	r.textures = pairTextures(layouts, names)
	return r, nil
}

// mergeLayouts folds the fragment declarations into the vertex ones. A binding declared
// twice must name the same variable and resource.
func mergeLayouts(dst map[int]wgpu.BindGroupLayoutDescriptor, dstNames map[int]map[int]string, src map[int]wgpu.BindGroupLayoutDescriptor, srcNames map[int]map[int]string) error {
	for g, desc := range src {
		existing := dst[g]
		for _, entry := range desc.Entries {
			name := srcNames[g][int(entry.Binding)]
			idx := slices.IndexFunc(existing.Entries, func(e wgpu.BindGroupLayoutEntry) bool {
				return e.Binding == entry.Binding
			})
			if idx >= 0 {
				if dstNames[g][int(entry.Binding)] != name || !sameResource(existing.Entries[idx], entry) {
					return fmt.Errorf("group %d binding %d differs between vertex and fragment sources", g, entry.Binding)
				}
				continue
			}
			existing.Entries = append(existing.Entries, entry)
			if dstNames[g] == nil {
				dstNames[g] = make(map[int]string)
			}
			dstNames[g][int(entry.Binding)] = name
		}
		sort.Slice(existing.Entries, func(i, j int) bool {
			return existing.Entries[i].Binding < existing.Entries[j].Binding
		})
		dst[g] = existing
	}
	return nil
}

// sameResource reports whether two entries bind the same kind of resource.
func sameResource(a, b wgpu.BindGroupLayoutEntry) bool {
	return a.Buffer.Type == b.Buffer.Type &&
		a.Buffer.MinBindingSize == b.Buffer.MinBindingSize &&
		a.Texture.SampleType == b.Texture.SampleType &&
		a.Texture.ViewDimension == b.Texture.ViewDimension &&
		a.Sampler.Type == b.Sampler.Type
}

// pairTextures lists the texture bindings ordered by group then binding, each paired with the
// sampler named "<texture>_sampler" in its group, or the group's only sampler.
func pairTextures(layouts map[int]wgpu.BindGroupLayoutDescriptor, names map[int]map[int]string) []TextureBinding {
	var result []TextureBinding
	for _, g := range slices.Sorted(maps.Keys(layouts)) {
		var samplers []wgpu.BindGroupLayoutEntry
		for _, e := range layouts[g].Entries {
			if isSamplerEntry(e) {
				samplers = append(samplers, e)
			}
		}

		for _, e := range layouts[g].Entries {
			if !isTextureEntry(e) {
				continue
			}
			tb := TextureBinding{
				Name:    names[g][int(e.Binding)],
				Group:   uint32(g),
				Binding: e.Binding,
				Unit:    uint32(len(result)),
				Sampler: -1,
			}
			for _, s := range samplers {
				if names[g][int(s.Binding)] == tb.Name+"_sampler" {
					tb.Sampler = int(s.Binding)
				}
			}
			if tb.Sampler < 0 && len(samplers) == 1 {
				tb.Sampler = int(samplers[0].Binding)
			}
			result = append(result, tb)
		}
	}
	return result
}
