package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL type names to their wgpu vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3i":     {wgpu.VertexFormatSint32x3, 12},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3u":     {wgpu.VertexFormatUint32x3, 12},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"vec2<f16>": {wgpu.VertexFormatFloat16x2, 4},
	"vec2h":     {wgpu.VertexFormatFloat16x2, 4},
	"vec4<f16>": {wgpu.VertexFormatFloat16x4, 8},
	"vec4h":     {wgpu.VertexFormatFloat16x4, 8},
}

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension and multisampled flag
var wgslSampledTextureMap = map[string]sampledTextureInfo{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":            {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their wgpu texture sample type
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// computeEntryRegex detects compute entry points, which the renderer does not run
	computeEntryRegex = regexp.MustCompile(`@compute\b`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> sprite: SpriteUniforms;
	// or handle types: @group(0) @binding(1) var sprite_texture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayouts extracts vertex buffer layouts from WGSL source code.
// It finds all structs that are pure vertex inputs (have @location attributes but no @builtin fields)
// and converts them into wgpu.VertexBufferLayout entries. Structs containing unrecognized WGSL types
// are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: vertex layouts keyed by sequential index
func parseVertexLayouts(source string) map[int][]wgpu.VertexBufferLayout {
	result := make(map[int][]wgpu.VertexBufferLayout)
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	layoutIndex := 0
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		result[layoutIndex] = []wgpu.VertexBufferLayout{layout}
		layoutIndex++
	}

	return result
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) resource declarations from WGSL
// source and returns them as wgpu.BindGroupLayoutDescriptor values grouped by group index.
// Each descriptor's entries are sorted by binding index. The provided visibility flag is
// applied to all entries.
//
// Parameters:
//   - source: the pre-processed WGSL source code string
//   - visibility: the shader stage visibility flag to set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
//   - error: an error if a declaration uses an unsupported resource or repeats a binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	cleaned := stripComments(source)

	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry, err := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if err != nil {
			return nil, nil, fmt.Errorf("group %d %s: %w", group, varName, err)
		}

		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			layout, ok := resolveTypeLayout(typeName, structSizes)
			if !ok {
				return nil, nil, fmt.Errorf("group %d %s: cannot resolve layout of %q", group, varName, typeName)
			}
			entry.Buffer.MinBindingSize = layout.size
		}

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		if prev, dup := varNames[group][binding]; dup {
			return nil, nil, fmt.Errorf("group %d binding %d declared twice (%s, %s)", group, binding, prev, varName)
		}
		varNames[group][binding] = varName
		groups[group] = append(groups[group], entry)
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{
			Entries: entries,
		}
	}

	return result, varNames, nil
}

// parseUniforms resolves the location of every value that can be written into a uniform
// buffer. A struct-typed uniform contributes each member twice, as "member" and as
// "variable.member"; a bare member name already claimed by an earlier struct keeps the first
// location. Any other uniform is reachable only by its variable name, so a variable name always
// takes the bare name over a struct member, whatever the declaration order.
//
// Parameters:
//   - source: the pre-processed WGSL source code string
//
// Returns:
//   - map[string]UniformInfo: uniform locations keyed by name
func parseUniforms(source string) map[string]UniformInfo {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	result := make(map[string]UniformInfo)
	variables := make(map[string]bool)
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		if strings.TrimSpace(match[3]) != "uniform" {
			continue
		}
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		if ps, ok := byName[typeName]; ok {
			offsets, sizes, _, ok := layoutStructFields(ps, structSizes)
			if !ok {
				continue
			}
			for i, f := range ps.fields {
				if f.isBuiltin {
					continue
				}
				info := UniformInfo{
					Name:    varName + "." + f.name,
					Type:    f.typeName,
					Group:   uint32(group),
					Binding: uint32(binding),
					Offset:  offsets[i],
					Size:    sizes[i],
				}
				result[info.Name] = info
				if _, taken := result[f.name]; !taken && !variables[f.name] {
					info.Name = f.name
					result[f.name] = info
				}
			}
			continue
		}

		if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
			variables[varName] = true
			result[varName] = UniformInfo{
				Name:    varName,
				Type:    typeName,
				Group:   uint32(group),
				Binding: uint32(binding),
				Size:    layout.size,
			}
		}
	}

	return result
}

// parseEntryPoint extracts the entry point function name for the given stage from WGSL
// source. Returns an empty string if no matching entry point attribute is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - stage: the stage to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage Stage) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch stage {
	case StageVertex:
		re = vertexEntryRegex
	case StageFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// hasComputeEntry reports whether source declares a compute entry point.
func hasComputeEntry(source string) bool {
	return computeEntryRegex.MatchString(stripComments(source))
}

// parseStructBlocks finds all struct { ... } blocks in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		name := match[1]
		body := match[2]

		fields := parseStructFields(body)
		structs = append(structs, parsedStruct{
			name:   name,
			fields: fields,
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		// check for @builtin
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		// check for @location(N)
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		// extract field name and type
		if fm := fieldRegex.FindStringSubmatch(line); fm != nil {
			field.name = fm[1]
			field.typeName = strings.TrimSpace(fm[2])
		} else {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}
