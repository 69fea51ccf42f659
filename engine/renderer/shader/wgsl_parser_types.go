package shader

import "github.com/cogentcore/webgpu/wgpu"

// Stage identifies a programmable pipeline stage.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
)

// UniformInfo locates a value inside a uniform buffer.
type UniformInfo struct {
	// Name is the lookup key, either "member", "variable.member" or "variable".
	Name string

	// Type is the WGSL type name as written in the source.
	Type string

	Group   uint32
	Binding uint32

	// Offset and Size are the byte range of the value within its buffer.
	Offset uint64
	Size   uint64
}

// TextureBinding describes a texture variable and the sampler paired with it.
type TextureBinding struct {
	Name    string
	Group   uint32
	Binding uint32

	// Unit is the texture's position among all texture bindings, ordered by group then binding.
	Unit uint32

	// Sampler is the paired sampler binding in the same group, or -1 if there is none.
	Sampler int
}

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// sampledTextureInfo holds the view dimension and multisampled flag for a sampled texture type
type sampledTextureInfo struct {
	viewDimension wgpu.TextureViewDimension
	multisampled  bool
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
