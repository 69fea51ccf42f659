// pre_processor.go implements the WGSL pre-processor. It resolves //#include directives against
// a chunk registry, evaluates //#define, //#ifdef, //#ifndef, //#else and //#endif, and
// substitutes defined values for matching identifiers in the kept lines.
package shader

import (
	_ "embed"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Vertex2DSource declares VertexInput for vertex.Vertex2D (position, tex_coord, color).
//
//go:embed assets/vertex_2d.wgsl
var Vertex2DSource string

// Vertex3DSource declares VertexInput for vertex.Vertex3D (position, normal, tex_coord).
//
//go:embed assets/vertex_3d.wgsl
var Vertex3DSource string

// SpriteSource is the built-in sprite program. It draws vertex colors multiplied by the tint
// uniform, and samples sprite_texture as well when TEXTURED is defined.
//
//go:embed assets/sprite.wgsl
var SpriteSource string

// maxIncludeDepth bounds nested #include expansion.
const maxIncludeDepth = 16

// builtinChunks are available to every pre-processor.
var builtinChunks = map[string]string{
	"vertex_2d": Vertex2DSource,
	"vertex_3d": Vertex3DSource,
}

var wordRegex = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// PreProcessor expands directives in WGSL source before it is reflected and compiled.
type PreProcessor interface {
	// Process expands every directive in source. Defines made by the source are visible to
	// the rest of it, and to later calls only through Defines.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error for malformed or unbalanced directives and unknown chunks
	Process(source string) (string, error)

	// Define sets name, with an optional replacement value, before processing.
	Define(name, value string)

	// RegisterChunk makes src available to //#include <name>.
	RegisterChunk(name, src string)

	// Defines returns a copy of the names defined by options and the most recent Process call.
	Defines() map[string]string
}

type preProcessor struct {
	base    map[string]string
	defines map[string]string
	chunks  map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor seeded with the built-in chunks.
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		base:    make(map[string]string),
		defines: make(map[string]string),
		chunks:  maps.Clone(builtinChunks),
	}
}

func (p *preProcessor) Define(name, value string) {
	p.base[name] = value
}

func (p *preProcessor) RegisterChunk(name, src string) {
	p.chunks[name] = src
}

func (p *preProcessor) Defines() map[string]string {
	return maps.Clone(p.defines)
}

// conditional is one open #ifdef / #ifndef block.
type conditional struct {
	line      int
	parentOn  bool
	taken     bool
	sawElse   bool
	directive DirectiveType
}

func (p *preProcessor) Process(source string) (string, error) {
	p.defines = maps.Clone(p.base)
	var out strings.Builder
	if err := p.expand(&out, source, "source", nil); err != nil {
		return "", err
	}
	return out.String(), nil
}

// expand writes the processed form of src to out. stack holds the chunk names being expanded.
func (p *preProcessor) expand(out *strings.Builder, src, name string, stack []string) error {
	if len(stack) > maxIncludeDepth {
		return fmt.Errorf("include depth exceeds %d at %s", maxIncludeDepth, name)
	}

	var conds []conditional
	active := func() bool {
		if len(conds) == 0 {
			return true
		}
		c := conds[len(conds)-1]
		return c.parentOn && c.taken
	}

	for i, line := range strings.Split(src, "\n") {
		d, err := parseDirective(line, i+1)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d == nil {
			if active() {
				out.WriteString(p.substitute(line))
				out.WriteByte('\n')
			}
			continue
		}

		switch d.Type {
		case DirectiveIfdef, DirectiveIfndef:
			_, defined := p.defines[d.Args[0]]
			conds = append(conds, conditional{
				line:      d.Line,
				parentOn:  active(),
				taken:     defined == (d.Type == DirectiveIfdef),
				directive: d.Type,
			})
		case DirectiveElse:
			if len(conds) == 0 {
				return fmt.Errorf("%s: line %d: #else without #ifdef", name, d.Line)
			}
			c := &conds[len(conds)-1]
			if c.sawElse {
				return fmt.Errorf("%s: line %d: duplicate #else", name, d.Line)
			}
			c.sawElse = true
			c.taken = !c.taken
		case DirectiveEndif:
			if len(conds) == 0 {
				return fmt.Errorf("%s: line %d: #endif without #ifdef", name, d.Line)
			}
			conds = conds[:len(conds)-1]
		case DirectiveDefine:
			if !active() {
				continue
			}
			value := ""
			if len(d.Args) > 1 {
				value = d.Args[1]
			}
			p.defines[d.Args[0]] = value
		case DirectiveInclude:
			if !active() {
				continue
			}
			chunk := d.Args[0]
			body, ok := p.chunks[chunk]
			if !ok {
				return fmt.Errorf("%s: line %d: unknown chunk %q", name, d.Line, chunk)
			}
			if slices.Contains(stack, chunk) {
				return fmt.Errorf("%s: line %d: recursive include of %q", name, d.Line, chunk)
			}
			if err := p.expand(out, body, chunk, append(stack, chunk)); err != nil {
				return err
			}
		}
	}

	if len(conds) > 0 {
		c := conds[len(conds)-1]
		return fmt.Errorf("%s: line %d: unterminated #%s", name, c.line, c.directive)
	}
	return nil
}

// substitute replaces identifiers that have a non-empty define value.
func (p *preProcessor) substitute(line string) string {
	if len(p.defines) == 0 {
		return line
	}
	return wordRegex.ReplaceAllStringFunc(line, func(w string) string {
		if v, ok := p.defines[w]; ok && v != "" {
			return v
		}
		return w
	})
}
