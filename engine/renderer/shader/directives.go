// directives.go defines the pre-processor directives recognised in WGSL comment lines. A
// directive is a line whose first non-blank characters are "//#" followed by a keyword, so
// annotated sources remain valid WGSL before pre-processing.
package shader

import (
	"fmt"
	"regexp"
	"strings"
)

// directivePrefix is the marker that identifies a directive within a WGSL comment line.
const directivePrefix = "//#"

// DirectiveType identifies the kind of directive parsed from a WGSL comment line.
type DirectiveType string

const (
	// DirectiveDefine records a name, optionally with a replacement value.
	//
	// Syntax: //#define NAME [value]
	DirectiveDefine DirectiveType = "define"

	// DirectiveIfdef keeps the following lines when NAME is defined.
	//
	// Syntax: //#ifdef NAME
	DirectiveIfdef DirectiveType = "ifdef"

	// DirectiveIfndef keeps the following lines when NAME is not defined.
	//
	// Syntax: //#ifndef NAME
	DirectiveIfndef DirectiveType = "ifndef"

	// DirectiveElse inverts the innermost conditional.
	DirectiveElse DirectiveType = "else"

	// DirectiveEndif closes the innermost conditional.
	DirectiveEndif DirectiveType = "endif"

	// DirectiveInclude splices a registered source chunk in place of the line.
	//
	// Syntax: //#include <chunk>
	DirectiveInclude DirectiveType = "include"
)

// Directive is a single parsed directive line.
type Directive struct {
	// Type identifies which directive was parsed.
	Type DirectiveType

	// Args holds the directive arguments:
	//   - define:          [0] = name, [1] = value (optional)
	//   - ifdef / ifndef:  [0] = name
	//   - include:         [0] = chunk name
	//   - else / endif:    none
	Args []string

	// Line is the 1-based source line number.
	Line int
}

var (
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	includeArgRegex = regexp.MustCompile(`^<([A-Za-z0-9_./-]+)>$|^"([A-Za-z0-9_./-]+)"$`)
)

// parseDirective parses line as a directive. It returns nil for lines that are not directives,
// including ordinary comments.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number used in error messages
//
// Returns:
//   - *Directive: the parsed directive, or nil
//   - error: an error if the line is a malformed directive
func parseDirective(line string, lineNum int) (*Directive, error) {
	trimmed := strings.TrimSpace(line)
	after, ok := strings.CutPrefix(trimmed, directivePrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty directive", lineNum)
	}

	d := &Directive{Type: DirectiveType(args[0]), Line: lineNum}
	switch d.Type {
	case DirectiveDefine:
		if len(args) < 2 {
			return nil, fmt.Errorf("line %d: #define requires a name", lineNum)
		}
		if !identifierRegex.MatchString(args[1]) {
			return nil, fmt.Errorf("line %d: invalid #define name %q", lineNum, args[1])
		}
		d.Args = []string{args[1]}
		if len(args) > 2 {
			d.Args = append(d.Args, strings.Join(args[2:], " "))
		}
	case DirectiveIfdef, DirectiveIfndef:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: #%s requires exactly one name", lineNum, d.Type)
		}
		if !identifierRegex.MatchString(args[1]) {
			return nil, fmt.Errorf("line %d: invalid #%s name %q", lineNum, d.Type, args[1])
		}
		d.Args = []string{args[1]}
	case DirectiveElse, DirectiveEndif:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: #%s takes no arguments", lineNum, d.Type)
		}
	case DirectiveInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: #include requires exactly one chunk", lineNum)
		}
		m := includeArgRegex.FindStringSubmatch(args[1])
		if m == nil {
			return nil, fmt.Errorf("line %d: malformed #include argument %q, want <chunk>", lineNum, args[1])
		}
		d.Args = []string{m[1] + m[2]}
	default:
		return nil, fmt.Errorf("line %d: unknown directive #%s", lineNum, args[0])
	}
	return d, nil
}
