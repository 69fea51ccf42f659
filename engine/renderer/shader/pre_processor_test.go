package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	d, err := parseDirective("    //#define MAX_LIGHTS 4", 3)
	require.NoError(t, err)
	assert.Equal(t, DirectiveDefine, d.Type)
	assert.Equal(t, []string{"MAX_LIGHTS", "4"}, d.Args)
	assert.Equal(t, 3, d.Line)

	d, err = parseDirective("//#include <vertex_2d>", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"vertex_2d"}, d.Args)

	d, err = parseDirective(`//#include "common/lighting"`, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"common/lighting"}, d.Args)

	d, err = parseDirective("// plain comment", 1)
	require.NoError(t, err)
	assert.Nil(t, d)

	for _, bad := range []string{"//#", "//#pragma once", "//#ifdef", "//#ifdef A B", "//#else X", "//#include vertex_2d", "//#define 9LIVES"} {
		_, err := parseDirective(bad, 7)
		assert.Error(t, err, bad)
	}
}

func TestPreProcessor_Conditionals(t *testing.T) {
	src := strings.Join([]string{
		"a",
		"//#ifdef TEXTURED",
		"textured",
		"//#ifndef NO_TINT",
		"tinted",
		"//#endif",
		"//#else",
		"flat",
		"//#endif",
		"z",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "flat", "z"}, nonEmptyLines(out))

	pp.Define("TEXTURED", "")
	out, err = pp.Process(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "textured", "tinted", "z"}, nonEmptyLines(out))
}

func TestPreProcessor_DefineSubstitution(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//#define COUNT 4\nvar<private> lights: array<vec4<f32>, COUNT>;\nlet COUNTER = 1;")
	require.NoError(t, err)
	assert.Contains(t, out, "array<vec4<f32>, 4>")
	assert.Contains(t, out, "COUNTER")
	assert.Equal(t, map[string]string{"COUNT": "4"}, pp.Defines())

	// defines made by a source do not leak into the next one
	out, err = pp.Process("COUNT")
	require.NoError(t, err)
	assert.Equal(t, "COUNT\n", out)
}

func TestPreProcessor_DefineInsideInactiveBranch(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//#ifdef MISSING\n//#define INNER\n//#endif\n//#ifdef INNER\nbad\n//#endif\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "bad")
}

func TestPreProcessor_Include(t *testing.T) {
	pp := NewPreProcessor()
	pp.RegisterChunk("outer", "//#include <inner>\nouter")
	pp.RegisterChunk("inner", "inner")

	out, err := pp.Process("//#include <outer>\nmain")
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", "outer", "main"}, nonEmptyLines(out))

	out, err = pp.Process("//#include <vertex_2d>")
	require.NoError(t, err)
	assert.Contains(t, out, "@location(2) color: vec4<f32>")
}

func TestPreProcessor_Errors(t *testing.T) {
	pp := NewPreProcessor()
	pp.RegisterChunk("loop", "//#include <loop>")

	tests := map[string]string{
		"//#include <nope>":              "unknown chunk",
		"//#include <loop>":              "recursive include",
		"//#endif":                       "#endif without",
		"//#else":                        "#else without",
		"//#ifdef A\n//#else\n//#else":   "duplicate #else",
		"//#ifndef A\nbody":              "unterminated #ifndef",
		"//#ifdef A\n//#unknown\n//#endif": "unknown directive",
	}
	for src, want := range tests {
		_, err := pp.Process(src)
		assert.ErrorContains(t, err, want, src)
	}
}

func TestPreProcessor_UnknownChunkInInactiveBranchIgnored(t *testing.T) {
	_, err := NewPreProcessor().Process("//#ifdef OFF\n//#include <nope>\n//#endif")
	assert.NoError(t, err)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}
