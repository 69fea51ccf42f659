package shader

import "go.uber.org/zap"

// ShaderBuilderOption is a functional option applied to a Shader during construction.
type ShaderBuilderOption func(*shaderOptions)

type shaderOptions struct {
	key     string
	logger  *zap.Logger
	defines map[string]string
	chunks  map[string]string
}

func newShaderOptions(options []ShaderBuilderOption) shaderOptions {
	o := shaderOptions{
		logger:  zap.NewNop(),
		defines: make(map[string]string),
		chunks:  make(map[string]string),
	}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// WithKey sets the shader key used in error messages and as the pipeline cache key. Without
// it the key is derived from a hash of the pre-processed source.
//
// Parameters:
//   - key: the unique shader key
//
// Returns:
//   - ShaderBuilderOption: a function that applies the key option to a shader
func WithKey(key string) ShaderBuilderOption {
	return func(o *shaderOptions) {
		o.key = key
	}
}

// WithDefine defines name before the source is pre-processed, as if the source began with
// //#define name value.
//
// Parameters:
//   - name: the define name
//   - value: the replacement value, or empty to only mark name as defined
//
// Returns:
//   - ShaderBuilderOption: a function that applies the define option to a shader
func WithDefine(name, value string) ShaderBuilderOption {
	return func(o *shaderOptions) {
		o.defines[name] = value
	}
}

// WithChunk registers src for //#include <name>, overriding a built-in chunk of the same name.
func WithChunk(name, src string) ShaderBuilderOption {
	return func(o *shaderOptions) {
		o.chunks[name] = src
	}
}

// WithLogger sets the logger used for shader diagnostics.
func WithLogger(logger *zap.Logger) ShaderBuilderOption {
	return func(o *shaderOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
