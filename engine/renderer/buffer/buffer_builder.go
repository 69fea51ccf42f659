package buffer

import "go.uber.org/zap"

// BufferBuilderOption is a functional option applied to vertex and element buffers during construction.
type BufferBuilderOption func(*bufferOptions)

// bufferOptions collects the settings shared by every buffer constructor.
type bufferOptions struct {
	label  string
	logger *zap.Logger
}

func newBufferOptions(defaultLabel string, options []BufferBuilderOption) bufferOptions {
	o := bufferOptions{label: defaultLabel, logger: zap.NewNop()}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// WithLabel sets the debug label of the GPU buffer.
//
// Parameters:
//   - label: the label shown in GPU debuggers and validation messages
//
// Returns:
//   - BufferBuilderOption: a function that applies the label option to a buffer
func WithLabel(label string) BufferBuilderOption {
	return func(o *bufferOptions) {
		o.label = label
	}
}

// WithLogger sets the logger used for allocation and release diagnostics.
//
// Parameters:
//   - logger: the logger to use; nil keeps the no-op default
//
// Returns:
//   - BufferBuilderOption: a function that applies the logger option to a buffer
func WithLogger(logger *zap.Logger) BufferBuilderOption {
	return func(o *bufferOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
