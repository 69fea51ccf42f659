package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFlipVertical is an option builder that sets whether decoded images are flipped vertically.
//
// Parameters:
//   - flip: true to store the bottom row first
//
// Returns:
//   - LoaderBuilderOption: a function that applies the flip option to a loader
func WithFlipVertical(flip bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flipVertical = flip
	}
}

// WithWorkers is an option builder that sets the number of goroutines used by LoadBatch.
//
// Parameters:
//   - n: the worker count; values below one use one worker
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithLogger is an option builder that sets the logger used for decode diagnostics.
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithImage is an option builder that pre-populates the image cache.
//
// Parameters:
//   - key: the cache key for the image
//   - img: the image to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the image option to a loader
func WithImage(key string, img *Image) LoaderBuilderOption {
	return func(l *loader) {
		l.imageCache[key] = img
	}
}
