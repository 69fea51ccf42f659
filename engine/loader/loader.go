// Package loader decodes image files into RGBA pixel data for texture upload, caching results by
// path and decoding batches in parallel on a worker pool.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// ErrClosed is returned by LoadBatch after Close.
var ErrClosed = errors.New("loader: closed")

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger       *zap.Logger
	flipVertical bool
	workers      int

	imageCache map[string]*Image

	pool   worker.DynamicWorkerPool
	closed bool
}

// Loader decodes and caches images by file path.
type Loader interface {
	// Load decodes an image file and caches the result.
	// If the image is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the image file
	//
	// Returns:
	//   - *Image: the decoded image
	//   - error: error if decoding fails
	Load(path string) (*Image, error)

	// LoadBatch decodes every path in parallel on the loader's worker pool. Images that decode are
	// cached and returned even when others fail.
	//
	// Parameters:
	//   - ctx: stops images that have not started decoding yet
	//   - paths: the image files
	//
	// Returns:
	//   - map[string]*Image: the decoded images keyed by path
	//   - error: every failure joined, or ctx.Err(), or ErrClosed
	LoadBatch(ctx context.Context, paths []string) (map[string]*Image, error)

	// Get retrieves a cached image by path. Returns nil if not found.
	Get(path string) *Image

	// Images returns a copy of the image cache.
	Images() map[string]*Image

	// Evict removes an image from the cache.
	Evict(path string)

	// Close stops the worker pool.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the provided options applied. Images are flipped vertically by
// default, matching texture.FromFile.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new loader with a started worker pool
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:           sync.RWMutex{},
		logger:       zap.NewNop(),
		flipVertical: true,
		workers:      runtime.NumCPU(),
		imageCache:   make(map[string]*Image),
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (*Image, error) {
	l.mu.RLock()
	if cached, ok := l.imageCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	start := time.Now()
	img, err := DecodeFile(path, l.flipVertical)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("image decoded",
		zap.String("path", path),
		zap.Uint32("width", img.Width),
		zap.Uint32("height", img.Height),
		zap.Stringer("format", img.Format),
		zap.Duration("elapsed", time.Since(start)),
	)

	l.mu.Lock()
	l.imageCache[path] = img
	l.mu.Unlock()

	return img, nil
}

func (l *loader) LoadBatch(ctx context.Context, paths []string) (map[string]*Image, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	var (
		resultsMu sync.Mutex
		results   = make(map[string]*Image, len(paths))
		errs      []error
	)

	// The pool's Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		p := path
		l.pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: p,
			Do: func() (any, error) {
				defer wg.Done()

				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				img, err := l.Load(p)

				resultsMu.Lock()
				defer resultsMu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return nil, err
				}
				results[p] = img
				return img, nil
			},
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		l.logger.Warn("batch load incomplete",
			zap.Int("requested", len(paths)),
			zap.Int("loaded", len(results)),
			zap.Int("failed", len(errs)),
		)
		return results, fmt.Errorf("failed to load %d of %d images: %w", len(paths)-len(results), len(paths), errors.Join(errs...))
	}
	return results, nil
}

func (l *loader) Get(path string) *Image {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.imageCache[path]
}

func (l *loader) Images() map[string]*Image {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Image, len(l.imageCache))
	for k, v := range l.imageCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.imageCache, path)
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}
