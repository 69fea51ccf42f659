package pipeline

import (
	"sync"

	"github.com/Carmen-Shannon/ruckus/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// builder creates a pipeline on a cache miss.
type builder func(device *wgpu.Device, s shader.Shader, state State) (Pipeline, error)

// Cache holds compiled pipelines keyed by shader key and state key.
type Cache struct {
	mu        *sync.Mutex
	device    *wgpu.Device
	logger    *zap.Logger
	build     builder
	pipelines map[string]Pipeline
}

// NewCache creates an empty cache that compiles pipelines on device.
func NewCache(device *wgpu.Device, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		mu:        &sync.Mutex{},
		device:    device,
		logger:    logger,
		build:     NewPipeline,
		pipelines: make(map[string]Pipeline),
	}
}

// Get returns the pipeline for s and state, compiling it on first use.
//
// Parameters:
//   - s: the prepared shader
//   - state: the render state
//
// Returns:
//   - Pipeline: the cached or newly compiled pipeline
//   - error: an error if compilation fails; failures are not cached
func (c *Cache) Get(s shader.Shader, state State) (Pipeline, error) {
	key := CacheKey(s, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}

	p, err := c.build(c.device, s, state)
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	c.logger.Debug("pipeline compiled", zap.String("shader", s.Key()), zap.Int("cached", len(c.pipelines)))
	return p, nil
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}

// Evict releases every pipeline built from the shader with the given key.
func (c *Cache) Evict(shaderKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		if p.Shader().Key() == shaderKey {
			p.Release()
			delete(c.pipelines, key)
		}
	}
}

// Release releases every cached pipeline.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, key)
	}
}
