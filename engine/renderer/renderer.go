// Package renderer draws vertex arrays, sprites and clears into the window surface or a bound
// framebuffer. Every draw records and submits its own render pass, so uniforms written before a
// draw apply to that draw only.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/ruckus/common"
	"github.com/Carmen-Shannon/ruckus/engine/camera"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/gpu"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/shader"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/texture"
	"github.com/Carmen-Shannon/ruckus/engine/vertex"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrNoFrame is returned when drawing to the surface outside BeginFrame/Present.
var ErrNoFrame = errors.New("renderer: no frame in progress")

const (
	spriteShaderKey     = "ruckus/sprite"
	initialQuadCapacity = 64
	initialLoopCapacity = 64
)

// SurfaceSource is the window the renderer presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// FrameStats counts the work recorded since the last BeginFrame.
type FrameStats struct {
	DrawCalls int
	Clears    int
	Pipelines int
}

// renderTarget is the set of attachments a pass draws into.
type renderTarget struct {
	colorViews   []*wgpu.TextureView
	colorFormats []wgpu.TextureFormat
	depthView    *wgpu.TextureView
	depthFormat  wgpu.TextureFormat
}

// passDescriptor describes a pass over t that loads existing contents, or clears them to clear
// when it is non-nil. Depth is cleared to 1 and stencil to 0 alongside the color.
func (t renderTarget) passDescriptor(clear *wgpu.Color) *wgpu.RenderPassDescriptor {
	load := wgpu.LoadOpLoad
	var clearValue wgpu.Color
	if clear != nil {
		load = wgpu.LoadOpClear
		clearValue = *clear
	}

	attachments := make([]wgpu.RenderPassColorAttachment, len(t.colorViews))
	for i, v := range t.colorViews {
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       v,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		}
	}

	desc := &wgpu.RenderPassDescriptor{ColorAttachments: attachments}
	if t.depthView != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       load,
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     load,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		}
	}
	return desc
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color
	clipNear             float32
	clipFar              float32

	width  int
	height int

	camera      camera.Camera
	state       pipeline.State
	pipelines   *pipeline.Cache
	framebuffer framebuffer.Framebuffer
	stats       FrameStats

	quadIndices  buffer.ElementBuffer
	quadCapacity int
	loopIndices  buffer.ElementBuffer
	loopCapacity int

	sprite         shader.Shader
	spriteVertices buffer.VertexBuffer
	spriteArray    buffer.VertexArray
	blank          texture.Texture
}

// Renderer defines the interface for the rendering system.
//
// Draws go to the bound framebuffer, or to the frame acquired by BeginFrame when none is bound.
// The pipeline for each draw is derived from the shader, the vertex array layouts, the target's
// formats and the current blend, depth and cull state, and is cached after first use.
type Renderer interface {
	gpu.Context

	// Resize reconfigures the surface and depth buffer and updates the camera aspect ratio.
	// A zero size (a minimized window) is ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	//
	// Returns:
	//   - error: an error if the depth buffer cannot be recreated
	Resize(width, height int) error

	// SetPresentMode changes how frames are delivered to the display.
	SetPresentMode(mode PresentMode) error

	// PresentMode returns the requested present mode.
	PresentMode() PresentMode

	// Size returns the surface size in pixels.
	Size() (width, height int)

	// BeginFrame acquires the next surface texture and clears it to the configured clear color.
	// Must be paired with Present.
	//
	// Returns:
	//   - error: an error if the surface texture cannot be acquired
	BeginFrame() error

	// Present shows the frame acquired by BeginFrame. It is a no-op outside a frame.
	Present()

	// Clear clears the current target's color attachments to the given color and its depth
	// buffer to 1.
	//
	// Returns:
	//   - error: ErrNoFrame when drawing to the surface outside a frame
	Clear(r, g, b, a float64) error

	// BindFramebuffer redirects draws and clears into fb.
	//
	// Returns:
	//   - error: an error wrapping framebuffer.ErrIncompleteFramebuffer when fb cannot be drawn into
	BindFramebuffer(fb framebuffer.Framebuffer) error

	// UnbindFramebuffer redirects draws back to the surface.
	UnbindFramebuffer()

	// SetBlend enables or disables straight alpha blending.
	SetBlend(enabled bool)

	// SetDepthTest enables or disables depth testing and depth writes.
	SetDepthTest(enabled bool)

	// SetCullMode sets which triangle faces are discarded.
	SetCullMode(mode wgpu.CullMode)

	// State returns a copy of the current render state.
	State() pipeline.State

	// Draw draws count vertices starting at first.
	//
	// Parameters:
	//   - s: the shader to draw with
	//   - va: the vertex buffers and their layouts
	//   - primitive: how vertices are assembled; Quads needs a multiple of 4 vertices
	//   - first: the first vertex
	//   - count: the number of vertices
	//
	// Returns:
	//   - error: ErrNoFrame, ErrInvalidDraw, buffer.ErrOutOfRange, buffer.ErrUnsupportedPrimitive,
	//     or a shader or pipeline error
	Draw(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count uint32) error

	// DrawInstanced is Draw repeated for instances instances.
	DrawInstanced(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count, instances uint32) error

	// DrawElements draws count indices of the vertex array's element buffer starting at first.
	// LineLoop and Quads are not supported with an element buffer.
	DrawElements(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count uint32) error

	// DrawElementsInstanced is DrawElements repeated for instances instances.
	DrawElementsInstanced(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count, instances uint32) error

	// DrawQuad draws four vertices as a quad with the built-in sprite shader.
	//
	// Parameters:
	//   - quad: the vertices, e.g. from vertex.NewQuad
	//   - tex: the texture to sample; nil draws with BlankTexture
	//   - mvp: the model-view-projection matrix
	//
	// Returns:
	//   - error: any error from the draw
	DrawQuad(quad [4]vertex.Vertex2D, tex texture.Texture, mvp mgl32.Mat4) error

	// Camera returns the camera behind Projection and View.
	Camera() camera.Camera

	// Projection returns the camera's perspective projection.
	Projection() mgl32.Mat4

	// View returns the camera's view matrix.
	View() mgl32.Mat4

	// OrthoProjection maps pixel coordinates with the origin at the top left of the surface.
	OrthoProjection() mgl32.Mat4

	// BlankTexture returns a shared 1x1 white texture.
	BlankTexture() (texture.Texture, error)

	// Pipelines returns the pipeline cache.
	Pipelines() *pipeline.Cache

	// Stats returns the counters for the current frame.
	Stats() FrameStats

	// Release releases every GPU object owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer presenting to window.
//
// Parameters:
//   - window: the window providing the surface descriptor and initial size
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter, device or surface configuration is available
func NewRenderer(window SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)

	backend, err := newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, r.logger)
	if err != nil {
		return nil, err
	}
	r.backend = backend

	if err := r.backend.SetPresentMode(r.presentMode); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.Resize(window.Width(), window.Height()); err != nil {
		r.Release()
		return nil, err
	}

	r.pipelines = pipeline.NewCache(r.backend.Device(), r.logger)
	if err := r.ensureQuadIndices(initialQuadCapacity); err != nil {
		r.Release()
		return nil, err
	}

	r.logger.Info("renderer created",
		zap.Int("width", r.width),
		zap.Int("height", r.height),
		zap.Stringer("present_mode", r.presentMode),
	)
	return r, nil
}

// newRenderer applies defaults and options without touching the GPU.
func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      zap.NewNop(),
		backendType: BackendTypeWGPU,
		presentMode: PresentModeVSync,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		clipNear:    0.1,
		clipFar:     100,
		state:       pipeline.NewState(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.camera == nil {
		r.camera = camera.NewCamera()
	}
	r.camera.SetClipPlanes(r.clipNear, r.clipFar)
	return r
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if r.backend != nil {
		if err := r.backend.ConfigureSurface(width, height); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.width = width
	r.height = height
	r.mu.Unlock()

	r.camera.SetAspect(float32(width) / float32(height))
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) error {
	r.mu.Lock()
	r.presentMode = mode
	r.mu.Unlock()
	return r.backend.SetPresentMode(mode)
}

func (r *renderer) PresentMode() PresentMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presentMode
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) BeginFrame() error {
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = FrameStats{}
	return r.clear(r.surfaceTarget(), r.clearColor)
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Clear(red, green, blue, alpha float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.currentTarget()
	if err != nil {
		return err
	}
	return r.clear(target, wgpu.Color{R: red, G: green, B: blue, A: alpha})
}

// clear submits a pass that clears target. Caller must hold the mutex.
func (r *renderer) clear(target renderTarget, color wgpu.Color) error {
	err := r.backend.Submit("Clear", func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(target.passDescriptor(&color))
		defer pass.Release()
		return pass.End()
	})
	if err != nil {
		return fmt.Errorf("failed to clear: %w", err)
	}
	r.stats.Clears++
	return nil
}

func (r *renderer) BindFramebuffer(fb framebuffer.Framebuffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framebuffer = fb
	return nil
}

func (r *renderer) UnbindFramebuffer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framebuffer = nil
}

func (r *renderer) SetBlend(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.BlendEnabled = enabled
}

func (r *renderer) SetDepthTest(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.DepthTestEnabled = enabled
	r.state.DepthWriteEnabled = enabled
}

func (r *renderer) SetCullMode(mode wgpu.CullMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.CullMode = mode
}

func (r *renderer) State() pipeline.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.With()
}

// surfaceTarget describes the acquired frame and the surface depth buffer. Caller must hold the mutex.
func (r *renderer) surfaceTarget() renderTarget {
	t := renderTarget{
		colorViews:   []*wgpu.TextureView{r.backend.FrameView()},
		colorFormats: []wgpu.TextureFormat{r.backend.SurfaceFormat()},
	}
	if dv := r.backend.DepthView(); dv != nil {
		t.depthView = dv
		t.depthFormat = DepthFormat
	}
	return t
}

// currentTarget returns the bound framebuffer's attachments, or the surface frame. Caller must
// hold the mutex.
func (r *renderer) currentTarget() (renderTarget, error) {
	if fb := r.framebuffer; fb != nil {
		t := renderTarget{
			colorViews:   fb.ColorViews(),
			colorFormats: fb.ColorFormats(),
		}
		if rb := fb.RenderBuffer(); rb != nil {
			t.depthView = rb.View()
			t.depthFormat = rb.Format()
		}
		return t, nil
	}
	if r.backend == nil || r.backend.FrameView() == nil {
		return renderTarget{}, ErrNoFrame
	}
	return r.surfaceTarget(), nil
}

// drawState derives the pipeline state for a draw into target. Caller must hold the mutex.
func (r *renderer) drawState(target renderTarget, plan drawPlan, layouts []wgpu.VertexBufferLayout) pipeline.State {
	return r.state.With(
		pipeline.WithTopology(plan.topology),
		pipeline.WithStripIndexFormat(plan.stripFormat),
		pipeline.WithColorFormats(target.colorFormats...),
		pipeline.WithDepthFormat(target.depthFormat),
		pipeline.WithVertexLayouts(layouts...),
	)
}

func (r *renderer) Draw(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count uint32) error {
	return r.DrawInstanced(s, va, primitive, first, count, 1)
}

func (r *renderer) DrawInstanced(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count, instances uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draw(s, va, primitive, false, first, count, instances)
}

func (r *renderer) DrawElements(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count uint32) error {
	return r.DrawElementsInstanced(s, va, primitive, first, count, 1)
}

func (r *renderer) DrawElementsInstanced(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, first, count, instances uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draw(s, va, primitive, true, first, count, instances)
}

// draw validates, prepares and submits one draw. Caller must hold the mutex.
func (r *renderer) draw(s shader.Shader, va buffer.VertexArray, primitive buffer.DrawPrimitive, indexed bool, first, count, instances uint32) error {
	target, err := r.currentTarget()
	if err != nil {
		return err
	}
	plan, err := planDraw(primitive, indexed, first, count)
	if err != nil {
		return err
	}
	if plan.empty() || instances == 0 {
		return nil
	}

	// Every plan but indexElements reads the vertex range [first, first+count) directly.
	if plan.index != indexElements {
		if n := va.VertexCount(); n > 0 && uint64(first)+uint64(count) > uint64(n) {
			return fmt.Errorf("%w: vertices [%d, %d) of %d", buffer.ErrOutOfRange, first, uint64(first)+uint64(count), n)
		}
	}

	var indices buffer.ElementBuffer
	switch plan.index {
	case indexElements:
		indices = va.ElementBuffer()
		if indices == nil {
			return fmt.Errorf("%w: vertex array has no element buffer", ErrInvalidDraw)
		}
		if uint64(first)+uint64(count) > uint64(indices.Count()) {
			return fmt.Errorf("%w: indices [%d, %d) of %d", buffer.ErrOutOfRange, first, first+count, indices.Count())
		}
	case indexQuads:
		if err := r.ensureQuadIndices(int(count / 4)); err != nil {
			return err
		}
		indices = r.quadIndices
	case indexLineLoop:
		if err := r.writeLoopIndices(count); err != nil {
			return err
		}
		indices = r.loopIndices
	}

	if err := s.Prepare(); err != nil {
		return err
	}
	p, err := r.pipelines.Get(s, r.drawState(target, plan, va.Layouts()))
	if err != nil {
		return err
	}

	err = r.backend.Submit("Draw", func(encoder *wgpu.CommandEncoder) error {
		pass := encoder.BeginRenderPass(target.passDescriptor(nil))
		defer pass.Release()

		pass.SetPipeline(p.RenderPipeline())
		for i, bg := range s.BindGroups() {
			pass.SetBindGroup(uint32(i), bg, nil)
		}
		for slot, vb := range va.Buffers() {
			pass.SetVertexBuffer(uint32(slot), vb.Buffer(), 0, wgpu.WholeSize)
		}
		if indices == nil {
			pass.Draw(plan.vertexCount, instances, plan.firstVertex, 0)
		} else {
			pass.SetIndexBuffer(indices.Buffer(), indices.Format(), 0, wgpu.WholeSize)
			pass.DrawIndexed(plan.indexCount, instances, plan.firstIndex, plan.baseVertex, 0)
		}
		return pass.End()
	})
	if err != nil {
		return fmt.Errorf("failed to draw %v with shader %s: %w", primitive, s.Key(), err)
	}
	r.stats.DrawCalls++
	return nil
}

// ensureQuadIndices grows the shared quad element buffer to hold at least quads quads.
// Caller must hold the mutex.
func (r *renderer) ensureQuadIndices(quads int) error {
	if quads <= r.quadCapacity {
		return nil
	}
	capacity := growCapacity(quads, initialQuadCapacity)
	eb, err := buffer.NewQuadElementBuffer(r, capacity, buffer.WithLogger(r.logger))
	if err != nil {
		return fmt.Errorf("failed to grow quad element buffer: %w", err)
	}
	if r.quadIndices != nil {
		r.quadIndices.Release()
	}
	r.quadIndices = eb
	r.quadCapacity = capacity
	return nil
}

// writeLoopIndices uploads the closing index list for a line loop of n vertices, growing the
// scratch element buffer if needed. Caller must hold the mutex.
func (r *renderer) writeLoopIndices(n uint32) error {
	indices := lineLoopIndices(n)
	if len(indices) > r.loopCapacity {
		capacity := growCapacity(len(indices), initialLoopCapacity)
		eb, err := buffer.NewElementBuffer(r, make([]uint32, capacity), buffer.Dynamic,
			buffer.WithLabel("Line Loop Element Buffer"), buffer.WithLogger(r.logger))
		if err != nil {
			return fmt.Errorf("failed to grow line loop element buffer: %w", err)
		}
		if r.loopIndices != nil {
			r.loopIndices.Release()
		}
		r.loopIndices = eb
		r.loopCapacity = capacity
	}
	return r.loopIndices.Write(0, indices)
}

func (r *renderer) DrawQuad(quad [4]vertex.Vertex2D, tex texture.Texture, mvp mgl32.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureSprite(); err != nil {
		return err
	}
	if tex == nil {
		blank, err := r.blankTexture()
		if err != nil {
			return err
		}
		tex = blank
	}

	if err := r.sprite.SetUniformMatrix("mvp", mvp); err != nil {
		return err
	}
	if err := r.sprite.SetUniformVec4("tint", mgl32.Vec4(vertex.White)); err != nil {
		return err
	}
	if err := r.sprite.SetTexture("sprite_texture", tex); err != nil {
		return err
	}
	if err := r.spriteVertices.Write(0, common.SliceToBytes(quad[:])); err != nil {
		return err
	}
	return r.draw(r.sprite, r.spriteArray, buffer.Quads, false, 0, 4, 1)
}

// ensureSprite compiles the textured sprite shader and its vertex buffer on first use.
// Caller must hold the mutex.
func (r *renderer) ensureSprite() error {
	if r.sprite != nil {
		return nil
	}

	s, err := shader.FromMemory(r, shader.SpriteSource,
		shader.WithKey(spriteShaderKey),
		shader.WithDefine("TEXTURED", ""),
		shader.WithLogger(r.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to build sprite shader: %w", err)
	}

	vb, err := buffer.NewZeroedVertexBuffer(r, uint64(4*common.SizeOf[vertex.Vertex2D]()), buffer.Dynamic,
		buffer.WithLabel("Sprite Vertex Buffer"), buffer.WithLogger(r.logger))
	if err != nil {
		s.Release()
		return fmt.Errorf("failed to allocate sprite vertices: %w", err)
	}

	va := buffer.NewVertexArray()
	if err := va.SetVertexLayout(vb, vertex.Vertex2DLayout()...); err != nil {
		vb.Release()
		s.Release()
		return err
	}

	r.sprite = s
	r.spriteVertices = vb
	r.spriteArray = va
	return nil
}

func (r *renderer) Camera() camera.Camera {
	return r.camera
}

func (r *renderer) Projection() mgl32.Mat4 {
	return r.camera.Projection()
}

func (r *renderer) View() mgl32.Mat4 {
	return r.camera.View()
}

func (r *renderer) OrthoProjection() mgl32.Mat4 {
	w, h := r.Size()
	return common.Ortho(0, float32(w), float32(h), 0, -1, 1)
}

func (r *renderer) BlankTexture() (texture.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blankTexture()
}

// blankTexture creates the shared blank texture on first use. Caller must hold the mutex.
func (r *renderer) blankTexture() (texture.Texture, error) {
	if r.blank != nil {
		return r.blank, nil
	}
	t, err := texture.NewBlank(r, texture.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.blank = t
	return t, nil
}

func (r *renderer) Pipelines() *pipeline.Cache {
	return r.pipelines
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	if r.pipelines != nil {
		s.Pipelines = r.pipelines.Len()
	}
	return s
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sprite != nil {
		r.sprite.Release()
		r.sprite = nil
	}
	if r.spriteVertices != nil {
		r.spriteVertices.Release()
		r.spriteVertices = nil
	}
	if r.blank != nil {
		r.blank.Release()
		r.blank = nil
	}
	if r.quadIndices != nil {
		r.quadIndices.Release()
		r.quadIndices = nil
		r.quadCapacity = 0
	}
	if r.loopIndices != nil {
		r.loopIndices.Release()
		r.loopIndices = nil
		r.loopCapacity = 0
	}
	if r.pipelines != nil {
		r.pipelines.Release()
	}
	if r.backend != nil {
		r.backend.Release()
	}
}
