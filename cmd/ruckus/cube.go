package main

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/ruckus/engine"
	"github.com/Carmen-Shannon/ruckus/engine/renderer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/buffer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/shader"
	"github.com/Carmen-Shannon/ruckus/engine/vertex"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed shaders/cube.wgsl
var cubeSource string

var lightDir = mgl32.Vec4{-0.4, -1, -0.6, 0}

type cubeFlags struct {
	demo  demoFlags
	image string
	spin  float64
}

func newCubeCmd(a *app) *cobra.Command {
	var f cubeFlags

	cmd := &cobra.Command{
		Use:   "cube",
		Short: "Draw a lit, textured cube with a fly camera",
		Long: `Draws a spinning cube textured with --image (or plain white).
WASD moves the camera, Space and Left Shift move it up and down, the mouse looks around
and the scroll wheel zooms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCube(a, f)
		},
	}
	f.demo.register(cmd)
	cmd.Flags().StringVarP(&f.image, "image", "i", "", "image file to texture the cube with")
	cmd.Flags().Float64Var(&f.spin, "spin", 30, "rotation in degrees per second")
	return cmd
}

// cubeScene is the GPU state for one cube.
type cubeScene struct {
	shader  shader.Shader
	array   buffer.VertexArray
	indices uint32
}

func runCube(a *app, f cubeFlags) error {
	eng, err := a.newEngine(engine.WithFlyCamera(true))
	if err != nil {
		return err
	}
	r := eng.Renderer()

	tex, err := spriteTexture(r, f.image)
	if err != nil {
		return abort(eng, err)
	}
	scene, err := newCubeScene(r, a.logger)
	if err != nil {
		return abort(eng, err)
	}
	if err := scene.shader.SetTexture("cube_texture", tex); err != nil {
		return abort(eng, err)
	}

	r.SetDepthTest(true)
	r.SetCullMode(wgpu.CullModeBack)

	angle := 0.0
	f.demo.apply(eng, func(dt float32) error {
		angle += f.spin * float64(dt)
		model := mgl32.HomogRotate3DY(mgl32.DegToRad(float32(angle))).
			Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(angle) / 2)))
		return scene.draw(r, model)
	})

	a.logger.Info("cube demo started", zap.Int("indices", int(scene.indices)))
	return eng.Run()
}

func newCubeScene(r renderer.Renderer, logger *zap.Logger) (*cubeScene, error) {
	s, err := shader.FromMemory(r, cubeSource,
		shader.WithKey("ruckus/cube"),
		shader.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile cube shader: %w", err)
	}

	verts, indices := cubeMesh()
	vb, err := buffer.NewVertexBufferFrom(r, verts, buffer.Static, buffer.WithLabel("Cube Vertices"))
	if err != nil {
		return nil, err
	}
	eb, err := buffer.NewElementBuffer(r, indices, buffer.Static, buffer.WithLabel("Cube Indices"))
	if err != nil {
		return nil, err
	}

	va := buffer.NewVertexArray()
	if err := va.SetVertexLayout(vb, vertex.Vertex3DLayout()...); err != nil {
		return nil, err
	}
	va.SetElementBuffer(eb)

	return &cubeScene{shader: s, array: va, indices: uint32(len(indices))}, nil
}

func (c *cubeScene) draw(r renderer.Renderer, model mgl32.Mat4) error {
	if err := c.shader.SetUniformMatrix("model", model); err != nil {
		return err
	}
	if err := c.shader.SetUniformMatrix("view_proj", r.Projection().Mul4(r.View())); err != nil {
		return err
	}
	if err := c.shader.SetUniformVec4("light_dir", lightDir); err != nil {
		return err
	}
	return r.DrawElements(c.shader, c.array, buffer.Triangles, 0, c.indices)
}

// cubeFace is one face of the unit cube: its outward normal and two in-plane axes with
// u x v = normal, so corners listed -u-v, +u-v, +u+v, -u+v wind counter-clockwise from outside.
type cubeFace struct {
	normal, u, v mgl32.Vec3
}

var cubeFaces = [6]cubeFace{
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// cubeMesh returns a unit cube centred on the origin with four vertices per face.
func cubeMesh() ([]vertex.Vertex3D, []uint32) {
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	verts := make([]vertex.Vertex3D, 0, len(cubeFaces)*4)
	indices := make([]uint32, 0, len(cubeFaces)*6)
	for _, face := range cubeFaces {
		base := uint32(len(verts))
		for _, c := range corners {
			p := face.normal.Add(face.u.Mul(c[0])).Add(face.v.Mul(c[1])).Mul(0.5)
			verts = append(verts, vertex.Vertex3D{
				Position: p,
				Normal:   face.normal,
				TexCoord: [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, indices
}
