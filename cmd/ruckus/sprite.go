package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/Carmen-Shannon/ruckus/engine/audio"
	"github.com/Carmen-Shannon/ruckus/engine/renderer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/framebuffer"
	"github.com/Carmen-Shannon/ruckus/engine/renderer/texture"
	"github.com/Carmen-Shannon/ruckus/engine/transform"
	"github.com/Carmen-Shannon/ruckus/engine/vertex"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultSpriteSize = 128
	captureTimeout    = 5 * time.Second
)

type spriteFlags struct {
	demo    demoFlags
	image   string
	sound   string
	loop    bool
	spin    float64
	capture string
}

func newSpriteCmd(a *app) *cobra.Command {
	var f spriteFlags

	cmd := &cobra.Command{
		Use:   "sprite",
		Short: "Draw a spinning textured quad",
		Long: `Draws --image (or a white square) in the middle of the window, spinning at --spin
degrees per second. --sound plays an audio file alongside it, and --capture renders one
frame offscreen and writes it as a PNG before the window loop starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSprite(a, f)
		},
	}
	f.demo.register(cmd)
	cmd.Flags().StringVarP(&f.image, "image", "i", "", "image file to draw")
	cmd.Flags().StringVarP(&f.sound, "sound", "s", "", "audio file to play (wav, mp3, ogg or flac)")
	cmd.Flags().BoolVar(&f.loop, "loop", false, "loop --sound")
	cmd.Flags().Float64Var(&f.spin, "spin", 45, "rotation in degrees per second")
	cmd.Flags().StringVar(&f.capture, "capture", "", "write one offscreen frame to this PNG file")
	return cmd
}

func runSprite(a *app, f spriteFlags) error {
	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	r := eng.Renderer()

	tex, err := spriteTexture(r, f.image)
	if err != nil {
		return abort(eng, err)
	}

	if f.sound != "" {
		if err := playSound(eng.Audio(), f.sound, f.loop); err != nil {
			a.logger.Warn("sound not played", zap.String("path", f.sound), zap.Error(err))
		}
	}

	size := tex.Size()
	if f.image == "" {
		size.X, size.Y = defaultSpriteSize, defaultSpriteSize
	}
	sprite := transform.NewTransform(
		transform.WithOrigin(mgl32.Vec3{0.5, 0.5, 0}),
		transform.WithScale(mgl32.Vec3{float32(size.X), float32(size.Y), 1}),
	)

	draw := func() error {
		w, h := r.Size()
		sprite.SetPosition(mgl32.Vec3{float32(w) / 2, float32(h) / 2, 0})
		quad := vertex.NewQuad(sprite.Model(), nil, tex.Size())
		return r.DrawQuad(quad, tex, r.OrthoProjection())
	}

	if f.capture != "" {
		if err := captureFrame(r, f.capture, draw); err != nil {
			return abort(eng, err)
		}
		a.logger.Info("frame captured", zap.String("path", f.capture))
	}

	angle := 0.0
	f.demo.apply(eng, func(dt float32) error {
		angle += f.spin * float64(dt)
		sprite.SetRotationZ(mgl32.DegToRad(float32(angle)))
		return draw()
	})
	return eng.Run()
}

// spriteTexture loads path, or returns the renderer's blank texture when path is empty.
func spriteTexture(r renderer.Renderer, path string) (texture.Texture, error) {
	if path == "" {
		return r.BlankTexture()
	}
	tex, err := texture.FromFile(r, path, texture.WithMipmaps(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load sprite image: %w", err)
	}
	return tex, nil
}

func playSound(m audio.Manager, path string, loop bool) error {
	if m == nil {
		return errors.New("audio is disabled")
	}
	s, err := m.LoadSound(path)
	if err != nil {
		return err
	}
	settings := audio.DefaultInstanceSettings()
	settings.Loop = loop
	_, err = m.Play(s, settings)
	return err
}

// captureFrame draws into an offscreen framebuffer the size of the surface and saves it as a PNG.
func captureFrame(r renderer.Renderer, path string, draw func() error) error {
	img, err := renderOffscreen(r, draw)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}
	return nil
}

func renderOffscreen(r renderer.Renderer, draw func() error) (*image.RGBA, error) {
	w, h := r.Size()

	color, err := texture.NewRenderTarget(r, uint32(w), uint32(h), texture.WithLabel("Capture"))
	if err != nil {
		return nil, err
	}
	defer color.Release()

	depth, err := framebuffer.NewRenderBuffer(r, uint32(w), uint32(h))
	if err != nil {
		return nil, err
	}
	defer depth.Release()

	fb := framebuffer.NewFramebuffer(r)
	defer fb.Release()
	if err := fb.AttachTexture(color); err != nil {
		return nil, err
	}
	if err := fb.AttachRenderBuffer(depth); err != nil {
		return nil, err
	}

	if err := r.BindFramebuffer(fb); err != nil {
		return nil, err
	}
	defer r.UnbindFramebuffer()

	if err := r.Clear(0, 0, 0, 0); err != nil {
		return nil, err
	}
	if err := draw(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()
	return fb.ReadPixels(ctx, 0)
}
