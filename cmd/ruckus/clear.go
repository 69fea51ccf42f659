package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newClearCmd(a *app) *cobra.Command {
	var (
		demo  demoFlags
		speed float64
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Cycle the window's clear color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}

			r := eng.Renderer()
			hue := 0.0
			demo.apply(eng, func(dt float32) error {
				hue += speed * float64(dt)
				c := hueColor(hue)
				return r.Clear(c[0], c[1], c[2], c[3])
			})

			a.logger.Info("clear demo started", zap.Float64("degrees_per_second", speed))
			return eng.Run()
		},
	}
	demo.register(cmd)
	cmd.Flags().Float64Var(&speed, "speed", 90, "hue rotation in degrees per second")
	return cmd
}
