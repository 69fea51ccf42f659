// Command ruckus runs the engine demos and manages the configuration file.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/Carmen-Shannon/ruckus/engine"
	"github.com/Carmen-Shannon/ruckus/engine/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	// GLFW must be driven from the main thread.
	runtime.LockOSThread()
}

// app holds the state shared by every command after flag parsing.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "ruckus",
		Short: "ruckus - a small WebGPU engine",
		Long: `ruckus draws into a GLFW window through WebGPU.

The demo commands open a window and run until it is closed, Escape is pressed,
or --frames frames have been drawn. Settings are read from --config; a missing
file means defaults.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "ruckus.yaml", "configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newClearCmd(a),
		newSpriteCmd(a),
		newCubeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = l
	return nil
}

// newEngine creates an engine from the loaded configuration followed by options.
func (a *app) newEngine(options ...engine.EngineBuilderOption) (engine.Engine, error) {
	base := []engine.EngineBuilderOption{
		engine.WithLogger(a.logger),
		engine.WithConfig(a.cfg),
	}
	return engine.NewEngine(append(base, options...)...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
