// Package logger builds the zap loggers handed to the window, renderer, loader, audio and engine
// components through their WithLogger options.
package logger

import (
	"fmt"

	"github.com/Carmen-Shannon/ruckus/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger from the logging section of the configuration.
//
// Parameters:
//   - cfg: the logging configuration; an empty level means info
//
// Returns:
//   - *zap.Logger: the configured logger
//   - error: an error if the level is unknown or the logger cannot be built
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// ParseLevel converts a level name into a zapcore.Level. An empty name is info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q: %w", name, err)
	}
	return level, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
