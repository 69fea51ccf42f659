package logger

import (
	"testing"

	"github.com/Carmen-Shannon/ruckus/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	l, err := New(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
