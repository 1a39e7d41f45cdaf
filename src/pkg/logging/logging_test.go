package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range cases {
		require.Equal(t, want, ParseLevel(name), "level %q", name)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	require.Equal(t, slog.LevelError, LevelFromEnv())
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	require.Empty(t, buf.String())

	logger.Warn("shown", "image_id", "abc")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "image_id=abc")
}

func TestCreateLoggerLevel(t *testing.T) {
	logger := CreateLogger(slog.LevelWarn)
	require.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
