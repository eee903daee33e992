package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/config"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"error":   zapcore.ErrorLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"info":    zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"":        zapcore.DebugLevel,
		"verbose": zapcore.DebugLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestNewWritesRotatedJSONFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "radar.log")
	logger, sync := New(config.LoggingConfig{Level: "warn", File: config.LogFileConfig{Path: path}})

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	logger.Info("dropped")
	logger.With("component", "classifier").Warn("post not classified", "failure", "label_mismatch")
	_ = sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.NotContains(t, text, "dropped")
	assert.Contains(t, text, `"message":"post not classified"`)
	assert.Contains(t, text, `"component":"classifier"`)
	assert.Contains(t, text, `"level":"WARN"`)
}

func TestConsoleCoreWritesToStderr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, os.Stderr, consoleWriter)

	var buf bytes.Buffer
	logger, sync := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("run finished", "posts", 2)
	require.NoError(t, sync())

	assert.Contains(t, buf.String(), `"message":"run finished"`)
	assert.Contains(t, buf.String(), `"posts":2`)
}
