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
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/ldml2res/internal/config"
)

func TestSetupWithWriter_Formats(t *testing.T) {
	var text bytes.Buffer

	SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: "text"}, &text).Info("split", "target", "lang")
	assert.Contains(t, text.String(), "msg=split")
	assert.Contains(t, text.String(), "target=lang")

	var js bytes.Buffer

	SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: "json"}, &js).Info("split")
	assert.Contains(t, js.String(), `"msg":"split"`)
}

func TestSetup_SetsDefault(t *testing.T) {
	logger, closer := Setup(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
	assert.NoError(t, closer.Close())
}

func TestSetupWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: "text", Quiet: true}, &buf)
	logger.Warn("pruned stub")
	logger.Error("write failed")
	assert.NotContains(t, buf.String(), "pruned stub")
	assert.Contains(t, buf.String(), "write failed")

	buf.Reset()

	logger = SetupWithWriter(&config.Config{LogLevel: "debug", LogFormat: "text"}, &buf)
	logger.Debug("routing")
	assert.Contains(t, buf.String(), "routing")
}

func TestOutput(t *testing.T) {
	w, closer := Output(&config.Config{})
	assert.Equal(t, os.Stderr, w)
	require.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "ldml2res.log")
	cfg := &config.Config{LogFile: path, LogMaxSize: 5, LogMaxBackups: 2}

	out, closer := Output(cfg)
	lj, ok := out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Same(t, lj, closer)
	assert.Equal(t, path, lj.Filename)
	assert.Equal(t, 5, lj.MaxSize)
	assert.Equal(t, 2, lj.MaxBackups)
}

func TestSetup_LogFileClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ldml2res.log")

	logger, closer := Setup(&config.Config{LogLevel: "info", LogFormat: "text", LogFile: path})
	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")

	// A closed lumberjack logger reopens on the next write.
	logger.Info("reopened")
	require.NoError(t, closer.Close())

	data, err = os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Contains(t, string(data), "reopened")

	slog.SetDefault(Discard())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestContext_RoundTrip(t *testing.T) {
	logger := Discard()
	assert.Same(t, logger, FromContext(NewContext(context.Background(), logger)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
