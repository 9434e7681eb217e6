// Package logging initialises a [log/slog] logger from the application
// configuration and provides context-based logger propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hupe1980/ldml2res/internal/config"
)

type ctxKey struct{}

// Setup creates a *slog.Logger configured according to cfg and installs it
// as the process-wide default. Records go to stderr, or to a size-rotated
// file when cfg.LogFile is set. The returned closer releases that file.
func Setup(cfg *config.Config) (*slog.Logger, io.Closer) {
	w, closer := Output(cfg)

	return SetupWithWriter(cfg, w), closer
}

// Output returns the destination for log records described by cfg and the
// closer that releases it. Closing stderr is a no-op.
func Output(cfg *config.Config) (io.Writer, io.Closer) {
	if cfg.LogFile == "" {
		return os.Stderr, nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
	}

	return lj, lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupWithWriter is Setup with an explicit destination. Tests use it to
// capture log output.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(NewHandler(cfg, w))
	slog.SetDefault(logger)

	return logger
}

// NewHandler returns the text or JSON handler selected by cfg.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.EffectiveLogLevel())}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
