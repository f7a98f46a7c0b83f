package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/giygas/mymedic-api/config"
)

// Options configures the process logger.
type Options struct {
	Dir            string // Empty disables the file output
	Env            config.Environment
	Level          string
	Verbose        bool
	RetentionWeeks int
	MaxFileSize    int64
	Console        io.Writer // Defaults to os.Stdout
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel derives the console level. Tests stay quiet unless
// verbose; otherwise an explicit level wins over the environment default.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}
	if level != "" {
		return parseLogLevel(level)
	}
	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel is the level of the JSON file output.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// NewLogger builds a logger writing text to the console and JSON to a
// rotating file. The returned RotatingLogger is nil when opts.Dir is empty
// or the directory cannot be used; console logging still works then.
func NewLogger(opts Options) (*slog.Logger, *RotatingLogger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	if opts.Dir == "" {
		return slog.New(consoleHandler), nil, nil
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}
	rotating, err := NewRotatingLogger(opts.Dir, retention, opts.MaxFileSize)
	if err != nil {
		return slog.New(consoleHandler), nil, err
	}

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating, nil
}

// multiHandler fans records out to every handler that accepts the level.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
