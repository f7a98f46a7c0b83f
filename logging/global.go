package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. A file output failure
// is reported on the console and logging continues there.
func InitLogger(opts Options) {
	logger, rotating, err := NewLogger(opts)
	DefaultLoggingService = &LoggingService{Logger: logger, rotating: rotating}
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("Failed to initialize rotating logger", "error", err)
	}
}

// Close flushes and closes the log file.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return nil
	}
	return DefaultLoggingService.rotating.Close()
}

// CleanupOldLogs applies the retention period to the log directory.
func CleanupOldLogs() (int, error) {
	if DefaultLoggingService == nil || DefaultLoggingService.rotating == nil {
		return 0, nil
	}
	return DefaultLoggingService.rotating.CleanupOldLogs()
}

// Logger returns the global logger, or a stderr fallback when uninitialised.
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallback(slog.LevelDebug)
	}
	return DefaultLoggingService.Logger
}

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelInfo).Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelError).Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelWarn).Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		fallback(slog.LevelDebug).Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
