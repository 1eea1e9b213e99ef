// Package logger configures the application wide structured logger
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rezashm/linkdrop/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a slog.Logger from the logging configuration.
// Output "file" and "both" route through lumberjack for rotation.
func New(cfg *config.LoggingConfig) *slog.Logger {
	var w io.Writer

	switch strings.ToLower(cfg.Output) {
	case "file":
		w = rotatingWriter(cfg)
	case "both":
		w = io.MultiWriter(os.Stdout, rotatingWriter(cfg))
	default:
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func rotatingWriter(cfg *config.LoggingConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
