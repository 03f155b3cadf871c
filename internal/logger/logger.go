package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"yt-network-go/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

func InitFromConfig() {
	Init(config.AppConfig, os.Stdout)
}

// Init installs the default slog logger. When cfg.LogFile is set, records are
// also appended to a size-rotated file.
func Init(cfg config.Config, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if p := strings.TrimSpace(cfg.LogFile); p != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   p,
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     14,
		})
	}
	slog.SetDefault(slog.New(newHandler(cfg, out)))
}

func newHandler(cfg config.Config, out io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "json":
		return slog.NewJSONHandler(out, opts)
	default:
		return slog.NewTextHandler(out, opts)
	}
}

func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
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
