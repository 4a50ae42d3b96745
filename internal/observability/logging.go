package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName is attached to every log line
const ServiceName = "loan-risk"

// LogConfig selects the log level ("debug", "info", "warn", "error") and
// output format ("json" or "text").
type LogConfig struct {
	Level  string
	Format string
}

// InitLogger builds the process logger on stdout and installs it as the
// slog default, so packages logging through slog.Default share it.
func InitLogger(cfg LogConfig) *slog.Logger {
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

func newLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", ServiceName))
}

// DiscardLogger drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseLevel accepts slog's own names ("warn", "DEBUG+2") plus "warning".
// Anything unrecognised logs at info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
