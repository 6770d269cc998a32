// Package logger configures the process diagnostics logger. Output always
// goes to stderr so it can never interleave with protocol bytes on stdout.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options controls handler selection and verbosity.
type Options struct {
	Level  string
	Pretty bool
	Writer io.Writer
}

// New builds a slog.Logger: a tint handler when Pretty is set, JSON
// otherwise.
func New(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	level := parseLevel(opts.Level)
	if opts.Pretty {
		return slog.New(tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
