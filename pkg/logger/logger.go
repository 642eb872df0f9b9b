package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func Init() {
	InitWithWriter(os.Stdout, "debug")
}

// InitWithWriter builds the JSON logger on w. The CLI passes stderr so that
// command output on stdout stays clean.
func InitWithWriter(w io.Writer, level string) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	Log = slog.New(handler)
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
