package cli

import (
	"io"
	"log/slog"
)

// NewLogHandler builds the slog handler selected by -log-level and
// -log-format. Unknown levels fall back to info.
func NewLogHandler(levelStr, formatStr string, outW io.Writer) slog.Handler {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.NewJSONHandler(outW, opts)
	}
	return slog.NewTextHandler(outW, opts)
}
