package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger writing to stdout at the given level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewNop creates a logger that discards all output. Components use it when
// no logger is configured so call sites never need nil checks.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
