package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a text logger writing to w, os.Stderr is used when w is nil.
// Diagnostics are logged at debug level, so they show up only in verbose mode.
func New(verbose bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := slog.LevelWarn
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Setup creates a logger and sets it as the process-wide default.
func Setup(verbose bool) *slog.Logger {
	l := New(verbose, nil)
	slog.SetDefault(l)
	return l
}
