package cli

import (
	"io"
	"log/slog"
	"path/filepath"
)

// NewLogger returns a text logger on w; verbose enables debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// utility
func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, _ := filepath.Abs(p)
	return abs
}
