package graph

import (
	"fmt"
	"log/slog"
)

// Warning codes.
const (
	WarnDuplicateID      = "DUPLICATE_ID"
	WarnSecurityNotFound = "SECURITY_NOT_FOUND"
)

// Warning is a non-fatal finding accumulated during a run.
type Warning struct {
	Code    string
	Path    string
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("[%s] %s", w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Path, w.Message)
}

// Warnings collects warnings and mirrors each one to a logger.
type Warnings struct {
	logger *slog.Logger
	list   []Warning
}

// NewWarnings returns a collector logging through logger, or slog.Default when nil.
func NewWarnings(logger *slog.Logger) *Warnings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warnings{logger: logger}
}

// Add records a warning.
func (w *Warnings) Add(code, path, msg string) {
	w.list = append(w.list, Warning{Code: code, Path: path, Message: msg})
	w.logger.Warn(msg, "code", code, "path", path)
}

// List returns the recorded warnings in order.
func (w *Warnings) List() []Warning {
	return append([]Warning(nil), w.list...)
}
