// Package logger provides the process-wide structured logger: log/slog
// with github.com/lmittmann/tint as the console handler, matching the
// dependency actually declared in go.mod (see DESIGN.md — the teacher's
// retrieved logger.go imported go.uber.org/zap, a dependency absent from
// go.mod entirely, so tint is followed instead of the stale file).
package logger

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/lmittmann/tint"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(Options{}))
}

// Options configures the process logger. JSON selects a plain
// slog.JSONHandler (production); otherwise tint's colored console handler
// is used (development).
type Options struct {
	Level slog.Level
	JSON  bool
}

// New builds a *slog.Logger per opts, wrapping the base handler in
// conditionalSourceHandler so source file:line is attached only to
// WARN/ERROR records.
func New(opts Options) *slog.Logger {
	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: opts.Level})
	} else {
		base = tint.NewHandler(os.Stdout, &tint.Options{Level: opts.Level})
	}
	handler := NewConditionalSourceHandler(base, slog.LevelWarn, slog.LevelError)
	return slog.New(handler)
}

// Init replaces the process-wide logger, for main() to call once at
// startup after reading preferences.
func Init(opts Options) {
	current.Store(New(opts))
}

// Get returns the process-wide logger.
func Get() *slog.Logger {
	return current.Load()
}

// With returns a logger scoped with the given attributes, e.g.
// logger.With("component", "orchestrator").
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
