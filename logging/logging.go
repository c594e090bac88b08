// Package logging provides per-component leveled loggers backed by
// log/slog, the way the teacher's component layer wraps a single
// process-wide logger instead of letting each package construct its own.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	level   = new(slog.LevelVar)
	baseMu  sync.RWMutex
	base    *slog.Logger
	once    sync.Once
)

func initBase() {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("TLL_LOG_PRETTY") == "1" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	base = slog.New(handler)
}

// SetLevel adjusts the process-wide minimum log level at runtime.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetOutput replaces the base logger's handler with h; format and level
// filtering are whatever h applies. Intended for tests that want to
// capture output.
func SetOutput(h slog.Handler) {
	once.Do(initBase)
	baseMu.Lock()
	defer baseMu.Unlock()
	base = slog.New(h)
}

// Get returns a logger for component name, with "component"=name attached
// so every line it emits is attributable without the caller repeating it.
func Get(name string) *slog.Logger {
	once.Do(initBase)
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base.With("component", name)
}
