package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/Diego2la/tll/logging"
)

// setupLogging configures the process-wide logger every logging.Get call
// draws from, matching level and format to the CLI flags.
func setupLogging(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logging.SetLevel(logLevel)

	opts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel == slog.LevelDebug}
	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logging.SetOutput(handler)

	return logging.Get("tllctl")
}
