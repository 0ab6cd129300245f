// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger is discarded until InitLogger runs, so packages can log from tests.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger with appropriate log level.
// Set INDYSHELL_DEBUG=1 environment variable to enable debug logging.
// Logs go to stderr so they never mix with command output.
func InitLogger() {
	level := slog.LevelInfo // Default: only show Info, Warn, Error

	if os.Getenv("INDYSHELL_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		// Remove timestamp for cleaner CLI output
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	// Tag every record with a session id so interleaved shells can be told apart
	Logger = slog.New(handler).With("session", uuid.NewString()[:8])
}

// Debug logs a debug message (only shown when INDYSHELL_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
