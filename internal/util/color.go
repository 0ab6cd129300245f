// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"

	"golang.org/x/term"
)

// SupportsColor checks if the terminal supports ANSI color codes
func SupportsColor(f *os.File) bool {
	if !term.IsTerminal(int(f.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}
	return true
}

// UseColor combines the configured color mode with terminal detection.
func UseColor(mode string, f *os.File) bool {
	if mode == ColorNever {
		return false
	}
	return SupportsColor(f)
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 - file descriptors are small integers
}

// ReadSecret reads a line from the terminal without echo.
func ReadSecret(prompt string) (string, error) {
	_, _ = os.Stderr.WriteString(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd())) // #nosec G115 - file descriptors are small integers
	_, _ = os.Stderr.WriteString("\n")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
