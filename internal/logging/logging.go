// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the structured logger for parley-tui.
//
// The TUI owns stdout, so all logging goes to a file (default
// ~/.parley/parley.log). Components receive a zerolog.Logger by value and
// tag themselves with a "component" field.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Open creates a file-backed logger at the given path with the given level.
// An empty level defaults to "info"; an unknown level is an error.
func Open(path string, level string) (zerolog.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to open log file: %w", err)
	}

	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), nil
}

// Discard returns a logger that drops everything. Used as the default for
// components constructed without an explicit logger, and in tests.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
