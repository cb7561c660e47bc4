// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small utility functions shared across parley-tui:
// atomic file writes and rune/width-safe string helpers.
package util
