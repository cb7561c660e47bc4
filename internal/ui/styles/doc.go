// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI:
// an adaptive color palette and a Theme of pre-built lipgloss styles for
// every rendered surface. Terminal capability detection runs once at
// theme construction.
package styles
