// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI:
// message bubbles, resource chips, code blocks, the status bar, spinners,
// and transient overlays. Components are pure renderers: they take model
// data plus a theme and return styled strings, leaving all state handling
// to the chat model.
package components
