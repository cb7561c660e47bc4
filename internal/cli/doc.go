// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the plain-terminal fallback mode (`parley
// --plain`): a readline-style REPL that sends messages to the backend
// and renders replies as markdown, for terminals where the full TUI is
// unwanted or unavailable.
package cli
