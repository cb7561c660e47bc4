// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
// It wires the live conversation synchronizer to the terminal: window
// resizes feed the scroll controller, key and wheel scrolling raise user
// scroll events, and store change notifications drive snapshot refreshes.
package chat
