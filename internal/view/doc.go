// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package view keeps the on-screen conversation consistent while messages
// stream in, attachments resolve asynchronously, and the user scrolls.
//
// Three components compose into one view-model for the displayed
// conversation:
//
//   - Aggregator projects the per-conversation state container into a flat
//     snapshot and drives the side effects of switching conversations
//     (message load, event subscription lifetime).
//   - ResourceLoader lazily resolves and memoizes a per-message bundle of
//     attachments, contexts, and execution steps, refetching only the
//     entries that could have changed.
//   - ScrollController implements sticky-bottom auto-scroll with a user
//     override and reports the horizontal anchor for the jump-to-bottom
//     overlay.
//
// Synchronizer is the composing parent: it reads the conversation identity
// once per change and feeds the three components. The components share no
// mutable state directly and are wired to their collaborators through
// interfaces, so each is testable in isolation.
package view
