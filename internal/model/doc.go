// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and per-message resource bundles.
//
// # Key Types
//
//   - Conversation: A persisted thread of messages with metadata
//   - Message: A single ordered entry in a conversation
//   - ResourceBundle: Attachments, contexts, and execution steps resolved
//     asynchronously for one message
//
// Messages within a conversation are append-only: they are never reordered,
// only appended or (while streaming) have trailing content extended.
package model
