// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the client-side state containers for parley-tui.
//
// # Key Types
//
//   - Store: the per-conversation state container, keyed by conversation
//     ID. It owns the message list, transient streaming signals, attachment
//     status/refresh key, and the last load error for each conversation.
//   - TopicStore / AssistantStore: flat CRUD containers that forward calls
//     to the backend and cache the last listing.
//
// The Store is the single writer for conversation state. Consumers read
// snapshots; streaming events mutate it through Apply.
package state
