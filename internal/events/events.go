// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the in-process event channel that delivers
// streaming updates for conversations.
package events

// Event is a streaming or lifecycle update scoped to one conversation.
type Event interface {
	// Conversation returns the ID of the conversation the event belongs to.
	Conversation() string
}

// =============================================================================
// STREAMING EVENTS
// =============================================================================

// StreamStart signals that the backend has begun generating a response.
type StreamStart struct {
	ConversationID string
	MessageID      string
}

func (e StreamStart) Conversation() string { return e.ConversationID }

// StreamDelta carries a partial chunk of in-progress assistant output.
// Content and Reasoning accumulate independently; either may be empty.
type StreamDelta struct {
	ConversationID string
	Content        string
	Reasoning      string
}

func (e StreamDelta) Conversation() string { return e.ConversationID }

// StreamEnd signals that the in-progress response has been committed as a
// final message with the given content.
type StreamEnd struct {
	ConversationID string
	MessageID      string
	Content        string
}

func (e StreamEnd) Conversation() string { return e.ConversationID }

// =============================================================================
// STATE EVENTS
// =============================================================================

// WaitingChanged reports whether the conversation is waiting for the
// assistant to start responding.
type WaitingChanged struct {
	ConversationID string
	Waiting        bool
}

func (e WaitingChanged) Conversation() string { return e.ConversationID }

// AttachmentStatusChanged reports attachment processing progress for the
// conversation's newest message. Status is one of "idle", "processing",
// "complete".
type AttachmentStatusChanged struct {
	ConversationID string
	Status         string
}

func (e AttachmentStatusChanged) Conversation() string { return e.ConversationID }
