// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and per-message resource bundles.
package model

import "time"

// =============================================================================
// RESOURCE BUNDLE
// =============================================================================

// ResourceBundle holds the auxiliary resources associated with one message.
// The three sequences are independent: any of them may be empty, and they
// resolve asynchronously after the message itself exists.
type ResourceBundle struct {
	Attachments []Attachment    `json:"attachments"`
	Contexts    []ContextRef    `json:"contexts"`
	Steps       []ExecutionStep `json:"steps"`
}

// IsEmpty returns true when all three sequences are empty.
// Empty bundles are never cached by consumers.
func (b ResourceBundle) IsEmpty() bool {
	return len(b.Attachments) == 0 && len(b.Contexts) == 0 && len(b.Steps) == 0
}

// Count returns the total number of resources in the bundle.
func (b ResourceBundle) Count() int {
	return len(b.Attachments) + len(b.Contexts) + len(b.Steps)
}

// Clone returns a copy of the bundle with independent backing slices.
func (b ResourceBundle) Clone() ResourceBundle {
	out := ResourceBundle{}
	if len(b.Attachments) > 0 {
		out.Attachments = make([]Attachment, len(b.Attachments))
		copy(out.Attachments, b.Attachments)
	}
	if len(b.Contexts) > 0 {
		out.Contexts = make([]ContextRef, len(b.Contexts))
		copy(out.Contexts, b.Contexts)
	}
	if len(b.Steps) > 0 {
		out.Steps = make([]ExecutionStep, len(b.Steps))
		copy(out.Steps, b.Steps)
	}
	return out
}

// =============================================================================
// RESOURCE TYPES
// =============================================================================

// Attachment represents a file attached to a message.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ContextRef represents a piece of retrieved context linked to a message.
type ContextRef struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"` // "file", "url", "snippet"
	Title  string `json:"title"`
	Source string `json:"source"`
}

// ExecutionStep represents one step of tool or agent execution recorded
// against a message.
type ExecutionStep struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	Status     string    `json:"status"` // "running", "success", "error"
	Output     string    `json:"output,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
