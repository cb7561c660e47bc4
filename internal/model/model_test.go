// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// and per-message resource bundles.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID should start with 'msg_', got %q", msg.ID)
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "hello")
	}
	if msg.IsStreaming {
		t.Error("user message should not be streaming")
	}
}

func TestMessageStreaming(t *testing.T) {
	msg := NewAssistantMessage()

	if !msg.IsStreaming {
		t.Fatal("assistant message should start streaming")
	}

	msg.AppendChunk("Hello")
	msg.AppendChunk(", ")
	msg.AppendChunk("world")

	if got := msg.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("GetDisplayContent() = %q, want %q", got, "Hello, world")
	}
	if msg.Content != "" {
		t.Errorf("Content should be empty until finalized, got %q", msg.Content)
	}

	msg.FinalizeStream()

	if msg.IsStreaming {
		t.Error("message should not be streaming after finalize")
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello, world")
	}

	// Appending after finalize is a no-op
	msg.AppendChunk("ignored")
	if msg.Content != "Hello, world" {
		t.Errorf("Content changed after finalize: %q", msg.Content)
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hi", 10, "hi"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode", "héllø wörld", 8, "héllø..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage(tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q", got)
	}
	if got := Role("custom").DisplayName(); got != "custom" {
		t.Errorf("unknown role should display raw value, got %q", got)
	}
}

// =============================================================================
// RESOURCE BUNDLE TESTS
// =============================================================================

func TestResourceBundleIsEmpty(t *testing.T) {
	empty := ResourceBundle{}
	if !empty.IsEmpty() {
		t.Error("zero bundle should be empty")
	}

	withAttachment := ResourceBundle{Attachments: []Attachment{{ID: "att_1"}}}
	if withAttachment.IsEmpty() {
		t.Error("bundle with attachment should not be empty")
	}

	withContext := ResourceBundle{Contexts: []ContextRef{{ID: "ctx_1"}}}
	if withContext.IsEmpty() {
		t.Error("bundle with context should not be empty")
	}

	withStep := ResourceBundle{Steps: []ExecutionStep{{ID: "step_1"}}}
	if withStep.IsEmpty() {
		t.Error("bundle with step should not be empty")
	}
}

func TestResourceBundleClone(t *testing.T) {
	orig := ResourceBundle{
		Attachments: []Attachment{{ID: "att_1", Name: "report.pdf"}},
		Contexts:    []ContextRef{{ID: "ctx_1", Kind: "file"}},
	}

	clone := orig.Clone()
	clone.Attachments[0].Name = "changed"

	if orig.Attachments[0].Name != "report.pdf" {
		t.Error("mutating clone should not affect original")
	}
	if clone.Count() != orig.Count() {
		t.Errorf("clone Count() = %d, want %d", clone.Count(), orig.Count())
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationAppendOnly(t *testing.T) {
	conv := NewConversation()

	first := NewUserMessage("first")
	second := NewUserMessage("second")
	conv.AddMessage(first)
	conv.AddMessage(second)

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
	if conv.Messages[0] != first || conv.Messages[1] != second {
		t.Error("messages must keep insertion order")
	}
	if got := conv.GetLastMessage(); got != second {
		t.Error("GetLastMessage should return the most recent message")
	}
}

func TestConversationTitle(t *testing.T) {
	conv := NewConversation()
	if got := conv.GetTitle(); got != "New Conversation" {
		t.Errorf("empty conversation title = %q", got)
	}

	conv.AddMessage(NewSystemMessage("system prompt"))
	conv.AddMessage(NewUserMessage("How do I center a div?"))

	if got := conv.GetTitle(); got != "How do I center a div?" {
		t.Errorf("title should come from first user message, got %q", got)
	}
}

func TestConversationGetMessageByID(t *testing.T) {
	conv := NewConversation()
	msg := NewUserMessage("find me")
	conv.AddMessage(msg)

	if got := conv.GetMessageByID(msg.ID); got != msg {
		t.Error("GetMessageByID should find the message")
	}
	if got := conv.GetMessageByID("msg_missing"); got != nil {
		t.Error("GetMessageByID should return nil for unknown IDs")
	}
}
