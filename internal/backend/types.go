// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the parley backend service.
package backend

import (
	"time"

	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage is the JSON shape of a message on the backend API.
type wireMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// toModel converts a wire message to the internal message type.
func (w wireMessage) toModel() *model.Message {
	return &model.Message{
		ID:        w.ID,
		Role:      model.Role(w.Role),
		Content:   w.Content,
		CreatedAt: w.CreatedAt,
	}
}

// messagesResponse is the response body for listing a conversation's messages.
type messagesResponse struct {
	Messages []wireMessage `json:"messages"`
}

// resourcesResponse is the response body for a message's resource bundle.
// The backend always sends all three sequences, possibly empty.
type resourcesResponse struct {
	Attachments []model.Attachment    `json:"attachments"`
	Contexts    []model.ContextRef    `json:"contexts"`
	Steps       []model.ExecutionStep `json:"steps"`
}

// sendMessageRequest is the request body for posting a new user message.
type sendMessageRequest struct {
	Content string `json:"content"`
}

// =============================================================================
// CRUD ENTITY TYPES
// =============================================================================

// Topic is a named grouping of conversations.
type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// topicsResponse is the response body for listing topics.
type topicsResponse struct {
	Topics []Topic `json:"topics"`
}

// createTopicRequest is the request body for creating a topic.
type createTopicRequest struct {
	Name string `json:"name"`
}

// Assistant is a configured assistant persona on the backend.
type Assistant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Model  string `json:"model"`
	Prompt string `json:"prompt,omitempty"`
}

// assistantsResponse is the response body for listing assistants.
type assistantsResponse struct {
	Assistants []Assistant `json:"assistants"`
}
