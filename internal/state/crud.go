// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the client-side state containers for parley-tui.
package state

import (
	"context"
	"sync"

	"github.com/jeranaias/parley-tui/internal/backend"
)

// =============================================================================
// TOPIC STORE
// =============================================================================

// TopicAPI is the slice of the backend client the topic store forwards to.
type TopicAPI interface {
	ListTopics(ctx context.Context) ([]backend.Topic, error)
	CreateTopic(ctx context.Context, name string) (*backend.Topic, error)
	DeleteTopic(ctx context.Context, id string) error
}

// TopicStore is a flat CRUD container for topics. Reads serve a cached
// listing; writes forward to the backend and invalidate the cache.
type TopicStore struct {
	mu     sync.Mutex
	api    TopicAPI
	cached []backend.Topic
	loaded bool
}

// NewTopicStore creates a topic store over the given API.
func NewTopicStore(api TopicAPI) *TopicStore {
	return &TopicStore{api: api}
}

// List returns the topics, fetching from the backend on first use or after
// a write invalidated the cache.
func (t *TopicStore) List(ctx context.Context) ([]backend.Topic, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		topics, err := t.api.ListTopics(ctx)
		if err != nil {
			return nil, err
		}
		t.cached = topics
		t.loaded = true
	}

	out := make([]backend.Topic, len(t.cached))
	copy(out, t.cached)
	return out, nil
}

// Create forwards to the backend and invalidates the cached listing.
func (t *TopicStore) Create(ctx context.Context, name string) (*backend.Topic, error) {
	topic, err := t.api.CreateTopic(ctx, name)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.loaded = false
	t.mu.Unlock()
	return topic, nil
}

// Delete forwards to the backend and invalidates the cached listing.
func (t *TopicStore) Delete(ctx context.Context, id string) error {
	if err := t.api.DeleteTopic(ctx, id); err != nil {
		return err
	}

	t.mu.Lock()
	t.loaded = false
	t.mu.Unlock()
	return nil
}

// =============================================================================
// ASSISTANT STORE
// =============================================================================

// AssistantAPI is the slice of the backend client the assistant store uses.
type AssistantAPI interface {
	ListAssistants(ctx context.Context) ([]backend.Assistant, error)
}

// AssistantStore is a read-only flat container for assistant personas.
type AssistantStore struct {
	mu     sync.Mutex
	api    AssistantAPI
	cached []backend.Assistant
	loaded bool
}

// NewAssistantStore creates an assistant store over the given API.
func NewAssistantStore(api AssistantAPI) *AssistantStore {
	return &AssistantStore{api: api}
}

// List returns the assistants, fetching from the backend on first use.
func (a *AssistantStore) List(ctx context.Context) ([]backend.Assistant, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		assistants, err := a.api.ListAssistants(ctx)
		if err != nil {
			return nil, err
		}
		a.cached = assistants
		a.loaded = true
	}

	out := make([]backend.Assistant, len(a.cached))
	copy(out, a.cached)
	return out, nil
}

// Refresh drops the cached listing so the next List refetches.
func (a *AssistantStore) Refresh() {
	a.mu.Lock()
	a.loaded = false
	a.mu.Unlock()
}
