// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the client-side state containers for parley-tui.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// ATTACHMENT STATUS
// =============================================================================

// AttachmentStatus tracks backend-side attachment processing for a
// conversation's newest message.
type AttachmentStatus string

const (
	AttachmentIdle       AttachmentStatus = "idle"
	AttachmentProcessing AttachmentStatus = "processing"
	AttachmentComplete   AttachmentStatus = "complete"
)

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// ConversationState is everything the client tracks for one conversation.
// Streaming fields are transient: they only carry meaning while their
// conversation is the one on screen.
type ConversationState struct {
	// Messages is the canonical, append-only message list.
	Messages []*model.Message

	// Revision increments whenever the message list changes.
	Revision int

	// Streaming signals
	IsStreaming               bool
	StreamingContent          string
	StreamingReasoningContent string
	IsReasoningActive         bool
	IsWaitingForAI            bool

	// Attachment tracking
	AttachmentStatus     AttachmentStatus
	AttachmentRefreshKey int

	// PendingDecisions maps decision keys (e.g. tool approvals) awaiting
	// user input.
	PendingDecisions map[string]bool

	// APIError is the last load failure for this conversation, nil if none.
	APIError error
}

// newConversationState returns the documented defaults for a conversation
// that has no recorded state yet.
func newConversationState() *ConversationState {
	return &ConversationState{
		Messages:         make([]*model.Message, 0),
		AttachmentStatus: AttachmentIdle,
		PendingDecisions: make(map[string]bool),
	}
}

// snapshot returns a copy safe to hand to readers. The message slice is
// copied; individual messages are shared and treated as immutable by
// consumers within a render pass.
func (cs *ConversationState) snapshot() ConversationState {
	out := *cs
	out.Messages = make([]*model.Message, len(cs.Messages))
	copy(out.Messages, cs.Messages)
	out.PendingDecisions = make(map[string]bool, len(cs.PendingDecisions))
	for k, v := range cs.PendingDecisions {
		out.PendingDecisions[k] = v
	}
	return out
}

// =============================================================================
// MESSAGE LOADER
// =============================================================================

// MessageLoader loads the message list for a conversation from the backend.
type MessageLoader interface {
	LoadMessages(ctx context.Context, conversationID string) ([]*model.Message, error)
}

// =============================================================================
// STORE
// =============================================================================

// Store is the per-conversation state container. All access is
// mutex-guarded; mutation emits a coalesced change notification.
type Store struct {
	mu            sync.RWMutex
	loader        MessageLoader
	log           zerolog.Logger
	conversations map[string]*ConversationState

	// changed carries at most one pending notification; senders never block.
	changed chan struct{}
}

// NewStore creates a store backed by the given message loader.
func NewStore(loader MessageLoader, log zerolog.Logger) *Store {
	return &Store{
		loader:        loader,
		log:           log.With().Str("component", "state").Logger(),
		conversations: make(map[string]*ConversationState),
		changed:       make(chan struct{}, 1),
	}
}

// Changes returns a channel that receives a signal after state mutations.
// Notifications coalesce: one signal may cover several mutations.
func (s *Store) Changes() <-chan struct{} {
	return s.changed
}

// Get returns a snapshot of the conversation's state. Unknown IDs yield
// the documented defaults rather than an error.
func (s *Store) Get(conversationID string) ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.conversations[conversationID]
	if !ok {
		return *newConversationState()
	}
	return cs.snapshot()
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMessages fetches the conversation's messages from the backend and
// replaces the stored list. Failures are recorded in the conversation's
// APIError field; this method never returns an error to its caller.
func (s *Store) LoadMessages(ctx context.Context, conversationID string) {
	messages, err := s.loader.LoadMessages(ctx, conversationID)

	s.mu.Lock()
	cs := s.ensureLocked(conversationID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation", conversationID).Msg("message load failed")
		cs.APIError = err
	} else {
		cs.Messages = messages
		cs.Revision++
		cs.APIError = nil
	}
	s.mu.Unlock()

	s.notify()
}

// ClearError clears the recorded load error for one conversation only.
// Unknown IDs are a no-op.
func (s *Store) ClearError(conversationID string) {
	s.mu.Lock()
	cs, ok := s.conversations[conversationID]
	if ok {
		cs.APIError = nil
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
}

// =============================================================================
// ATTACHMENT INVALIDATION
// =============================================================================

// InvalidateAttachments bumps the conversation's attachment refresh key,
// forcing the next resource recomputation to refetch the newest message.
func (s *Store) InvalidateAttachments(conversationID string) {
	s.mu.Lock()
	cs := s.ensureLocked(conversationID)
	cs.AttachmentRefreshKey++
	s.mu.Unlock()

	s.notify()
}

// SetPendingDecision records or clears a pending decision key.
func (s *Store) SetPendingDecision(conversationID, key string, pending bool) {
	s.mu.Lock()
	cs := s.ensureLocked(conversationID)
	if pending {
		cs.PendingDecisions[key] = true
	} else {
		delete(cs.PendingDecisions, key)
	}
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// EVENT APPLICATION
// =============================================================================

// Apply folds a streaming event into the state of its conversation.
func (s *Store) Apply(ev events.Event) {
	s.mu.Lock()
	cs := s.ensureLocked(ev.Conversation())

	switch e := ev.(type) {
	case events.StreamStart:
		cs.IsStreaming = true
		cs.StreamingContent = ""
		cs.StreamingReasoningContent = ""
		cs.IsReasoningActive = false
		cs.IsWaitingForAI = false

	case events.StreamDelta:
		cs.StreamingContent += e.Content
		cs.StreamingReasoningContent += e.Reasoning
		if e.Reasoning != "" {
			cs.IsReasoningActive = true
		}
		if e.Content != "" {
			cs.IsReasoningActive = false
		}
		cs.IsWaitingForAI = false

	case events.StreamEnd:
		msg := &model.Message{
			ID:        e.MessageID,
			Role:      model.RoleAssistant,
			Content:   e.Content,
			CreatedAt: time.Now(),
		}
		cs.Messages = append(cs.Messages, msg)
		cs.Revision++
		cs.IsStreaming = false
		cs.StreamingContent = ""
		cs.StreamingReasoningContent = ""
		cs.IsReasoningActive = false

	case events.WaitingChanged:
		cs.IsWaitingForAI = e.Waiting

	case events.AttachmentStatusChanged:
		cs.AttachmentStatus = AttachmentStatus(e.Status)

	default:
		s.log.Debug().Str("conversation", ev.Conversation()).Msgf("ignoring unknown event %T", ev)
	}
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// INTERNAL
// =============================================================================

// ensureLocked returns the state for a conversation, creating defaults if
// needed. Caller must hold the write lock.
func (s *Store) ensureLocked(conversationID string) *ConversationState {
	cs, ok := s.conversations[conversationID]
	if !ok {
		cs = newConversationState()
		s.conversations[conversationID] = cs
	}
	return cs
}

// notify signals a state change without blocking.
func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
