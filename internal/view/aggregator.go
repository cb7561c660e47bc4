// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/state"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the flat, UI-consumable projection of the active
// conversation. With no conversation selected every field carries its
// documented default: empty message list, no streaming, no error.
type Snapshot struct {
	// ConversationID is the active conversation, "" when none is selected.
	ConversationID string

	state.ConversationState
}

// HasConversation reports whether a conversation is selected.
func (s Snapshot) HasConversation() bool {
	return s.ConversationID != ""
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator tracks the selected conversation, triggers its message load,
// and owns the event subscription whose lifetime is tied 1:1 to the
// conversation identity. Thread-safe.
type Aggregator struct {
	mu    sync.Mutex
	store *state.Store
	bus   *events.Bus
	log   zerolog.Logger

	conversationID string
	sub            *events.Subscription
	pumpDone       chan struct{}
}

// NewAggregator creates an aggregator over the given state store and
// event bus.
func NewAggregator(store *state.Store, bus *events.Bus, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "aggregator").Logger(),
	}
}

// ConversationID returns the active conversation identity, "" when none.
func (a *Aggregator) ConversationID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conversationID
}

// Snapshot returns the current projection of the active conversation.
// Without a selected conversation the zero defaults are returned.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	id := a.conversationID
	a.mu.Unlock()

	// Get degrades to the documented defaults for "" and unknown IDs.
	return Snapshot{
		ConversationID:    id,
		ConversationState: a.store.Get(id),
	}
}

// Changes returns the store's coalesced change notification channel.
// Hosts forward each signal into Synchronizer.Refresh.
func (a *Aggregator) Changes() <-chan struct{} {
	return a.store.Changes()
}

// SetConversation switches the active conversation. On every identity
// change, including ""→id, it tears down the old event subscription,
// establishes the new one with no overlap, and issues exactly one message
// load for the new identity. Setting the already-active identity is a
// no-op. Load failures land in the conversation's APIError field; this
// method never returns an error.
func (a *Aggregator) SetConversation(ctx context.Context, conversationID string) {
	a.mu.Lock()
	if conversationID == a.conversationID {
		a.mu.Unlock()
		return
	}

	a.teardownLocked()
	a.conversationID = conversationID

	if conversationID != "" {
		sub := a.bus.Subscribe(conversationID)
		done := make(chan struct{})
		a.sub = sub
		a.pumpDone = done
		go a.pump(sub, done)
		a.log.Debug().Str("conversation", conversationID).Str("subscription", sub.ID).Msg("subscribed")
	}
	a.mu.Unlock()

	if conversationID != "" {
		a.store.LoadMessages(ctx, conversationID)
	}
}

// Reload re-issues the message load for the active conversation without
// touching the event subscription. A no-op when no conversation is
// selected. Used for retry after a load failure.
func (a *Aggregator) Reload(ctx context.Context) {
	a.mu.Lock()
	id := a.conversationID
	a.mu.Unlock()

	if id == "" {
		return
	}
	a.store.LoadMessages(ctx, id)
}

// ClearError clears the load error of the active conversation only.
// A no-op when no conversation is selected.
func (a *Aggregator) ClearError() {
	a.mu.Lock()
	id := a.conversationID
	a.mu.Unlock()

	if id == "" {
		return
	}
	a.store.ClearError(id)
}

// Close tears down the event subscription. The aggregator can be reused
// afterwards by calling SetConversation again.
func (a *Aggregator) Close() {
	a.mu.Lock()
	a.teardownLocked()
	a.conversationID = ""
	a.mu.Unlock()
}

// pump forwards subscription events into the store until the
// subscription's channel is closed.
func (a *Aggregator) pump(sub *events.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.C {
		a.store.Apply(ev)
	}
}

// teardownLocked closes the current subscription and waits for its pump
// to drain. Caller must hold the lock.
func (a *Aggregator) teardownLocked() {
	if a.sub == nil {
		return
	}
	a.sub.Close()
	<-a.pumpDone
	a.log.Debug().Str("conversation", a.conversationID).Str("subscription", a.sub.ID).Msg("unsubscribed")
	a.sub = nil
	a.pumpDone = nil
}
