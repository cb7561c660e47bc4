// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the in-process event channel that delivers
// streaming updates for conversations.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// subscriptionBuffer is the per-subscription channel capacity. When a
// subscriber falls behind, the oldest buffered event is dropped so the
// publisher never blocks.
const subscriptionBuffer = 64

// =============================================================================
// SUBSCRIPTION
// =============================================================================

// Subscription is a scoped stream of events for one conversation.
// Close must be called when the subscription is no longer needed.
type Subscription struct {
	// ID uniquely identifies the subscription.
	ID string

	// C delivers events for the subscribed conversation.
	C chan Event

	conversationID string
	bus            *Bus
	closeOnce      sync.Once
}

// ConversationID returns the conversation this subscription is scoped to.
func (s *Subscription) ConversationID() string {
	return s.conversationID
}

// Close removes the subscription from the bus and closes its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.C)
	})
}

// =============================================================================
// BUS
// =============================================================================

// Bus fans events out to per-conversation subscriptions.
// Publishing never blocks: a slow subscriber loses its oldest event.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]*Subscription // keyed by conversation ID
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]*Subscription),
	}
}

// Subscribe creates a subscription scoped to the given conversation.
func (b *Bus) Subscribe(conversationID string) *Subscription {
	sub := &Subscription{
		ID:             uuid.NewString(),
		C:              make(chan Event, subscriptionBuffer),
		conversationID: conversationID,
		bus:            b,
	}

	b.mu.Lock()
	b.subs[conversationID] = append(b.subs[conversationID], sub)
	b.mu.Unlock()

	return sub
}

// Publish delivers the event to every subscription scoped to its
// conversation. Never blocks the caller.
//
// The read lock is held for the whole fan-out: Close acquires the write
// lock before closing a channel, so no send can race a close.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[ev.Conversation()] {
		for {
			select {
			case sub.C <- ev:
			default:
				// Buffer full: drop the oldest event and retry.
				select {
				case <-sub.C:
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount returns the number of live subscriptions for a
// conversation. Used by tests and diagnostics.
func (b *Bus) SubscriberCount(conversationID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[conversationID])
}

// remove deletes a subscription from the bus.
func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.conversationID]
	for i, s := range subs {
		if s.ID == sub.ID {
			b.subs[sub.conversationID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.conversationID]) == 0 {
		delete(b.subs, sub.conversationID)
	}
}
