// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/state"
)

// resourceKey is the tuple whose change triggers a resource cache pass.
type resourceKey struct {
	conversationID string
	revision       int
	status         state.AttachmentStatus
	refreshKey     int
}

// contentKey is the tuple whose change triggers a content notification to
// the scroll controller.
type contentKey struct {
	conversationID string
	messageCount   int
	streamingLen   int
	reasoningLen   int
	isStreaming    bool
	isWaiting      bool
}

// =============================================================================
// SYNCHRONIZER
// =============================================================================

// Synchronizer composes the aggregator, the resource loader, and the
// scroll controller into the live conversation view-model. It reads the
// conversation identity once per change and feeds all three; store change
// notifications flow through Refresh, which recomputes resources and
// notifies the scroll controller only when the relevant signals actually
// changed. Thread-safe.
type Synchronizer struct {
	mu        sync.Mutex
	agg       *Aggregator
	resources *ResourceLoader
	scroll    *ScrollController
	log       zerolog.Logger

	lastResources resourceKey
	lastContent   contentKey
	primed        bool
}

// NewSynchronizer wires the three components together.
func NewSynchronizer(agg *Aggregator, resources *ResourceLoader, scroll *ScrollController, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		agg:       agg,
		resources: resources,
		scroll:    scroll,
		log:       log.With().Str("component", "sync").Logger(),
	}
}

// Aggregator returns the composed aggregator.
func (s *Synchronizer) Aggregator() *Aggregator { return s.agg }

// Resources returns the composed resource loader.
func (s *Synchronizer) Resources() *ResourceLoader { return s.resources }

// Scroll returns the composed scroll controller.
func (s *Synchronizer) Scroll() *ScrollController { return s.scroll }

// Snapshot returns the current conversation projection.
func (s *Synchronizer) Snapshot() Snapshot { return s.agg.Snapshot() }

// Changes returns the store change notification channel. Hosts forward
// each signal into Refresh.
func (s *Synchronizer) Changes() <-chan struct{} { return s.agg.Changes() }

// ClearError clears the active conversation's load error.
func (s *Synchronizer) ClearError() { s.agg.ClearError() }

// SetConversation switches the active conversation: the aggregator loads
// and resubscribes, and the scroll state resets to pinned-bottom. The
// first Refresh after a switch always notifies the scroll controller, so
// the new transcript lands at the bottom once the host has set its
// content.
func (s *Synchronizer) SetConversation(ctx context.Context, conversationID string) {
	s.mu.Lock()
	s.primed = false
	s.mu.Unlock()

	s.agg.SetConversation(ctx, conversationID)
	s.scroll.Reset()
}

// Refresh folds the current store state into the downstream components.
// The resource pass runs when the message list revision, the attachment
// status, or the refresh key changed; the scroll controller is notified
// when the message count, the streaming text, or the activity flags
// changed. Unchanged state makes Refresh a no-op, so hosts may call it on
// every coalesced store signal. The resource pass blocks on its fetches;
// frame-loop hosts use RefreshContent and schedule RefreshResources off
// the update path instead.
func (s *Synchronizer) Refresh(ctx context.Context) {
	if s.RefreshContent() {
		s.RefreshResources(ctx)
	}
}

// RefreshContent folds the content signals and notifies the scroll
// controller inline when they changed, or unconditionally on the first
// fold after a conversation switch. Cheap: no I/O. Returns true when the
// resource key also changed and the host should run RefreshResources.
func (s *Synchronizer) RefreshContent() bool {
	snap := s.agg.Snapshot()

	rk := resourceKey{
		conversationID: snap.ConversationID,
		revision:       snap.Revision,
		status:         snap.AttachmentStatus,
		refreshKey:     snap.AttachmentRefreshKey,
	}
	ck := contentKey{
		conversationID: snap.ConversationID,
		messageCount:   len(snap.Messages),
		streamingLen:   len(snap.StreamingContent),
		reasoningLen:   len(snap.StreamingReasoningContent),
		isStreaming:    snap.IsStreaming,
		isWaiting:      snap.IsWaitingForAI,
	}

	s.mu.Lock()
	recompute := !s.primed || rk != s.lastResources
	notify := !s.primed || ck != s.lastContent
	s.lastResources = rk
	s.lastContent = ck
	s.primed = true
	s.mu.Unlock()

	if notify {
		s.scroll.ContentChanged()
	}
	return recompute && snap.HasConversation()
}

// RefreshResources runs the resource cache pass for the current
// snapshot. Blocking: it waits for the whole fetch pass.
func (s *Synchronizer) RefreshResources(ctx context.Context) {
	snap := s.agg.Snapshot()
	s.resources.Recompute(ctx, snap.Messages, snap.AttachmentStatus, snap.AttachmentRefreshKey)
}

// Run forwards store change signals into Refresh until the context is
// cancelled. Intended for hosts that do not have their own event loop;
// the TUI instead translates signals into its frame messages.
func (s *Synchronizer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Changes():
			s.Refresh(ctx)
		}
	}
}

// Close releases the aggregator's subscription and the scroll
// controller's timer and handles.
func (s *Synchronizer) Close() {
	s.agg.Close()
	s.scroll.Close()
}
