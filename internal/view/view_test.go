// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/state"
)

// testQuietPeriod keeps debounce tests fast while preserving the
// quiet-window semantics.
const testQuietPeriod = 20 * time.Millisecond

// =============================================================================
// FAKES
// =============================================================================

// countingLoader serves canned message lists and counts loads per
// conversation.
type countingLoader struct {
	mu       sync.Mutex
	messages map[string][]*model.Message
	calls    map[string]int
}

func newCountingLoader() *countingLoader {
	return &countingLoader{
		messages: make(map[string][]*model.Message),
		calls:    make(map[string]int),
	}
}

func (l *countingLoader) LoadMessages(_ context.Context, conversationID string) ([]*model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[conversationID]++
	return l.messages[conversationID], nil
}

func (l *countingLoader) callCount(conversationID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[conversationID]
}

// countingFetcher serves canned bundles and counts fetches per message.
// A message listed in errs fails; a message listed in blocked waits on
// the release channel before returning.
type countingFetcher struct {
	mu      sync.Mutex
	bundles map[string]model.ResourceBundle
	errs    map[string]error
	blocked map[string]chan struct{}
	calls   map[string]int
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		bundles: make(map[string]model.ResourceBundle),
		errs:    make(map[string]error),
		blocked: make(map[string]chan struct{}),
		calls:   make(map[string]int),
	}
}

func (f *countingFetcher) FetchMessageResources(_ context.Context, messageID string) (model.ResourceBundle, error) {
	f.mu.Lock()
	f.calls[messageID]++
	release := f.blocked[messageID]
	err := f.errs[messageID]
	bundle := f.bundles[messageID]
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if err != nil {
		return model.ResourceBundle{}, err
	}
	return bundle, nil
}

func (f *countingFetcher) callCount(messageID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[messageID]
}

func (f *countingFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// fakeViewport is a settable viewport that records bottom-scrolls and
// geometry reads.
type fakeViewport struct {
	mu            sync.Mutex
	offset        int
	contentLen    int
	height        int
	bottomScrolls int
	geometryReads int
}

func (v *fakeViewport) ScrollOffset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

func (v *fakeViewport) ContentLength() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.geometryReads++
	return v.contentLen
}

func (v *fakeViewport) ViewHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

func (v *fakeViewport) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bottomScrolls++
}

func (v *fakeViewport) set(offset, contentLen, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = offset
	v.contentLen = contentLen
	v.height = height
}

func (v *fakeViewport) scrollCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bottomScrolls
}

func (v *fakeViewport) readCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.geometryReads
}

// fakeBounds reports fixed content bounds.
type fakeBounds struct {
	x, width int
	ok       bool
}

func (b *fakeBounds) ContentBounds() (int, int, bool) {
	return b.x, b.width, b.ok
}

// =============================================================================
// HELPERS
// =============================================================================

func testMessages(ids ...string) []*model.Message {
	out := make([]*model.Message, len(ids))
	for i, id := range ids {
		out[i] = &model.Message{ID: id, Role: model.RoleUser, Content: "m", CreatedAt: time.Now()}
	}
	return out
}

func bundleWithAttachment(name string) model.ResourceBundle {
	return model.ResourceBundle{
		Attachments: []model.Attachment{{ID: "att_" + name, Name: name}},
	}
}

func newTestAggregator(loader *countingLoader) (*Aggregator, *state.Store, *events.Bus) {
	store := state.NewStore(loader, zerolog.Nop())
	bus := events.NewBus()
	return NewAggregator(store, bus, zerolog.Nop()), store, bus
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
