// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/state"
)

// fetchConcurrency caps parallel resource fetches within one pass.
const fetchConcurrency = 4

// ResourceFetcher fetches the resource bundle for one message.
type ResourceFetcher interface {
	FetchMessageResources(ctx context.Context, messageID string) (model.ResourceBundle, error)
}

// =============================================================================
// RESOURCE LOADER
// =============================================================================

// ResourceLoader is a demand-driven, monotonically growing per-message
// resource cache with a narrow hot-tail invalidation window: only the
// newest message's resources can still be changing, so cached entries for
// earlier messages are always reused. Thread-safe.
type ResourceLoader struct {
	mu      sync.RWMutex
	fetcher ResourceFetcher
	log     zerolog.Logger
	cache   map[string]model.ResourceBundle
}

// NewResourceLoader creates a resource loader over the given fetcher.
func NewResourceLoader(fetcher ResourceFetcher, log zerolog.Logger) *ResourceLoader {
	return &ResourceLoader{
		fetcher: fetcher,
		log:     log.With().Str("component", "resources").Logger(),
		cache:   make(map[string]model.ResourceBundle),
	}
}

// Get returns the cached bundle for a message, if any.
func (r *ResourceLoader) Get(messageID string) (model.ResourceBundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.cache[messageID]
	return b, ok
}

// Bundles returns a copy of the full accumulated mapping.
func (r *ResourceLoader) Bundles() map[string]model.ResourceBundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.ResourceBundle, len(r.cache))
	for id, b := range r.cache {
		out[id] = b
	}
	return out
}

// Len returns the number of cached entries.
func (r *ResourceLoader) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Recompute runs one cache pass over the current message list. The host
// calls it when the message list, the attachment status, or the refresh
// key changes, never on unrelated redraws.
//
// Refetch policy, per message in list order:
//   - cached and not the last message: reuse, skip the fetch.
//   - no cached bundle, or last message with status complete or a
//     positive refresh key: fetch.
//
// Fetches within a pass run concurrently with no ordering assumption and
// merge once at the end of the pass. A successful fetch that comes back
// empty is not written, so the next pass retries until resources appear
// or the message stops being the newest. A failed fetch is logged and
// skipped; it never clears an existing entry and never blocks the other
// fetches of the pass. Entries are never removed.
func (r *ResourceLoader) Recompute(ctx context.Context, messages []*model.Message, status state.AttachmentStatus, refreshKey int) {
	refetchTail := status == state.AttachmentComplete || refreshKey > 0

	r.mu.RLock()
	var toFetch []string
	for i, msg := range messages {
		_, cached := r.cache[msg.ID]
		last := i == len(messages)-1
		if cached && !(last && refetchTail) {
			continue
		}
		toFetch = append(toFetch, msg.ID)
	}
	r.mu.RUnlock()

	if len(toFetch) == 0 {
		return
	}

	fetched := make([]model.ResourceBundle, len(toFetch))
	ok := make([]bool, len(toFetch))

	p := pool.New().WithMaxGoroutines(fetchConcurrency)
	for i, id := range toFetch {
		p.Go(func() {
			bundle, err := r.fetcher.FetchMessageResources(ctx, id)
			if err != nil {
				r.log.Warn().Err(err).Str("message", id).Msg("resource fetch failed")
				return
			}
			if bundle.IsEmpty() {
				return
			}
			fetched[i] = bundle
			ok[i] = true
		})
	}
	p.Wait()

	r.mu.Lock()
	for i, id := range toFetch {
		if ok[i] {
			r.cache[id] = fetched[i]
		}
	}
	r.mu.Unlock()
}
