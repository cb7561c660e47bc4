// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultQuietPeriod is how long after the last scroll event the user
	// is still considered to be scrolling.
	DefaultQuietPeriod = 150 * time.Millisecond

	// DefaultBottomThreshold is the distance from the end of the content,
	// in viewport units, within which the view still counts as at-bottom.
	DefaultBottomThreshold = 100

	// detachedAnchorX is the relative-center fallback reported while no
	// content bounds are attached.
	detachedAnchorX = 0.5
)

// Viewport is the scrollable transcript region. Offsets and lengths are
// in the same unit (terminal rows for the TUI adapter).
type Viewport interface {
	// ScrollOffset returns the index of the first visible unit.
	ScrollOffset() int

	// ContentLength returns the total content length.
	ContentLength() int

	// ViewHeight returns the visible region's height.
	ViewHeight() int

	// ScrollToBottom moves the view to the end of the content.
	ScrollToBottom()
}

// BoundsReader reports the horizontal placement of the transcript content
// within the terminal, for overlay positioning.
type BoundsReader interface {
	// ContentBounds returns the content region's left edge and width.
	// ok is false while the region has not been laid out yet.
	ContentBounds() (x, width int, ok bool)
}

// =============================================================================
// SCROLL CONTROLLER
// =============================================================================

// ScrollController implements sticky-bottom auto-scroll with a user
// override.
//
// Two flags interact: isUserScrolling is set on any scroll event and
// cleared only after a quiet period with no further events; isAtBottom is
// recomputed from viewport geometry only at that quiet transition, so a
// burst of scroll events produces one recomputation. Auto-scroll on
// content change fires only when neither flag blocks it, and a skipped
// scroll is not queued. Thread-safe.
type ScrollController struct {
	mu  sync.Mutex
	log zerolog.Logger

	viewport Viewport
	bounds   BoundsReader

	quietPeriod     time.Duration
	bottomThreshold int

	isAtBottom      bool
	isUserScrolling bool
	anchorX         float64

	quiet  *time.Timer
	closed bool
}

// NewScrollController creates a controller with the default quiet period
// and bottom threshold.
func NewScrollController(log zerolog.Logger) *ScrollController {
	return NewScrollControllerWithConfig(log, DefaultQuietPeriod, DefaultBottomThreshold)
}

// NewScrollControllerWithConfig creates a controller with explicit timing
// and threshold, for hosts and tests that need tighter windows.
func NewScrollControllerWithConfig(log zerolog.Logger, quietPeriod time.Duration, bottomThreshold int) *ScrollController {
	return &ScrollController{
		log:             log.With().Str("component", "scroll").Logger(),
		quietPeriod:     quietPeriod,
		bottomThreshold: bottomThreshold,
		isAtBottom:      true,
		anchorX:         detachedAnchorX,
	}
}

// IsAtBottom reports whether the view counts as pinned to the bottom.
func (c *ScrollController) IsAtBottom() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isAtBottom
}

// IsUserScrolling reports whether the user scrolled within the current
// quiet window.
func (c *ScrollController) IsUserScrolling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isUserScrolling
}

// AnchorX returns the horizontal center of the transcript content, or the
// relative-center fallback while detached.
func (c *ScrollController) AnchorX() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anchorX
}

// Attach binds the controller to a viewport and its content bounds,
// releasing any previously held handles and pending timer first. The
// anchor is recomputed immediately.
func (c *ScrollController) Attach(viewport Viewport, bounds BoundsReader) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.viewport = viewport
	c.bounds = bounds
	c.isUserScrolling = false
	c.recomputeAnchorLocked()
}

// Detach releases the viewport handles and stops the pending timer. The
// anchor falls back to the relative center.
func (c *ScrollController) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.viewport = nil
	c.bounds = nil
	c.anchorX = detachedAnchorX
}

// ScrollEvent records one user scroll event: it marks the user as
// scrolling, restarts the quiet timer, and recomputes the anchor. Bottom
// detection waits for the quiet transition.
func (c *ScrollController) ScrollEvent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.isUserScrolling = true
	c.recomputeAnchorLocked()

	c.stopTimerLocked()
	c.quiet = time.AfterFunc(c.quietPeriod, c.quietElapsed)
}

// quietElapsed runs when the quiet period passes with no further scroll
// events: the user-scrolling flag clears and the bottom position is
// recomputed once for the whole burst.
func (c *ScrollController) quietElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.isUserScrolling = false
	c.recomputeBottomLocked()
}

// Resized recomputes the anchor after a layout change.
func (c *ScrollController) Resized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recomputeAnchorLocked()
}

// ContentChanged is called when any tracked content signal changes
// (message count, streaming text, reasoning text, streaming flag, waiting
// flag). It auto-scrolls only when the user is not scrolling and the view
// is at the bottom; otherwise the scroll is skipped outright, not queued.
func (c *ScrollController) ContentChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isUserScrolling || !c.isAtBottom || c.viewport == nil {
		return
	}
	c.viewport.ScrollToBottom()
}

// Pin marks the view as at the bottom and clears the user-scrolling
// flag. Called when the host scrolls to the bottom itself (jump key),
// so auto-scroll resumes without waiting for a quiet-window
// recomputation.
func (c *ScrollController) Pin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.isAtBottom = true
	c.isUserScrolling = false
}

// Reset pins the view to the bottom and clears the user-scrolling flag.
// Called on every conversation change: a freshly opened conversation
// starts pinned regardless of prior scroll state.
func (c *ScrollController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.isAtBottom = true
	c.isUserScrolling = false
}

// Close stops the pending timer and releases the handles. Further scroll
// events are ignored.
func (c *ScrollController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopTimerLocked()
	c.isUserScrolling = false
	c.viewport = nil
	c.bounds = nil
}

// recomputeBottomLocked derives isAtBottom from viewport geometry.
// Caller must hold the lock.
func (c *ScrollController) recomputeBottomLocked() {
	if c.viewport == nil {
		return
	}
	remaining := c.viewport.ContentLength() - c.viewport.ScrollOffset() - c.viewport.ViewHeight()
	c.isAtBottom = remaining < c.bottomThreshold
}

// recomputeAnchorLocked derives anchorX from the content bounds.
// Caller must hold the lock.
func (c *ScrollController) recomputeAnchorLocked() {
	if c.bounds == nil {
		c.anchorX = detachedAnchorX
		return
	}
	x, width, ok := c.bounds.ContentBounds()
	if !ok {
		c.anchorX = detachedAnchorX
		return
	}
	c.anchorX = float64(x) + float64(width)/2
}

// stopTimerLocked clears any pending quiet timer. Caller must hold the
// lock.
func (c *ScrollController) stopTimerLocked() {
	if c.quiet != nil {
		c.quiet.Stop()
		c.quiet = nil
	}
}
