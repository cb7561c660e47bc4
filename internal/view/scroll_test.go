// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package view

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScroll() (*ScrollController, *fakeViewport) {
	c := NewScrollControllerWithConfig(zerolog.Nop(), testQuietPeriod, DefaultBottomThreshold)
	vp := &fakeViewport{}
	vp.set(0, 0, 0)
	c.Attach(vp, &fakeBounds{x: 10, width: 60, ok: true})
	return c, vp
}

// waitQuiet sleeps past the quiet period so the debounce timer fires.
func waitQuiet() {
	time.Sleep(testQuietPeriod * 3)
}

func TestDefaultsStartPinned(t *testing.T) {
	c := NewScrollController(zerolog.Nop())
	defer c.Close()

	if !c.IsAtBottom() {
		t.Error("expected isAtBottom true by default")
	}
	if c.IsUserScrolling() {
		t.Error("expected isUserScrolling false by default")
	}
	if c.AnchorX() != detachedAnchorX {
		t.Errorf("expected detached anchor %v, got %v", detachedAnchorX, c.AnchorX())
	}
}

func TestScrollBurstProducesOneRecomputation(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	// User is far from the bottom of a long transcript.
	vp.set(100, 1000, 40)

	base := vp.readCount()
	for i := 0; i < 25; i++ {
		c.ScrollEvent()
	}
	if !c.IsUserScrolling() {
		t.Fatal("expected isUserScrolling during burst")
	}
	if got := vp.readCount(); got != base {
		t.Errorf("bottom recomputation must wait for the quiet window, got %d reads mid-burst", got-base)
	}

	waitQuiet()

	if c.IsUserScrolling() {
		t.Error("expected isUserScrolling cleared after quiet period")
	}
	if got := vp.readCount() - base; got != 1 {
		t.Errorf("burst of 25 events must produce exactly one recomputation, got %d", got)
	}
	if c.IsAtBottom() {
		t.Error("expected isAtBottom false at offset 100 of 1000")
	}
}

func TestBottomThresholdGeometry(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		contentLen int
		height     int
		atBottom   bool
	}{
		{"exactly at end", 960, 1000, 40, true},
		{"just inside threshold", 861, 1000, 40, true},
		{"at threshold boundary", 860, 1000, 40, false},
		{"far above", 0, 1000, 40, false},
		{"short content", 0, 20, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, vp := newTestScroll()
			defer c.Close()

			vp.set(tt.offset, tt.contentLen, tt.height)
			c.ScrollEvent()
			waitQuiet()

			if got := c.IsAtBottom(); got != tt.atBottom {
				t.Errorf("isAtBottom = %v, want %v", got, tt.atBottom)
			}
		})
	}
}

func TestNoAutoScrollWhileUserScrolling(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	c.ScrollEvent()

	// Many tracked dependencies change during the burst: none may scroll.
	for i := 0; i < 10; i++ {
		c.ContentChanged()
	}
	if got := vp.scrollCount(); got != 0 {
		t.Errorf("auto-scroll fired %d times while user scrolling", got)
	}
}

func TestSkippedScrollIsNotQueued(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	vp.set(960, 1000, 40) // at bottom
	c.ScrollEvent()
	c.ContentChanged() // skipped: user scrolling
	waitQuiet()

	// The quiet transition alone must not replay the skipped scroll.
	if got := vp.scrollCount(); got != 0 {
		t.Errorf("skipped auto-scroll was queued and fired %d times", got)
	}

	// A fresh content change after the quiet window scrolls normally.
	c.ContentChanged()
	if got := vp.scrollCount(); got != 1 {
		t.Errorf("expected auto-scroll after quiet window, got %d", got)
	}
}

func TestNoAutoScrollWhenNotAtBottom(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	// Scroll to mid-transcript and let the quiet window pass.
	vp.set(100, 1000, 40)
	c.ScrollEvent()
	waitQuiet()

	if c.IsAtBottom() {
		t.Fatal("setup: expected isAtBottom false")
	}

	// Streamed tokens arrive: no auto-scroll.
	c.ContentChanged()
	c.ContentChanged()
	if got := vp.scrollCount(); got != 0 {
		t.Errorf("auto-scroll fired %d times while above the bottom", got)
	}

	// The jump-to-bottom anchor still recomputes on next resize.
	c.Resized()
	if got := c.AnchorX(); got != 40 {
		t.Errorf("expected anchor at content center 40, got %v", got)
	}
}

func TestAutoScrollWhenPinned(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	// Defaults: at bottom, not scrolling.
	c.ContentChanged()
	c.ContentChanged()
	if got := vp.scrollCount(); got != 2 {
		t.Errorf("expected auto-scroll per content change while pinned, got %d", got)
	}
}

func TestPinResumesAutoScroll(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	// User scrolled to the middle; the quiet window has elapsed.
	vp.set(100, 1000, 40)
	c.ScrollEvent()
	waitQuiet()
	if c.IsAtBottom() {
		t.Fatal("setup: expected isAtBottom false mid-transcript")
	}

	// Host jumps to the bottom itself.
	c.Pin()

	if !c.IsAtBottom() {
		t.Error("expected isAtBottom true after pin")
	}
	if c.IsUserScrolling() {
		t.Error("expected user-scrolling flag cleared after pin")
	}

	// New content auto-scrolls again without waiting for a quiet window.
	c.ContentChanged()
	if got := vp.scrollCount(); got != 1 {
		t.Errorf("expected auto-scroll to resume after pin, got %d", got)
	}
}

func TestResetPinsToBottom(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	vp.set(100, 1000, 40)
	c.ScrollEvent()
	waitQuiet()
	if c.IsAtBottom() {
		t.Fatal("setup: expected isAtBottom false")
	}

	// Conversation switch.
	c.Reset()
	if !c.IsAtBottom() {
		t.Error("expected isAtBottom forced true on reset")
	}
	if c.IsUserScrolling() {
		t.Error("expected isUserScrolling forced false on reset")
	}
}

func TestResetCancelsPendingQuietTimer(t *testing.T) {
	c, vp := newTestScroll()
	defer c.Close()

	vp.set(100, 1000, 40)
	c.ScrollEvent()
	c.Reset()
	waitQuiet()

	// The stale timer must not resurrect the pre-reset geometry.
	if !c.IsAtBottom() {
		t.Error("stale quiet timer overrode the reset")
	}
}

func TestAnchorFollowsBounds(t *testing.T) {
	c := NewScrollControllerWithConfig(zerolog.Nop(), testQuietPeriod, DefaultBottomThreshold)
	defer c.Close()

	if c.AnchorX() != detachedAnchorX {
		t.Fatalf("expected relative center while detached, got %v", c.AnchorX())
	}

	bounds := &fakeBounds{x: 20, width: 100, ok: true}
	c.Attach(&fakeViewport{}, bounds)
	if got := c.AnchorX(); got != 70 {
		t.Errorf("expected anchor 70 on attach, got %v", got)
	}

	bounds.x = 0
	bounds.width = 80
	c.Resized()
	if got := c.AnchorX(); got != 40 {
		t.Errorf("expected anchor 40 after resize, got %v", got)
	}

	// Bounds not laid out yet: fall back to the relative center.
	bounds.ok = false
	c.Resized()
	if got := c.AnchorX(); got != detachedAnchorX {
		t.Errorf("expected relative center fallback, got %v", got)
	}

	c.Detach()
	if got := c.AnchorX(); got != detachedAnchorX {
		t.Errorf("expected relative center after detach, got %v", got)
	}
}

func TestCloseStopsTimersAndIgnoresEvents(t *testing.T) {
	c, vp := newTestScroll()

	vp.set(100, 1000, 40)
	c.ScrollEvent()
	c.Close()
	waitQuiet()

	// The timer was stopped; state stays at the close-time values.
	if !c.IsAtBottom() {
		t.Error("quiet timer ran after Close")
	}

	c.ScrollEvent() // ignored
	if c.IsUserScrolling() {
		t.Error("scroll events after Close must be ignored")
	}
}

func TestReattachReleasesOldHandles(t *testing.T) {
	c, vp1 := newTestScroll()
	defer c.Close()

	vp2 := &fakeViewport{}
	vp2.set(0, 10, 40)
	c.Attach(vp2, &fakeBounds{x: 0, width: 50, ok: true})

	c.ContentChanged()
	if got := vp1.scrollCount(); got != 0 {
		t.Errorf("detached viewport still scrolled %d times", got)
	}
	if got := vp2.scrollCount(); got != 1 {
		t.Errorf("expected new viewport scrolled once, got %d", got)
	}
	if got := c.AnchorX(); got != 25 {
		t.Errorf("expected anchor recomputed on re-attach, got %v", got)
	}
}
