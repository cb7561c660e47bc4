// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
package chat

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// =============================================================================
// TRANSCRIPT VIEWPORT ADAPTER
// =============================================================================

// transcriptViewport adapts a bubbles viewport to the scroll controller's
// line-based viewport and bounds interfaces. The controller reads offsets
// and lengths in terminal rows.
type transcriptViewport struct {
	vp *viewport.Model

	x       int
	width   int
	laidOut bool
}

func newTranscriptViewport(vp *viewport.Model) *transcriptViewport {
	return &transcriptViewport{vp: vp}
}

// ScrollOffset returns the index of the first visible line.
func (t *transcriptViewport) ScrollOffset() int {
	return t.vp.YOffset
}

// ContentLength returns the total number of content lines.
func (t *transcriptViewport) ContentLength() int {
	return t.vp.TotalLineCount()
}

// ViewHeight returns the visible height in lines.
func (t *transcriptViewport) ViewHeight() int {
	return t.vp.Height
}

// ScrollToBottom moves the view to the end of the content.
func (t *transcriptViewport) ScrollToBottom() {
	t.vp.GotoBottom()
}

// ContentBounds reports the transcript's horizontal placement, false
// before the first window size message.
func (t *transcriptViewport) ContentBounds() (int, int, bool) {
	if !t.laidOut {
		return 0, 0, false
	}
	return t.x, t.width, true
}

// setBounds records the layout from a window resize.
func (t *transcriptViewport) setBounds(x, width int) {
	t.x = x
	t.width = width
	t.laidOut = true
}
