// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestJumpButtonRelativeAnchorCenters(t *testing.T) {
	theme := testTheme()
	j := NewJumpButton(theme)
	j.Width = 80
	j.AnchorX = 0.5

	pill := theme.JumpToBottom.Render(j.Label)
	wantLeft := 40 - lipgloss.Width(pill)/2

	want := strings.Repeat(" ", wantLeft) + pill
	if got := j.View(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJumpButtonAbsoluteAnchor(t *testing.T) {
	theme := testTheme()
	j := NewJumpButton(theme)
	j.Width = 120
	j.AnchorX = 70 // attached scrollbar centered at column 70

	pill := theme.JumpToBottom.Render(j.Label)
	wantLeft := 70 - lipgloss.Width(pill)/2

	want := strings.Repeat(" ", wantLeft) + pill
	if got := j.View(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJumpButtonClampsToEdges(t *testing.T) {
	theme := testTheme()
	j := NewJumpButton(theme)
	j.Width = 30

	pill := theme.JumpToBottom.Render(j.Label)

	// Anchor at the far left: no indent at all.
	j.AnchorX = 0.0
	if got := j.View(); got != pill {
		t.Errorf("left-edge anchor: got %q, want bare pill", got)
	}

	// Anchor at the far right: pill flush against the width limit.
	j.AnchorX = 29
	wantLeft := 30 - lipgloss.Width(pill)
	if wantLeft < 0 {
		wantLeft = 0
	}
	want := strings.Repeat(" ", wantLeft) + pill
	if got := j.View(); got != want {
		t.Errorf("right-edge anchor: got %q, want %q", got, want)
	}
}
