// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// JUMP-TO-BOTTOM OVERLAY
// =============================================================================

// JumpButton is the floating pill shown when new messages arrive while
// the user is scrolled away from the bottom of the transcript.
type JumpButton struct {
	// AnchorX is the horizontal anchor for the pill. Values >= 1 are
	// absolute columns; values in [0,1) are relative to Width.
	AnchorX float64
	Width   int
	Label   string

	theme *styles.Theme
}

// NewJumpButton creates the overlay with its default label.
func NewJumpButton(theme *styles.Theme) *JumpButton {
	return &JumpButton{
		AnchorX: 0.5,
		Width:   80,
		Label:   "v new messages (ctrl+j)",
		theme:   theme,
	}
}

// View renders the pill centered on the anchor column, clamped to the
// available width.
func (j *JumpButton) View() string {
	pill := j.theme.JumpToBottom.Render(j.Label)
	pillWidth := lipgloss.Width(pill)

	anchor := j.AnchorX
	if anchor < 1 {
		anchor *= float64(j.Width)
	}

	left := int(anchor) - pillWidth/2
	if left+pillWidth > j.Width {
		left = j.Width - pillWidth
	}
	if left < 0 {
		left = 0
	}

	return strings.Repeat(" ", left) + pill
}
