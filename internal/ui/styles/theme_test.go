// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// A zero lipgloss.Style renders its input unchanged; the configured
	// styles must at least carry their padding/margins.
	if got := theme.UserBubble.Render("hi"); !strings.Contains(got, "hi") {
		t.Errorf("UserBubble lost its content: %q", got)
	}
	if theme.AssistantBubble.GetPaddingLeft() != 1 {
		t.Error("AssistantBubble padding not configured")
	}
	if !theme.HeaderTitle.GetBold() {
		t.Error("HeaderTitle should be bold")
	}
	if !theme.ErrorTitle.GetBold() {
		t.Error("ErrorTitle should be bold")
	}
}

func TestBubbleAlignment(t *testing.T) {
	theme := NewTheme()

	if theme.UserBubble.GetMarginLeft() == 0 {
		t.Error("user bubbles should be indented from the left")
	}
	if theme.AssistantBubble.GetMarginLeft() != 0 {
		t.Error("assistant bubbles should sit flush left")
	}
}
