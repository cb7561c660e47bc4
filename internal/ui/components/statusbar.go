// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusWaiting
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusWaiting:
		return "Waiting..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom status bar: connection state, assistant,
// message count, and keyboard shortcuts.
type StatusBar struct {
	Connected     bool
	Assistant     string
	Conversation  string
	MessageCount  int
	Status        Status
	Width         int
	ShowShortcuts bool

	theme *styles.Theme
}

// NewStatusBar creates a status bar with defaults.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// View renders the status bar as a single line padded to Width.
func (sb *StatusBar) View() string {
	var left []string

	if sb.Connected {
		left = append(left, sb.theme.Connected.Render("* online"))
	} else {
		left = append(left, sb.theme.Disconnected.Render("* offline"))
	}

	if sb.Assistant != "" {
		left = append(left, sb.theme.ShortcutDesc.Render(util.TruncateWidth(sb.Assistant, 24)))
	}

	if sb.Conversation != "" {
		left = append(left, sb.theme.ShortcutDesc.Render(util.TruncateWidth(sb.Conversation, 32)))
	}

	if sb.MessageCount > 0 {
		left = append(left, sb.theme.ShortcutDesc.Render(fmtNumber(sb.MessageCount)+" msgs"))
	}

	left = append(left, sb.theme.ShortcutDesc.Render(sb.Status.String()))

	leftStr := strings.Join(left, sb.theme.ShortcutDesc.Render(" | "))

	rightStr := ""
	if sb.ShowShortcuts {
		rightStr = sb.renderShortcuts()
	}

	gap := sb.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	line := leftStr + strings.Repeat(" ", gap) + rightStr
	return sb.theme.StatusBar.Width(sb.Width).Render(line)
}

// renderShortcuts renders the shortcut hints, dropping them entirely
// when the bar is too narrow.
func (sb *StatusBar) renderShortcuts() string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"ctrl+n", "new"},
		{"ctrl+k", "topics"},
		{"ctrl+j", "bottom"},
		{"ctrl+c", "quit"},
	}

	var parts []string
	for _, s := range shortcuts {
		parts = append(parts, sb.theme.ShortcutKey.Render(s.key)+sb.theme.ShortcutDesc.Render(" "+s.desc))
	}
	out := strings.Join(parts, "  ")

	if runewidth.StringWidth(out) > sb.Width/2 {
		return ""
	}
	return out
}
