// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/util"
)

// View renders the complete chat screen.
// Layout: header + transcript viewport + input + status bar; the topic
// picker replaces the screen, banners float over the transcript.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showTopics {
		return m.renderTopicPicker()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderTranscriptArea(),
		m.renderInput(),
		m.statusBar.View(),
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

// renderHeader renders the title bar with the active topic.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("parley")

	subtitle := "no topic selected (ctrl+k)"
	if m.activeTopic.Name != "" {
		subtitle = util.TruncateRunes(m.activeTopic.Name, 60)
	}

	line := title + "  " + m.theme.HeaderSubtitle.Render(subtitle)
	return m.theme.Header.Width(m.width).Render(line)
}

// renderTranscriptArea renders the viewport plus its floating overlays:
// error banner, waiting spinner, and the jump-to-bottom pill.
func (m Model) renderTranscriptArea() string {
	lines := strings.Split(m.viewport.View(), "\n")

	snap := m.sync.Snapshot()

	if snap.APIError != nil {
		banner := components.NewErrorBanner(snap.APIError, m.theme)
		banner.Width = m.width
		lines = overlayBottom(lines, strings.Split(banner.View(), "\n"))
	}

	if spin := m.spinner.View(); spin != "" {
		lines = overlayBottom(lines, []string{" " + spin})
	}

	scroll := m.sync.Scroll()
	if !scroll.IsAtBottom() && snap.APIError == nil {
		jump := components.NewJumpButton(m.theme)
		jump.Width = m.width
		jump.AnchorX = scroll.AnchorX()
		lines = overlayBottom(lines, []string{jump.View()})
	}

	return strings.Join(lines, "\n")
}

// renderInput renders the input box with a separator line.
func (m Model) renderInput() string {
	separator := m.theme.InputContainer.Width(m.width).Render("")

	note := ""
	if m.statusNote != "" {
		note = " " + m.theme.ErrorMessage.Render(m.statusNote)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		separator,
		" "+m.input.View(),
		note,
	)
}

// renderTopicPicker renders the full-screen topic list overlay.
func (m Model) renderTopicPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("topics"))
	b.WriteString("\n\n")

	if len(m.topicList) == 0 {
		b.WriteString(m.theme.ConversationMeta.Render("no topics yet; press n to create one"))
	}

	for i, topic := range m.topicList {
		label := util.TruncateRunes(topic.Name, 48)
		if !topic.CreatedAt.IsZero() {
			label += "  " + topic.CreatedAt.Format("Jan 2")
		}

		style := m.theme.ConversationItem
		if i == m.topicCursor {
			style = m.theme.ConversationSelected
			label = "> " + label
		} else {
			label = "  " + label
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ConversationMeta.Render("enter select | n new | d delete | esc close"))

	return m.theme.ConversationList.
		Width(m.width - 4).
		Height(m.height - 2).
		Render(b.String())
}

// =============================================================================
// OVERLAY HELPERS
// =============================================================================

// overlayBottom replaces the bottom lines of base with the overlay lines,
// keeping the overall line count stable so the layout does not shift.
func overlayBottom(base, overlay []string) []string {
	if len(overlay) >= len(base) {
		return overlay
	}
	out := make([]string, len(base))
	copy(out, base[:len(base)-len(overlay)])
	copy(out[len(base)-len(overlay):], overlay)
	return out
}
