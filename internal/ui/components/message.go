// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// MessageBubble renders a single message with its role label, timestamp,
// optional reasoning block, and attached resources.
type MessageBubble struct {
	Message   *model.Message
	Resources model.ResourceBundle
	Reasoning string

	Width         int
	ShowTimestamp bool
	Streaming     bool

	theme *styles.Theme
}

// NewMessageBubble creates a bubble for the given message.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		Streaming:     msg.IsStreaming,
		theme:         theme,
	}
}

// SetWidth sets the available render width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetResources attaches the message's resource bundle for rendering.
func (b *MessageBubble) SetResources(bundle model.ResourceBundle) {
	b.Resources = bundle
}

// View renders the bubble for the message's role.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	case model.RoleSystem:
		return b.renderSystemBubble()
	default:
		return b.renderAssistantBubble()
	}
}

// ==========================================================================
// USER BUBBLE - right-aligned, cyan accent
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)
	header := b.renderHeader("you")

	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	margin := lipgloss.NewStyle().MarginLeft(leftMargin)

	out := lipgloss.JoinVertical(lipgloss.Right,
		margin.Render(header),
		margin.Render(bubble),
	)

	if chips := b.renderResources(); chips != "" {
		out = lipgloss.JoinVertical(lipgloss.Right, out, margin.Render(chips))
	}
	return out
}

// ==========================================================================
// ASSISTANT BUBBLE - left-aligned, indigo accent
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.GetDisplayContent()
	if b.Streaming {
		content += b.renderStreamingCursor()
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.AssistantBubble.Width(contentWidth).Render(wrapped)
	header := b.renderHeader("assistant")

	var parts []string
	parts = append(parts, header)

	if b.Reasoning != "" {
		reasoningWidth := minInt(maxContentWidth, contentWidth)
		parts = append(parts, b.theme.ReasoningText.Render(wordWrap(b.Reasoning, reasoningWidth)))
	}

	parts = append(parts, bubble)

	if chips := b.renderResources(); chips != "" {
		parts = append(parts, chips)
	}

	if !b.Streaming && b.Message.TokenCount > 0 {
		parts = append(parts, b.theme.Timestamp.Render(fmtNumber(b.Message.TokenCount)+" tokens"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ==========================================================================
// SYSTEM BUBBLE - centered notice
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.Message.GetDisplayContent()
	if content == "" {
		content = "system notice"
	}

	maxContentWidth := b.Width - 16
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)

	bubble := b.theme.SystemBubble.Render(wrapped)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Center, bubble)
}

// ==========================================================================
// SHARED PIECES
// ==========================================================================

func (b *MessageBubble) renderHeader(role string) string {
	parts := []string{b.theme.RoleLabel.Render(role)}
	if b.ShowTimestamp {
		if ts := formatTime(b.Message.CreatedAt); ts != "" {
			parts = append(parts, b.theme.Timestamp.Render(ts))
		}
	}
	return strings.Join(parts, " ")
}

func (b *MessageBubble) renderStreamingCursor() string {
	return lipgloss.NewStyle().
		Foreground(styles.Indigo).
		Blink(true).
		Render("|")
}

// renderResources renders the attachment chips, context chips, and
// execution step lines for the bundle, one group per line.
func (b *MessageBubble) renderResources() string {
	if b.Resources.IsEmpty() {
		return ""
	}

	var lines []string

	if len(b.Resources.Attachments) > 0 {
		var chips []string
		for _, a := range b.Resources.Attachments {
			label := a.Name
			if a.SizeBytes > 0 {
				label += " " + formatSize(a.SizeBytes)
			}
			chips = append(chips, b.theme.AttachmentChip.Render("@ "+label))
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	if len(b.Resources.Contexts) > 0 {
		var chips []string
		for _, c := range b.Resources.Contexts {
			label := c.Title
			if label == "" {
				label = c.Source
			}
			chips = append(chips, b.theme.ContextChip.Render("# "+label))
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	for _, s := range b.Resources.Steps {
		lines = append(lines, b.renderStep(s))
	}

	return strings.Join(lines, "\n")
}

func (b *MessageBubble) renderStep(step model.ExecutionStep) string {
	switch step.Status {
	case "running":
		return b.theme.StepRunning.Render("~ " + step.Tool)
	case "error":
		line := "x " + step.Tool
		if step.Output != "" {
			line += ": " + step.Output
		}
		return b.theme.StepFailed.Render(line)
	default:
		return b.theme.StepDone.Render("+ " + step.Tool)
	}
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// MessageList renders a sequence of message bubbles joined vertically.
type MessageList struct {
	Messages  []*model.Message
	Resources map[string]model.ResourceBundle
	Reasoning string

	Width          int
	ShowTimestamps bool

	theme *styles.Theme
}

// NewMessageList creates an empty message list.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
	}
}

// SetMessages replaces the rendered messages.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetResources replaces the per-message resource bundles.
func (ml *MessageList) SetResources(bundles map[string]model.ResourceBundle) {
	ml.Resources = bundles
}

// SetWidth sets the available render width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages separated by blank lines. The in-progress
// reasoning text is attached to the last message when it is streaming.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		return ""
	}

	var parts []string
	last := len(ml.Messages) - 1
	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		if bundle, ok := ml.Resources[msg.ID]; ok {
			bubble.SetResources(bundle)
		}
		if i == last && msg.IsStreaming {
			bubble.Reasoning = ml.Reasoning
		}
		parts = append(parts, bubble.View())
	}

	return strings.Join(parts, "\n\n")
}
