// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the parley TUI.
package components

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/backend"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// ERROR BANNER
// =============================================================================

// ErrorBanner renders a dismissible error box with a recovery hint.
type ErrorBanner struct {
	Err   error
	Width int

	theme *styles.Theme
}

// NewErrorBanner creates a banner for the given error.
func NewErrorBanner(err error, theme *styles.Theme) *ErrorBanner {
	return &ErrorBanner{
		Err:   err,
		Width: 80,
		theme: theme,
	}
}

// View renders the error box, or "" when there is no error.
func (e *ErrorBanner) View() string {
	if e.Err == nil {
		return ""
	}

	maxWidth := e.Width - 8
	if maxWidth < 24 {
		maxWidth = 24
	}

	title := e.theme.ErrorTitle.Render("error")
	message := e.theme.ErrorMessage.Render(wordWrap(e.Err.Error(), maxWidth))

	parts := []string{title, message}
	if hint := e.hint(); hint != "" {
		parts = append(parts, e.theme.ErrorHint.Render(hint))
	}
	parts = append(parts, e.theme.ErrorHint.Render("press esc to dismiss"))

	box := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return e.theme.ErrorBox.MaxWidth(e.Width - 4).Render(box)
}

// hint maps known client error types to a one-line recovery suggestion.
func (e *ErrorBanner) hint() string {
	var ce *backend.ClientError
	if !errors.As(e.Err, &ce) {
		return ""
	}

	switch ce.Type {
	case backend.ErrTypeNotRunning, backend.ErrTypeConnection:
		return "check that the parley backend is running, then press r to retry"
	case backend.ErrTypeTimeout:
		return "the backend is slow to respond; press r to retry"
	case backend.ErrTypeNotFound:
		return "the conversation may have been deleted; pick another topic"
	default:
		return ""
	}
}
