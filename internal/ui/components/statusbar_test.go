// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStatusBarConnectionStates(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Width = 100

	sb.Connected = true
	if out := sb.View(); !strings.Contains(out, "online") {
		t.Errorf("connected bar missing online:\n%s", out)
	}

	sb.Connected = false
	if out := sb.View(); !strings.Contains(out, "offline") {
		t.Errorf("disconnected bar missing offline:\n%s", out)
	}
}

func TestStatusBarShowsAssistantAndCount(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Width = 120
	sb.Connected = true
	sb.Assistant = "default"
	sb.MessageCount = 1234
	sb.Status = StatusStreaming

	out := sb.View()
	for _, want := range []string{"default", "1,234 msgs", "Streaming..."} {
		if !strings.Contains(out, want) {
			t.Errorf("bar missing %q:\n%s", want, out)
		}
	}
}

func TestStatusBarShortcutsDroppedWhenNarrow(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Width = 30
	sb.Connected = true

	if out := sb.View(); strings.Contains(out, "ctrl+n") {
		t.Errorf("narrow bar kept shortcuts:\n%s", out)
	}
}

func TestStatusBarFitsWidth(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.Width = 80
	sb.Connected = true
	sb.ShowShortcuts = false

	out := sb.View()
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 80 {
			t.Errorf("line width %d exceeds 80: %q", w, line)
		}
	}
}

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusStreaming, "Streaming..."},
		{StatusWaiting, "Waiting..."},
		{StatusLoading, "Loading..."},
		{StatusError, "Error"},
		{Status(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
