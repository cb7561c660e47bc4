// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme()
}

func TestUserBubbleContainsContentAndRole(t *testing.T) {
	msg := model.NewUserMessage("hello there")
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(60)

	out := b.View()
	if !strings.Contains(out, "hello there") {
		t.Errorf("output missing content: %q", out)
	}
	if !strings.Contains(out, "you") {
		t.Errorf("output missing role label: %q", out)
	}
}

func TestAssistantBubbleStreamingCursor(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.AppendChunk("partial answer")

	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(60)

	out := b.View()
	if !strings.Contains(out, "partial answer") {
		t.Errorf("output missing streamed content: %q", out)
	}
	if !strings.Contains(out, "assistant") {
		t.Errorf("output missing role label: %q", out)
	}
}

func TestSystemBubbleCentered(t *testing.T) {
	msg := model.NewSystemMessage("conversation archived")
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(60)

	out := b.View()
	if !strings.Contains(out, "conversation archived") {
		t.Errorf("output missing notice: %q", out)
	}
}

func TestBubbleRendersResourceChips(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.AppendChunk("see attached")
	msg.FinalizeStream()

	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(80)
	b.SetResources(model.ResourceBundle{
		Attachments: []model.Attachment{
			{ID: "a1", Name: "report.pdf", SizeBytes: 2048},
		},
		Contexts: []model.ContextRef{
			{ID: "c1", Kind: "file", Title: "notes.md"},
		},
		Steps: []model.ExecutionStep{
			{ID: "s1", Tool: "search", Status: "success"},
			{ID: "s2", Tool: "fetch", Status: "error", Output: "timeout"},
		},
	})

	out := b.View()
	for _, want := range []string{"report.pdf", "2 KB", "notes.md", "search", "fetch", "timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBubbleEmptyBundleRendersNoChips(t *testing.T) {
	msg := model.NewUserMessage("plain")
	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(60)

	if chips := b.renderResources(); chips != "" {
		t.Errorf("empty bundle rendered chips: %q", chips)
	}
}

func TestMessageListJoinsMessages(t *testing.T) {
	ml := NewMessageList(testTheme())
	ml.SetWidth(60)
	ml.SetMessages([]*model.Message{
		model.NewUserMessage("question"),
		model.NewMessage(model.RoleAssistant, "answer"),
	})

	out := ml.View()
	if !strings.Contains(out, "question") || !strings.Contains(out, "answer") {
		t.Errorf("list missing messages:\n%s", out)
	}
}

func TestMessageListAttachesReasoningToStreamingTail(t *testing.T) {
	streaming := model.NewAssistantMessage()
	streaming.AppendChunk("working")

	ml := NewMessageList(testTheme())
	ml.SetWidth(60)
	ml.SetMessages([]*model.Message{
		model.NewUserMessage("question"),
		streaming,
	})
	ml.Reasoning = "considering options"

	out := ml.View()
	if !strings.Contains(out, "considering options") {
		t.Errorf("reasoning not rendered:\n%s", out)
	}
}

func TestMessageListEmpty(t *testing.T) {
	ml := NewMessageList(testTheme())
	if out := ml.View(); out != "" {
		t.Errorf("empty list rendered %q", out)
	}
}

func TestTimestampShownForDatedMessage(t *testing.T) {
	msg := model.NewUserMessage("dated")
	msg.CreatedAt = time.Now()

	b := NewMessageBubble(msg, testTheme())
	b.SetWidth(60)
	b.ShowTimestamp = true

	if out := b.View(); !strings.Contains(out, msg.CreatedAt.Format("15:04")) {
		t.Errorf("timestamp missing:\n%s", out)
	}
}
