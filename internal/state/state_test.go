// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/backend"
	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/model"
)

// fakeLoader returns canned message lists or errors per conversation ID.
type fakeLoader struct {
	messages map[string][]*model.Message
	err      error
	calls    int
}

func (f *fakeLoader) LoadMessages(_ context.Context, conversationID string) ([]*model.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.messages[conversationID], nil
}

func newTestStore(loader *fakeLoader) *Store {
	return NewStore(loader, zerolog.Nop())
}

func TestGetUnknownConversationDefaults(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	cs := s.Get("conv_missing")
	if len(cs.Messages) != 0 {
		t.Errorf("expected empty messages, got %d", len(cs.Messages))
	}
	if cs.AttachmentStatus != AttachmentIdle {
		t.Errorf("expected idle attachment status, got %q", cs.AttachmentStatus)
	}
	if cs.IsStreaming || cs.IsWaitingForAI {
		t.Error("expected no activity flags on unknown conversation")
	}
	if cs.APIError != nil {
		t.Errorf("expected nil APIError, got %v", cs.APIError)
	}
}

func TestLoadMessagesReplacesAndBumpsRevision(t *testing.T) {
	loader := &fakeLoader{
		messages: map[string][]*model.Message{
			"conv_1": {
				model.NewUserMessage("hello"),
				model.NewAssistantMessage(),
			},
		},
	}
	s := newTestStore(loader)

	s.LoadMessages(context.Background(), "conv_1")

	cs := s.Get("conv_1")
	if len(cs.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(cs.Messages))
	}
	if cs.Revision != 1 {
		t.Errorf("expected revision 1, got %d", cs.Revision)
	}

	s.LoadMessages(context.Background(), "conv_1")
	if got := s.Get("conv_1").Revision; got != 2 {
		t.Errorf("expected revision 2 after reload, got %d", got)
	}
}

func TestLoadMessagesFailureRecordsError(t *testing.T) {
	wantErr := errors.New("backend down")
	s := newTestStore(&fakeLoader{err: wantErr})

	s.LoadMessages(context.Background(), "conv_1")

	cs := s.Get("conv_1")
	if !errors.Is(cs.APIError, wantErr) {
		t.Errorf("expected recorded error, got %v", cs.APIError)
	}
	if cs.Revision != 0 {
		t.Errorf("failed load must not bump revision, got %d", cs.Revision)
	}

	s.ClearError("conv_1")
	if got := s.Get("conv_1").APIError; got != nil {
		t.Errorf("expected error cleared, got %v", got)
	}
}

func TestClearErrorUnknownConversationNoop(t *testing.T) {
	s := newTestStore(&fakeLoader{})
	s.ClearError("conv_nope") // must not create state or panic

	select {
	case <-s.Changes():
		t.Error("no-op clear should not notify")
	default:
	}
}

func TestApplyStreamLifecycle(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	s.Apply(events.StreamStart{ConversationID: "conv_1", MessageID: "msg_a"})
	cs := s.Get("conv_1")
	if !cs.IsStreaming {
		t.Fatal("expected streaming after StreamStart")
	}

	s.Apply(events.StreamDelta{ConversationID: "conv_1", Reasoning: "thinking"})
	cs = s.Get("conv_1")
	if !cs.IsReasoningActive {
		t.Error("reasoning delta should activate reasoning")
	}
	if cs.StreamingReasoningContent != "thinking" {
		t.Errorf("unexpected reasoning content %q", cs.StreamingReasoningContent)
	}

	s.Apply(events.StreamDelta{ConversationID: "conv_1", Content: "Hello"})
	s.Apply(events.StreamDelta{ConversationID: "conv_1", Content: ", world"})
	cs = s.Get("conv_1")
	if cs.IsReasoningActive {
		t.Error("content delta should deactivate reasoning")
	}
	if cs.StreamingContent != "Hello, world" {
		t.Errorf("unexpected streaming content %q", cs.StreamingContent)
	}

	s.Apply(events.StreamEnd{ConversationID: "conv_1", MessageID: "msg_a", Content: "Hello, world"})
	cs = s.Get("conv_1")
	if cs.IsStreaming {
		t.Error("expected streaming cleared after StreamEnd")
	}
	if cs.StreamingContent != "" {
		t.Error("expected partial content cleared after StreamEnd")
	}
	if len(cs.Messages) != 1 || cs.Messages[0].ID != "msg_a" {
		t.Fatalf("expected finalized message appended, got %v", cs.Messages)
	}
	if cs.Messages[0].CreatedAt.IsZero() {
		t.Error("finalized message should carry a timestamp")
	}
	if cs.Revision != 1 {
		t.Errorf("expected revision bump on finalize, got %d", cs.Revision)
	}
}

func TestApplyScopedToConversation(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	s.Apply(events.StreamStart{ConversationID: "conv_1", MessageID: "msg_a"})
	s.Apply(events.WaitingChanged{ConversationID: "conv_2", Waiting: true})

	if s.Get("conv_2").IsStreaming {
		t.Error("streaming on conv_1 leaked into conv_2")
	}
	if s.Get("conv_1").IsWaitingForAI {
		t.Error("waiting on conv_2 leaked into conv_1")
	}
}

func TestInvalidateAttachments(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	s.InvalidateAttachments("conv_1")
	s.InvalidateAttachments("conv_1")

	if got := s.Get("conv_1").AttachmentRefreshKey; got != 2 {
		t.Errorf("expected refresh key 2, got %d", got)
	}
}

func TestPendingDecisions(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	s.SetPendingDecision("conv_1", "tool:shell", true)
	if !s.Get("conv_1").PendingDecisions["tool:shell"] {
		t.Error("expected pending decision recorded")
	}

	s.SetPendingDecision("conv_1", "tool:shell", false)
	if len(s.Get("conv_1").PendingDecisions) != 0 {
		t.Error("expected pending decision cleared")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	loader := &fakeLoader{
		messages: map[string][]*model.Message{
			"conv_1": {model.NewUserMessage("hi")},
		},
	}
	s := newTestStore(loader)
	s.LoadMessages(context.Background(), "conv_1")

	snap := s.Get("conv_1")
	snap.Messages = append(snap.Messages, model.NewUserMessage("mutated"))
	snap.PendingDecisions["x"] = true

	cs := s.Get("conv_1")
	if len(cs.Messages) != 1 {
		t.Error("snapshot mutation leaked into store messages")
	}
	if len(cs.PendingDecisions) != 0 {
		t.Error("snapshot mutation leaked into store decisions")
	}
}

func TestChangesCoalesce(t *testing.T) {
	s := newTestStore(&fakeLoader{})

	for i := 0; i < 5; i++ {
		s.InvalidateAttachments("conv_1")
	}

	// One pending signal at most.
	<-s.Changes()
	select {
	case <-s.Changes():
		t.Error("expected notifications to coalesce into one signal")
	default:
	}
}

// =============================================================================
// CRUD CONTAINERS
// =============================================================================

type fakeTopicAPI struct {
	topics    []backend.Topic
	listCalls int
}

func (f *fakeTopicAPI) ListTopics(_ context.Context) ([]backend.Topic, error) {
	f.listCalls++
	return f.topics, nil
}

func (f *fakeTopicAPI) CreateTopic(_ context.Context, name string) (*backend.Topic, error) {
	t := backend.Topic{ID: "topic_new", Name: name}
	f.topics = append(f.topics, t)
	return &t, nil
}

func (f *fakeTopicAPI) DeleteTopic(_ context.Context, id string) error {
	out := f.topics[:0]
	for _, t := range f.topics {
		if t.ID != id {
			out = append(out, t)
		}
	}
	f.topics = out
	return nil
}

func TestTopicStoreCachesListing(t *testing.T) {
	api := &fakeTopicAPI{topics: []backend.Topic{{ID: "topic_1", Name: "general"}}}
	ts := NewTopicStore(api)

	for i := 0; i < 3; i++ {
		if _, err := ts.List(context.Background()); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if api.listCalls != 1 {
		t.Errorf("expected 1 backend list call, got %d", api.listCalls)
	}
}

func TestTopicStoreWriteInvalidatesCache(t *testing.T) {
	api := &fakeTopicAPI{}
	ts := NewTopicStore(api)

	if _, err := ts.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := ts.Create(context.Background(), "ideas"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	topics, err := ts.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(topics) != 1 || topics[0].Name != "ideas" {
		t.Errorf("expected refetched listing with new topic, got %v", topics)
	}

	if err := ts.Delete(context.Background(), "topic_new"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	topics, _ = ts.List(context.Background())
	if len(topics) != 0 {
		t.Errorf("expected empty listing after delete, got %v", topics)
	}
}

type fakeAssistantAPI struct {
	assistants []backend.Assistant
	calls      int
}

func (f *fakeAssistantAPI) ListAssistants(_ context.Context) ([]backend.Assistant, error) {
	f.calls++
	return f.assistants, nil
}

func TestAssistantStoreRefresh(t *testing.T) {
	api := &fakeAssistantAPI{assistants: []backend.Assistant{{ID: "asst_1", Name: "Scout"}}}
	as := NewAssistantStore(api)

	if _, err := as.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := as.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if api.calls != 1 {
		t.Errorf("expected cached second read, got %d calls", api.calls)
	}

	as.Refresh()
	if _, err := as.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if api.calls != 2 {
		t.Errorf("expected refetch after Refresh, got %d calls", api.calls)
	}
}
