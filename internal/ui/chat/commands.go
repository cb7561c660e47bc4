// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/state"
	"github.com/jeranaias/parley-tui/internal/view"
)

// =============================================================================
// BACKEND INTERFACES
// =============================================================================

// MessageSender is the slice of the backend client the chat view posts
// messages through.
type MessageSender interface {
	SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error)
	CheckRunning(ctx context.Context) error
}

// Archiver persists finished conversations locally. nil disables archiving.
type Archiver interface {
	Save(ctx context.Context, conv *model.Conversation) error
}

// =============================================================================
// COMMANDS
// =============================================================================

const requestTimeout = 15 * time.Second

// waitForChange blocks on the store's change channel and converts the
// notification into a message. Re-issued after every storeChangedMsg.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return storeClosedMsg{}
		}
		return storeChangedMsg{}
	}
}

// switchConversation runs the blocking conversation switch (message load
// plus resubscription) off the update loop.
func switchConversation(sync *view.Synchronizer, conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sync.SetConversation(ctx, conversationID)
		return conversationSwitchedMsg{}
	}
}

// reloadConversation re-issues the message load for the active
// conversation after a dismissed error.
func reloadConversation(sync *view.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sync.Aggregator().Reload(ctx)
		return conversationSwitchedMsg{}
	}
}

// refreshResources runs the blocking resource cache pass and reports
// back so the transcript re-renders with the fetched bundles.
func refreshResources(sync *view.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sync.RefreshResources(ctx)
		return resourcesLoadedMsg{}
	}
}

// checkBackend runs the startup health check.
func checkBackend(sender MessageSender) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return backendCheckedMsg{err: sender.CheckRunning(ctx)}
	}
}

// sendMessage posts a user message to the active conversation. The reply
// streams back through the event feed, not through this call.
func sendMessage(sender MessageSender, conversationID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := sender.SendMessage(ctx, conversationID, content)
		return messageSentMsg{err: err}
	}
}

// loadTopics fetches the topic listing for the picker.
func loadTopics(topics *state.TopicStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := topics.List(ctx)
		return topicsLoadedMsg{topics: list, err: err}
	}
}

// createTopic creates a topic and reports the result.
func createTopic(topics *state.TopicStore, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		topic, err := topics.Create(ctx, name)
		return topicCreatedMsg{topic: topic, err: err}
	}
}

// deleteTopic deletes a topic and reports the result.
func deleteTopic(topics *state.TopicStore, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return topicDeletedMsg{id: id, err: topics.Delete(ctx, id)}
	}
}

// saveArchive persists a conversation snapshot to the local archive.
func saveArchive(archive Archiver, conv *model.Conversation) tea.Cmd {
	if archive == nil || conv == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return archiveSavedMsg{err: archive.Save(ctx, conv)}
	}
}
