// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
package chat

import (
	"github.com/jeranaias/parley-tui/internal/backend"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// storeChangedMsg signals that the conversation store published a change
// notification; the model refreshes its snapshot in response.
type storeChangedMsg struct{}

// storeClosedMsg signals that the change channel was closed.
type storeClosedMsg struct{}

// conversationSwitchedMsg signals that the synchronizer finished
// switching (or reloading) the active conversation.
type conversationSwitchedMsg struct{}

// resourcesLoadedMsg signals that a resource cache pass finished and the
// transcript should re-render with the new bundles.
type resourcesLoadedMsg struct{}

// backendCheckedMsg carries the result of the startup health check.
type backendCheckedMsg struct {
	err error
}

// topicsLoadedMsg carries the topic listing for the picker overlay.
type topicsLoadedMsg struct {
	topics []backend.Topic
	err    error
}

// topicCreatedMsg carries the result of creating a topic.
type topicCreatedMsg struct {
	topic *backend.Topic
	err   error
}

// topicDeletedMsg carries the result of deleting a topic.
type topicDeletedMsg struct {
	id  string
	err error
}

// messageSentMsg carries the result of posting a user message.
type messageSentMsg struct {
	err error
}

// archiveSavedMsg carries the result of an archive write.
type archiveSavedMsg struct {
	err error
}
