// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the parley chat view.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/backend"
	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/state"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/view"
)

// Layout constants, in terminal rows.
const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	keys  KeyMap
	log   zerolog.Logger

	// Live view synchronizer and its viewport adapter.
	sync    *view.Synchronizer
	adapter *transcriptViewport

	// Backend surfaces.
	sender  MessageSender
	topics  *state.TopicStore
	archive Archiver

	// UI components. The viewport is shared by pointer with the scroll
	// controller's adapter, so model copies see the same scroll state.
	viewport  *viewport.Model
	input     textinput.Model
	spinner   components.Spinner
	statusBar *components.StatusBar
	msgList   *components.MessageList

	// Dimensions.
	width  int
	height int

	// Connection state from the startup health check.
	connected bool

	// Topic picker overlay.
	showTopics  bool
	topicList   []backend.Topic
	topicCursor int
	activeTopic backend.Topic

	// Archive bookkeeping: last message count written for the active
	// conversation.
	lastSavedCount int

	assistantName  string
	showTimestamps bool
	statusNote     string
}

// Options configures the chat model.
type Options struct {
	Synchronizer *view.Synchronizer
	Sender       MessageSender
	Topics       *state.TopicStore
	Archive      Archiver
	Assistant    string
	Timestamps   bool
	Theme        *styles.Theme
	Log          zerolog.Logger
}

// New creates the chat model and attaches the scroll controller to the
// transcript viewport.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	m := Model{
		theme:          opts.Theme,
		keys:           DefaultKeyMap(),
		log:            opts.Log.With().Str("component", "chat").Logger(),
		sync:           opts.Synchronizer,
		sender:         opts.Sender,
		topics:         opts.Topics,
		archive:        opts.Archive,
		viewport:       &vp,
		input:          ti,
		spinner:        components.NewSpinner(opts.Theme),
		statusBar:      components.NewStatusBar(opts.Theme),
		msgList:        components.NewMessageList(opts.Theme),
		assistantName:  opts.Assistant,
		showTimestamps: opts.Timestamps,
	}
	m.statusBar.Assistant = opts.Assistant
	m.msgList.ShowTimestamps = opts.Timestamps

	m.adapter = newTranscriptViewport(m.viewport)
	m.sync.Scroll().Attach(m.adapter, m.adapter)

	return m
}

// Init starts the change pump and the backend health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		checkBackend(m.sender),
		waitForChange(m.sync.Changes()),
		loadTopics(m.topics),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case storeChangedMsg:
		return m.handleStoreChange()

	case storeClosedMsg:
		return m, tea.Quit

	case backendCheckedMsg:
		m.connected = msg.err == nil
		m.statusBar.Connected = m.connected
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("backend health check failed")
		}
		return m, nil

	case topicsLoadedMsg:
		return m.handleTopicsLoaded(msg)

	case conversationSwitchedMsg:
		return m.handleConversationSwitched()

	case resourcesLoadedMsg:
		// Re-render with the fetched bundles; the fold is a no-op.
		return m, m.refreshTranscript()

	case topicCreatedMsg:
		if msg.err != nil {
			m.statusNote = "create failed: " + msg.err.Error()
			return m, nil
		}
		return m, tea.Batch(m.selectTopic(*msg.topic), loadTopics(m.topics))

	case topicDeletedMsg:
		if msg.err != nil {
			m.statusNote = "delete failed: " + msg.err.Error()
			return m, nil
		}
		if msg.id == m.activeTopic.ID {
			m.activeTopic = backend.Topic{}
			m.statusBar.Conversation = ""
			return m, tea.Batch(switchConversation(m.sync, ""), loadTopics(m.topics))
		}
		return m, loadTopics(m.topics)

	case messageSentMsg:
		if msg.err != nil {
			m.spinner.Stop()
			m.statusNote = "send failed: " + msg.err.Error()
			m.statusBar.Status = components.StatusError
		}
		return m, nil

	case archiveSavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("archive save failed")
		}
		return m, nil

	default:
		var cmd tea.Cmd
		if tick := m.spinner.Update(msg); tick != nil {
			cmd = tick
		}
		return m, cmd
	}
}

// handleResize recomputes layout and informs the scroll controller.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight

	m.input.Width = m.width - 4
	m.statusBar.Width = m.width
	m.msgList.SetWidth(m.width)

	m.adapter.setBounds(0, m.width)
	cmd := m.refreshTranscript()
	m.sync.Scroll().Resized()

	return m, cmd
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showTopics {
		return m.handleTopicKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		if m.sync.Snapshot().APIError != nil {
			m.sync.ClearError()
		}
		m.statusNote = ""
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		m.sync.ClearError()
		m.statusBar.Status = components.StatusLoading
		return m, reloadConversation(m.sync)

	case key.Matches(msg, m.keys.Topics):
		m.showTopics = true
		return m, loadTopics(m.topics)

	case key.Matches(msg, m.keys.NewTopic):
		name := "chat " + time.Now().Format("Jan 2 15:04")
		return m, createTopic(m.topics, name)

	case key.Matches(msg, m.keys.Jump):
		m.viewport.GotoBottom()
		m.sync.Scroll().Pin()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		m.sync.Scroll().ScrollEvent()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		m.sync.Scroll().ScrollEvent()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.sync.Scroll().ScrollEvent()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.sync.Scroll().ScrollEvent()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		m.sync.Scroll().ScrollEvent()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		m.sync.Scroll().Pin()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// handleMouse routes wheel scrolling through the scroll controller.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.LineUp(3)
		m.sync.Scroll().ScrollEvent()
	case tea.MouseButtonWheelDown:
		m.viewport.LineDown(3)
		m.sync.Scroll().ScrollEvent()
	}
	return m, nil
}

// handleSubmit posts the input line as a user message.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	content := m.input.Value()
	if content == "" || m.activeTopic.ID == "" {
		return m, nil
	}

	m.input.Reset()
	m.statusNote = ""
	m.statusBar.Status = components.StatusWaiting
	tick := m.spinner.Start()

	return m, tea.Batch(
		sendMessage(m.sender, m.activeTopic.ID, content),
		tick,
	)
}

// handleConversationSwitched re-renders once the background switch (or
// reload) has finished loading.
func (m Model) handleConversationSwitched() (tea.Model, tea.Cmd) {
	cmd := m.refreshTranscript()

	snap := m.sync.Snapshot()
	if snap.APIError != nil {
		m.statusBar.Status = components.StatusError
	} else {
		m.statusBar.Status = components.StatusReady
	}
	m.statusBar.MessageCount = len(snap.Messages)
	return m, cmd
}

// handleStoreChange refreshes the snapshot, re-renders the transcript,
// and re-arms the change pump.
func (m Model) handleStoreChange() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForChange(m.sync.Changes())}
	if cmd := m.refreshTranscript(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	snap := m.sync.Snapshot()
	switch {
	case snap.IsStreaming:
		m.statusBar.Status = components.StatusStreaming
		m.spinner.Stop()
	case snap.IsWaitingForAI:
		m.statusBar.Status = components.StatusWaiting
	case snap.APIError != nil:
		m.statusBar.Status = components.StatusError
		m.spinner.Stop()
	default:
		m.statusBar.Status = components.StatusReady
		m.spinner.Stop()
	}
	m.statusBar.MessageCount = len(snap.Messages)

	// Archive once a reply settles: the count grew and nothing is in
	// flight.
	if m.archive != nil && !snap.IsStreaming && !snap.IsWaitingForAI &&
		len(snap.Messages) > m.lastSavedCount && snap.ConversationID != "" {
		m.lastSavedCount = len(snap.Messages)
		if cmd := saveArchive(m.archive, m.conversationForArchive(snap)); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// refreshTranscript rebuilds the viewport content from the current
// snapshot and folds the change into the synchronizer. Content must be
// set before the fold so the scroll controller sees the new length. The
// returned command, when non-nil, runs the blocking resource pass off
// the update loop.
func (m *Model) refreshTranscript() tea.Cmd {
	snap := m.sync.Snapshot()

	messages := snap.Messages
	if snap.IsStreaming {
		tail := model.NewAssistantMessage()
		tail.AppendChunk(snap.StreamingContent)
		messages = append(messages[:len(messages):len(messages)], tail)
	}

	m.msgList.SetMessages(messages)
	m.msgList.SetResources(m.sync.Resources().Bundles())
	m.msgList.Reasoning = snap.StreamingReasoningContent
	m.viewport.SetContent(m.msgList.View())

	if m.sync.RefreshContent() {
		return refreshResources(m.sync)
	}
	return nil
}

// selectTopic switches the active conversation. The blocking load runs
// in the returned command; the transcript refreshes when it completes.
func (m *Model) selectTopic(topic backend.Topic) tea.Cmd {
	m.activeTopic = topic
	m.lastSavedCount = 0
	m.showTopics = false
	m.statusBar.Conversation = topic.Name
	m.statusBar.Status = components.StatusLoading
	return switchConversation(m.sync, topic.ID)
}

// conversationForArchive builds the archive record from a snapshot.
func (m *Model) conversationForArchive(snap view.Snapshot) *model.Conversation {
	title := m.activeTopic.Name
	if title == "" {
		title = snap.ConversationID
	}
	return &model.Conversation{
		ID:          snap.ConversationID,
		Title:       title,
		CreatedAt:   m.activeTopic.CreatedAt,
		UpdatedAt:   time.Now(),
		Messages:    snap.Messages,
		AssistantID: m.assistantName,
	}
}

// teardown stops the synchronizer before the program exits.
func (m *Model) teardown() {
	m.sync.Scroll().Detach()
	m.sync.Close()
}

// =============================================================================
// TOPIC PICKER
// =============================================================================

// handleTopicsLoaded fills the picker listing.
func (m Model) handleTopicsLoaded(msg topicsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusNote = "topics unavailable: " + msg.err.Error()
		m.showTopics = false
		return m, nil
	}

	m.topicList = msg.topics
	if m.topicCursor >= len(m.topicList) {
		m.topicCursor = 0
	}

	// First listing with no active topic: select the most recent one.
	if m.activeTopic.ID == "" && len(m.topicList) > 0 && !m.showTopics {
		return m, m.selectTopic(m.topicList[0])
	}
	return m, nil
}

// handleTopicKey drives the picker overlay.
func (m Model) handleTopicKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+k":
		m.showTopics = false
		return m, nil

	case "up", "k":
		if m.topicCursor > 0 {
			m.topicCursor--
		}
		return m, nil

	case "down", "j":
		if m.topicCursor < len(m.topicList)-1 {
			m.topicCursor++
		}
		return m, nil

	case "enter":
		if m.topicCursor < len(m.topicList) {
			return m, m.selectTopic(m.topicList[m.topicCursor])
		}
		return m, nil

	case "d":
		if m.topicCursor < len(m.topicList) {
			return m, deleteTopic(m.topics, m.topicList[m.topicCursor].ID)
		}
		return m, nil

	case "n":
		name := "chat " + time.Now().Format("Jan 2 15:04")
		return m, createTopic(m.topics, name)

	case "ctrl+c":
		m.teardown()
		return m, tea.Quit

	default:
		return m, nil
	}
}
