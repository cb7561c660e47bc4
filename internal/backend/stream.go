// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the parley backend.
package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/events"
)

// =============================================================================
// EVENT STREAM
// =============================================================================

// wireEvent is one line of the backend's newline-delimited JSON event feed.
type wireEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Reasoning      string `json:"reasoning,omitempty"`
	Waiting        bool   `json:"waiting,omitempty"`
	Status         string `json:"status,omitempty"`
}

// EventStream reads the backend's event feed and republishes each event on
// the in-process bus. It reconnects with backoff until the context is
// cancelled.
type EventStream struct {
	config *ClientConfig
	bus    *events.Bus
	log    zerolog.Logger
}

// NewEventStream creates a stream bridge over the given bus.
func NewEventStream(config *ClientConfig, bus *events.Bus, log zerolog.Logger) *EventStream {
	if config == nil {
		config = DefaultConfig()
	}
	return &EventStream{
		config: config,
		bus:    bus,
		log:    log.With().Str("component", "eventstream").Logger(),
	}
}

// Run connects to the event feed and pumps events onto the bus until ctx
// is cancelled. Connection failures are logged and retried.
func (s *EventStream) Run(ctx context.Context) {
	backoff := time.Second
	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("event stream disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// connect opens one feed connection and processes it until it closes.
func (s *EventStream) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+"/api/events", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/x-ndjson")

	// No client timeout: the feed is long-lived and bounded by ctx.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "event feed request failed: " + resp.Status}
	}

	s.log.Info().Msg("event stream connected")
	return s.process(ctx, resp.Body)
}

// process decodes feed lines and publishes them until EOF.
func (s *EventStream) process(ctx context.Context, body io.Reader) error {
	reader := bufio.NewReader(body)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 1 {
			s.publish(line)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// publish decodes one wire event and fans it out. Malformed lines are
// logged and skipped so one bad event cannot kill the feed.
func (s *EventStream) publish(line []byte) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		s.log.Warn().Err(err).Msg("skipping malformed event")
		return
	}
	if w.ConversationID == "" {
		return
	}

	switch w.Type {
	case "stream_start":
		s.bus.Publish(events.StreamStart{
			ConversationID: w.ConversationID,
			MessageID:      w.MessageID,
		})
	case "stream_delta":
		s.bus.Publish(events.StreamDelta{
			ConversationID: w.ConversationID,
			Content:        w.Content,
			Reasoning:      w.Reasoning,
		})
	case "stream_end":
		s.bus.Publish(events.StreamEnd{
			ConversationID: w.ConversationID,
			MessageID:      w.MessageID,
			Content:        w.Content,
		})
	case "waiting":
		s.bus.Publish(events.WaitingChanged{
			ConversationID: w.ConversationID,
			Waiting:        w.Waiting,
		})
	case "attachment_status":
		s.bus.Publish(events.AttachmentStatusChanged{
			ConversationID: w.ConversationID,
			Status:         w.Status,
		})
	default:
		s.log.Debug().Str("type", w.Type).Msg("ignoring unknown event type")
	}
}
