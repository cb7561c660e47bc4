// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the parley backend service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "parley backend is not reachable"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound   = &ClientError{Type: ErrTypeNotFound, Message: "resource not found"}
)

// IsNotFound returns true if the error is a not-found client error.
func IsNotFound(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeNotFound
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://127.0.0.1:8315)
	BaseURL string

	// Timeout for requests (default: 30s)
	Timeout time.Duration

	// RequestsPerSecond caps outbound request rate (default: 20)
	RequestsPerSecond float64

	// Burst is the rate limiter burst size (default: 40)
	Burst int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8315",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 20,
		Burst:             40,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the parley backend API.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewClient creates a new backend client with default configuration.
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithConfig(DefaultConfig(), log)
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig, log zerolog.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8315"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 20
	}
	if config.Burst <= 0 {
		config.Burst = 40
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		log:     log.With().Str("component", "backend").Logger(),
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// LoadMessages retrieves the full message list for a conversation.
func (c *Client) LoadMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/conversations/"+conversationID+"/messages", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to load messages"); err != nil {
		return nil, err
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode messages", Cause: err}
	}

	messages := make([]*model.Message, 0, len(result.Messages))
	for _, w := range result.Messages {
		messages = append(messages, w.toModel())
	}
	return messages, nil
}

// SendMessage posts a new user message to a conversation. The backend
// persists it and kicks off the assistant response; streamed content
// arrives through the event channel, not this call.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error) {
	body, err := json.Marshal(sendMessageRequest{Content: content})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/conversations/"+conversationID+"/messages", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to send message"); err != nil {
		return nil, err
	}

	var w wireMessage
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode message", Cause: err}
	}
	return w.toModel(), nil
}

// FetchMessageResources retrieves the resource bundle for one message.
// All three sequences may be empty while the backend is still processing.
func (c *Client) FetchMessageResources(ctx context.Context, messageID string) (model.ResourceBundle, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/messages/"+messageID+"/resources", nil)
	if err != nil {
		return model.ResourceBundle{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to fetch message resources"); err != nil {
		return model.ResourceBundle{}, err
	}

	var result resourcesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.ResourceBundle{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode resources", Cause: err}
	}

	return model.ResourceBundle{
		Attachments: result.Attachments,
		Contexts:    result.Contexts,
		Steps:       result.Steps,
	}, nil
}

// =============================================================================
// TOPIC OPERATIONS
// =============================================================================

// ListTopics retrieves all topics.
func (c *Client) ListTopics(ctx context.Context) ([]Topic, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/topics", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to list topics"); err != nil {
		return nil, err
	}

	var result topicsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode topics", Cause: err}
	}
	return result.Topics, nil
}

// CreateTopic creates a new topic with the given name.
func (c *Client) CreateTopic(ctx context.Context, name string) (*Topic, error) {
	body, err := json.Marshal(createTopicRequest{Name: name})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/topics", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to create topic"); err != nil {
		return nil, err
	}

	var topic Topic
	if err := json.NewDecoder(resp.Body).Decode(&topic); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode topic", Cause: err}
	}
	return &topic, nil
}

// DeleteTopic removes a topic by ID.
func (c *Client) DeleteTopic(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/topics/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, "failed to delete topic")
}

// =============================================================================
// ASSISTANT OPERATIONS
// =============================================================================

// ListAssistants retrieves all configured assistants.
func (c *Client) ListAssistants(ctx context.Context) ([]Assistant, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/assistants", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "failed to list assistants"); err != nil {
		return nil, err
	}

	var result assistantsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode assistants", Cause: err}
	}
	return result.Assistants, nil
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// do issues one rate-limited HTTP request and maps transport errors onto
// the client error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "rate limiter wait aborted", Cause: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		c.log.Debug().Err(err).Str("path", path).Msg("backend request failed")
		return nil, ErrNotRunning
	}
	return resp, nil
}

// checkStatus converts non-2xx responses into client errors.
func checkStatus(resp *http.Response, message string) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: message + ": " + resp.Status,
		}
	}
	return nil
}
