// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the plain-terminal fallback mode.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/jeranaias/parley-tui/internal/backend"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/state"
)

// replyTimeout bounds how long one reply may take end to end.
const replyTimeout = 5 * time.Minute

// =============================================================================
// PLAIN REPL
// =============================================================================

// REPL is the plain-terminal chat loop.
type REPL struct {
	client *backend.Client
	bus    *events.Bus
	topics *state.TopicStore
	cfg    *config.Config
	log    zerolog.Logger

	out      io.Writer
	renderer *glamour.TermRenderer
	reader   *lineReader
	saveCfg  func(*config.Config) error

	topic backend.Topic
}

// New creates the REPL with a markdown renderer sized to the terminal.
func New(client *backend.Client, bus *events.Bus, topics *state.TopicStore, cfg *config.Config, log zerolog.Logger) (*REPL, error) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return &REPL{
		client:   client,
		bus:      bus,
		topics:   topics,
		cfg:      cfg,
		log:      log.With().Str("component", "plain").Logger(),
		out:      os.Stdout,
		renderer: renderer,
		reader:   newLineReader(),
		saveCfg:  config.Save,
	}, nil
}

// Run executes the REPL until the user quits or the context is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	defer r.reader.close()

	if err := r.pickTopic(ctx); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "parley plain mode - topic %q (/help for commands)\n\n", r.topic.Name)

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.reader.read("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "bye")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			done, err := r.handleCommand(ctx, input)
			if err != nil {
				fmt.Fprintln(r.out, "error:", err)
			}
			if done {
				return nil
			}
			continue
		}

		if err := r.sendAndRender(ctx, input); err != nil {
			fmt.Fprintln(r.out, "error:", err)
		}
	}
}

// pickTopic selects the most recent topic, creating one when none exist.
func (r *REPL) pickTopic(ctx context.Context) error {
	list, err := r.topics.List(ctx)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		r.topic = list[0]
		return nil
	}

	topic, err := r.topics.Create(ctx, "plain session")
	if err != nil {
		return err
	}
	r.topic = *topic
	return nil
}

// handleCommand processes a /command line. Returns true when the REPL
// should exit.
func (r *REPL) handleCommand(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "bye")
		return true, nil

	case "/help":
		fmt.Fprintln(r.out, "commands:")
		fmt.Fprintln(r.out, "  /topics          list topics")
		fmt.Fprintln(r.out, "  /switch N        switch to topic number N")
		fmt.Fprintln(r.out, "  /new [name]      create a topic")
		fmt.Fprintln(r.out, "  /get [key]       show a config value (or all)")
		fmt.Fprintln(r.out, "  /set key value   change and save a config value")
		fmt.Fprintln(r.out, "  /quit            exit")
		return false, nil

	case "/get":
		if len(fields) < 2 {
			for _, key := range config.GetAllKeys() {
				v, err := r.cfg.Get(key)
				if err != nil {
					continue
				}
				fmt.Fprintf(r.out, "%-28s %v\n", key, v)
			}
			return false, nil
		}
		v, err := r.cfg.Get(fields[1])
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%v\n", v)
		return false, nil

	case "/set":
		if len(fields) < 3 {
			return false, errors.New("usage: /set key value")
		}
		key := fields[1]
		value := strings.Join(fields[2:], " ")
		if err := r.cfg.Set(key, value); err != nil {
			return false, err
		}
		if err := r.saveCfg(r.cfg); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "%s = %s\n", key, value)
		return false, nil

	case "/topics":
		list, err := r.topics.List(ctx)
		if err != nil {
			return false, err
		}
		for i, t := range list {
			marker := " "
			if t.ID == r.topic.ID {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %2d. %s\n", marker, i+1, t.Name)
		}
		return false, nil

	case "/switch":
		if len(fields) < 2 {
			return false, errors.New("usage: /switch N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, errors.New("usage: /switch N")
		}
		list, err := r.topics.List(ctx)
		if err != nil {
			return false, err
		}
		if n < 1 || n > len(list) {
			return false, fmt.Errorf("no topic %d", n)
		}
		r.topic = list[n-1]
		fmt.Fprintf(r.out, "switched to %q\n", r.topic.Name)
		return false, nil

	case "/new":
		name := "plain session"
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		topic, err := r.topics.Create(ctx, name)
		if err != nil {
			return false, err
		}
		r.topic = *topic
		fmt.Fprintf(r.out, "created %q\n", r.topic.Name)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
}

// sendAndRender posts the message, waits for the streamed reply to end,
// and renders the final content as markdown.
func (r *REPL) sendAndRender(ctx context.Context, content string) error {
	// Subscribe before sending so no events are missed.
	sub := r.bus.Subscribe(r.topic.ID)
	defer sub.Close()

	if _, err := r.client.SendMessage(ctx, r.topic.ID, content); err != nil {
		return err
	}

	final, err := r.awaitReply(ctx, sub)
	if err != nil {
		return err
	}

	rendered, err := r.renderer.Render(final)
	if err != nil {
		// Renderer failure degrades to the raw text.
		rendered = final + "\n"
	}
	fmt.Fprint(r.out, rendered)
	return nil
}

// awaitReply consumes events until the reply ends, echoing a progress
// marker while the assistant is generating.
func (r *REPL) awaitReply(ctx context.Context, sub *events.Subscription) (string, error) {
	timeout := time.NewTimer(replyTimeout)
	defer timeout.Stop()

	started := false
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timeout.C:
			return "", errors.New("timed out waiting for reply")

		case ev, ok := <-sub.C:
			if !ok {
				return "", errors.New("event stream closed")
			}
			switch ev := ev.(type) {
			case events.StreamStart:
				started = true
				fmt.Fprint(r.out, "...")

			case events.StreamDelta:
				if !started {
					started = true
					fmt.Fprint(r.out, "...")
				}

			case events.StreamEnd:
				if started {
					fmt.Fprint(r.out, "\r   \r")
				}
				return ev.Content, nil
			}
		}
	}
}
