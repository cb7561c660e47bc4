// parley TUI - a terminal client for the parley chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/backend"
	"github.com/jeranaias/parley-tui/internal/cli"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/events"
	"github.com/jeranaias/parley-tui/internal/logging"
	"github.com/jeranaias/parley-tui/internal/state"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/chat"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/view"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		plain       = flag.Bool("plain", false, "run the plain-terminal REPL instead of the TUI")
		configPath  = flag.String("config", "", "path to the config file (default ~/.parley/config.toml)")
		backendURL  = flag.String("backend", "", "backend base URL (overrides config)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("parley %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}

	log, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("version", Version).Bool("plain", *plain).Msg("starting parley")

	if err := run(cfg, *configPath, *plain, log); err != nil {
		log.Error().Err(err).Msg("fatal")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadPath(path)
}

func openLogger(cfg *config.Config) (zerolog.Logger, error) {
	path := cfg.Log.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return logging.Discard(), err
		}
		path = filepath.Join(home, ".parley", "parley.log")
	}
	return logging.Open(path, cfg.Log.Level)
}

// run wires the full stack and enters the selected frontend.
func run(cfg *config.Config, configPath string, plain bool, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend client and event feed.
	clientConfig := &backend.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		RequestsPerSecond: float64(cfg.Backend.RequestsPerSecond),
		Burst:             cfg.Backend.Burst,
	}
	client := backend.NewClientWithConfig(clientConfig, log)

	bus := events.NewBus()
	stream := backend.NewEventStream(clientConfig, bus, log)
	go stream.Run(ctx)

	// Stores.
	store := state.NewStore(client, log)
	topics := state.NewTopicStore(client)

	if plain {
		repl, err := cli.New(client, bus, topics, cfg, log)
		if err != nil {
			return err
		}
		return repl.Run(ctx)
	}

	// Local archive.
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		var err error
		if cfg.Archive.Path != "" {
			archive, err = storage.OpenPath(cfg.Archive.Path, log)
		} else {
			archive, err = storage.Open(log)
		}
		if err != nil {
			// The archive is a convenience; run without it.
			log.Warn().Err(err).Msg("archive unavailable")
			archive = nil
		} else {
			archive.MaxConversations = cfg.Archive.MaxConversations
			defer archive.Close()
		}
	}

	// Live view synchronizer.
	aggregator := view.NewAggregator(store, bus, log)
	resources := view.NewResourceLoader(client, log)
	scroll := view.NewScrollController(log)
	synchronizer := view.NewSynchronizer(aggregator, resources, scroll, log)

	// Reload the log level when the config file changes on disk.
	watchPath := configPath
	if watchPath == "" {
		if p, err := config.Path(); err == nil {
			watchPath = p
		}
	}
	if watchPath != "" {
		watcher, err := config.NewWatcher(watchPath, func(next *config.Config) {
			if lvl, err := zerolog.ParseLevel(next.Log.Level); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("config watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	theme := styles.NewTheme()

	// The config may name an assistant by ID; prefer the display name
	// from the backend when it is reachable.
	assistantName := cfg.Backend.DefaultAssistant
	assistants := state.NewAssistantStore(client)
	if list, err := assistants.List(ctx); err == nil {
		for _, a := range list {
			if a.ID == assistantName || a.Name == assistantName {
				assistantName = a.Name
				break
			}
		}
	}

	m := chat.New(chat.Options{
		Synchronizer: synchronizer,
		Sender:       client,
		Topics:       topics,
		Archive:      archiveOrNil(archive),
		Assistant:    assistantName,
		Timestamps:   cfg.UI.ShowTimestamps,
		Theme:        theme,
		Log:          log,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// archiveOrNil avoids wrapping a nil *storage.Archive in a non-nil
// interface value.
func archiveOrNil(a *storage.Archive) chat.Archiver {
	if a == nil {
		return nil
	}
	return a
}
