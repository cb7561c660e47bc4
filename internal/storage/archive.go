// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/parley-tui/internal/model"
)

// ErrNotFound is returned when a conversation does not exist in the archive.
var ErrNotFound = errors.New("conversation not found")

// schema creates the archive tables.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	assistant   TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, seq);
CREATE INDEX IF NOT EXISTS idx_conversations_updated
	ON conversations(updated_at DESC);
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive is the local conversation archive. Conversations are written
// whole on save and read back whole on load; listing and search work on
// metadata only.
type Archive struct {
	db  *sql.DB
	log zerolog.Logger

	// MaxConversations limits stored conversations (0 = unlimited).
	// Oldest conversations are pruned past the limit.
	MaxConversations int
}

// Open opens the archive at the default location (~/.parley/archive.db).
func Open(log zerolog.Logger) (*Archive, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(homeDir, ".parley", "archive.db"), log)
}

// OpenPath opens the archive at an explicit path, creating the parent
// directory and the schema as needed.
func OpenPath(path string, log zerolog.Logger) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{
		db:               db,
		log:              log.With().Str("component", "archive").Logger(),
		MaxConversations: 100,
	}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save writes a conversation and its messages, replacing any previous
// version, then prunes past MaxConversations.
func (a *Archive) Save(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.ID == "" {
		return errors.New("conversation has no id")
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, assistant, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			assistant = excluded.assistant,
			updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.AssistantID,
		conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	// Replace the message rows wholesale; the list is append-only so a
	// full rewrite keeps seq consistent without diffing.
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		_, err := stmt.ExecContext(ctx, msg.ID, conv.ID, i,
			string(msg.Role), msg.Content, msg.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to save message %s: %w", msg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if err := a.prune(ctx); err != nil {
		a.log.Warn().Err(err).Msg("archive prune failed")
	}
	return nil
}

// Load reads one conversation with its messages in order.
func (a *Archive) Load(ctx context.Context, id string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}
	var created, updated int64

	err := a.db.QueryRowContext(ctx, `
		SELECT title, assistant, created_at, updated_at
		FROM conversations WHERE id = ?`, id).
		Scan(&conv.Title, &conv.AssistantID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.CreatedAt = time.Unix(created, 0)
	conv.UpdatedAt = time.Unix(updated, 0)

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, role, content, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg := &model.Message{}
		var ts int64
		var role string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.CreatedAt = time.Unix(ts, 0)
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

// =============================================================================
// LISTING / SEARCH
// =============================================================================

// List returns conversation metadata, most recently updated first.
func (a *Archive) List(ctx context.Context) ([]model.ConversationMeta, error) {
	return a.query(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`)
}

// Search returns metadata for conversations whose title or message text
// contains the query, most recently updated first.
func (a *Archive) Search(ctx context.Context, query string) ([]model.ConversationMeta, error) {
	pattern := "%" + query + "%"
	return a.query(ctx, `
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.id IN (
			SELECT id FROM conversations WHERE title LIKE ?
			UNION
			SELECT conversation_id FROM messages WHERE content LIKE ?
		)
		GROUP BY c.id
		ORDER BY c.updated_at DESC`, pattern, pattern)
}

// Delete removes one conversation and its messages.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// query runs a metadata query and scans the rows.
func (a *Archive) query(ctx context.Context, q string, args ...any) ([]model.ConversationMeta, error) {
	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationMeta
	for rows.Next() {
		var meta model.ConversationMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.Title, &created, &updated, &meta.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		meta.CreatedAt = time.Unix(created, 0)
		meta.UpdatedAt = time.Unix(updated, 0)
		out = append(out, meta)
	}
	return out, rows.Err()
}

// prune removes the oldest conversations past MaxConversations.
func (a *Archive) prune(ctx context.Context) error {
	if a.MaxConversations <= 0 {
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE id IN (
			SELECT id FROM conversations
			ORDER BY updated_at DESC
			LIMIT -1 OFFSET ?
		)`, a.MaxConversations)
	return err
}
