// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local conversation archive for parley.
//
// The archive is a SQLite database (pure Go driver) holding whole
// conversations with their messages. It supports save, load, recency
// listing, substring search, delete, and pruning to a conversation
// limit.
//
// # Usage
//
// Open the archive and save a conversation:
//
//	archive, err := storage.Open(log)
//	err = archive.Save(ctx, conversation)
//
// List and load conversations:
//
//	metas, err := archive.List(ctx)
//	conv, err := archive.Load(ctx, metas[0].ID)
//
// # Storage Location
//
// The database lives at ~/.parley/archive.db.
package storage
