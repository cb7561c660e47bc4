// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the parley backend service.
//
// The backend owns message persistence, model invocation, and attachment
// processing. This client is the narrow RPC boundary the rest of the
// application talks through: loading messages, resolving per-message
// resource bundles, and the flat CRUD calls (topics, assistants).
//
// # Error Handling
//
// All failures are returned as *ClientError with a Type for categorization
// and sentinel values (ErrNotRunning, ErrTimeout, ErrNotFound) for easy
// errors.Is checks.
package backend
