// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events provides the in-process event channel that delivers
// streaming updates for conversations.
//
// # Key Types
//
//   - Bus: fans events out to per-conversation subscriptions
//   - Subscription: a scoped, buffered stream with explicit Close
//   - StreamStart / StreamDelta / StreamEnd: streaming lifecycle events
//   - WaitingChanged / AttachmentStatusChanged: conversation state events
//
// Delivery is best-effort for slow consumers: the publisher never blocks,
// and a subscriber that falls behind loses its oldest buffered events.
package events
