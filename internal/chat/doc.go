// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements chat sessions and the registry that owns them.
//
// A Chat is one conversation bound to a model and a parameter bundle. It
// records an optional newest-first history and performs the request/response
// exchange with the completion API. A Manager is the keyed collection of
// chats plus a "current chat" marker.
//
// # Key Types
//
//   - Chat: One conversation and its exchange logic
//   - Manager: Registry of chats with a current-chat marker
//   - State: Serializable snapshot of a Manager
//
// # Usage
//
//	mgr := chat.NewManager(client, logger)
//	id := mgr.Create(model.New("gpt-4o"))
//	c, _ := mgr.Get(id)
//	c.WithHistory().WithTitle("Go questions")
//	err := mgr.SendCurrentCompletion(ctx, apiKey, model.NewUserCompletion("hi"))
//
// # Outbound history
//
// When history is enabled, every request carries the recorded user and
// system turns newest-first. AI turns stay in the history but are never
// sent back, so the remote model does not see its own earlier replies.
// This matches the behavior of the original client and is kept on purpose
// until it is confirmed as a product decision.
//
// # Concurrency
//
// A Chat runs at most one exchange at a time; concurrent SendCompletion
// calls on the same chat are serialized. The Manager is safe for concurrent
// use.
package chat
