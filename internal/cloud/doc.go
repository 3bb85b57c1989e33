// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the client for the hosted chat-completion API.
//
// The client performs exactly two calls: a bearer-authenticated POST to
// /chat/completions and an unauthenticated GET of /models. Each call is a
// single request/response round trip; there is no streaming, no retry and
// no backoff.
//
// # Key Types
//
//   - Client: HTTP client bound to a base origin
//   - ChatRequest: Request body for chat completions
//   - StatusError: Non-success HTTP status from the API
//
// # Usage
//
// Create a client and request a completion:
//
//	client := cloud.NewClient(cloud.DefaultBaseURL)
//	req := cloud.NewChatRequest(m, model.DefaultParams(), messages)
//	content, err := client.ChatCompletion(ctx, apiKey, req)
//
// # Security
//
// API keys are never logged. Requests are logged by method, path, status
// and duration only; the key is identified by a short SHA-256 fingerprint.
package cloud
