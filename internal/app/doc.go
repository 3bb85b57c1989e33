// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the caller-facing surface of aimlchat: start, set the API
// key, list models, create/select/remove chats, send in the current chat
// and persist. The REPL in internal/cli is one caller; tests are another.
package app
