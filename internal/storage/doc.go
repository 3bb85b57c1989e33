// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the chat registry.
//
// A Store holds one opaque blob: the indented JSON snapshot of a
// chat.Manager. Three backends are provided:
//
//   - FileStore: a single file written atomically (default, save.json)
//   - SQLiteStore: one row in a local SQLite database
//   - RedisStore: one key in a Redis server
//
// Gateway sits on top of a Store. Load restores the registry (or starts a
// fresh one on first run) and always refreshes the model catalog from the
// remote API. Save writes the whole registry unless local saving is off.
//
// AutoSaver tracks unsaved changes and flushes them on an interval.
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: "file", Path: path})
//	gw := storage.NewGateway(store, client, client, logger)
//	mgr, err := gw.Load(ctx)
//	...
//	err = gw.Save(ctx, mgr)
package storage
