// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to disk.
//
// Transcripts are read oldest-first, the order a person reads a
// conversation, even though chat history is kept newest-first.
//
// # Supported Formats
//
//   - Markdown: human-readable, with an optional YAML front matter block
//   - JSON: the full transcript including generation parameters
//
// # Usage
//
//	t := export.FromChat(id, c)
//	exp, err := export.ForFormat("md", nil)
//	path, err := export.ToFile(t, exp, nil)
package export
