// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the storage and terminal layers.
//
// # Key Functions
//
//   - WriteFileAtomic: crash-safe replacement of a file's contents
//   - Truncate, Width, PadRight: display-width aware string helpers
//   - ShortID: compact rendering of chat identifiers
package util
