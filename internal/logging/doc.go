// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application's zap logger: JSON lines to a
// rotating file, optionally mirrored to stderr.
package logging
