// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the slash commands of the interactive shell.
//
// Input starting with "/" is parsed into a command name and arguments
// (quotes group words), checked against the command's argument
// definitions, and dispatched to a handler that drives an *app.App and
// writes to an Output.
//
// # Key Types
//
//   - Registry: every known command, looked up by name or alias
//   - Parser: turns a line into a ParseResult
//   - Completer: tab completion for command names and arguments
//   - Context: what a handler gets to work with
package commands
