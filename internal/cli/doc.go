// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the interactive shell for aimlchat.
//
// The shell reads lines with liner (history, tab completion). Lines starting
// with "/" run slash commands from package commands; anything else is sent
// to the current chat. Replies are rendered as Markdown with glamour when
// stdout is a terminal and printed verbatim otherwise.
//
// # Usage
//
//	out := cli.NewPrinter(os.Stdout, os.Stderr, cli.DetectPrinterOptions())
//	shell := cli.NewShell(a, out, logger).WithHistoryFile(path)
//	if err := shell.Run(ctx); err != nil {
//	    // ...
//	}
package cli
