// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// Set by the shell to supply dynamic values.
	ModelsFn func() []string // catalog model names
	ChatsFn  func() []string // short chat ids
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns whole-line candidates for line, the shape line editors
// expect.
func (c *Completer) Complete(line string) []string {
	if !IsCommand(line) {
		return nil
	}
	line = strings.TrimLeft(line, " \t")

	tokens := splitCommandLine(line)
	trailingSpace := strings.HasSuffix(line, " ")

	// Still typing the command name.
	if len(tokens) <= 1 && !trailingSpace {
		partial := ""
		if len(tokens) == 1 {
			partial = strings.ToLower(tokens[0])
		}
		var out []string
		for _, name := range c.registry.Names() {
			if strings.HasPrefix(name, partial) {
				out = append(out, name+" ")
			}
		}
		return out
	}

	cmd := c.registry.Get(strings.ToLower(tokens[0]))
	if cmd == nil {
		return nil
	}

	argIndex := len(tokens) - 2
	partial := ""
	if trailingSpace {
		argIndex++
	} else {
		partial = tokens[len(tokens)-1]
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	prefix := line[:len(line)-len(partial)]
	var out []string
	for _, value := range c.argValues(cmd.Args[argIndex]) {
		if strings.HasPrefix(strings.ToLower(value), strings.ToLower(partial)) {
			out = append(out, prefix+value)
		}
	}
	return out
}

func (c *Completer) argValues(def ArgDef) []string {
	var values []string
	switch def.Type {
	case ArgTypeEnum:
		values = append(values, def.Values...)
	case ArgTypeModel:
		if c.ModelsFn != nil {
			values = c.ModelsFn()
		}
	case ArgTypeChat:
		if c.ChatsFn != nil {
			values = c.ChatsFn()
		}
	}
	sort.Strings(values)
	return values
}
