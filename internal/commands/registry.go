// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrQuit is returned by the /quit handler.
	ErrQuit = errors.New("quit requested")

	// ErrUnknownCommand is returned for an unregistered command name.
	ErrUnknownCommand = errors.New("unknown command")
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// HandlerFunc runs a command.
type HandlerFunc func(c *Context, args []string) error

// Command is a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	Description string

	// Usage shows argument syntax (e.g., "/use <chat>")
	Usage string

	Args    []ArgDef
	Handler HandlerFunc

	// Category groups commands in /help.
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType selects how an argument is completed.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeModel                 // Model name from the catalog
	ArgTypeChat                  // Chat id or id prefix
	ArgTypeEnum                  // One of Values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with every built-in command.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command. A later registration under the same name wins.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Names returns every command name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute parses input and runs the matching command.
func (r *Registry) Execute(c *Context, input string) error {
	res := NewParser(r).Parse(input)
	if !res.IsCommand {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, input)
	}
	if res.Command == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, res.CommandName)
	}
	if err := ValidateArgs(res.Command, res.Args); err != nil {
		return err
	}

	c.Registry = r
	c.RawArgs = res.RawArgs
	return res.Command.Handler(c, res.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Category:    "General",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Save and exit",
		Category:    "General",
		Handler:     handleQuit,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List models, or refetch the catalog",
		Usage:       "/models [refresh]",
		Args: []ArgDef{
			{Name: "action", Type: ArgTypeEnum, Values: []string{"refresh"}},
		},
		Category: "Models",
		Handler:  handleModels,
	})

	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Create a chat",
		Usage:       "/new [model] [title...]",
		Args: []ArgDef{
			{Name: "model", Type: ArgTypeModel, Description: "Model name; default from config"},
			{Name: "title", Type: ArgTypeString},
		},
		Category: "Chats",
		Handler:  handleNew,
	})
	r.Register(&Command{
		Name:        "/list",
		Aliases:     []string{"/ls", "/chats"},
		Description: "List chats",
		Category:    "Chats",
		Handler:     handleList,
	})
	r.Register(&Command{
		Name:        "/use",
		Aliases:     []string{"/switch"},
		Description: "Make a chat current",
		Usage:       "/use <chat>",
		Args: []ArgDef{
			{Name: "chat", Required: true, Type: ArgTypeChat, Description: "chat id or prefix"},
		},
		Category: "Chats",
		Handler:  handleUse,
	})
	r.Register(&Command{
		Name:        "/rm",
		Aliases:     []string{"/delete"},
		Description: "Remove a chat",
		Usage:       "/rm <chat>",
		Args: []ArgDef{
			{Name: "chat", Required: true, Type: ArgTypeChat, Description: "chat id or prefix"},
		},
		Category: "Chats",
		Handler:  handleRemove,
	})
	r.Register(&Command{
		Name:        "/title",
		Description: "Set the current chat's title",
		Usage:       "/title <text...>",
		Args: []ArgDef{
			{Name: "text", Required: true, Type: ArgTypeString, Description: "new title"},
		},
		Category: "Chats",
		Handler:  handleTitle,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "Turn history on or off, or clear it",
		Usage:       "/history <on|off|clear>",
		Args: []ArgDef{
			{Name: "action", Required: true, Type: ArgTypeEnum, Values: []string{"on", "off", "clear"}},
		},
		Category: "Conversation",
		Handler:  handleHistory,
	})
	r.Register(&Command{
		Name:        "/show",
		Description: "Print the current chat's transcript",
		Usage:       "/show [last-n]",
		Args: []ArgDef{
			{Name: "last-n", Type: ArgTypeString, Description: "only the newest n turns"},
		},
		Category: "Conversation",
		Handler:  handleShow,
	})
	r.Register(&Command{
		Name:        "/system",
		Description: "Send a system message in the current chat",
		Usage:       "/system <text...>",
		Args: []ArgDef{
			{Name: "text", Required: true, Type: ArgTypeString},
		},
		Category: "Conversation",
		Handler:  handleSystem,
	})
	r.Register(&Command{
		Name:        "/export",
		Description: "Export the current chat",
		Usage:       "/export [md|json] [dir]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"md", "markdown", "json"}},
			{Name: "dir", Type: ArgTypeString},
		},
		Category: "Conversation",
		Handler:  handleExport,
	})

	r.Register(&Command{
		Name:        "/params",
		Description: "Show the current chat's generation parameters",
		Category:    "Settings",
		Handler:     handleParams,
	})
	r.Register(&Command{
		Name:        "/set",
		Description: "Change a generation parameter",
		Usage:       "/set <param> <value>",
		Args: []ArgDef{
			{Name: "param", Required: true, Type: ArgTypeEnum, Values: paramNames},
			{Name: "value", Required: true, Type: ArgTypeString},
		},
		Category: "Settings",
		Handler:  handleSet,
	})
	r.Register(&Command{
		Name:        "/save",
		Description: "Save now, or turn saving on or off",
		Usage:       "/save [on|off]",
		Args: []ArgDef{
			{Name: "mode", Type: ArgTypeEnum, Values: []string{"on", "off"}},
		},
		Category: "Settings",
		Handler:  handleSave,
	})
	r.Register(&Command{
		Name:        "/key",
		Description: "Set the API key for this run",
		Usage:       "/key <api-key>",
		Args: []ArgDef{
			{Name: "api-key", Required: true, Type: ArgTypeString},
		},
		Category: "Settings",
		Handler:  handleKey,
	})
}
