// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/jeranaias/aimlchat/internal/app"
	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/model"
)

// Output is where handlers write. The shell implements it with colors and
// Markdown rendering; tests record calls.
type Output interface {
	Printf(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	// Turn prints one conversation turn.
	Turn(msg model.Completion)
}

// Context is passed to every handler.
type Context struct {
	Ctx context.Context
	App *app.App
	Out Output

	// Set by Registry.Execute.
	Registry *Registry
	RawArgs  string
}

// NewContext creates a handler context.
func NewContext(ctx context.Context, a *app.App, out Output) *Context {
	return &Context{Ctx: ctx, App: a, Out: out}
}

// current returns the current chat or chat.ErrNoCurrentChat.
func (c *Context) current() (uuid.UUID, *chat.Chat, error) {
	id, ch, ok := c.App.Current()
	if !ok {
		return uuid.Nil, nil, chat.ErrNoCurrentChat
	}
	return id, ch, nil
}
