// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/model"
	"github.com/jeranaias/aimlchat/internal/util"
)

// Transcript is an exportable copy of one chat.
type Transcript struct {
	ID         uuid.UUID          `json:"id"`
	Title      string             `json:"title,omitempty"`
	Model      string             `json:"model"`
	Params     model.Params       `json:"params"`
	ExportedAt time.Time          `json:"exported_at"`
	Messages   []Message          `json:"messages"`
}

// Export roles. AI turns read as "assistant" rather than their wire value.
const (
	RoleUser      = "user"
	RoleSystem    = "system"
	RoleAssistant = "assistant"
)

// Message is one exported turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage converts a conversation turn.
func NewMessage(c model.Completion) Message {
	role := RoleUser
	switch c.Role {
	case model.RoleSystem:
		role = RoleSystem
	case model.RoleAI:
		role = RoleAssistant
	}
	return Message{Role: role, Content: c.Content}
}

// Speaker is the heading used for the turn in Markdown.
func (m Message) Speaker() string {
	switch m.Role {
	case RoleSystem:
		return model.RoleSystem.DisplayName()
	case RoleAssistant:
		return model.RoleAI.DisplayName()
	default:
		return model.RoleUser.DisplayName()
	}
}

// FromChat copies c into a transcript with messages in reading order.
func FromChat(id uuid.UUID, c *chat.Chat) *Transcript {
	history := c.History()
	messages := make([]Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		messages = append(messages, NewMessage(history[i]))
	}
	return &Transcript{
		ID:         id,
		Title:      c.Title(),
		Model:      c.Model().Name,
		Params:     c.Params(),
		ExportedAt: time.Now(),
		Messages:   messages,
	}
}

// DisplayTitle returns the title, or a fallback built from the id.
func (t *Transcript) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "Chat " + util.ShortID(t.ID)
}
