// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/model"
)

// State is the serializable form of a Manager.
type State struct {
	LocalSave   bool                    `json:"local_save"`
	Models      []model.Model           `json:"models"`
	CurrentChat uuid.UUID               `json:"current_chat"`
	Chats       map[uuid.UUID]ChatState `json:"chats"`
}

// ChatState is the serializable form of a Chat. History is newest first.
type ChatState struct {
	Title          string             `json:"title,omitempty"`
	Model          model.Model        `json:"model"`
	Params         model.Params       `json:"params"`
	HistoryEnabled bool               `json:"history_enabled"`
	History        []model.Completion `json:"history,omitempty"`
}

// Snapshot captures the registry, every chat and its history.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := State{
		LocalSave:   m.localSave,
		Models:      append([]model.Model(nil), m.models...),
		CurrentChat: m.current,
		Chats:       make(map[uuid.UUID]ChatState, len(m.chats)),
	}
	for id, c := range m.chats {
		state.Chats[id] = c.snapshot()
	}
	return state
}

func (c *Chat) snapshot() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChatState{
		Title:          c.title,
		Model:          c.model,
		Params:         c.params,
		HistoryEnabled: c.historyEnabled,
		History:        c.newestFirstLocked(false),
	}
}

// Restore rebuilds a Manager from a snapshot. A current marker that names
// no stored chat is cleared.
func Restore(state State, client Completer, logger *zap.Logger) (*Manager, error) {
	m := NewManager(client, logger)
	m.localSave = state.LocalSave
	m.models = append([]model.Model(nil), state.Models...)

	for id, cs := range state.Chats {
		if id == uuid.Nil {
			return nil, fmt.Errorf("restore: chat with nil identifier")
		}
		c := newChat(cs.Model, client, m.logger.With(zap.String("chat", id.String())))
		c.title = cs.Title
		c.params = cs.Params
		c.historyEnabled = cs.HistoryEnabled
		if cs.HistoryEnabled {
			c.turns = make([]model.Completion, 0, len(cs.History))
			for i := len(cs.History) - 1; i >= 0; i-- {
				c.turns = append(c.turns, cs.History[i])
			}
		}
		m.chats[id] = c
	}

	if _, ok := m.chats[state.CurrentChat]; ok {
		m.current = state.CurrentChat
	} else if state.CurrentChat != uuid.Nil {
		m.logger.Warn("stored current chat does not exist, clearing", zap.String("chat", state.CurrentChat.String()))
	}

	return m, nil
}
