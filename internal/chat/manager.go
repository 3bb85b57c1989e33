// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/model"
)

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the registry of chats. The current marker is uuid.Nil when
// unset and otherwise always names a registered chat.
type Manager struct {
	mu      sync.RWMutex
	current uuid.UUID
	chats   map[uuid.UUID]*Chat

	localSave bool
	models    []model.Model

	client Completer
	logger *zap.Logger
}

// NewManager creates an empty registry with local saving enabled. Chats it
// creates send completions through client.
func NewManager(client Completer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		current:   uuid.Nil,
		chats:     make(map[uuid.UUID]*Chat),
		localSave: true,
		client:    client,
		logger:    logger.Named("chat"),
	}
}

// Exists reports whether a chat with id is registered.
func (m *Manager) Exists(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chats[id]
	return ok
}

// Create registers a new chat bound to mdl with default parameters and no
// history. The new chat becomes current only if no chat is current.
func (m *Manager) Create(mdl model.Model) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	for {
		if _, taken := m.chats[id]; !taken {
			break
		}
		id = uuid.New()
	}

	m.chats[id] = newChat(mdl, m.client, m.logger.With(zap.String("chat", id.String())))
	if m.current == uuid.Nil {
		m.current = id
	}

	m.logger.Info("chat created", zap.String("chat", id.String()), zap.String("model", mdl.Name))
	return id
}

// Remove deletes the chat with id and clears the current marker if it
// pointed at it.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[id]; !ok {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	delete(m.chats, id)
	if m.current == id {
		m.current = uuid.Nil
	}

	m.logger.Info("chat removed", zap.String("chat", id.String()))
	return nil
}

// Get returns the chat with id.
func (m *Manager) Get(id uuid.UUID) (*Chat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chats[id]
	return c, ok
}

// SetCurrent selects the current chat. Callers are expected to check
// Exists first, so a failure here signals an inconsistency and is logged.
func (m *Manager) SetCurrent(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[id]; !ok {
		m.logger.Error("set current chat: chat does not exist", zap.String("chat", id.String()))
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	m.current = id
	return nil
}

// Current returns the current chat and its identifier. ok is false when no
// chat is current or the marker's target no longer exists.
func (m *Manager) Current() (id uuid.UUID, c *Chat, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == uuid.Nil {
		return uuid.Nil, nil, false
	}
	c, ok = m.chats[m.current]
	if !ok {
		return uuid.Nil, nil, false
	}
	return m.current, c, true
}

// SendCurrentCompletion sends msg in the current chat.
func (m *Manager) SendCurrentCompletion(ctx context.Context, apiKey string, msg model.Completion) error {
	_, c, ok := m.Current()
	if !ok {
		return ErrNoCurrentChat
	}
	return c.SendCompletion(ctx, apiKey, msg)
}

// IDs returns the registered identifiers in a stable order.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(m.chats))
	for id := range m.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Len returns the number of registered chats.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chats)
}

// =============================================================================
// PERSISTENCE SETTINGS AND CATALOG
// =============================================================================

// LocalSave reports whether the registry should be written to local storage.
func (m *Manager) LocalSave() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.localSave
}

// SetLocalSave enables or disables local saving.
func (m *Manager) SetLocalSave(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localSave = enabled
}

// Models returns a copy of the model catalog.
func (m *Manager) Models() []model.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Model, len(m.models))
	copy(out, m.models)
	return out
}

// SetModels replaces the model catalog.
func (m *Manager) SetModels(models []model.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = append([]model.Model(nil), models...)
}
