// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/cloud"
	"github.com/jeranaias/aimlchat/internal/model"
)

// SendErrorMessage is recorded as an AI turn when an exchange fails.
const SendErrorMessage = "An error occurred while sending the message"

// Completer performs one chat-completion round trip.
type Completer interface {
	ChatCompletion(ctx context.Context, apiKey string, req cloud.ChatRequest) (string, error)
}

// =============================================================================
// CHAT
// =============================================================================

// Chat is one conversation. History is kept oldest-first internally and
// exposed newest-first.
type Chat struct {
	// sendMu serializes exchanges; mu guards the fields below and is never
	// held across the network call.
	sendMu sync.Mutex
	mu     sync.Mutex

	title          string
	model          model.Model
	params         model.Params
	historyEnabled bool
	turns          []model.Completion

	client Completer
	logger *zap.Logger
}

func newChat(m model.Model, client Completer, logger *zap.Logger) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{
		model:  m,
		params: model.DefaultParams(),
		client: client,
		logger: logger,
	}
}

// WithTitle sets the chat title.
func (c *Chat) WithTitle(title string) *Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	return c
}

// WithHistory turns on history accumulation. A chat that already records
// history keeps it.
func (c *Chat) WithHistory() *Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.historyEnabled {
		c.historyEnabled = true
		c.turns = nil
	}
	return c
}

// WithoutHistory turns off history accumulation and drops recorded turns.
func (c *Chat) WithoutHistory() *Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historyEnabled = false
	c.turns = nil
	return c
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Title returns the chat title, or "" if none was set.
func (c *Chat) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// Model returns the model the chat is bound to.
func (c *Chat) Model() model.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Params returns the generation parameters.
func (c *Chat) Params() model.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParams replaces the generation parameters.
func (c *Chat) SetParams(p model.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = p
}

// HistoryEnabled reports whether the chat records history.
func (c *Chat) HistoryEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.historyEnabled
}

// History returns a copy of the recorded turns, newest first. It returns
// nil when history is disabled.
func (c *Chat) History() []model.Completion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newestFirstLocked(false)
}

// Len returns the number of recorded turns.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// ClearHistory drops recorded turns but keeps history enabled.
func (c *Chat) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// AddHistory records msg as the newest turn. It does nothing when history
// is disabled.
func (c *Chat) AddHistory(msg model.Completion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushLocked(msg)
}

// =============================================================================
// EXCHANGE
// =============================================================================

// SendCompletion sends msg and records the reply. See Exchange.
func (c *Chat) SendCompletion(ctx context.Context, apiKey string, msg model.Completion) error {
	_, err := c.Exchange(ctx, apiKey, msg)
	return err
}

// Exchange sends msg, records the reply and returns its content.
//
// With history enabled, msg is recorded before any network activity and the
// request carries every recorded non-AI turn, newest first. Without history,
// the request carries msg alone. On success the reply is recorded as an AI
// turn; on failure SendErrorMessage is recorded in its place and the error
// is returned.
func (c *Chat) Exchange(ctx context.Context, apiKey string, msg model.Completion) (string, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	c.pushLocked(msg)
	var messages []model.Completion
	if c.historyEnabled {
		messages = c.newestFirstLocked(true)
	} else {
		messages = []model.Completion{msg}
	}
	req := cloud.NewChatRequest(c.model, c.params, messages)
	client := c.client
	c.mu.Unlock()

	var content string
	err := ErrNoCompleter
	if client != nil {
		content, err = client.ChatCompletion(ctx, apiKey, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Warn("completion failed", zap.String("model", req.Model), zap.Error(err))
		c.pushLocked(model.NewAICompletion(SendErrorMessage))
		return "", fmt.Errorf("send completion: %w", err)
	}

	c.logger.Debug("completion received", zap.String("model", req.Model), zap.Int("chars", len(content)))
	c.pushLocked(model.NewAICompletion(content))
	return content, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Chat) pushLocked(msg model.Completion) {
	if !c.historyEnabled {
		return
	}
	c.turns = append(c.turns, msg)
}

// newestFirstLocked returns recorded turns newest first, optionally without
// AI turns.
func (c *Chat) newestFirstLocked(skipAI bool) []model.Completion {
	if !c.historyEnabled {
		return nil
	}
	out := make([]model.Completion, 0, len(c.turns))
	for i := len(c.turns) - 1; i >= 0; i-- {
		if skipAI && c.turns[i].IsAI() {
			continue
		}
		out = append(out, c.turns[i])
	}
	return out
}
