// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/model"
)

// Catalog lists the models the remote API offers.
type Catalog interface {
	ListModels(ctx context.Context) ([]model.Model, error)
}

// Gateway loads and saves a chat.Manager through a Store.
type Gateway struct {
	mu      sync.Mutex // serializes Save
	store   Store
	catalog Catalog
	client  chat.Completer
	logger  *zap.Logger
}

// NewGateway creates a gateway. client is handed to every restored chat.
func NewGateway(store Store, catalog Catalog, client chat.Completer, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:   store,
		catalog: catalog,
		client:  client,
		logger:  logger.Named("storage"),
	}
}

// Store returns the underlying store.
func (g *Gateway) Store() Store { return g.store }

// Load restores the registry from the store, or creates an empty one with
// local saving enabled when nothing was saved yet. The model catalog is
// always refetched; the saved list is discarded.
//
// A corrupt store (ErrCorrupt) and a failed catalog fetch are both returned
// as errors and are meant to stop startup.
func (g *Gateway) Load(ctx context.Context) (*chat.Manager, error) {
	m, err := g.restore(ctx)
	if err != nil {
		return nil, err
	}

	models, err := g.catalog.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh model catalog: %w", err)
	}
	m.SetModels(models)

	g.logger.Info("registry loaded",
		zap.String("store", g.store.Location()),
		zap.Int("chats", m.Len()),
		zap.Int("models", len(models)),
	)
	return m, nil
}

func (g *Gateway) restore(ctx context.Context) (*chat.Manager, error) {
	data, err := g.store.Load(ctx)
	if errors.Is(err, ErrNotExist) {
		g.logger.Info("no saved state, starting fresh", zap.String("store", g.store.Location()))
		return chat.NewManager(g.client, g.logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		return nil, err
	}

	m, err := chat.Restore(state, g.client, g.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return m, nil
}

// Save writes the whole registry. It does nothing when the registry has
// local saving turned off.
func (g *Gateway) Save(ctx context.Context, m *chat.Manager) error {
	if !m.LocalSave() {
		g.logger.Debug("local save disabled, skipping")
		return nil
	}

	data, err := Encode(m.Snapshot())
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	g.logger.Debug("registry saved", zap.String("store", g.store.Location()), zap.Int("bytes", len(data)))
	return nil
}

// Encode serializes a registry snapshot as indented JSON.
func Encode(state chat.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses saved bytes. Any failure wraps ErrCorrupt.
func Decode(data []byte) (chat.State, error) {
	var state chat.State
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return state, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	if err := json.Unmarshal(trimmed, &state); err != nil {
		return state, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return state, nil
}
