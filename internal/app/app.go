// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/cloud"
	"github.com/jeranaias/aimlchat/internal/config"
	"github.com/jeranaias/aimlchat/internal/export"
	"github.com/jeranaias/aimlchat/internal/model"
	"github.com/jeranaias/aimlchat/internal/storage"
)

// =============================================================================
// APP
// =============================================================================

// App ties the registry to its client, store and settings.
type App struct {
	mu     sync.RWMutex
	apiKey string

	cfg      *config.Config
	client   *cloud.Client
	store    storage.Store
	gateway  *storage.Gateway
	registry *chat.Manager
	saver    *storage.AutoSaver
	logger   *zap.Logger
}

// ChatInfo summarizes one chat for listings.
type ChatInfo struct {
	ID             uuid.UUID
	Title          string
	Model          model.Model
	Turns          int
	HistoryEnabled bool
	Current        bool
}

// Start opens the configured store, restores the registry and fetches the
// model catalog. Errors from Start are fatal to the program: a corrupt
// store (storage.ErrCorrupt) or an unreachable catalog.
func Start(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.Open(ctx, cfg.Store.Options())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := cloud.NewClient(cfg.API.BaseURL).
		WithTimeout(cfg.API.Timeout()).
		WithLogger(logger)

	return start(ctx, cfg, client, store, logger)
}

func start(ctx context.Context, cfg *config.Config, client *cloud.Client, store storage.Store, logger *zap.Logger) (*App, error) {
	gw := storage.NewGateway(store, client, client, logger)
	registry, err := gw.Load(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if !cfg.Store.LocalSave {
		registry.SetLocalSave(false)
	}

	interval := time.Duration(cfg.Chat.AutosaveSecs) * time.Second
	a := &App{
		apiKey:   cfg.API.APIKey,
		cfg:      cfg,
		client:   client,
		store:    store,
		gateway:  gw,
		registry: registry,
		saver:    storage.NewAutoSaver(gw, registry, interval),
		logger:   logger.Named("app"),
	}

	a.logger.Info("started",
		zap.String("base_url", client.BaseURL()),
		zap.String("store", store.Location()),
		zap.String("key", cloud.KeyFingerprint(a.apiKey)),
	)
	return a, nil
}

// RunAutoSave saves dirty state on the configured interval until ctx ends.
// It returns at once when auto-save is disabled.
func (a *App) RunAutoSave(ctx context.Context) {
	if a.cfg.Chat.AutosaveSecs <= 0 {
		return
	}
	a.saver.Run(ctx)
}

// Close saves pending changes and releases the store.
func (a *App) Close(ctx context.Context) error {
	a.saver.MarkDirty()
	saveErr := a.saver.Flush(ctx)
	closeErr := a.store.Close()
	return errors.Join(saveErr, closeErr)
}

// Registry exposes the underlying chat registry.
func (a *App) Registry() *chat.Manager { return a.registry }

// StoreLocation describes where state is saved.
func (a *App) StoreLocation() string { return a.store.Location() }

// BaseURL returns the remote API origin.
func (a *App) BaseURL() string { return a.client.BaseURL() }

// =============================================================================
// CREDENTIALS
// =============================================================================

// SetAPIKey replaces the key used for completions.
func (a *App) SetAPIKey(key string) {
	key = strings.TrimSpace(key)
	a.mu.Lock()
	a.apiKey = key
	a.mu.Unlock()
	a.logger.Info("api key updated", zap.String("key", cloud.KeyFingerprint(key)))
}

// HasAPIKey reports whether a key is set.
func (a *App) HasAPIKey() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiKey != ""
}

// KeyFingerprint identifies the current key without revealing it.
func (a *App) KeyFingerprint() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloud.KeyFingerprint(a.apiKey)
}

func (a *App) key() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiKey
}

// =============================================================================
// MODELS
// =============================================================================

// Models returns the model catalog fetched at startup.
func (a *App) Models() []model.Model {
	return a.registry.Models()
}

// RefreshModels refetches the catalog.
func (a *App) RefreshModels(ctx context.Context) ([]model.Model, error) {
	models, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	a.registry.SetModels(models)
	return models, nil
}

// resolveModel picks the model for a new chat: the given name, else the
// configured default, else the first catalog entry.
func (a *App) resolveModel(name string) (model.Model, error) {
	catalog := a.registry.Models()

	m := model.New(name)
	if m.IsZero() {
		m = model.New(a.cfg.Chat.DefaultModel)
	}
	if m.IsZero() {
		if len(catalog) == 0 {
			return model.Model{}, ErrNoModels
		}
		return catalog[0], nil
	}

	if len(catalog) > 0 && !model.Contains(catalog, m.Name) {
		return model.Model{}, fmt.Errorf("%w: %s", ErrUnknownModel, m.Name)
	}
	return m, nil
}

// =============================================================================
// CHATS
// =============================================================================

// CreateChat adds a chat for modelName (see resolveModel). New chats get
// history when the config asks for it. The first chat becomes current.
func (a *App) CreateChat(modelName, title string) (uuid.UUID, error) {
	m, err := a.resolveModel(modelName)
	if err != nil {
		return uuid.Nil, err
	}

	id := a.registry.Create(m)
	c, _ := a.registry.Get(id)
	if title != "" {
		c.WithTitle(title)
	}
	if a.cfg.Chat.History {
		c.WithHistory()
	}
	a.saver.MarkDirty()
	return id, nil
}

// SelectChat makes id the current chat.
func (a *App) SelectChat(id uuid.UUID) error {
	if err := a.registry.SetCurrent(id); err != nil {
		return err
	}
	a.saver.MarkDirty()
	return nil
}

// RemoveChat deletes a chat.
func (a *App) RemoveChat(id uuid.UUID) error {
	if err := a.registry.Remove(id); err != nil {
		return err
	}
	a.saver.MarkDirty()
	return nil
}

// Current returns the current chat.
func (a *App) Current() (uuid.UUID, *chat.Chat, bool) {
	return a.registry.Current()
}

// Chat returns a chat by id.
func (a *App) Chat(id uuid.UUID) (*chat.Chat, bool) {
	return a.registry.Get(id)
}

// Chats lists every chat ordered by id.
func (a *App) Chats() []ChatInfo {
	currentID, _, _ := a.registry.Current()

	var infos []ChatInfo
	for _, id := range a.registry.IDs() {
		c, ok := a.registry.Get(id)
		if !ok {
			continue
		}
		infos = append(infos, ChatInfo{
			ID:             id,
			Title:          c.Title(),
			Model:          c.Model(),
			Turns:          c.Len(),
			HistoryEnabled: c.HistoryEnabled(),
			Current:        id == currentID,
		})
	}
	return infos
}

// ResolveChat finds a chat by full id or unique id prefix.
func (a *App) ResolveChat(ref string) (uuid.UUID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return uuid.Nil, chat.ErrChatNotFound
	}
	if id, err := uuid.Parse(ref); err == nil {
		if !a.registry.Exists(id) {
			return uuid.Nil, fmt.Errorf("%w: %s", chat.ErrChatNotFound, id)
		}
		return id, nil
	}

	var matches []uuid.UUID
	for _, id := range a.registry.IDs() {
		if strings.HasPrefix(id.String(), ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", chat.ErrChatNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %s matches %d chats", ErrAmbiguousChat, ref, len(matches))
	}
}

// Touch records a change made directly on a chat so auto-save picks it up.
func (a *App) Touch() {
	a.saver.MarkDirty()
}

// =============================================================================
// SENDING
// =============================================================================

// Send sends content as a user turn in the current chat and returns the
// reply.
func (a *App) Send(ctx context.Context, content string) (string, error) {
	return a.SendAs(ctx, model.RoleUser, content)
}

// SendAs sends content with the given role in the current chat.
func (a *App) SendAs(ctx context.Context, role model.Role, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}
	_, c, ok := a.registry.Current()
	if !ok {
		return "", chat.ErrNoCurrentChat
	}

	start := time.Now()
	reply, err := c.Exchange(ctx, a.key(), model.NewCompletion(role, content))
	a.saver.MarkDirty()

	a.logger.Debug("exchange finished",
		zap.String("model", c.Model().Name),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return reply, err
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save writes the registry now, regardless of the auto-save interval.
func (a *App) Save(ctx context.Context) error {
	a.saver.MarkDirty()
	return a.saver.Flush(ctx)
}

// LocalSave reports whether saving is enabled.
func (a *App) LocalSave() bool { return a.registry.LocalSave() }

// SetLocalSave turns saving on or off for this run. Turning it on saves at
// once. To keep it off across runs use [store] local_save = false.
func (a *App) SetLocalSave(ctx context.Context, enabled bool) error {
	a.registry.SetLocalSave(enabled)
	if !enabled {
		return nil
	}
	return a.Save(ctx)
}

// Export writes chat id as format ("md" or "json") into dir.
func (a *App) Export(id uuid.UUID, format, dir string) (string, error) {
	c, ok := a.registry.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", chat.ErrChatNotFound, id)
	}
	opts := export.DefaultOptions()
	if dir != "" {
		opts.OutputDir = dir
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return export.ToFile(export.FromChat(id, c), exp, opts)
}

// ModelNames returns catalog names, sorted.
func (a *App) ModelNames() []string {
	models := a.Models()
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}
