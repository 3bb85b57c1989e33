// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/chat"
)

// DefaultAutoSaveInterval is used when a non-positive interval is given.
const DefaultAutoSaveInterval = 30 * time.Second

// =============================================================================
// AUTO SAVER
// =============================================================================

// AutoSaver tracks whether the registry has unsaved changes and writes it
// through the gateway once the interval has passed.
type AutoSaver struct {
	mu sync.Mutex

	gateway  *Gateway
	registry *chat.Manager
	logger   *zap.Logger

	interval time.Duration
	lastSave time.Time
	dirty    bool
	gen      uint64 // bumped by MarkDirty
	lastErr  error

	now func() time.Time
}

// NewAutoSaver creates a saver for registry. It starts clean.
func NewAutoSaver(gw *Gateway, registry *chat.Manager, interval time.Duration) *AutoSaver {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	return &AutoSaver{
		gateway:  gw,
		registry: registry,
		logger:   gw.logger.Named("autosave"),
		interval: interval,
		lastSave: time.Now(),
		now:      time.Now,
	}
}

// =============================================================================
// DIRTY TRACKING
// =============================================================================

// MarkDirty records an unsaved change.
func (a *AutoSaver) MarkDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = true
	a.gen++
}

// IsDirty reports whether there are unsaved changes.
func (a *AutoSaver) IsDirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// LastError returns the error from the most recent failed save, if any.
func (a *AutoSaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Due reports whether a dirty registry has waited at least one interval.
func (a *AutoSaver) Due() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty && a.now().Sub(a.lastSave) >= a.interval
}

// =============================================================================
// SAVING
// =============================================================================

// Check saves if Due. It returns the save error, if any.
func (a *AutoSaver) Check(ctx context.Context) error {
	if !a.Due() {
		return nil
	}
	return a.Flush(ctx)
}

// Flush saves now if there are unsaved changes. A failed save leaves the
// registry dirty so the next check retries.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	gen := a.gen
	a.mu.Unlock()

	err := a.gateway.Save(ctx, a.registry)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
	if err != nil {
		a.logger.Warn("auto-save failed", zap.Error(err))
		return err
	}
	// Changes made during the save stay pending.
	a.dirty = a.gen != gen
	a.lastSave = a.now()
	return nil
}

// Run checks every interval until ctx is done, then flushes once more.
func (a *AutoSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled; the final flush gets its own.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = a.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			_ = a.Check(ctx)
		}
	}
}
