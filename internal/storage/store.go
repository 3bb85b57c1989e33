// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotExist is returned by Store.Load when nothing has been saved yet.
	ErrNotExist = errors.New("no saved state")

	// ErrCorrupt marks saved state that exists but cannot be decoded.
	ErrCorrupt = errors.New("saved state is corrupt")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// DefaultRedisKey is the key RedisStore uses when none is configured.
const DefaultRedisKey = "aimlchat:save"

// Store is a durable holder for a single serialized registry.
type Store interface {
	// Load returns the last saved bytes, or ErrNotExist.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored bytes.
	Save(ctx context.Context, data []byte) error
	// Close releases any connection held by the store.
	Close() error
	// Location describes where the data lives, for logs and the UI.
	Location() string
}

// Options selects and configures a Store.
type Options struct {
	Backend    string
	Path       string
	SQLitePath string
	RedisAddr  string
	RedisKey   string
}

// Open constructs the Store named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		s, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := DialRedis(ctx, opts.RedisAddr, opts.RedisKey)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
