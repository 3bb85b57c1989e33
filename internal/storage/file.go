// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jeranaias/aimlchat/internal/util"
)

// DefaultFileName is the save file name used when no path is configured.
const DefaultFileName = "save.json"

// FileStore keeps the registry in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. An empty path means
// DefaultFileName in the working directory.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Location implements Store.
func (s *FileStore) Location() string { return s.path }

// Load implements Store.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save implements Store. The file is replaced atomically.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	if err := util.WritePrivateFile(s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
