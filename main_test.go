// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aimlchat/internal/config"
	"github.com/jeranaias/aimlchat/internal/storage"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--store", "sqlite", "--save", "/tmp/x.db", "-m", "gpt-4o", "--no-save", "--debug"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", opts.Store)
	assert.Equal(t, "/tmp/x.db", opts.Save)
	assert.Equal(t, "gpt-4o", opts.Model)
	assert.True(t, opts.NoSave)
	assert.True(t, opts.Debug)

	_, err = parseOptions([]string{"--store", "postgres"})
	require.Error(t, err)

	_, err = parseOptions([]string{"--help"})
	var flagErr *flags.Error
	require.True(t, errors.As(err, &flagErr))
	assert.Equal(t, flags.ErrHelp, flagErr.Type)
}

func TestApplyOptions(t *testing.T) {
	cfg := config.Default()
	applyOptions(cfg, &Options{
		Store:  storage.BackendSQLite,
		Save:   "/tmp/state.db",
		NoSave: true,
		Key:    "flag-key",
		Model:  "  claude  ",
		Debug:  true,
	})

	assert.Equal(t, storage.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/state.db", cfg.Store.SQLitePath)
	assert.False(t, cfg.Store.LocalSave)
	assert.Equal(t, "flag-key", cfg.API.APIKey)
	assert.Equal(t, "claude", cfg.Chat.DefaultModel)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FlagsOverFile(t *testing.T) {
	for _, env := range []string{"AIMLCHAT_API_KEY", "AIMLCHAT_BASE_URL", "AIMLCHAT_STORE", "AIMLCHAT_SAVE_PATH", "AIMLCHAT_LOG_LEVEL", "AIMLCHAT_MODEL", "AIMLCHAT_LOCAL_SAVE"} {
		t.Setenv(env, "")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\napi_key = \"file-key\"\n"), 0o600))

	cfg, err := loadConfig(&Options{Config: path, Key: "flag-key"})
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.API.APIKey)

	// Redis needs an address.
	_, err = loadConfig(&Options{Config: path, Store: storage.BackendRedis})
	assert.Error(t, err)

	cfg, err = loadConfig(&Options{Config: path, Store: storage.BackendRedis, Save: "localhost:6379"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
}
