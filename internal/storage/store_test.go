// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, s.Save(ctx, []byte(`{"v":1}`)))
	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	require.NoError(t, s.Save(ctx, []byte(`{"v":2}`)))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	assert.NotEmpty(t, s.Location())
}

// =============================================================================
// BACKEND TESTS
// =============================================================================

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	s := NewFileStore(path)
	defer s.Close()

	exerciseStore(t, s)
	assert.Equal(t, path, s.Path())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFileName, NewFileStore("").Path())
}

func TestFileStore_ReadError(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir) // a directory cannot be read as a file

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(data))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "test:save")
	exerciseStore(t, s)

	raw, err := mr.Get("test:save")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, raw)
	assert.Zero(t, mr.TTL("test:save"))

	require.NoError(t, s.Close())
	assert.NoError(t, client.Ping(context.Background()).Err(), "borrowed client stays open")
}

func TestRedisStore_DefaultKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	assert.Equal(t, DefaultRedisKey, NewRedisStore(client, "").Key())
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := DialRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	dead := miniredis.NewMiniRedis()
	require.NoError(t, dead.Start())
	addr := dead.Addr()
	dead.Close()
	_, err = DialRedis(context.Background(), addr, "")
	assert.Error(t, err)

	_, err = DialRedis(context.Background(), "", "")
	assert.Error(t, err)
}

// =============================================================================
// OPEN TESTS
// =============================================================================

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr error
	}{
		{"default is file", Options{Path: filepath.Join(dir, "a.json")}, &FileStore{}, nil},
		{"file", Options{Backend: BackendFile, Path: filepath.Join(dir, "b.json")}, &FileStore{}, nil},
		{"sqlite", Options{Backend: BackendSQLite, SQLitePath: filepath.Join(dir, "c.db")}, &SQLiteStore{}, nil},
		{"redis", Options{Backend: BackendRedis, RedisAddr: mr.Addr()}, &RedisStore{}, nil},
		{"unknown", Options{Backend: "s3"}, nil, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}
