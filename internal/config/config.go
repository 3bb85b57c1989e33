// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/aimlchat/internal/cloud"
	"github.com/jeranaias/aimlchat/internal/model"
	"github.com/jeranaias/aimlchat/internal/storage"
	"github.com/jeranaias/aimlchat/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the complete aimlchat configuration.
type Config struct {
	API   APIConfig   `toml:"api"`
	Store StoreConfig `toml:"store"`
	Chat  ChatConfig  `toml:"chat"`
	Log   LogConfig   `toml:"log"`
}

// APIConfig describes the remote chat-completion API.
type APIConfig struct {
	BaseURL string `toml:"base_url" validate:"required,url"`
	// APIKey is usually better supplied through AIMLCHAT_API_KEY.
	APIKey      string `toml:"api_key"`
	TimeoutSecs int    `toml:"timeout_secs" validate:"gte=1,lte=3600"`
}

// Timeout returns TimeoutSecs as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// StoreConfig selects where the chat registry is saved.
type StoreConfig struct {
	Backend    string `toml:"backend" validate:"oneof=file sqlite redis"`
	Path       string `toml:"path" validate:"required_if=Backend file"`
	SQLitePath string `toml:"sqlite_path" validate:"required_if=Backend sqlite"`
	RedisAddr  string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisKey   string `toml:"redis_key"`
	// LocalSave false turns saving off even if the saved registry has it on.
	LocalSave bool `toml:"local_save"`
}

// Options converts the section into storage options.
func (s StoreConfig) Options() storage.Options {
	return storage.Options{
		Backend:    s.Backend,
		Path:       s.Path,
		SQLitePath: s.SQLitePath,
		RedisAddr:  s.RedisAddr,
		RedisKey:   s.RedisKey,
	}
}

// ChatConfig holds defaults for new chats.
type ChatConfig struct {
	// DefaultModel is used by /new without an argument. Empty means the
	// first model in the catalog.
	DefaultModel string `toml:"default_model"`
	// History turns on history for new chats.
	History bool `toml:"history"`
	// AutosaveSecs is the auto-save interval; 0 saves only on exit and /save.
	AutosaveSecs int `toml:"autosave_secs" validate:"gte=0,lte=86400"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level      string `toml:"level" validate:"oneof=debug info warn error"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=1,lte=1024"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0,lte=100"`
	MaxAgeDays int    `toml:"max_age_days" validate:"gte=0,lte=365"`
	Compress   bool   `toml:"compress"`
	// Console mirrors log output to stderr.
	Console bool `toml:"console"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration. Paths live under Dir(), or the
// working directory if the home directory is unknown.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		API: APIConfig{
			BaseURL:     cloud.DefaultBaseURL,
			TimeoutSecs: int(cloud.DefaultTimeout / time.Second),
		},
		Store: StoreConfig{
			Backend:    storage.BackendFile,
			Path:       filepath.Join(dir, storage.DefaultFileName),
			SQLitePath: filepath.Join(dir, storage.DefaultSQLiteFile),
			RedisKey:   storage.DefaultRedisKey,
			LocalSave:  true,
		},
		Chat: ChatConfig{
			History:      true,
			AutosaveSecs: int(storage.DefaultAutoSaveInterval / time.Second),
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "logs", "aimlchat.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the aimlchat configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aimlchat"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens a config file to 0600, since it may hold
// an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != util.PrivateFilePerm {
		if err := os.Chmod(path, util.PrivateFilePerm); err != nil {
			return fmt.Errorf("fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the default config file. A missing file is not an error:
// defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the TOML file at path over the defaults, applies
// environment overrides and validates the result. A missing file yields
// the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveTOML writes cfg to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# aimlchat configuration file\n")
	buf.WriteString("# The API key is better kept in AIMLCHAT_API_KEY.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.WritePrivateFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their TOML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every setting. The returned error is a ValidateErrors.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make(ValidateErrors, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return errs
}

// fieldPath turns "Config.api.base_url" into "api.base_url".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "url":
		return fmt.Sprintf("%q is not a valid URL", fe.Value())
	case "oneof":
		return fmt.Sprintf("%v must be one of: %s", fe.Value(), fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - AIMLCHAT_API_KEY: overrides api.api_key
//   - AIMLCHAT_BASE_URL: overrides api.base_url
//   - AIMLCHAT_STORE: overrides store.backend
//   - AIMLCHAT_SAVE_PATH: overrides the path of the selected backend
//     (store.path or store.sqlite_path) or store.redis_addr
//   - AIMLCHAT_LOG_LEVEL: overrides log.level
//   - AIMLCHAT_MODEL: overrides chat.default_model
//   - AIMLCHAT_LOCAL_SAVE: "0" or "false" turns saving off
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("AIMLCHAT_API_KEY"); key != "" {
		c.API.APIKey = key
	}
	if url := os.Getenv("AIMLCHAT_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
	if backend := os.Getenv("AIMLCHAT_STORE"); backend != "" {
		c.Store.Backend = strings.ToLower(backend)
	}
	if path := os.Getenv("AIMLCHAT_SAVE_PATH"); path != "" {
		c.Store.SetLocation(path)
	}
	if level := os.Getenv("AIMLCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
	if m := os.Getenv("AIMLCHAT_MODEL"); m != "" {
		c.Chat.DefaultModel = model.New(m).Name
	}
	if v := os.Getenv("AIMLCHAT_LOCAL_SAVE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Store.LocalSave = enabled
		}
	}
}

// SetLocation points the currently selected backend at location.
func (s *StoreConfig) SetLocation(location string) {
	switch s.Backend {
	case storage.BackendSQLite:
		s.SQLitePath = location
	case storage.BackendRedis:
		s.RedisAddr = location
	default:
		s.Path = location
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// String renders the config as TOML with the API key masked.
func (c *Config) String() string {
	masked := *c
	if masked.API.APIKey != "" {
		masked.API.APIKey = "sha256:" + cloud.KeyFingerprint(masked.API.APIKey)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(masked); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
