// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads aimlchat configuration.
//
// Settings come from a TOML file with built-in defaults underneath and
// environment variables on top, then pass struct-tag validation.
//
// # Key Types
//
//   - Config: top-level settings
//   - APIConfig: remote API origin, key and HTTP timeout
//   - StoreConfig: which backend holds the saved registry
//   - ChatConfig: defaults for new chats and auto-save
//   - LogConfig: log level and rotating file settings
//
// # Configuration Precedence
//
//   - Command-line flags (applied by main)
//   - Environment variables (AIMLCHAT_*)
//   - ~/.aimlchat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := cloud.NewClient(cfg.API.BaseURL).WithTimeout(cfg.API.Timeout())
package config
