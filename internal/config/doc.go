// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for taskchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env loading, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend URL, timeouts, retry and rate limits
//   - AuthConfig: Credentials file location and token override
//   - StorageConfig: Local chat history database
//   - UIConfig: Theme and composer preferences
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TASKCHAT_*), including those set by ./.env
//   - ~/.taskchat/config.toml
//   - ~/.taskchat/config.json
//   - Built-in defaults
//
// TASKCHAT_HOME relocates the whole ~/.taskchat directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	base := cfg.Server.BaseURL
//	_ = cfg.Set("ui.theme", "dark")
package config
