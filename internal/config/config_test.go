// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TASKCHAT_HOME", dir)
	for _, key := range []string{
		"TASKCHAT_API_URL", "TASKCHAT_TIMEOUT", "TASKCHAT_TOKEN",
		"TASKCHAT_THEME", "TASKCHAT_LOG_LEVEL", "TASKCHAT_NO_HISTORY",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, 6, cfg.UI.MaxInputLines)
}

func TestConfigDir_HonorsOverride(t *testing.T) {
	dir := isolate(t)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	cfg := Default()
	creds, err := cfg.CredentialsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "credentials.json"), creds)

	cfg.Logging.File = "off"
	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "", logPath)
}

func TestLoad_NoFilesReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	content := `
[server]
base_url = "https://tasks.example.com/"
timeout_secs = 10

[ui]
theme = "light"
compact_mode = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 10, cfg.Server.TimeoutSecs)
	assert.Equal(t, 3, cfg.Server.MaxRetries)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.CompactMode)
}

func TestLoad_InvalidTOMLFallsBackWithError(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[server\n"), 0600))

	cfg, err := Load()
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Server.BaseURL, cfg.Server.BaseURL)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TASKCHAT_API_URL", "http://10.0.0.5:9000")
	t.Setenv("TASKCHAT_TIMEOUT", "45")
	t.Setenv("TASKCHAT_TOKEN", "  abc.def.ghi \n")
	t.Setenv("TASKCHAT_THEME", "dark")
	t.Setenv("TASKCHAT_NO_HISTORY", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.BaseURL)
	assert.Equal(t, 45, cfg.Server.TimeoutSecs)
	assert.Equal(t, "abc.def.ghi", cfg.Auth.Token)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.Storage.Disabled)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.BaseURL = "ftp://nowhere"
	cfg.Server.MaxRetries = 99
	cfg.UI.Theme = "neon"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"server.base_url", "server.max_retries", "ui.theme", "logging.level"}, fields)
}

func TestGetSet_DotNotation(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("server.timeout_secs", "45"))
	require.NoError(t, cfg.Set("ui.compact_mode", "yes"))
	require.NoError(t, cfg.Set("ui.theme", "dark"))
	require.NoError(t, cfg.Set("storage.max_conversations", 7))

	v, err := cfg.Get("server.timeout_secs")
	require.NoError(t, err)
	assert.Equal(t, 45, v)
	assert.True(t, cfg.UI.CompactMode)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 7, cfg.Storage.MaxConversations)

	_, err = cfg.Get("server.nope")
	assert.Error(t, err)
	_, err = cfg.Get("server")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("ui.compact_mode", 3.5))
	assert.Error(t, cfg.Set("", "x"))
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	assert.Contains(t, keys, "server.base_url")
	assert.Contains(t, keys, "ui.max_input_lines")
	assert.Contains(t, keys, "logging.level")
	assert.NotContains(t, keys, "auth.token")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestSaveTOML_RoundTripWithoutToken(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://api.example.com"
	cfg.Auth.Token = "secret-token"
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# taskchat configuration file"))
	assert.NotContains(t, string(data), "secret-token")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", loaded.Server.BaseURL)
	assert.Empty(t, loaded.Auth.Token)
}

func TestString_NeverShowsToken(t *testing.T) {
	cfg := Default()
	cfg.Auth.Token = "secret-token"
	assert.NotContains(t, cfg.String(), "secret-token")
}

func TestClone_IsIndependent(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.UI.Theme = "dark"
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestGetSet_HiddenAndBadValues(t *testing.T) {
	cfg := Default()
	cfg.Auth.Token = "secret-token"

	_, err := cfg.Get("auth.token")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("auth.token", "x"))
	assert.Equal(t, "secret-token", cfg.Auth.Token)

	assert.Error(t, cfg.Set("ui.compact_mode", "maybe"))
	assert.Error(t, cfg.Set("server.max_retries", "three"))

	require.NoError(t, cfg.Set("Server.Base_URL", "http://10.0.0.2:8000"))
	assert.Equal(t, "http://10.0.0.2:8000", cfg.Server.BaseURL)
}
