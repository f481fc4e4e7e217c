// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete taskchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend API
	Server ServerConfig `toml:"server" json:"server"`

	// Stored login
	Auth AuthConfig `toml:"auth" json:"auth"`

	// Local chat history
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log file
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServerConfig describes how to reach the task backend.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8000
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds every non-chat request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// ChatTimeoutSecs bounds chat requests, which wait on the assistant
	ChatTimeoutSecs int `toml:"chat_timeout_secs" json:"chat_timeout_secs"`
	// MaxRetries for transient (5xx / transport) failures
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerMinute caps outgoing requests (0 = unlimited)
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// AuthConfig controls where the login token lives.
type AuthConfig struct {
	// CredentialsFile is the token file (empty = ~/.taskchat/credentials.json)
	CredentialsFile string `toml:"credentials_file" json:"credentials_file"`
	// Token overrides the stored token. Only set from TASKCHAT_TOKEN; never saved.
	Token string `toml:"-" json:"-"`
}

// StorageConfig controls local chat history.
type StorageConfig struct {
	// HistoryDB is the sqlite file (empty = ~/.taskchat/history.db)
	HistoryDB string `toml:"history_db" json:"history_db"`
	// MaxConversations kept locally (0 = unlimited)
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
	// Disabled turns local history off entirely
	Disabled bool `toml:"disabled" json:"disabled"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme          string `toml:"theme" json:"theme"`
	CompactMode    bool   `toml:"compact_mode" json:"compact_mode"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
	// RenderMarkdown renders assistant replies through glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// MaxInputLines caps the composer's auto-resize height
	MaxInputLines int `toml:"max_input_lines" json:"max_input_lines"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	// File is the log path (empty = ~/.taskchat/taskchat.log, "off" disables)
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:           "http://localhost:8000",
			TimeoutSecs:       30,
			ChatTimeoutSecs:   120,
			MaxRetries:        3,
			RequestsPerMinute: 60,
		},

		Storage: StorageConfig{
			MaxConversations: 100,
		},

		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
			RenderMarkdown: true,
			MaxInputLines:  6,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the taskchat configuration directory path.
// TASKCHAT_HOME overrides the default ~/.taskchat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("TASKCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".taskchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// CredentialsPath resolves the credentials file location.
func (c *Config) CredentialsPath() (string, error) {
	return c.resolvePath(c.Auth.CredentialsFile, "credentials.json")
}

// HistoryPath resolves the history database location.
func (c *Config) HistoryPath() (string, error) {
	return c.resolvePath(c.Storage.HistoryDB, "history.db")
}

// LogPath resolves the log file location. Returns "" when logging is off.
func (c *Config) LogPath() (string, error) {
	if strings.EqualFold(c.Logging.File, "off") {
		return "", nil
	}
	return c.resolvePath(c.Logging.File, "taskchat.log")
}

func (c *Config) resolvePath(configured, fallback string) (string, error) {
	if configured != "" {
		return util.ExpandHome(configured), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fallback), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 since they may point at credentials.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default locations.
// A .env file in the working directory is applied to the environment first.
// Returns defaults (plus a non-nil error) if a config file exists but cannot be parsed.
func Load() (*Config, error) {
	// Missing .env is normal
	_ = godotenv.Load()

	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from an explicit path (used by --config).
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// LoadForEdit reads the TOML file at path without environment overrides so
// that saving the result does not persist them. A missing file yields
// defaults.
func LoadForEdit(path string) (*Config, error) {
	cfg := Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}
	cfg.SetDefaults()
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	err := util.AtomicWrite(path, 0600, func(w io.Writer) error {
		fmt.Fprint(w, "# taskchat configuration file\n# Generated by taskchat - edit with care\n\n")
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
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

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.BaseURL),
		})
	}

	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Server.TimeoutSecs),
		})
	}

	if c.Server.ChatTimeoutSecs < 1 || c.Server.ChatTimeoutSecs > 1800 {
		errs = append(errs, ValidationError{
			Field:   "server.chat_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 1800, got %d", c.Server.ChatTimeoutSecs),
		})
	}

	if c.Server.MaxRetries < 0 || c.Server.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "server.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Server.MaxRetries),
		})
	}

	if c.Server.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.requests_per_minute",
			Message: "cannot be negative",
		})
	}

	if c.Storage.MaxConversations < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_conversations",
			Message: "cannot be negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.MaxInputLines < 1 || c.UI.MaxInputLines > 20 {
		errs = append(errs, ValidationError{
			Field:   "ui.max_input_lines",
			Message: fmt.Sprintf("must be between 1 and 20, got %d", c.UI.MaxInputLines),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values with defaults. Booleans are left alone since
// false is a legitimate choice.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.ChatTimeoutSecs == 0 {
		c.Server.ChatTimeoutSecs = defaults.Server.ChatTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.MaxInputLines == 0 {
		c.UI.MaxInputLines = defaults.UI.MaxInputLines
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TASKCHAT_API_URL: overrides server.base_url
//   - TASKCHAT_TIMEOUT: overrides server.timeout_secs
//   - TASKCHAT_TOKEN: bearer token used instead of the stored login
//   - TASKCHAT_THEME: overrides ui.theme
//   - TASKCHAT_LOG_LEVEL: overrides logging.level
//   - TASKCHAT_NO_HISTORY: "1"/"true" disables local history
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TASKCHAT_API_URL"); v != "" {
		c.Server.BaseURL = v
	}

	if v := os.Getenv("TASKCHAT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}

	if v := os.Getenv("TASKCHAT_TOKEN"); v != "" {
		c.Auth.Token = strings.TrimSpace(v)
	}

	if v := os.Getenv("TASKCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}

	if v := os.Getenv("TASKCHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("TASKCHAT_NO_HISTORY"); v != "" {
		c.Storage.Disabled = v == "1" || strings.ToLower(v) == "true"
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks key's dotted toml names. Fields tagged toml:"-" are not
// reachable, so the token override can be neither read nor written.
func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	parts := strings.Split(strings.ToLower(key), ".")
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", strings.Join(parts[:i+1], "."))
		}
		last := i == len(parts)-1
		switch {
		case last && field.Kind() == reflect.Struct:
			return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
		case last:
			return field, nil
		case field.Kind() != reflect.Struct:
			return reflect.Value{}, fmt.Errorf("%s has no sub-keys", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
}

func tomlName(f reflect.StructField) string {
	return strings.Split(f.Tag.Get("toml"), ",")[0]
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := tomlName(t.Field(i))
		if tag != "" && tag != "-" && tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue assigns value to field. Strings (from the command line) are
// parsed into the field's kind.
func setFieldValue(field reflect.Value, value interface{}) error {
	if str, ok := value.(string); ok {
		str = strings.TrimSpace(str)
		switch field.Kind() {
		case reflect.String:
			field.SetString(str)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(str, 10, 64)
			if err != nil {
				return fmt.Errorf("%q is not a whole number", str)
			}
			field.SetInt(n)
			return nil
		case reflect.Bool:
			switch strings.ToLower(str) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return fmt.Errorf("%q is not true or false", str)
			}
			return nil
		}
	}

	val := reflect.ValueOf(value)
	switch {
	case !val.IsValid():
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case val.Kind() == field.Kind() && val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, field.Type())
	}
	return nil
}

// GetAllKeys returns all settable configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := tomlName(f)
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, name, keys)
			continue
		}
		*keys = append(*keys, name)
	}
}

// Clone returns a copy of the config. Config holds no maps or slices, so a
// value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON rendering of the config for display.
// The token override is never included.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Clone(), "", "  ")
	return string(data)
}
