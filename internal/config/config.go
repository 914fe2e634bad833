// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// architect.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.architect/config.toml
//   - ~/.architect/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete architect configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// API configuration
	API APIConfig `toml:"api" json:"api"`

	// Generation configuration
	Generation GenerationConfig `toml:"generation" json:"generation"`

	// Quota configuration
	Quota QuotaConfig `toml:"quota" json:"quota"`

	// Cache configuration
	Cache CacheConfig `toml:"cache" json:"cache"`

	// History configuration
	History HistoryConfig `toml:"history" json:"history"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains Gemini API configuration.
type APIConfig struct {
	// Key is the Gemini API key. May be stored encrypted (ENC: prefix).
	Key string `toml:"key" json:"key"`
	// BaseURL is the API base URL
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model used for planning and generation
	Model string `toml:"model" json:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute throttles outgoing API calls
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// GenerationConfig controls document generation behavior.
type GenerationConfig struct {
	// MinPromptChars is the minimum prompt length accepted
	MinPromptChars int `toml:"min_prompt_chars" json:"min_prompt_chars"`
	// MaxRetries for transient API failures per section
	MaxRetries int `toml:"max_retries" json:"max_retries"`
}

// QuotaConfig contains per-user generation limits.
type QuotaConfig struct {
	// Enabled toggles quota enforcement
	Enabled bool `toml:"enabled" json:"enabled"`
	// Limit is the number of generations allowed per window
	Limit int `toml:"limit" json:"limit"`
	// WindowMinutes is the rolling window length in minutes
	WindowMinutes int `toml:"window_minutes" json:"window_minutes"`
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Enabled toggles response caching
	Enabled bool `toml:"enabled" json:"enabled"`
	// TTLMinutes is the cached response lifetime in minutes
	TTLMinutes int `toml:"ttl_minutes" json:"ttl_minutes"`
	// MaxEntries bounds the cache size
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// HistoryConfig contains archive configuration.
type HistoryConfig struct {
	// Enabled toggles best-effort archiving of completed documents
	Enabled bool `toml:"enabled" json:"enabled"`
	// DatabasePath is the SQLite file (empty = ~/.architect/history.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains TUI configuration.
type UIConfig struct {
	// Theme is "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// ShowProgress toggles the progress bar during generation
	ShowProgress bool `toml:"show_progress" json:"show_progress"`
	// CompactMode reduces padding in the section list
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			Key:               "",
			BaseURL:           "https://generativelanguage.googleapis.com",
			Model:             "gemini-2.5-flash",
			TimeoutSecs:       120,
			RequestsPerMinute: 30,
		},

		Generation: GenerationConfig{
			MinPromptChars: 10,
			MaxRetries:     3,
		},

		Quota: QuotaConfig{
			Enabled:       true,
			Limit:         10,
			WindowMinutes: 60,
		},

		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 60,
			MaxEntries: 200,
		},

		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "",
		},

		UI: UIConfig{
			Theme:        "dark",
			ShowProgress: true,
			CompactMode:  false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the architect configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".architect"), nil
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

// HistoryPath returns the configured history database path, resolving the
// default under the config directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.DatabasePath != "" {
		return c.History.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the default locations, trying TOML first,
// then JSON, then falling back to defaults. Environment overrides are
// applied last, after whichever file loads.
func Load() (*Config, error) {
	cfg := Default()

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				return nil, fmt.Errorf("failed to load JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from an explicit file path, choosing the
// decoder by extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch filepath.Ext(path) {
	case ".toml":
		err = LoadTOML(cfg, path)
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		err = fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return finishLoad(cfg)
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//
//	ARCHITECT_API_KEY    - API key
//	ARCHITECT_MODEL      - model name
//	ARCHITECT_BASE_URL   - API base URL
//	ARCHITECT_THEME      - UI theme
//	ARCHITECT_QUOTA      - quota limit per window
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ARCHITECT_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("ARCHITECT_MODEL"); v != "" {
		c.API.Model = v
	}
	if v := os.Getenv("ARCHITECT_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ARCHITECT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ARCHITECT_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Quota.Limit = n
		}
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions,
// since it may carry the API key.
func SaveTOML(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "api.base_url",
				Message: fmt.Sprintf("invalid URL %q", c.API.BaseURL),
			})
		}
	}

	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_secs", Message: "must be non-negative"})
	}
	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "api.requests_per_minute", Message: "must be non-negative"})
	}

	if c.Generation.MinPromptChars < 0 {
		errs = append(errs, ValidationError{Field: "generation.min_prompt_chars", Message: "must be non-negative"})
	}

	if c.Quota.Limit < 0 {
		errs = append(errs, ValidationError{Field: "quota.limit", Message: "must be non-negative"})
	}
	if c.Quota.WindowMinutes < 0 {
		errs = append(errs, ValidationError{Field: "quota.window_minutes", Message: "must be non-negative"})
	}

	if c.Cache.TTLMinutes < 0 {
		errs = append(errs, ValidationError{Field: "cache.ttl_minutes", Message: "must be non-negative"})
	}
	if c.Cache.MaxEntries < 0 || c.Cache.MaxEntries > 100000 {
		errs = append(errs, ValidationError{
			Field:   "cache.max_entries",
			Message: fmt.Sprintf("must be 0-100000, got %d", c.Cache.MaxEntries),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("theme must be dark or light, got %s", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
