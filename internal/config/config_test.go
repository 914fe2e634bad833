// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.Quota.Limit != 10 || cfg.Quota.WindowMinutes != 60 {
		t.Errorf("quota defaults = %+v", cfg.Quota)
	}
	if cfg.Generation.MinPromptChars != 10 {
		t.Errorf("MinPromptChars = %d", cfg.Generation.MinPromptChars)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[api]
model = "gemini-2.5-pro"
timeout_secs = 60

[quota]
enabled = false
limit = 3

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.API.TimeoutSecs)
	}
	if cfg.Quota.Enabled || cfg.Quota.Limit != 3 {
		t.Errorf("quota = %+v", cfg.Quota)
	}
	// Unset fields keep defaults.
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api": {"model": "gemini-2.5-pro"}, "cache": {"enabled": false}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled")
	}
}

func TestLoadFromPathUnsupportedFormat(t *testing.T) {
	if _, err := LoadFromPath("config.yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCHITECT_API_KEY", "env-key")
	t.Setenv("ARCHITECT_MODEL", "env-model")
	t.Setenv("ARCHITECT_QUOTA", "25")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "env-key" {
		t.Errorf("Key = %q", cfg.API.Key)
	}
	if cfg.API.Model != "env-model" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.Quota.Limit != 25 {
		t.Errorf("Limit = %d", cfg.Quota.Limit)
	}
}

func TestEnvOverridesIgnoreInvalidQuota(t *testing.T) {
	t.Setenv("ARCHITECT_QUOTA", "not-a-number")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Quota.Limit != 10 {
		t.Errorf("Limit = %d, want default 10", cfg.Quota.Limit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.TimeoutSecs = -1 }, "api.timeout_secs"},
		{"negative quota", func(c *Config) { c.Quota.Limit = -5 }, "quota.limit"},
		{"cache too large", func(c *Config) { c.Cache.MaxEntries = 1000001 }, "cache.max_entries"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.Model = "custom-model"
	cfg.Quota.Limit = 42
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.API.Model != "custom-model" || loaded.Quota.Limit != 42 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	cfg := Default()
	cfg.API.Model = "updated-model"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.API.Model != "updated-model" {
			t.Errorf("reloaded Model = %q", got.API.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherReportsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	w, err := Watch(path, func(*Config) {}, func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("ui theme = = broken"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}
