// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - Configuration commands for the architect CLI.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/keystore"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "path":
		return configPath()
	case "set":
		return configSet(args)
	case "set-key":
		return configSetKey()
	default:
		return PrintError(NewUsageError("unknown config subcommand: " + args.Subcommand))
	}
}

func configShow() int {
	cfg, err := config.Load()
	if err != nil {
		return PrintError(err)
	}

	fmt.Println(RenderConditional(TitleStyle, "Configuration"))

	printSetting("api.model", cfg.API.Model)
	printSetting("api.base_url", cfg.API.BaseURL)
	printSetting("api.key", maskKey(cfg.API.Key))
	printSetting("api.timeout_seconds", strconv.Itoa(cfg.API.TimeoutSecs))
	printSetting("api.requests_per_minute", strconv.Itoa(cfg.API.RequestsPerMinute))
	printSetting("generation.min_prompt_chars", strconv.Itoa(cfg.Generation.MinPromptChars))
	printSetting("generation.max_retries", strconv.Itoa(cfg.Generation.MaxRetries))
	printSetting("quota.enabled", strconv.FormatBool(cfg.Quota.Enabled))
	printSetting("quota.limit", strconv.Itoa(cfg.Quota.Limit))
	printSetting("quota.window_minutes", strconv.Itoa(cfg.Quota.WindowMinutes))
	printSetting("cache.enabled", strconv.FormatBool(cfg.Cache.Enabled))
	printSetting("cache.ttl_minutes", strconv.Itoa(cfg.Cache.TTLMinutes))
	printSetting("cache.max_entries", strconv.Itoa(cfg.Cache.MaxEntries))
	printSetting("history.enabled", strconv.FormatBool(cfg.History.Enabled))
	printSetting("ui.theme", cfg.UI.Theme)

	return ExitSuccess
}

func configPath() int {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return PrintError(err)
	}
	fmt.Println(path)
	return ExitSuccess
}

func configSet(args Args) int {
	key := args.Options["key"]
	value := args.Options["value"]
	if key == "" || value == "" {
		return PrintError(NewUsageError("config set requires a key and a value"))
	}

	cfg, err := config.Load()
	if err != nil {
		return PrintError(err)
	}

	if err := applySetting(cfg, key, value); err != nil {
		return PrintError(NewUsageError(err.Error()))
	}
	if err := cfg.Validate(); err != nil {
		return PrintError(&CommandError{
			Message: "Invalid configuration: " + err.Error(),
			Code:    ExitConfigError,
			Cause:   err,
		})
	}
	if err := config.Save(cfg); err != nil {
		return PrintError(err)
	}

	fmt.Println(RenderConditional(SuccessStyle, fmt.Sprintf("Set %s = %s", key, value)))
	return ExitSuccess
}

// configSetKey reads the API key without echo and stores it encrypted.
func configSetKey() int {
	apiKey, err := ReadSecret("Gemini API key: ")
	if err != nil {
		return PrintError(err)
	}
	if apiKey == "" {
		return PrintError(NewUsageError("empty API key"))
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return PrintError(err)
	}
	store, err := keystore.New(dir)
	if err != nil {
		return PrintError(err)
	}
	if !store.Initialized() {
		if err := store.Init(); err != nil {
			return PrintError(err)
		}
	}
	encrypted, err := store.Encrypt(apiKey)
	if err != nil {
		return PrintError(err)
	}

	cfg, err := config.Load()
	if err != nil {
		return PrintError(err)
	}
	cfg.API.Key = encrypted
	if err := config.Save(cfg); err != nil {
		return PrintError(err)
	}

	fmt.Println(RenderConditional(SuccessStyle, "API key stored (encrypted at rest)"))
	return ExitSuccess
}

// applySetting maps dotted keys onto config fields.
func applySetting(cfg *config.Config, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s requires a number, got %q", key, value)
		}
		return n, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s requires true or false, got %q", key, value)
		}
		return b, nil
	}

	var err error
	switch strings.ToLower(key) {
	case "api.model":
		cfg.API.Model = value
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.key":
		cfg.API.Key = value
	case "api.timeout_seconds":
		cfg.API.TimeoutSecs, err = atoi()
	case "api.requests_per_minute":
		cfg.API.RequestsPerMinute, err = atoi()
	case "generation.min_prompt_chars":
		cfg.Generation.MinPromptChars, err = atoi()
	case "generation.max_retries":
		cfg.Generation.MaxRetries, err = atoi()
	case "quota.enabled":
		cfg.Quota.Enabled, err = parseBool()
	case "quota.limit":
		cfg.Quota.Limit, err = atoi()
	case "quota.window_minutes":
		cfg.Quota.WindowMinutes, err = atoi()
	case "cache.enabled":
		cfg.Cache.Enabled, err = parseBool()
	case "cache.ttl_minutes":
		cfg.Cache.TTLMinutes, err = atoi()
	case "cache.max_entries":
		cfg.Cache.MaxEntries, err = atoi()
	case "history.enabled":
		cfg.History.Enabled, err = parseBool()
	case "ui.theme":
		cfg.UI.Theme = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return err
}

// maskKey hides all but a short suffix of the API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if strings.HasPrefix(key, keystore.EncryptedPrefix) {
		return "(encrypted)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// printSetting prints one aligned config row.
func printSetting(key, value string) {
	fmt.Printf("  %s %s\n", RenderLabel(key, 32), ValueStyle.Render(value))
}
