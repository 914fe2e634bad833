// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/jeranaias/architect-tui/internal/config"
)

func TestParseArgsDefaultsToTUI(t *testing.T) {
	cmd, _ := ParseArgs(nil)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want TUI", cmd)
	}
}

func TestParseArgsGenerate(t *testing.T) {
	cmd, args := ParseArgs([]string{"generate", "design", "a", "rate", "limiter"})
	if cmd != CmdGenerate {
		t.Fatalf("cmd = %v, want generate", cmd)
	}
	if args.Query != "design a rate limiter" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsGenerateFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--model", "gemini-2.5-pro", "generate", "--output", "/tmp/docs", "my", "idea"})
	if cmd != CmdGenerate {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", args.Model)
	}
	if args.Output != "/tmp/docs" {
		t.Errorf("Output = %q", args.Output)
	}
	if args.Query != "my idea" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsBarePromptIsGenerate(t *testing.T) {
	cmd, args := ParseArgs([]string{"design", "a", "chat", "app"})
	if cmd != CmdGenerate {
		t.Fatalf("cmd = %v, want generate", cmd)
	}
	if args.Query != "design a chat app" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParseArgsHistory(t *testing.T) {
	cmd, args := ParseArgs([]string{"history", "list", "--limit", "5"})
	if cmd != CmdHistory {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Subcommand != "list" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if args.Options["limit"] != "5" {
		t.Errorf("limit = %q", args.Options["limit"])
	}

	cmd, args = ParseArgs([]string{"history", "export", "abc123", "--format", "html"})
	if cmd != CmdHistory || args.Subcommand != "export" {
		t.Fatalf("cmd = %v subcommand = %q", cmd, args.Subcommand)
	}
	if args.Query != "abc123" {
		t.Errorf("Query = %q", args.Query)
	}
	if args.Format != "html" {
		t.Errorf("Format = %q", args.Format)
	}
}

func TestParseArgsConfigSet(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "ui.theme", "light"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if args.Options["key"] != "ui.theme" || args.Options["value"] != "light" {
		t.Errorf("key/value = %q/%q", args.Options["key"], args.Options["value"])
	}
}

func TestParseArgsVersionAndHelp(t *testing.T) {
	if cmd, _ := ParseArgs([]string{"version"}); cmd != CmdVersion {
		t.Errorf("version cmd = %v", cmd)
	}
	if cmd, _ := ParseArgs([]string{"--version"}); cmd != CmdVersion {
		t.Errorf("--version cmd = %v", cmd)
	}
	if cmd, _ := ParseArgs([]string{"help"}); cmd != CmdHelp {
		t.Errorf("help cmd = %v", cmd)
	}
}

func TestParseArgsGlobalFlags(t *testing.T) {
	_, args := ParseArgs([]string{"--quiet", "--json", "quota"})
	if !args.Quiet || !args.JSON {
		t.Errorf("Quiet=%v JSON=%v", args.Quiet, args.JSON)
	}
}

func TestApplySetting(t *testing.T) {
	cfg := config.Default()

	if err := applySetting(cfg, "api.model", "gemini-2.5-pro"); err != nil {
		t.Fatalf("applySetting: %v", err)
	}
	if cfg.API.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.API.Model)
	}

	if err := applySetting(cfg, "quota.limit", "25"); err != nil {
		t.Fatalf("applySetting: %v", err)
	}
	if cfg.Quota.Limit != 25 {
		t.Errorf("Limit = %d", cfg.Quota.Limit)
	}

	if err := applySetting(cfg, "cache.enabled", "false"); err != nil {
		t.Fatalf("applySetting: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}

	if err := applySetting(cfg, "quota.limit", "lots"); err == nil {
		t.Error("non-numeric value should error")
	}
	if err := applySetting(cfg, "no.such.key", "x"); err == nil {
		t.Error("unknown key should error")
	}
}

func TestMaskKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "(not set)"},
		{"ENC:abcdef", "(encrypted)"},
		{"ab", "****"},
		{"AIzaSyExample1234", "****1234"},
	}
	for _, tc := range cases {
		if got := maskKey(tc.in); got != tc.want {
			t.Errorf("maskKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	out := WrapText("one two three four five six seven eight nine ten", 20)
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 20 {
			t.Errorf("line too long: %q", line)
		}
	}

	// Existing newlines are preserved
	out = WrapText("a\nb", 40)
	if out != "a\nb" {
		t.Errorf("WrapText = %q", out)
	}
}
