// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// quotacmd.go - Quota and cache inspection commands for the architect CLI.
package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/architect-tui/internal/cache"
	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/quota"
)

// =============================================================================
// QUOTA COMMAND
// =============================================================================

// HandleQuota prints the generation quota settings and the state of a
// fresh rolling window.
func HandleQuota(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		return PrintError(err)
	}

	fmt.Println(RenderConditional(TitleStyle, "Generation Quota"))
	printSetting("enabled", strconv.FormatBool(cfg.Quota.Enabled))
	printSetting("limit", strconv.Itoa(cfg.Quota.Limit))
	printSetting("window", fmt.Sprintf("%d minutes", cfg.Quota.WindowMinutes))

	if !cfg.Quota.Enabled {
		fmt.Println()
		fmt.Println(DimStyle.Render("Quota checks are disabled; every generation is allowed."))
		return ExitSuccess
	}

	opts := []quota.GuardOption{
		quota.WithLimit(cfg.Quota.Limit),
		quota.WithWindow(time.Duration(cfg.Quota.WindowMinutes) * time.Minute),
	}
	history := OpenHistory(cfg, args.Quiet)
	if history != nil {
		defer history.Close()
		opts = append(opts, quota.WithJournal(history))
	}

	decision := quota.NewGuard(opts...).Peek("local")
	fmt.Println()
	printSetting("used", strconv.Itoa(decision.Used))
	printSetting("remaining", strconv.Itoa(decision.Remaining))
	if decision.Used > 0 {
		printSetting("window resets", decision.ResetAt.Format(time.Kitchen))
	}
	if history == nil {
		fmt.Println(DimStyle.Render("History database unavailable; usage shown is for this process only."))
	}

	return ExitSuccess
}

// =============================================================================
// CACHE COMMAND
// =============================================================================

// HandleCache prints or resets the response cache settings.
func HandleCache(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		return PrintError(err)
	}

	switch args.Subcommand {
	case "", "stats":
		fmt.Println(RenderConditional(TitleStyle, "Response Cache"))
		printSetting("enabled", strconv.FormatBool(cfg.Cache.Enabled))
		printSetting("ttl", fmt.Sprintf("%d minutes", cfg.Cache.TTLMinutes))
		printSetting("max entries", strconv.Itoa(cfg.Cache.MaxEntries))

		// The cache lives in process memory; a CLI invocation always
		// starts empty, so only configuration is meaningful here.
		rc := cache.NewResponseCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
		stats := rc.GetStats()
		printSetting("entries (this run)", strconv.Itoa(stats.EntryCount))
		return ExitSuccess

	case "clear":
		fmt.Println(RenderConditional(SuccessStyle, "Cache is per-process; nothing persisted to clear."))
		return ExitSuccess

	default:
		return PrintError(NewUsageError("unknown cache subcommand: " + args.Subcommand))
	}
}
