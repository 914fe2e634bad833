// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// generate.go - Headless document generation for the architect CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/architect-tui/internal/cache"
	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/export"
	"github.com/jeranaias/architect-tui/internal/gemini"
	"github.com/jeranaias/architect-tui/internal/keystore"
	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/quota"
	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// GENERATE COMMAND
// =============================================================================

// HandleGenerate runs a full prompt -> plan -> document generation and
// writes the result as a markdown file.
func HandleGenerate(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		return PrintError(&CommandError{
			Message: "Failed to load configuration: " + err.Error(),
			Hint:    "Run 'architect config show' to inspect the config file",
			Code:    ExitConfigError,
			Cause:   err,
		})
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}

	prompt := strings.TrimSpace(args.Query)
	if prompt == "" {
		prompt, err = promptInteractive(cfg)
		if err != nil {
			return PrintError(err)
		}
	}
	if len(prompt) < cfg.Generation.MinPromptChars {
		return PrintError(NewUsageError(fmt.Sprintf(
			"prompt too short: need at least %d characters", cfg.Generation.MinPromptChars)))
	}

	history := OpenHistory(cfg, args.Quiet)
	if history != nil {
		defer history.Close()
	}

	// Quota check before any API call. The history database journals the
	// attempts so the window carries across invocations.
	if cfg.Quota.Enabled {
		opts := []quota.GuardOption{
			quota.WithLimit(cfg.Quota.Limit),
			quota.WithWindow(time.Duration(cfg.Quota.WindowMinutes) * time.Minute),
		}
		if history != nil {
			opts = append(opts, quota.WithJournal(history))
		}
		decision := quota.NewGuard(opts...).Check("local")
		if !decision.Allowed {
			return PrintError(&CommandError{
				Message: fmt.Sprintf("Generation quota exhausted (%d/%d used)", decision.Used, decision.Limit),
				Hint:    fmt.Sprintf("Quota resets at %s", decision.ResetAt.Format(time.Kitchen)),
				Code:    ExitQuotaError,
			})
		}
	}

	gen, err := BuildGenerator(cfg)
	if err != nil {
		return PrintError(err)
	}

	result, err := runGeneration(context.Background(), cfg, gen, history, prompt, args.Quiet)
	if err != nil {
		if result != nil && result.Document != "" && !args.Quiet {
			fmt.Println(DimStyle.Render("Partial document discarded; completed sections remain archived only in this output:"))
			fmt.Println(result.Document)
		}
		return PrintError(err)
	}

	path, err := exportResult(prompt, result, args.Output)
	if err != nil {
		return PrintError(err)
	}

	if !args.Quiet {
		fmt.Println()
		fmt.Println(RenderConditional(SuccessStyle, "Document written to "+path))
		if result.ArchiveErr != nil {
			fmt.Println(RenderConditional(WarningStyle, "History archive failed: "+result.ArchiveErr.Error()))
		}
	} else {
		fmt.Println(path)
	}

	return ExitSuccess
}

// promptInteractive reads the generation prompt with line editing.
func promptInteractive(cfg *config.Config) (string, error) {
	if err := RequiresTTY("enter a prompt"); err != nil {
		return "", NewUsageError("no prompt given and stdin is not a terminal")
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println(RenderConditional(TitleStyle, "architect"))
	fmt.Println(DimStyle.Render(fmt.Sprintf(
		"Describe the system to design (min %d characters). Ctrl+C to abort.", cfg.Generation.MinPromptChars)))

	text, err := line.Prompt("architect> ")
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", &CommandError{Message: "Aborted", Code: ExitGeneralError}
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// BuildGenerator creates the Gemini client, wrapped with the response
// cache when caching is enabled.
func BuildGenerator(cfg *config.Config) (plan.TextGenerator, error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, &CommandError{
			Message: "No API key configured",
			Hint:    "Run 'architect config set-key' or set ARCHITECT_API_KEY",
			Code:    ExitAuthError,
		}
	}

	client := gemini.NewClientWithConfig(&gemini.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            apiKey,
		Model:             cfg.API.Model,
		Timeout:           time.Duration(cfg.API.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Generation.MaxRetries,
		RequestsPerMinute: cfg.API.RequestsPerMinute,
	})

	if cfg.Cache.Enabled {
		rc := cache.NewResponseCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
		return cache.NewCachingGenerator(client, rc), nil
	}
	return client, nil
}

// resolvedKeys caches decrypted API keys for a few minutes so repeated
// generator builds in one session skip the keystore's key derivation.
var (
	resolvedKeys     *cache.SecretCache
	resolvedKeysOnce sync.Once
)

// resolveAPIKey returns the usable API key, decrypting stored keys with
// the keystore when needed. Plaintext keys pass through unchanged.
func resolveAPIKey(cfg *config.Config) (string, error) {
	key := cfg.API.Key
	if !strings.HasPrefix(key, keystore.EncryptedPrefix) {
		return key, nil
	}

	resolvedKeysOnce.Do(func() {
		resolvedKeys, _ = cache.NewSecretCache(cache.DefaultSecretTTL)
	})
	if resolvedKeys != nil {
		if cached, ok := resolvedKeys.Get(); ok {
			return cached, nil
		}
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	store, err := keystore.New(dir)
	if err != nil {
		return "", err
	}
	plaintext, err := store.Decrypt(key)
	if err != nil {
		return "", &CommandError{
			Message: "Failed to decrypt the stored API key",
			Hint:    "Run 'architect config set-key' to store it again",
			Code:    ExitAuthError,
			Cause:   err,
		}
	}
	if resolvedKeys != nil {
		resolvedKeys.Set(plaintext)
	}
	return plaintext, nil
}

// openHistory opens the archive database, or returns nil when history is
// disabled or unavailable. Archive failures never block generation.
func OpenHistory(cfg *config.Config, quiet bool) *storage.History {
	if !cfg.History.Enabled {
		return nil
	}
	path := cfg.History.DatabasePath
	if path == "" {
		var err error
		path, err = cfg.HistoryPath()
		if err != nil {
			return nil
		}
	}
	h, err := storage.Open(path)
	if err != nil {
		if !quiet {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("History unavailable: "+err.Error()))
		}
		return nil
	}
	return h
}

// runGeneration plans the document and executes the plan, printing
// progress as sections complete.
func runGeneration(ctx context.Context, cfg *config.Config, gen plan.TextGenerator, history *storage.History, prompt string, quiet bool) (*plan.Result, error) {
	if !quiet {
		fmt.Println(RenderConditional(InfoStyle, "Planning document sections..."))
	}

	planner := plan.NewPlanner(gen)
	p, err := planner.CreatePlan(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if !quiet {
		fmt.Println()
		fmt.Println(RenderConditional(SectionStyle, "Outline"))
		for i, item := range p.Items {
			fmt.Printf("  %d. %s\n", i+1, item.Title)
		}
		fmt.Println()
	}

	// Status store mirrors execution state so other readers in this
	// process (the TUI status bar, tests) can poll it.
	status := cache.NewStatusStore(cache.DefaultStatusTTL)
	defer status.Delete(p.ID)

	pub := plan.PublisherFunc(func(s plan.Snapshot) {
		status.Set(cache.RunStatus{
			PlanID:  s.PlanID,
			Stage:   s.Stage,
			Percent: s.Percent,
			Done:    s.Done,
		})
		if quiet {
			return
		}
		if s.Done {
			fmt.Printf("%s %s (100%%)\n", RenderStatus(s.Stage), s.Stage)
			return
		}
		fmt.Printf("  [%d%%] %s\n", s.Percent, s.Stage)
	})

	opts := []plan.ExecutorOption{plan.WithPublisher(pub)}
	if history != nil {
		opts = append(opts, plan.WithArchiver(history))
	}

	executor := plan.NewExecutor(p, gen, opts...)
	return executor.Execute(ctx)
}

// exportResult writes the finished document as markdown.
func exportResult(prompt string, res *plan.Result, outputDir string) (string, error) {
	sections := make([]storage.Section, 0, res.Plan.Len())
	for _, item := range res.Plan.Items {
		sections = append(sections, storage.Section{Title: item.Title, Description: item.Description})
	}
	entry := &storage.Entry{
		ID:             res.Plan.ID,
		Title:          storage.DeriveTitle(prompt),
		Prompt:         prompt,
		Content:        res.Document,
		Sections:       sections,
		TotalSections:  res.Plan.Len(),
		DocumentLength: len(res.Document),
		GenerationTime: res.Duration,
		CreatedAt:      time.Now(),
	}

	opts := export.DefaultOptions()
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	exporter, err := export.ForFormat("markdown", opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(entry, exporter, opts)
}
