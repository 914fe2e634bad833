// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - History browsing commands for the architect CLI.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/export"
	"github.com/jeranaias/architect-tui/internal/storage"
	"github.com/jeranaias/architect-tui/internal/util"
)

const defaultListLimit = 20

// =============================================================================
// HISTORY COMMAND
// =============================================================================

// HandleHistory dispatches the history subcommands.
func HandleHistory(args Args) int {
	history, err := openHistoryRequired()
	if err != nil {
		return PrintError(err)
	}
	defer history.Close()

	ctx := context.Background()

	switch args.Subcommand {
	case "", "list":
		return historyList(ctx, history, args)
	case "show":
		return historyShow(ctx, history, args)
	case "search":
		return historySearch(ctx, history, args)
	case "delete":
		return historyDelete(ctx, history, args)
	case "export":
		return historyExport(ctx, history, args)
	case "clear":
		return historyClear(ctx, history, args)
	default:
		return PrintError(NewUsageError("unknown history subcommand: " + args.Subcommand))
	}
}

// openHistoryRequired opens the history database or fails the command.
func openHistoryRequired() (*storage.History, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &CommandError{
			Message: "Failed to load configuration: " + err.Error(),
			Code:    ExitConfigError,
			Cause:   err,
		}
	}
	if !cfg.History.Enabled {
		return nil, &CommandError{
			Message: "History is disabled",
			Hint:    "Set history.enabled = true in the config file",
			Code:    ExitConfigError,
		}
	}
	path := cfg.History.DatabasePath
	if path == "" {
		path, err = cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
	}
	return storage.Open(path)
}

func historyList(ctx context.Context, history *storage.History, args Args) int {
	limit := defaultListLimit
	if v, ok := args.Options["limit"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := history.List(ctx, limit)
	if err != nil {
		return PrintError(err)
	}

	if args.JSON {
		return printEntriesJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println(DimStyle.Render("No archived documents yet."))
		return ExitSuccess
	}

	fmt.Println(RenderConditional(TitleStyle, "Archived Documents"))
	for _, e := range entries {
		printEntrySummary(e)
	}
	return ExitSuccess
}

func historyShow(ctx context.Context, history *storage.History, args Args) int {
	if args.Query == "" {
		return PrintError(NewUsageError("history show requires an entry ID"))
	}
	entry, err := history.Load(ctx, args.Query)
	if err != nil {
		return PrintError(err)
	}

	if args.JSON {
		return printEntriesJSON([]storage.Entry{*entry})
	}

	fmt.Println(RenderConditional(TitleStyle, entry.Title))
	fmt.Println(DimStyle.Render(fmt.Sprintf("Prompt: %s", entry.Prompt)))
	fmt.Println(DimStyle.Render(fmt.Sprintf("Created: %s | %d sections | %d chars | %s",
		entry.CreatedAt.Format(time.RFC822),
		entry.TotalSections,
		entry.DocumentLength,
		entry.GenerationTime.Round(time.Millisecond))))
	fmt.Println()
	fmt.Println(renderDocument(entry.Content, args))
	return ExitSuccess
}

// renderDocument pretty-prints markdown on a TTY, unless --raw asked for the
// source text. Rendering failures fall back to the raw document.
func renderDocument(content string, args Args) string {
	if args.Options["raw"] == "true" || !IsStdoutTTY() {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func historySearch(ctx context.Context, history *storage.History, args Args) int {
	if args.Query == "" {
		return PrintError(NewUsageError("history search requires a query"))
	}
	entries, err := history.Search(ctx, args.Query)
	if err != nil {
		return PrintError(err)
	}

	if args.JSON {
		return printEntriesJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println(DimStyle.Render("No matches."))
		return ExitSuccess
	}
	for _, e := range entries {
		printEntrySummary(e)
	}
	return ExitSuccess
}

func historyDelete(ctx context.Context, history *storage.History, args Args) int {
	if args.Query == "" {
		return PrintError(NewUsageError("history delete requires an entry ID"))
	}
	if err := history.Delete(ctx, args.Query); err != nil {
		return PrintError(err)
	}
	fmt.Println(RenderConditional(SuccessStyle, "Deleted "+args.Query))
	return ExitSuccess
}

func historyExport(ctx context.Context, history *storage.History, args Args) int {
	if args.Query == "" {
		return PrintError(NewUsageError("history export requires an entry ID"))
	}
	entry, err := history.Load(ctx, args.Query)
	if err != nil {
		return PrintError(err)
	}

	format := args.Format
	if format == "" {
		format = "markdown"
	}

	opts := export.DefaultOptions()
	if args.Output != "" {
		opts.OutputDir = args.Output
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return PrintError(NewUsageError(err.Error()))
	}
	path, err := export.ExportToFile(entry, exporter, opts)
	if err != nil {
		return PrintError(err)
	}
	fmt.Println(RenderConditional(SuccessStyle, "Exported to "+path))
	return ExitSuccess
}

func historyClear(ctx context.Context, history *storage.History, args Args) int {
	if args.Options["confirm"] != "true" {
		return PrintError(NewUsageError("history clear requires --confirm"))
	}
	n, err := history.Clear(ctx)
	if err != nil {
		return PrintError(err)
	}
	fmt.Println(RenderConditional(SuccessStyle, fmt.Sprintf("Deleted %d entries", n)))
	return ExitSuccess
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// HandleExport re-exports an archived document by ID, defaulting to the
// most recent entry.
func HandleExport(args Args) int {
	history, err := openHistoryRequired()
	if err != nil {
		return PrintError(err)
	}
	defer history.Close()

	ctx := context.Background()

	if args.Query == "" {
		entries, err := history.List(ctx, 1)
		if err != nil {
			return PrintError(err)
		}
		if len(entries) == 0 {
			return PrintError(&CommandError{
				Message: "Nothing to export: history is empty",
				Hint:    "Generate a document first",
				Code:    ExitNotFoundError,
			})
		}
		args.Query = entries[0].ID
	}

	return historyExport(ctx, history, args)
}

// printEntrySummary prints one history row.
func printEntrySummary(e storage.Entry) {
	fmt.Printf("  %s  %s\n", InfoStyle.Render(e.ID), ValueStyle.Render(util.TruncateRunes(e.Title, 60)))
	fmt.Printf("      %s\n", DimStyle.Render(fmt.Sprintf("%s | %d sections | %d chars",
		e.CreatedAt.Format("2006-01-02 15:04"), e.TotalSections, e.DocumentLength)))
}

// printEntriesJSON emits machine-readable output for scripting.
func printEntriesJSON(entries []storage.Entry) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return PrintError(err)
	}
	return ExitSuccess
}
