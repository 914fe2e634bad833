// architect - turn an application idea into a structured design document.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/architect-tui/internal/cli"
	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/ui/generate"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(args))
	case cli.CmdGenerate:
		os.Exit(cli.HandleGenerate(args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(args))
	case cli.CmdExport:
		os.Exit(cli.HandleExport(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdQuota:
		os.Exit(cli.HandleQuota(args))
	case cli.CmdCache:
		os.Exit(cli.HandleCache(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsageError)
	}
}

// runTUI wires the generation pipeline and starts the Bubble Tea program.
func runTUI(args cli.Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return cli.ExitConfigError
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}

	gen, err := cli.BuildGenerator(cfg)
	if err != nil {
		return cli.PrintError(err)
	}

	history := cli.OpenHistory(cfg, args.Quiet)
	if history != nil {
		defer history.Close()
	}

	m := generate.New(gen, history, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Hot-reload the config file while the TUI is running.
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if w, err := config.Watch(tomlPath, func(next *config.Config) {
				p.Send(generate.ConfigReloadedMsg{Cfg: next})
			}, nil); err == nil {
				defer w.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitGeneralError
	}
	return cli.ExitSuccess
}
