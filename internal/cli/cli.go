// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for architect.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdGenerate
	CmdHistory
	CmdExport
	CmdConfig
	CmdQuota
	CmdCache
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Model   string
	Output  string // output directory for exports

	// Command-specific
	Query      string // generation prompt
	Subcommand string
	Format     string // export format: markdown, json, html

	// Raw args (remaining after flag parsing)
	Raw []string

	// Options holds command-specific named options (e.g. --limit)
	Options map[string]string
}

const usageText = `architect - AI document generation for the terminal

Architect turns a one-line application idea into a structured design
document. A planner breaks the request into 6-8 sections, then each
section is generated in order and appended to the document.

Usage:
  architect                    Start TUI (default)
  architect generate [prompt]  Generate a document headlessly
  architect history [cmd]      Browse archived documents
  architect export [id]        Re-export an archived document
  architect config [cmd]       Configuration
  architect quota              Show generation quota settings
  architect cache [cmd]        Response cache settings
  architect version            Show version
  architect help               Show this help

Generate:
  architect generate "Design a rate limiter for a public API"
  architect generate                    Prompt interactively
    --model <name>                      Override the configured model
    --output <dir>                      Directory for the exported markdown
    --quiet                             Suppress progress output

History:
  architect history list [--limit N]    List archived documents
  architect history show <id> [--raw]   Print an archived document
  architect history search <query>      Search prompts and titles
  architect history delete <id>         Delete one entry
  architect history clear --confirm     Delete everything
  architect history export <id> [--format markdown|json|html]

Config:
  architect config show                 Print the active configuration
  architect config path                 Print the config file location
  architect config set <key> <value>    Set a value (api.model, ui.theme, ...)
  architect config set-key              Store the Gemini API key (encrypted)

Environment:
  ARCHITECT_API_KEY     Gemini API key (overrides config)
  ARCHITECT_MODEL       Model name
  ARCHITECT_BASE_URL    API base URL
  ARCHITECT_THEME       dark or light
  ARCHITECT_QUOTA       Generations per window
  NO_COLOR              Disable colored output

Examples:
  architect
  architect generate "Multi-tenant SaaS billing service"
  architect history list --limit 5
  architect history export 4f1c2d --format html
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	// No command defaults to the TUI
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "generate", "gen", "g":
		parseGenerateArgs(&args, remaining)
		return CmdGenerate, args

	case "history", "hist":
		parseHistoryArgs(&args, remaining)
		return CmdHistory, args

	case "export":
		parseExportArgs(&args, remaining)
		return CmdExport, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "quota":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdQuota, args

	case "cache":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		return CmdCache, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown word: treat it as a generation prompt, matching the
		// behavior of running with a quoted sentence.
		args.Raw = append([]string{cmd}, remaining...)
		parseGenerateArgs(&args, args.Raw)
		return CmdGenerate, args
	}
}

// parseGlobalFlags extracts flags that apply to every command.
func parseGlobalFlags(argv []string) ([]string, Args) {
	args := Args{Options: make(map[string]string)}
	remaining := make([]string, 0, len(argv))

	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "--quiet", "-q":
			args.Quiet = true
			i++
		case "--verbose":
			args.Verbose = true
			i++
		case "--json":
			args.JSON = true
			i++
		case "--model", "-m":
			if i+1 < len(argv) {
				args.Model = argv[i+1]
				i += 2
			} else {
				i++
			}
		case "--output", "-o":
			if i+1 < len(argv) {
				args.Output = argv[i+1]
				i += 2
			} else {
				i++
			}
		default:
			remaining = append(remaining, argv[i])
			i++
		}
	}

	return remaining, args
}

// parseGenerateArgs collects the prompt and generate-specific flags.
func parseGenerateArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	if m := parser.Flag("model"); m != "" {
		args.Model = m
	}
	if o := parser.Flag("output"); o != "" {
		args.Output = o
	}
	args.Query = strings.Join(parser.Positional(), " ")
}

// parseHistoryArgs collects the subcommand and its options.
func parseHistoryArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	if l := parser.Flag("limit"); l != "" {
		args.Options["limit"] = l
	}
	if f := parser.Flag("format"); f != "" {
		args.Format = f
	}
	if parser.BoolFlag("confirm") {
		args.Options["confirm"] = "true"
	}
	if parser.BoolFlag("raw") {
		args.Options["raw"] = "true"
	}
	rest := parser.PositionalAfterSubcommand()
	if len(rest) > 0 {
		args.Query = strings.Join(rest, " ")
	}
}

// parseExportArgs collects the entry ID and format.
func parseExportArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	if f := parser.Flag("format"); f != "" {
		args.Format = f
	}
	pos := parser.Positional()
	if len(pos) > 0 {
		args.Query = pos[0]
	}
}

// parseConfigArgs collects the subcommand, key and value.
func parseConfigArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	rest := parser.PositionalAfterSubcommand()
	if len(rest) > 0 {
		args.Options["key"] = rest[0]
	}
	if len(rest) > 1 {
		args.Options["value"] = strings.Join(rest[1:], " ")
	}
}

// PrintUsage prints the top-level usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version and build information.
func PrintVersion() {
	fmt.Printf("architect %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
