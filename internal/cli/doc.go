// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements command parsing and the headless command surface
// for architect.
//
// # Key Types
//
//   - Command: the command enum returned by Parse
//   - Args: parsed global and command-specific arguments
//   - ArgParser: shared flag/subcommand parsing for all commands
//   - CommandError: error with exit code and actionable hint
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdGenerate:
//	    os.Exit(cli.HandleGenerate(args))
//	}
//
// Output respects NO_COLOR and TTY detection; errors go to stderr with a
// hint line and map to distinct exit codes for scripting.
package cli
