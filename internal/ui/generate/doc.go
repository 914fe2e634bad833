// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the document generation view for the TUI.
//
// # Key Types
//
//   - Model: the Bubble Tea model driving the prompt -> plan -> document flow
//   - State: the view state machine (prompt, planning, generating, done, failed)
//   - KeyMap: keyboard bindings including vim-like viewport scrolling
//
// # Usage
//
//	m := generate.New(client, history, cfg)
//	p := tea.NewProgram(m, tea.WithAltScreen())
//	_, err := p.Run()
//
// # Execution Flow
//
// Submitting a prompt runs the planner in a command goroutine. Once the
// outline arrives the executor runs in its own goroutine and publishes
// progress snapshots into a channel; waitSnapshot re-subscribes after each
// message, so the outline and progress box update live. The view keeps a
// display copy of the plan and advances it from snapshots, so it never
// reads the plan the executor is mutating. The finished document is
// rendered with glamour inside a viewport and can be saved as markdown
// with Ctrl+S. Ctrl+H opens an overlay over past runs from the archive.
package generate
