// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the document generation view for the TUI.
//
// This file defines all Bubble Tea message types used by the generate view.
// Messages are organized into the following categories:
//   - Planning: plan creation success and failure
//   - Execution: progress snapshots and run completion
//   - Export: save-to-file results
//   - History: archive entries for the history overlay
//   - Config: hot-reload of the configuration file
//
// All message types follow Bubble Tea conventions and are immutable.
package generate

import (
	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// PLANNING MESSAGES
// =============================================================================

// PlanReadyMsg signals that the planner produced a section outline.
type PlanReadyMsg struct {
	Plan *plan.Plan
}

// PlanFailedMsg signals that planning failed before execution started.
type PlanFailedMsg struct {
	Err error
}

// =============================================================================
// EXECUTION MESSAGES
// =============================================================================

// ProgressMsg delivers an execution snapshot from the running executor.
type ProgressMsg struct {
	Snapshot plan.Snapshot
}

// RunFinishedMsg signals that the executor returned, successfully or not.
type RunFinishedMsg struct {
	Result *plan.Result
	Err    error
}

// =============================================================================
// EXPORT MESSAGES
// =============================================================================

// ExportDoneMsg reports the outcome of a save-to-file request.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// HISTORY MESSAGES
// =============================================================================

// HistoryLoadedMsg carries recent archive entries for the history overlay.
type HistoryLoadedMsg struct {
	Entries []storage.Entry
	Err     error
}

// HistoryEntryMsg carries one fully loaded archive entry for viewing.
type HistoryEntryMsg struct {
	Entry *storage.Entry
	Err   error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a freshly loaded config after the file on disk
// changed. The active run keeps its original settings; the new config applies
// to subsequent runs.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
