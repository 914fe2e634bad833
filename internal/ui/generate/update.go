// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the document generation view for the TUI.
package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/architect-tui/internal/export"
	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/ui/components"
)

// historyOverlayLimit caps how many archive entries the overlay lists.
const historyOverlayLimit = 20

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StatePlanning || m.state == StateGenerating {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case PlanReadyMsg:
		return m.handlePlanReady(msg)

	case PlanFailedMsg:
		m.state = StateFailed
		m.runErr = msg.Err
		m.status.State = "Failed"
		m.status.Hints = "n new | q quit"
		return m, nil

	case ProgressMsg:
		return m.handleProgress(msg)

	case RunFinishedMsg:
		return m.handleRunFinished(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.status.Message = "Save failed: " + msg.Err.Error()
		} else {
			m.exportPath = msg.Path
			m.status.Message = "Saved " + msg.Path
		}
		return m, nil

	case HistoryLoadedMsg:
		m.historyEntries = msg.Entries
		m.historyErr = msg.Err
		m.historyIndex = 0
		return m, nil

	case HistoryEntryMsg:
		if msg.Err != nil {
			m.historyErr = msg.Err
			return m, nil
		}
		m.historyDoc = m.renderMarkdown(msg.Entry.Content)
		return m, nil

	case ConfigReloadedMsg:
		// The running generator keeps its settings; pick up the rest for
		// the next run.
		m.cfg = msg.Cfg
		m.status.Model = msg.Cfg.API.Model
		m.status.Message = "Config reloaded"
		return m, nil
	}

	// Forward everything else to the focused component
	return m.updateComponents(msg)
}

// handleResize lays the view out for the new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.status.SetWidth(msg.Width)
	m.planList.SetSize(msg.Width, msg.Height)

	viewportHeight := msg.Height - 6 // header, progress, status bar
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width-4, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = viewportHeight
	}

	if r, err := newRenderer(msg.Width-6, m.cfg.UI.Theme); err == nil {
		m.renderer = r
	}
	if m.result != nil {
		m.viewport.SetContent(m.renderMarkdown(m.result.Document))
	}
	if m.progress != nil {
		m.progress.Width = msg.Width - 2
	}

	m.input.Width = msg.Width - 8

	return m, nil
}

// handleKey routes key presses by view state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHistory {
		return m.handleHistoryKey(msg)
	}

	switch m.state {
	case StatePrompt:
		switch {
		case key.Matches(msg, m.keyMap.Submit):
			return m.submitPrompt()
		case key.Matches(msg, m.keyMap.History):
			return m.openHistoryOverlay()
		case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyCtrlQ:
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case StatePlanning, StateGenerating:
		if key.Matches(msg, m.keyMap.Cancel) {
			if m.cancelRun != nil {
				m.cancelRun()
			}
			m.status.Message = "Cancelling..."
			return m, nil
		}
		if msg.Type == tea.KeyCtrlQ {
			if m.cancelRun != nil {
				m.cancelRun()
			}
			return m, tea.Quit
		}
		return m, nil

	case StateDone, StateFailed:
		switch {
		case key.Matches(msg, m.keyMap.Quit), msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.New):
			return m.resetForNewRun()
		case key.Matches(msg, m.keyMap.Save):
			return m, m.exportCmd()
		case key.Matches(msg, m.keyMap.History):
			return m.openHistoryOverlay()
		case key.Matches(msg, m.keyMap.Home):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keyMap.End):
			m.viewport.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// openHistoryOverlay shows the archive browser over the current view.
func (m Model) openHistoryOverlay() (tea.Model, tea.Cmd) {
	if m.history == nil {
		m.status.Message = "History is disabled"
		return m, nil
	}
	m.showHistory = true
	m.historyDoc = ""
	m.historyErr = nil
	m.input.Blur()
	return m, m.loadHistoryCmd()
}

// handleHistoryKey drives the overlay: list navigation and entry viewing.
func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyCtrlQ:
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.History):
		if m.historyDoc != "" {
			// Back out of the document view to the list first.
			m.historyDoc = ""
			return m, nil
		}
		m.showHistory = false
		if m.state == StatePrompt {
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.historyDoc == "" && m.historyIndex > 0 {
			m.historyIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.historyDoc == "" && m.historyIndex < len(m.historyEntries)-1 {
			m.historyIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if m.historyDoc == "" && m.historyIndex < len(m.historyEntries) {
			return m, m.loadEntryCmd(m.historyEntries[m.historyIndex].ID)
		}
		return m, nil
	}
	return m, nil
}

// loadHistoryCmd fetches recent archive entries for the overlay list.
func (m Model) loadHistoryCmd() tea.Cmd {
	history := m.history
	return func() tea.Msg {
		entries, err := history.List(context.Background(), historyOverlayLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// loadEntryCmd fetches one archive entry, including its document text.
func (m Model) loadEntryCmd(id string) tea.Cmd {
	history := m.history
	return func() tea.Msg {
		entry, err := history.Load(context.Background(), id)
		return HistoryEntryMsg{Entry: entry, Err: err}
	}
}

// submitPrompt validates the request and kicks off planning.
func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if len(prompt) < m.cfg.Generation.MinPromptChars {
		m.status.Message = fmt.Sprintf("Prompt too short: need at least %d characters", m.cfg.Generation.MinPromptChars)
		return m, nil
	}

	if m.guard != nil {
		decision := m.guard.Check("local")
		if !decision.Allowed {
			m.status.Message = fmt.Sprintf("Quota exhausted (%d/%d), resets at %s",
				decision.Used, decision.Limit, decision.ResetAt.Format("15:04"))
			return m, nil
		}
	}

	m.prompt = prompt
	m.state = StatePlanning
	m.runErr = nil
	m.result = nil
	m.exportPath = ""
	m.status.State = "Planning"
	m.status.Message = ""
	m.status.Hints = "Esc cancel"
	m.input.Blur()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel

	planner := plan.NewPlanner(m.gen)
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		p, err := planner.CreatePlan(ctx, prompt)
		if err != nil {
			return PlanFailedMsg{Err: err}
		}
		return PlanReadyMsg{Plan: p}
	})
}

// handlePlanReady starts the executor for the fresh plan.
func (m Model) handlePlanReady(msg PlanReadyMsg) (tea.Model, tea.Cmd) {
	// Display copy: the executor mutates its own plan, the view reads
	// this one, updated from snapshots.
	m.currentPlan = clonePlan(msg.Plan)
	m.state = StateGenerating
	m.status.State = "Generating"
	m.progress = components.NewGenerationProgress(msg.Plan.Len())
	m.progress.Width = m.width - 2

	m.snapshots = make(chan plan.Snapshot, 16)
	m.finished = make(chan runOutcome, 1)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel

	snapshots := m.snapshots
	finished := m.finished

	opts := []plan.ExecutorOption{
		plan.WithPublisher(plan.PublisherFunc(func(s plan.Snapshot) {
			snapshots <- s
		})),
	}
	if m.history != nil {
		opts = append(opts, plan.WithArchiver(m.history))
	}
	m.executor = plan.NewExecutor(msg.Plan, m.gen, opts...)

	ex := m.executor
	go func() {
		res, err := ex.Execute(ctx)
		finished <- runOutcome{result: res, err: err}
	}()

	return m, tea.Batch(waitSnapshot(snapshots), waitFinished(finished))
}

// handleProgress applies a snapshot to the display plan and progress box.
func (m Model) handleProgress(msg ProgressMsg) (tea.Model, tea.Cmd) {
	snap := msg.Snapshot
	if m.progress != nil {
		m.progress.Apply(snap)
	}
	applySnapshot(m.currentPlan, snap)
	if !snap.Done {
		m.status.State = fmt.Sprintf("Generating %s", m.currentPlan.Progress())
		return m, waitSnapshot(m.snapshots)
	}
	return m, nil
}

// handleRunFinished takes the executor result and shows the document.
func (m Model) handleRunFinished(msg RunFinishedMsg) (tea.Model, tea.Cmd) {
	m.result = msg.Result
	m.runErr = msg.Err
	if msg.Result != nil {
		m.currentPlan = msg.Result.Plan
	}

	if msg.Err != nil {
		m.state = StateFailed
		m.status.State = "Failed"
	} else {
		m.state = StateDone
		m.status.State = "Done"
	}
	m.status.Hints = "C-s save | C-h history | n new | q quit"

	if m.result != nil && m.result.Document != "" && m.ready {
		m.viewport.SetContent(m.renderMarkdown(m.result.Document))
		m.viewport.GotoTop()
	}
	if m.result != nil && m.result.ArchiveErr != nil {
		m.status.Message = "History archive failed: " + m.result.ArchiveErr.Error()
	}

	return m, nil
}

// resetForNewRun returns to the prompt state for another document.
func (m Model) resetForNewRun() (tea.Model, tea.Cmd) {
	m.state = StatePrompt
	m.currentPlan = nil
	m.executor = nil
	m.result = nil
	m.runErr = nil
	m.progress = nil
	m.exportPath = ""
	m.status.State = "Ready"
	m.status.Message = ""
	m.status.Hints = "Enter generate | Ctrl+H history | q quit"
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

// exportCmd saves the finished document as markdown.
func (m Model) exportCmd() tea.Cmd {
	if m.result == nil || m.result.Document == "" {
		return func() tea.Msg {
			return ExportDoneMsg{Err: fmt.Errorf("no document to save")}
		}
	}
	entry := entryFromResult(m.prompt, m.result)
	return func() tea.Msg {
		opts := export.DefaultOptions()
		exporter, err := export.ForFormat("markdown", opts)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(entry, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// updateComponents forwards non-key messages to the focused component.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.state == StatePrompt {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.ready && (m.state == StateDone || m.state == StateFailed) {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitSnapshot listens for the next execution snapshot.
func waitSnapshot(ch chan plan.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Snapshot: <-ch}
	}
}

// waitFinished listens for the executor to return.
func waitFinished(ch chan runOutcome) tea.Cmd {
	return func() tea.Msg {
		out := <-ch
		return RunFinishedMsg{Result: out.result, Err: out.err}
	}
}

// =============================================================================
// DISPLAY PLAN HELPERS
// =============================================================================

// clonePlan copies a plan so the view can read it while the executor
// mutates its own copy.
func clonePlan(p *plan.Plan) *plan.Plan {
	cp := *p
	cp.Items = append([]plan.Item(nil), p.Items...)
	return &cp
}

// applySnapshot advances the display plan to match an execution snapshot.
func applySnapshot(p *plan.Plan, snap plan.Snapshot) {
	if p == nil {
		return
	}
	if snap.Done {
		failed := snap.Stage == "Failed"
		for i := range p.Items {
			if p.Items[i].Status == plan.ItemInProgress {
				if failed {
					p.Items[i].Status = plan.ItemFailed
				} else {
					p.Items[i].Status = plan.ItemCompleted
				}
			}
		}
		if failed {
			p.Status = plan.StatusFailed
		} else {
			p.Status = plan.StatusCompleted
		}
		return
	}

	p.Status = plan.StatusInProgress
	for i := range p.Items {
		switch {
		case i < snap.ItemIndex:
			p.Items[i].Status = plan.ItemCompleted
		case i == snap.ItemIndex:
			p.Items[i].Status = plan.ItemInProgress
		}
	}
}
