// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the document generation view for the TUI.
package generate

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/quota"
	"github.com/jeranaias/architect-tui/internal/storage"
	"github.com/jeranaias/architect-tui/internal/ui/components"
	"github.com/jeranaias/architect-tui/internal/ui/styles"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// State represents the current state of the generate view.
type State int

const (
	StatePrompt     State = iota // Waiting for the user's request
	StatePlanning                // Planner call in flight
	StateGenerating              // Executor producing sections
	StateDone                    // Run completed, document on screen
	StateFailed                  // Planning or execution failed
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the generate view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Generation pipeline
	gen     plan.TextGenerator
	history *storage.History // nil when history is disabled
	cfg     *config.Config
	guard   *quota.Guard // nil when the quota is disabled

	// Current run
	prompt      string
	currentPlan *plan.Plan
	executor    *plan.Executor
	result      *plan.Result
	runErr      error
	exportPath  string

	// Executor -> UI plumbing
	snapshots chan plan.Snapshot
	finished  chan runOutcome
	cancelRun context.CancelFunc

	// UI components
	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model
	planList *components.PlanList
	progress *components.GenerationProgress
	status   *components.StatusBar

	// Markdown rendering
	renderer *glamour.TermRenderer

	// History overlay
	showHistory    bool
	historyEntries []storage.Entry
	historyIndex   int
	historyDoc     string // rendered document of the opened entry, "" = list view
	historyErr     error

	// Key bindings
	keyMap KeyMap
}

// runOutcome carries the executor return values across the goroutine boundary.
type runOutcome struct {
	result *plan.Result
	err    error
}

// New creates the generate view. history may be nil when archiving is
// disabled in the config.
func New(gen plan.TextGenerator, history *storage.History, cfg *config.Config) Model {
	input := textinput.New()
	input.Placeholder = "Describe the document you want, e.g. \"Design a rate limiter for a public API\""
	input.CharLimit = 2000
	input.Width = 76
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
	sp.Style = lipgloss.NewStyle().Foreground(styles.Amber)

	sb := components.NewStatusBar(80)
	sb.Model = cfg.API.Model
	sb.State = "Ready"

	var guard *quota.Guard
	if cfg.Quota.Enabled {
		opts := []quota.GuardOption{
			quota.WithLimit(cfg.Quota.Limit),
			quota.WithWindow(time.Duration(cfg.Quota.WindowMinutes) * time.Minute),
		}
		if history != nil {
			opts = append(opts, quota.WithJournal(history))
		}
		guard = quota.NewGuard(opts...)
	}

	return Model{
		state:    StatePrompt,
		theme:    styles.NewTheme(),
		gen:      gen,
		history:  history,
		cfg:      cfg,
		guard:    guard,
		input:    input,
		spin:     sp,
		planList: components.NewPlanList(80, 24),
		status:   sb,
		keyMap:   DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// CurrentState returns the view state, exposed for tests.
func (m Model) CurrentState() State {
	return m.state
}

// newRenderer builds a glamour renderer sized to the viewport.
func newRenderer(width int, theme string) (*glamour.TermRenderer, error) {
	style := glamour.WithAutoStyle()
	switch theme {
	case "light":
		style = glamour.WithStandardStyle("light")
	case "dark":
		style = glamour.WithStandardStyle("dark")
	}
	return glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
	)
}

// renderMarkdown renders the document for the viewport, falling back to the
// raw markdown if the renderer is unavailable.
func (m *Model) renderMarkdown(doc string) string {
	if m.renderer == nil {
		return doc
	}
	out, err := m.renderer.Render(doc)
	if err != nil {
		return doc
	}
	return out
}

// entryFromResult builds a storage entry for exporting the finished run.
func entryFromResult(prompt string, res *plan.Result) *storage.Entry {
	sections := make([]storage.Section, 0, res.Plan.Len())
	for _, item := range res.Plan.Items {
		sections = append(sections, storage.Section{
			Title:       item.Title,
			Description: item.Description,
		})
	}
	return &storage.Entry{
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
}
