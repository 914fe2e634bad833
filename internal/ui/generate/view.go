// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the document generation view for the TUI.
package generate

import (
	"fmt"
	"strings"

	"github.com/jeranaias/architect-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n\n")

	if m.showHistory {
		sb.WriteString(m.renderHistory())
		sb.WriteString("\n")
		sb.WriteString(m.status.Render())
		return sb.String()
	}

	switch m.state {
	case StatePrompt:
		sb.WriteString(m.renderPrompt())
	case StatePlanning:
		sb.WriteString(m.renderPlanning())
	case StateGenerating:
		sb.WriteString(m.renderGenerating())
	case StateDone:
		sb.WriteString(m.renderDone())
	case StateFailed:
		sb.WriteString(m.renderFailed())
	}

	sb.WriteString("\n")
	sb.WriteString(m.status.Render())

	return sb.String()
}

// renderHeader renders the application header line.
func (m Model) renderHeader() string {
	title := m.theme.Header.Render("architect")
	subtitle := m.theme.Subtitle.Render("  AI document generation")
	return title + subtitle
}

// renderPrompt renders the request input screen.
func (m Model) renderPrompt() string {
	var sb strings.Builder

	sb.WriteString(m.theme.InputLabel.Render("What should I write?"))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.InputFocused.Render(m.input.View()))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.Muted.Render(fmt.Sprintf(
		"The request is planned into 6-8 sections and generated one at a time. Minimum %d characters.",
		m.cfg.Generation.MinPromptChars)))

	return sb.String()
}

// renderPlanning renders the spinner while the outline is being created.
func (m Model) renderPlanning() string {
	var sb strings.Builder

	sb.WriteString(m.spin.View())
	sb.WriteString(" ")
	sb.WriteString(m.theme.Body.Render("Planning document sections..."))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.Muted.Render("Request: " + m.prompt))

	return sb.String()
}

// renderGenerating renders the live outline and progress box.
func (m Model) renderGenerating() string {
	var sb strings.Builder

	sb.WriteString(m.planList.Render(m.currentPlan))
	sb.WriteString("\n\n")
	if m.progress != nil {
		sb.WriteString(m.spin.View())
		sb.WriteString(" ")
		sb.WriteString(m.progress.Render())
	}

	return sb.String()
}

// renderDone renders the finished document in the viewport.
func (m Model) renderDone() string {
	var sb strings.Builder

	if m.ready {
		sb.WriteString(m.theme.Document.Render(m.viewport.View()))
	} else if m.result != nil {
		sb.WriteString(m.result.Document)
	}
	sb.WriteString("\n")

	if m.exportPath != "" {
		sb.WriteString(styles.RenderSuccess("Saved to " + m.exportPath))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderHistory renders the archive overlay: entry list or opened document.
func (m Model) renderHistory() string {
	var sb strings.Builder

	sb.WriteString(m.theme.Title.Render("History"))
	sb.WriteString("\n\n")

	if m.historyErr != nil {
		sb.WriteString(styles.RenderError("History unavailable: " + m.historyErr.Error()))
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.Muted.Render("Esc close"))
		return sb.String()
	}

	if m.historyDoc != "" {
		sb.WriteString(m.historyDoc)
		sb.WriteString("\n")
		sb.WriteString(m.theme.Muted.Render("Esc back"))
		return sb.String()
	}

	if len(m.historyEntries) == 0 {
		sb.WriteString(m.theme.Muted.Render("No documents in the archive yet."))
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.Muted.Render("Esc close"))
		return sb.String()
	}

	for i, e := range m.historyEntries {
		marker := "  "
		line := fmt.Sprintf("%s  %s (%d sections)",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Title, e.TotalSections)
		if i == m.historyIndex {
			marker = "> "
			sb.WriteString(m.theme.Body.Render(marker + line))
		} else {
			sb.WriteString(m.theme.Muted.Render(marker + line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.Muted.Render("j/k select | Enter open | Esc close"))

	return sb.String()
}

// renderFailed renders the failure screen with the partial outline.
func (m Model) renderFailed() string {
	var sb strings.Builder

	if m.runErr != nil {
		sb.WriteString(styles.RenderError("Generation failed: " + m.runErr.Error()))
		sb.WriteString("\n\n")
	}
	if m.currentPlan != nil {
		sb.WriteString(m.planList.Render(m.currentPlan))
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.Muted.Render("Completed sections are kept above. Press n to start over."))
	}

	return sb.String()
}
