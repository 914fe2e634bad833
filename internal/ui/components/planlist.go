// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the architect TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/util"
)

// =============================================================================
// PLAN LIST COMPONENT
// =============================================================================

// PlanList renders the section outline of a plan for display in the TUI.
type PlanList struct {
	width  int
	height int
}

// NewPlanList creates a new plan list component.
func NewPlanList(width, height int) *PlanList {
	return &PlanList{
		width:  width,
		height: height,
	}
}

// SetSize updates the dimensions of the plan list.
func (pl *PlanList) SetSize(width, height int) {
	pl.width = width
	pl.height = height
}

// Render renders the plan outline with per-section status.
func (pl *PlanList) Render(p *plan.Plan) string {
	if p == nil {
		return "No plan to display"
	}

	var sb strings.Builder

	sb.WriteString(pl.renderHeader(p))
	sb.WriteString("\n\n")
	sb.WriteString(pl.renderItems(p))

	return sb.String()
}

// renderHeader renders the plan header.
func (pl *PlanList) renderHeader(p *plan.Plan) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#89B4FA")). // Blue
		MarginBottom(1)

	sb.WriteString(titleStyle.Render("Document Outline"))
	sb.WriteString("\n")

	statusStyle := lipgloss.NewStyle().
		Foreground(pl.statusColor(p.Status)).
		Bold(true)

	sb.WriteString(fmt.Sprintf("Status: %s", statusStyle.Render(p.Status.String())))

	if p.Status == plan.StatusInProgress {
		progressStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8")) // Subtext

		sb.WriteString(fmt.Sprintf(" | Sections: %s",
			progressStyle.Render(p.Progress())))
	}

	return sb.String()
}

// renderItems renders the section list.
func (pl *PlanList) renderItems(p *plan.Plan) string {
	var sb strings.Builder

	for i := range p.Items {
		sb.WriteString(pl.renderItem(i+1, &p.Items[i]))
		if i < len(p.Items)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderItem renders a single section line.
func (pl *PlanList) renderItem(num int, item *plan.Item) string {
	var sb strings.Builder

	icon := pl.statusIcon(item.Status)
	iconStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(pl.itemStatusColor(item.Status)))

	current := item.Status == plan.ItemInProgress

	numStyle := lipgloss.NewStyle().
		Bold(current).
		Foreground(lipgloss.Color("#89B4FA")) // Blue

	sb.WriteString(fmt.Sprintf("  %s %s. ",
		iconStyle.Render(icon),
		numStyle.Render(fmt.Sprintf("%d", num))))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#CDD6F4")). // Text
		Bold(current)

	if current {
		titleStyle = titleStyle.Foreground(lipgloss.Color("#F9E2AF")) // Yellow
	}

	title := item.Title
	if pl.width > 20 {
		// Leave room for the icon, number, and duration suffix.
		title = util.TruncateWidth(title, pl.width-16)
	}
	sb.WriteString(titleStyle.Render(title))

	// Duration once the section is done
	if item.Status == plan.ItemCompleted || item.Status == plan.ItemFailed {
		durationStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8")) // Subtext

		sb.WriteString(fmt.Sprintf(" %s",
			durationStyle.Render(fmt.Sprintf("(%.1fs)", item.Duration().Seconds()))))
	}

	if item.Status == plan.ItemFailed && item.Err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")). // Red
			Italic(true)

		sb.WriteString(fmt.Sprintf("\n       Error: %s",
			errorStyle.Render(item.Err.Error())))
	}

	return sb.String()
}

// statusIcon returns the icon for a section status (ASCII-compatible).
func (pl *PlanList) statusIcon(status plan.ItemStatus) string {
	switch status {
	case plan.ItemPending:
		return "[ ]"
	case plan.ItemInProgress:
		return "[>]"
	case plan.ItemCompleted:
		return "[x]"
	case plan.ItemFailed:
		return "[X]"
	default:
		return "[?]"
	}
}

// statusColor returns the color for a plan status.
func (pl *PlanList) statusColor(status plan.Status) lipgloss.Color {
	switch status {
	case plan.StatusPending:
		return lipgloss.Color("#A6ADC8") // Subtext
	case plan.StatusInProgress:
		return lipgloss.Color("#F9E2AF") // Yellow
	case plan.StatusCompleted:
		return lipgloss.Color("#A6E3A1") // Green
	case plan.StatusFailed:
		return lipgloss.Color("#F38BA8") // Red
	default:
		return lipgloss.Color("#CDD6F4") // Text
	}
}

// itemStatusColor returns the color for a section status.
func (pl *PlanList) itemStatusColor(status plan.ItemStatus) string {
	switch status {
	case plan.ItemPending:
		return "#6C7086" // Overlay0
	case plan.ItemInProgress:
		return "#F9E2AF" // Yellow
	case plan.ItemCompleted:
		return "#A6E3A1" // Green
	case plan.ItemFailed:
		return "#F38BA8" // Red
	default:
		return "#CDD6F4" // Text
	}
}

// =============================================================================
// COMPACT PLAN PROGRESS
// =============================================================================

// RenderCompactProgress renders a compact one-line progress indicator.
func RenderCompactProgress(p *plan.Plan) string {
	if p == nil {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9E2AF")). // Yellow
		Bold(true)

	return style.Render(fmt.Sprintf("Generating: %s sections", p.Progress()))
}
