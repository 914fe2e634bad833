// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the architect TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/architect-tui/internal/plan"
	"github.com/jeranaias/architect-tui/internal/ui/styles"
)

// =============================================================================
// GENERATION PROGRESS COMPONENT
// =============================================================================

// ProgressStatus represents the state of a generation progress indicator.
type ProgressStatus string

const (
	ProgressStatusRunning  ProgressStatus = "Running"
	ProgressStatusComplete ProgressStatus = "Complete"
	ProgressStatusError    ProgressStatus = "Error"
)

// GenerationProgress tracks a document generation run for display.
// It is fed from plan.Snapshot updates and renders the current section,
// overall percentage, and elapsed time.
type GenerationProgress struct {
	// Section tracking
	CurrentSection int // Zero-based index, -1 when no section is active
	TotalSections  int
	Stage          string // e.g. "Generating: Architecture Overview"

	// Progress
	Percent int // 0-100

	// Time tracking
	SectionStart time.Time
	OverallStart time.Time

	// State
	Status ProgressStatus

	// Display settings
	Width   int
	Compact bool
}

// NewGenerationProgress creates a progress tracker for a run.
func NewGenerationProgress(totalSections int) *GenerationProgress {
	if totalSections < 1 {
		totalSections = 1
	}
	now := time.Now()
	return &GenerationProgress{
		CurrentSection: -1,
		TotalSections:  totalSections,
		SectionStart:   now,
		OverallStart:   now,
		Status:         ProgressStatusRunning,
		Width:          80,
	}
}

// Apply updates the tracker from an execution snapshot.
func (g *GenerationProgress) Apply(snap plan.Snapshot) {
	if snap.Total > 0 {
		g.TotalSections = snap.Total
	}
	g.Stage = snap.Stage
	g.Percent = snap.Percent

	if snap.ItemIndex != g.CurrentSection {
		g.CurrentSection = snap.ItemIndex
		g.SectionStart = time.Now()
	}

	if snap.Done {
		if snap.Stage == "Failed" {
			g.Status = ProgressStatusError
		} else {
			g.Status = ProgressStatusComplete
		}
	}
}

// SectionElapsed returns the elapsed time for the current section.
func (g *GenerationProgress) SectionElapsed() time.Duration {
	if g.SectionStart.IsZero() {
		return 0
	}
	return time.Since(g.SectionStart)
}

// OverallElapsed returns the total elapsed time.
func (g *GenerationProgress) OverallElapsed() time.Duration {
	if g.OverallStart.IsZero() {
		return 0
	}
	return time.Since(g.OverallStart)
}

// IsActive returns true while the run is still producing sections.
func (g *GenerationProgress) IsActive() bool {
	return g.Status == ProgressStatusRunning
}

// =============================================================================
// RENDERING
// =============================================================================

// Render renders the progress indicator.
func (g *GenerationProgress) Render() string {
	if g.Compact {
		return g.renderCompact()
	}
	return g.renderFull()
}

// renderFull renders the full boxed progress indicator.
func (g *GenerationProgress) renderFull() string {
	width := g.Width
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4 // borders and padding

	if contentWidth < 30 {
		// Too narrow for the boxed display
		return g.renderCompact()
	}

	var lines []string
	lines = append(lines, g.renderStageLine())
	lines = append(lines, g.renderBarLine(contentWidth))
	lines = append(lines, g.renderTimeLine())

	content := strings.Join(lines, "\n")

	borderColor := g.borderColor()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth)

	return boxStyle.Render(content)
}

// renderCompact renders a single-line progress indicator.
// Format: [3/7] Generating: Overview | 12s | 42% [####------]
func (g *GenerationProgress) renderCompact() string {
	var parts []string

	counter := fmt.Sprintf("[%d/%d]", g.sectionNumber(), g.TotalSections)
	counterStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Purple)
	parts = append(parts, counterStyle.Render(counter))

	if g.Stage != "" {
		stageStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
		parts = append(parts, stageStyle.Render(g.Stage))
	}

	timeStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	parts = append(parts, timeStyle.Render(formatProgressDuration(g.SectionElapsed())))

	bar := styles.RenderProgressBar(10, float64(g.Percent))
	barStyle := lipgloss.NewStyle().Foreground(g.barColor())
	parts = append(parts, barStyle.Render(fmt.Sprintf("%d%% %s", g.Percent, bar)))

	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	return strings.Join(parts, sep)
}

// renderStageLine renders the section indicator line.
func (g *GenerationProgress) renderStageLine() string {
	num := fmt.Sprintf("Section %d of %d", g.sectionNumber(), g.TotalSections)

	numStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Purple)

	stageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	if g.Stage != "" {
		return numStyle.Render(num) + ": " + stageStyle.Render(g.Stage)
	}
	return numStyle.Render(num)
}

// renderBarLine renders the progress bar line.
func (g *GenerationProgress) renderBarLine(width int) string {
	barWidth := width - 10 // room for the percentage
	if barWidth < 10 {
		barWidth = 10
	}

	bar := styles.RenderProgressBar(barWidth, float64(g.Percent))

	percentStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(g.barColor())

	barStyle := lipgloss.NewStyle().
		Foreground(g.barColor())

	return barStyle.Render(bar) + " " + percentStyle.Render(fmt.Sprintf("%d%%", g.Percent))
}

// renderTimeLine renders the elapsed time line.
func (g *GenerationProgress) renderTimeLine() string {
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	timeStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	return labelStyle.Render("Elapsed: ") +
		timeStyle.Render(formatProgressDuration(g.SectionElapsed())) +
		labelStyle.Render(" | Total: ") +
		timeStyle.Render(formatProgressDuration(g.OverallElapsed()))
}

// sectionNumber returns the one-based section number for display.
func (g *GenerationProgress) sectionNumber() int {
	if g.CurrentSection < 0 {
		if g.Status == ProgressStatusComplete {
			return g.TotalSections
		}
		return 0
	}
	return g.CurrentSection + 1
}

func (g *GenerationProgress) borderColor() lipgloss.AdaptiveColor {
	switch g.Status {
	case ProgressStatusComplete:
		return styles.Emerald
	case ProgressStatusError:
		return styles.Rose
	default:
		return styles.Purple
	}
}

func (g *GenerationProgress) barColor() lipgloss.AdaptiveColor {
	switch g.Status {
	case ProgressStatusComplete:
		return styles.Emerald
	case ProgressStatusError:
		return styles.Rose
	default:
		return styles.Amber
	}
}

// formatProgressDuration formats a duration compactly: "850ms", "12s", "2m05s".
func formatProgressDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
