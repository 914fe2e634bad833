// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the architect TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/architect-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar renders the single-line bar at the bottom of the TUI.
// Left side carries the application state, right side the key hints.
type StatusBar struct {
	width int

	// Content
	Model   string // e.g. "gemini-2.5-flash"
	State   string // e.g. "Ready", "Planning", "Generating 3/7"
	Message string // transient message, cleared by the view
	Hints   string // e.g. "Enter generate | Ctrl+S save | q quit"
}

// NewStatusBar creates a status bar sized to the terminal width.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{
		width: width,
		Hints: "Enter generate | Ctrl+H history | q quit",
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// Render renders the status bar.
func (s *StatusBar) Render() string {
	barStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1)

	stateStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan).
		Background(styles.SurfaceDim)

	var left strings.Builder
	if s.Model != "" {
		left.WriteString(s.Model)
		left.WriteString("  ")
	}
	if s.State != "" {
		left.WriteString(stateStyle.Render(s.State))
	}
	if s.Message != "" {
		left.WriteString("  ")
		left.WriteString(s.Message)
	}

	leftStr := left.String()
	rightStr := s.Hints

	// Pad the middle so the hints sit flush right
	pad := s.width - lipgloss.Width(leftStr) - runewidth.StringWidth(rightStr) - 4
	if pad < 1 {
		pad = 1
	}

	return barStyle.Render(leftStr + strings.Repeat(" ", pad) + rightStr)
}
