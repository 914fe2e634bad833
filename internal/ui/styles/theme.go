// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the architect TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// THEME
// =============================================================================

// Theme holds the pre-built lipgloss styles shared by the TUI views.
// Build one with NewTheme and pass it down so every view renders consistently.
type Theme struct {
	// Layout
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Document lipgloss.Style

	// Text
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	ErrorText lipgloss.Style

	// Input
	InputLabel   lipgloss.Style
	InputFocused lipgloss.Style

	// Status
	StatusOK      lipgloss.Style
	StatusWorking lipgloss.Style
	StatusFailed  lipgloss.Style

	width  int
	height int
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	t := &Theme{}

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Document = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.InputLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.InputFocused = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(FocusRing).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusWorking = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.StatusFailed = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	return t
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Width returns the last recorded terminal width.
func (t *Theme) Width() int { return t.width }

// Height returns the last recorded terminal height.
func (t *Theme) Height() int { return t.height }
