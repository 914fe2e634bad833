// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the architect TUI.
//
// # Key Types
//
//   - Theme: pre-built lipgloss styles shared by the TUI views
//   - SpinnerConfig: frame set and speed for ASCII spinner animations
//   - StatusIndicatorSet: shape indicators for colorblind accessibility
//
// # Usage
//
//	theme := styles.NewTheme()
//	header := theme.Header.Render("architect")
//	bar := styles.RenderProgressBar(30, 42.0)
//
// All colors are lipgloss.AdaptiveColor pairs so the palette adapts to
// light and dark terminals without configuration. Indicators and spinner
// frames are ASCII-only for compatibility with restricted terminals.
package styles
