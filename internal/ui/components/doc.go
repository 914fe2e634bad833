// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the architect TUI.
//
// # Key Types
//
//   - PlanList: renders the section outline with per-section status icons
//   - GenerationProgress: boxed or compact progress indicator fed from
//     execution snapshots
//   - StatusBar: the single-line state bar at the bottom of the screen
//
// # Usage
//
//	list := components.NewPlanList(width, height)
//	outline := list.Render(p)
//
//	prog := components.NewGenerationProgress(p.Len())
//	prog.Apply(snapshot)
//	box := prog.Render()
//
// Components are plain renderers: they hold display state only and return
// styled strings for the parent Bubble Tea model to compose.
package components
