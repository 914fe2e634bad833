// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan provides plan creation and execution for AI document
// generation.
//
// This package turns a user prompt into an ordered outline of sections,
// then generates each section in order, accumulating a markdown document
// and publishing progress as it goes.
//
// # Key Types
//
//   - Plan: Ordered list of document sections with status tracking
//   - Item: Single section with title, description, and status
//   - Planner: Derives a plan from a natural language request
//   - Executor: Generates sections in order with progress snapshots
//   - Document: Accumulates generated markdown sections
//
// # Usage
//
// Derive a plan from a request:
//
//	planner := plan.NewPlanner(client)
//	p, err := planner.CreatePlan(ctx, "Explain how TLS handshakes work")
//
// Execute it:
//
//	exec := plan.NewExecutor(p, client, plan.WithPublisher(pub))
//	result, err := exec.Execute(ctx)
//
// # Execution Semantics
//
// Items run strictly in order, one at a time. The first failure halts the
// run permanently: the failed item is marked Failed, every later item stays
// Pending, and the plan can never be resumed. Re-running a finished plan is
// a no-op.
package plan
