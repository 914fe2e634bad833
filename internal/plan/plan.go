// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plan provides plan creation and execution for AI document generation.
package plan

import (
	"fmt"
	"time"
)

// =============================================================================
// ITEM STATUS
// =============================================================================

// ItemStatus represents the current state of a plan item.
type ItemStatus int

const (
	// ItemPending - Item not yet started
	ItemPending ItemStatus = iota

	// ItemInProgress - Item currently being generated
	ItemInProgress

	// ItemCompleted - Item generated successfully
	ItemCompleted

	// ItemFailed - Item generation failed
	ItemFailed
)

// String returns the string representation of an item status.
func (s ItemStatus) String() string {
	switch s {
	case ItemPending:
		return "Pending"
	case ItemInProgress:
		return "InProgress"
	case ItemCompleted:
		return "Completed"
	case ItemFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal returns true if the item is in a terminal state.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemCompleted || s == ItemFailed
}

// =============================================================================
// PLAN ITEM
// =============================================================================

// Item represents a single section in a document plan.
type Item struct {
	// ID is a unique identifier for this item
	ID string

	// Title is the section heading shown in the document
	Title string

	// Description is a short summary of what the section should cover
	Description string

	// Status is the current generation status of this item
	Status ItemStatus

	// StartTime is when generation of this item started
	StartTime time.Time

	// EndTime is when generation of this item finished
	EndTime time.Time

	// Err contains any error that occurred while generating this item
	Err error
}

// Duration returns how long this item took to generate.
func (it *Item) Duration() time.Duration {
	if it.StartTime.IsZero() {
		return 0
	}
	if it.EndTime.IsZero() {
		return time.Since(it.StartTime)
	}
	return it.EndTime.Sub(it.StartTime)
}

// =============================================================================
// PLAN STATUS
// =============================================================================

// Status represents the overall state of a plan.
type Status int

const (
	// StatusPending - Plan created but execution not started
	StatusPending Status = iota

	// StatusInProgress - Plan is currently executing
	StatusInProgress

	// StatusCompleted - All items generated successfully
	StatusCompleted

	// StatusFailed - Execution halted on a failed item
	StatusFailed
)

// String returns the string representation of a plan status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// =============================================================================
// PLAN
// =============================================================================

// Plan represents an ordered list of document sections to generate.
type Plan struct {
	// ID is a unique identifier for this plan
	ID string

	// Prompt is the original user request the plan was derived from
	Prompt string

	// Items are the sections in generation order
	Items []Item

	// Status is the overall status of the plan
	Status Status

	// CreatedAt is when the plan was created
	CreatedAt time.Time

	// StartedAt is when execution started
	StartedAt time.Time

	// CompletedAt is when execution reached a terminal state
	CompletedAt time.Time
}

// Len returns the number of items in the plan.
func (p *Plan) Len() int {
	return len(p.Items)
}

// Progress returns a human-readable completion summary like "3/7".
func (p *Plan) Progress() string {
	return fmt.Sprintf("%d/%d", p.CompletedCount(), len(p.Items))
}

// CompletedCount returns the number of items generated successfully.
func (p *Plan) CompletedCount() int {
	n := 0
	for i := range p.Items {
		if p.Items[i].Status == ItemCompleted {
			n++
		}
	}
	return n
}

// FailedItem returns the failed item, or nil if no item has failed.
func (p *Plan) FailedItem() *Item {
	for i := range p.Items {
		if p.Items[i].Status == ItemFailed {
			return &p.Items[i]
		}
	}
	return nil
}

// IsTerminal returns true if the plan has finished executing.
func (p *Plan) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// Validate checks plan structural invariants: at least one item, every
// item has a non-empty title, and at most one item in progress.
func (p *Plan) Validate() error {
	if len(p.Items) == 0 {
		return fmt.Errorf("plan has no items")
	}
	inProgress := 0
	for i := range p.Items {
		if p.Items[i].Title == "" {
			return fmt.Errorf("item %d has an empty title", i)
		}
		if p.Items[i].Status == ItemInProgress {
			inProgress++
		}
	}
	if inProgress > 1 {
		return fmt.Errorf("plan has %d items in progress, want at most 1", inProgress)
	}
	return nil
}
