// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import "time"

// =============================================================================
// PROGRESS SNAPSHOTS
// =============================================================================

// Snapshot is a point-in-time view of an execution, published before each
// section starts and again when the run reaches a terminal state.
type Snapshot struct {
	// PlanID identifies the plan being executed
	PlanID string

	// Stage is a short human-readable label like "Generating: Overview"
	Stage string

	// Percent is the whole-number completion estimate, 0-100
	Percent int

	// ItemIndex is the zero-based index of the current item, -1 when the
	// run has finished
	ItemIndex int

	// Total is the number of items in the plan
	Total int

	// Done is true once the run has reached a terminal state
	Done bool

	// At is when the snapshot was taken
	At time.Time
}

// percentFor returns the completion estimate published when item i of n
// starts: floor(i/n*100). The estimate deliberately counts only finished
// items, so the bar never overstates progress mid-section.
func percentFor(i, n int) int {
	if n <= 0 {
		return 0
	}
	return i * 100 / n
}

// Publisher receives progress snapshots during execution. Publish must not
// block for long; it is called on the executing goroutine.
type Publisher interface {
	Publish(s Snapshot)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(s Snapshot)

// Publish calls f(s).
func (f PublisherFunc) Publish(s Snapshot) {
	f(s)
}

// NopPublisher discards all snapshots.
type NopPublisher struct{}

// Publish discards the snapshot.
func (NopPublisher) Publish(Snapshot) {}
