// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota enforces per-user generation limits with a rolling window.
package quota

import (
	"sync"
	"time"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultLimit is the number of generations allowed per window
	DefaultLimit = 10

	// DefaultWindow is the rolling window length
	DefaultWindow = time.Hour
)

// =============================================================================
// DECISION
// =============================================================================

// Decision is the outcome of a quota check.
type Decision struct {
	// Allowed is true if the request may proceed
	Allowed bool

	// Used is the number of requests counted in the current window,
	// including this one
	Used int

	// Remaining is how many requests are left in the window
	Remaining int

	// Limit is the configured window limit
	Limit int

	// ResetAt is when the oldest counted request falls out of the window
	ResetAt time.Time
}

// =============================================================================
// JOURNAL
// =============================================================================

// Journal persists quota events so usage survives process restarts. The
// history database implements it.
type Journal interface {
	// RecordQuotaEvent logs one attempt for the user.
	RecordQuotaEvent(userID string, at time.Time) error

	// QuotaWindow returns the user's attempt timestamps at or after since,
	// oldest first.
	QuotaWindow(userID string, since time.Time) ([]time.Time, error)
}

// =============================================================================
// GUARD
// =============================================================================

// Guard tracks request timestamps per user and enforces a rolling-window
// limit. Every Check counts against the quota, allowed or not, which matches
// how the serving tier meters attempts rather than successes.
//
// With a Journal attached the journal is the source of truth and usage
// carries across processes; a journal read failure falls back to the
// in-memory window rather than blocking generation.
type Guard struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	seen    map[string][]time.Time
	journal Journal

	// now is injectable for tests
	now func() time.Time
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithLimit overrides the per-window request limit.
func WithLimit(n int) GuardOption {
	return func(g *Guard) {
		if n > 0 {
			g.limit = n
		}
	}
}

// WithWindow overrides the rolling window length.
func WithWindow(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.window = d
		}
	}
}

// WithJournal attaches a persistent event journal.
func WithJournal(j Journal) GuardOption {
	return func(g *Guard) {
		g.journal = j
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGuard creates a quota guard with the default limit of 10 per hour.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		limit:  DefaultLimit,
		window: DefaultWindow,
		seen:   map[string][]time.Time{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit returns the configured per-window limit.
func (g *Guard) Limit() int {
	return g.limit
}

// Check records an attempt for the user and reports whether it is within
// quota. Timestamps older than the window are dropped first.
func (g *Guard) Check(userID string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-g.window)

	if g.journal != nil {
		if prior, err := g.journal.QuotaWindow(userID, cutoff); err == nil {
			// Best effort: a lost write only under-counts.
			_ = g.journal.RecordQuotaEvent(userID, now)
			return g.decide(append(prior, now))
		}
	}

	kept := g.seen[userID][:0]
	for _, ts := range g.seen[userID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	g.seen[userID] = kept

	return g.decide(kept)
}

// decide builds a Decision from the attempts inside the window, oldest
// first and including the current one. Caller holds g.mu.
func (g *Guard) decide(attempts []time.Time) Decision {
	used := len(attempts)
	remaining := g.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   used <= g.limit,
		Used:      used,
		Remaining: remaining,
		Limit:     g.limit,
		ResetAt:   attempts[0].Add(g.window),
	}
}

// Peek reports the user's current usage without recording an attempt.
func (g *Guard) Peek(userID string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-g.window)

	window := g.seen[userID]
	if g.journal != nil {
		if prior, err := g.journal.QuotaWindow(userID, cutoff); err == nil {
			window = prior
		}
	}

	used := 0
	var oldest time.Time
	for _, ts := range window {
		if ts.After(cutoff) {
			if used == 0 {
				oldest = ts
			}
			used++
		}
	}

	remaining := g.limit - used
	if remaining < 0 {
		remaining = 0
	}
	resetAt := now
	if used > 0 {
		resetAt = oldest.Add(g.window)
	}
	return Decision{
		Allowed:   used < g.limit,
		Used:      used,
		Remaining: remaining,
		Limit:     g.limit,
		ResetAt:   resetAt,
	}
}

// Reset clears all recorded attempts for a user.
func (g *Guard) Reset(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, userID)
}
