// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"sync"
	"time"
)

// =============================================================================
// STATUS STORE
// =============================================================================

// DefaultStatusTTL is how long a run's status stays visible after its last
// update. Stale entries for abandoned runs expire on their own.
const DefaultStatusTTL = 30 * time.Minute

// RunStatus is the externally visible state of a generation run.
type RunStatus struct {
	// PlanID identifies the run
	PlanID string

	// Stage is a short human-readable label
	Stage string

	// Percent is the completion estimate, 0-100
	Percent int

	// Done is true once the run reached a terminal state
	Done bool

	// UpdatedAt is when this status was last written
	UpdatedAt time.Time
}

// StatusStore keeps the latest status per run with a TTL.
type StatusStore struct {
	mu      sync.RWMutex
	entries map[string]statusEntry
	ttl     time.Duration

	// now is injectable for tests
	now func() time.Time
}

type statusEntry struct {
	status    RunStatus
	expiresAt time.Time
}

// NewStatusStore creates a status store with the given TTL (default: 30m).
func NewStatusStore(ttl time.Duration) *StatusStore {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &StatusStore{
		entries: make(map[string]statusEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set stores the latest status for a run and refreshes its TTL.
func (s *StatusStore) Set(status RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status.UpdatedAt = s.now()
	s.entries[status.PlanID] = statusEntry{
		status:    status,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Get returns the latest status for a run and whether one exists.
func (s *StatusStore) Get(planID string) (RunStatus, bool) {
	s.mu.RLock()
	entry, ok := s.entries[planID]
	s.mu.RUnlock()
	if !ok {
		return RunStatus{}, false
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, planID)
		s.mu.Unlock()
		return RunStatus{}, false
	}
	return entry.status, true
}

// Delete removes the status for a run.
func (s *StatusStore) Delete(planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, planID)
}

// Sweep drops all expired entries and returns how many were removed.
func (s *StatusStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
