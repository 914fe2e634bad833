// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota enforces per-user generation limits with a rolling window.
package quota

import (
	"errors"
	"testing"
	"time"
)

// fakeClock is an adjustable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestGuard(limit int, window time.Duration) (*Guard, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGuard(WithLimit(limit), WithWindow(window), WithClock(clock.now))
	return g, clock
}

func TestCheckAllowsUpToLimit(t *testing.T) {
	g, _ := newTestGuard(3, time.Hour)

	for i := 1; i <= 3; i++ {
		d := g.Check("user")
		if !d.Allowed {
			t.Errorf("check %d denied, want allowed", i)
		}
		if d.Used != i {
			t.Errorf("check %d used = %d, want %d", i, d.Used, i)
		}
		if d.Remaining != 3-i {
			t.Errorf("check %d remaining = %d, want %d", i, d.Remaining, 3-i)
		}
	}

	d := g.Check("user")
	if d.Allowed {
		t.Error("fourth check should be denied")
	}
	if d.Used != 4 || d.Remaining != 0 {
		t.Errorf("decision = %+v", d)
	}
}

func TestDeniedChecksStillCount(t *testing.T) {
	g, clock := newTestGuard(2, time.Hour)

	g.Check("user")
	g.Check("user")
	// Denied attempts extend the window too; hammering the limit does not
	// free it up sooner.
	d := g.Check("user")
	if d.Allowed {
		t.Fatal("expected denial")
	}
	clock.advance(30 * time.Minute)
	if d := g.Check("user"); d.Allowed {
		t.Error("still inside the window, should stay denied")
	}
}

func TestWindowExpiry(t *testing.T) {
	g, clock := newTestGuard(2, time.Hour)

	g.Check("user")
	g.Check("user")
	if d := g.Check("user"); d.Allowed {
		t.Fatal("expected denial at limit")
	}

	clock.advance(61 * time.Minute)
	d := g.Check("user")
	if !d.Allowed {
		t.Error("old attempts should have expired")
	}
	if d.Used != 1 {
		t.Errorf("used = %d, want 1", d.Used)
	}
}

func TestResetAt(t *testing.T) {
	g, clock := newTestGuard(5, time.Hour)

	first := clock.t
	d := g.Check("user")
	want := first.Add(time.Hour)
	if !d.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", d.ResetAt, want)
	}

	clock.advance(10 * time.Minute)
	d = g.Check("user")
	// Oldest attempt still anchors the reset time.
	if !d.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	g, _ := newTestGuard(1, time.Hour)

	if d := g.Check("alice"); !d.Allowed {
		t.Error("alice's first check denied")
	}
	if d := g.Check("bob"); !d.Allowed {
		t.Error("bob's first check denied")
	}
	if d := g.Check("alice"); d.Allowed {
		t.Error("alice's second check should be denied")
	}
}

func TestPeekDoesNotCount(t *testing.T) {
	g, _ := newTestGuard(2, time.Hour)

	g.Check("user")
	for i := 0; i < 5; i++ {
		d := g.Peek("user")
		if d.Used != 1 {
			t.Fatalf("peek %d used = %d, want 1", i, d.Used)
		}
		if !d.Allowed {
			t.Fatalf("peek %d denied", i)
		}
	}
	if d := g.Check("user"); !d.Allowed || d.Used != 2 {
		t.Errorf("decision = %+v", d)
	}
}

func TestReset(t *testing.T) {
	g, _ := newTestGuard(1, time.Hour)

	g.Check("user")
	if d := g.Check("user"); d.Allowed {
		t.Fatal("expected denial")
	}
	g.Reset("user")
	if d := g.Check("user"); !d.Allowed {
		t.Error("check after reset should be allowed")
	}
}

func TestDefaults(t *testing.T) {
	g := NewGuard()
	if g.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", g.Limit(), DefaultLimit)
	}
}

// memJournal is an in-memory Journal for tests.
type memJournal struct {
	events  map[string][]time.Time
	readErr error
}

func newMemJournal() *memJournal {
	return &memJournal{events: map[string][]time.Time{}}
}

func (j *memJournal) RecordQuotaEvent(userID string, at time.Time) error {
	j.events[userID] = append(j.events[userID], at)
	return nil
}

func (j *memJournal) QuotaWindow(userID string, since time.Time) ([]time.Time, error) {
	if j.readErr != nil {
		return nil, j.readErr
	}
	var out []time.Time
	for _, ts := range j.events[userID] {
		if !ts.Before(since) {
			out = append(out, ts)
		}
	}
	return out, nil
}

func TestJournalCarriesUsageAcrossGuards(t *testing.T) {
	journal := newMemJournal()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	// First "process" uses up the whole window.
	g1 := NewGuard(WithLimit(2), WithWindow(time.Hour), WithClock(clock.now), WithJournal(journal))
	g1.Check("user")
	g1.Check("user")

	// A fresh guard over the same journal must see that usage.
	g2 := NewGuard(WithLimit(2), WithWindow(time.Hour), WithClock(clock.now), WithJournal(journal))
	if d := g2.Check("user"); d.Allowed {
		t.Errorf("fresh guard allowed the call, decision = %+v", d)
	}

	clock.advance(2 * time.Hour)
	if d := g2.Check("user"); !d.Allowed {
		t.Errorf("expired window should allow, decision = %+v", d)
	}
}

func TestJournalPeekDoesNotRecord(t *testing.T) {
	journal := newMemJournal()
	g, _ := newTestGuard(2, time.Hour)
	WithJournal(journal)(g)

	g.Peek("user")
	if n := len(journal.events["user"]); n != 0 {
		t.Errorf("peek recorded %d events", n)
	}
	g.Check("user")
	if n := len(journal.events["user"]); n != 1 {
		t.Errorf("check recorded %d events, want 1", n)
	}
	if d := g.Peek("user"); d.Used != 1 {
		t.Errorf("peek used = %d, want 1", d.Used)
	}
}

func TestJournalReadFailureFallsBackToMemory(t *testing.T) {
	journal := newMemJournal()
	journal.readErr = errors.New("database locked")
	g, _ := newTestGuard(2, time.Hour)
	WithJournal(journal)(g)

	// Generation must not be blocked by a broken journal.
	if d := g.Check("user"); !d.Allowed {
		t.Errorf("decision = %+v, want allowed", d)
	}
	g.Check("user")
	if d := g.Check("user"); d.Allowed {
		t.Error("in-memory fallback should still enforce the limit")
	}
}
