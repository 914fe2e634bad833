// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/architect-tui/internal/plan"
)

func testPlan() *plan.Plan {
	now := time.Now()
	return &plan.Plan{
		ID:     "plan-1",
		Prompt: "explain database indexing",
		Status: plan.StatusInProgress,
		Items: []plan.Item{
			{
				ID:        "a",
				Title:     "Overview",
				Status:    plan.ItemCompleted,
				StartTime: now.Add(-3 * time.Second),
				EndTime:   now.Add(-1 * time.Second),
			},
			{
				ID:        "b",
				Title:     "B-Tree Internals",
				Status:    plan.ItemInProgress,
				StartTime: now,
			},
			{
				ID:     "c",
				Title:  "Query Planning",
				Status: plan.ItemPending,
			},
		},
	}
}

func TestPlanListRenderNil(t *testing.T) {
	pl := NewPlanList(80, 24)
	if got := pl.Render(nil); got != "No plan to display" {
		t.Errorf("Render(nil) = %q", got)
	}
}

func TestPlanListRenderSections(t *testing.T) {
	pl := NewPlanList(80, 24)
	out := pl.Render(testPlan())

	for _, want := range []string{"Document Outline", "Overview", "B-Tree Internals", "Query Planning"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPlanListStatusIcons(t *testing.T) {
	pl := NewPlanList(80, 24)
	out := pl.Render(testPlan())

	// Completed, in-progress and pending icons should all be present
	for _, icon := range []string{"[x]", "[>]", "[ ]"} {
		if !strings.Contains(out, icon) {
			t.Errorf("output missing icon %q", icon)
		}
	}
}

func TestPlanListShowsProgressWhileRunning(t *testing.T) {
	pl := NewPlanList(80, 24)
	out := pl.Render(testPlan())

	if !strings.Contains(out, "1/3") {
		t.Errorf("output missing section progress, got:\n%s", out)
	}
}

func TestPlanListRendersFailure(t *testing.T) {
	p := testPlan()
	p.Status = plan.StatusFailed
	p.Items[1].Status = plan.ItemFailed
	p.Items[1].EndTime = time.Now()
	p.Items[1].Err = errors.New("model unavailable")

	pl := NewPlanList(80, 24)
	out := pl.Render(p)

	if !strings.Contains(out, "[X]") {
		t.Error("output missing failed icon")
	}
	if !strings.Contains(out, "model unavailable") {
		t.Error("output missing item error")
	}
}

func TestRenderCompactProgress(t *testing.T) {
	if got := RenderCompactProgress(nil); got != "" {
		t.Errorf("RenderCompactProgress(nil) = %q", got)
	}

	out := RenderCompactProgress(testPlan())
	if !strings.Contains(out, "1/3") {
		t.Errorf("compact progress missing counts: %q", out)
	}
}
