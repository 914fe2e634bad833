// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/architect-tui/internal/plan"
)

func newTestPlan(n int) *plan.Plan {
	items := make([]plan.Item, n)
	for i := range items {
		items[i] = plan.Item{
			ID:     fmt.Sprintf("item-%d", i),
			Title:  fmt.Sprintf("Section %d", i+1),
			Status: plan.ItemPending,
		}
	}
	return &plan.Plan{
		ID:     "plan-1",
		Prompt: "write about widgets",
		Items:  items,
		Status: plan.StatusPending,
	}
}

// snapshotRecorder collects published snapshots in order.
type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []plan.Snapshot
}

func (r *snapshotRecorder) Publish(s plan.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) all() []plan.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]plan.Snapshot(nil), r.snaps...)
}

func TestExecuteHappyPath(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()
	gen.texts = []string{"one", "two", "three", "four", "five", "six"}
	rec := &snapshotRecorder{}

	exec := plan.NewExecutor(p, gen, plan.WithPublisher(rec))
	res, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if p.Status != plan.StatusCompleted {
		t.Errorf("plan status = %v, want Completed", p.Status)
	}
	for i, it := range p.Items {
		if it.Status != plan.ItemCompleted {
			t.Errorf("item %d status = %v, want Completed", i, it.Status)
		}
	}

	want := ""
	for i := 0; i < 6; i++ {
		want += fmt.Sprintf("\n\n## Section %d\n\n%s", i+1, gen.texts[i])
	}
	if res.Document != want {
		t.Errorf("document mismatch:\ngot  %q\nwant %q", res.Document, want)
	}

	// Each section starts only after the previous finished; its prompt
	// must therefore contain all earlier sections.
	for i, prompt := range gen.prompts {
		for j := 0; j < i; j++ {
			if !strings.Contains(prompt, gen.texts[j]) {
				t.Errorf("prompt %d missing body of earlier section %d", i, j)
			}
		}
		if !strings.Contains(prompt, "write about widgets") {
			t.Errorf("prompt %d missing original request", i)
		}
		if !strings.Contains(prompt, p.Items[i].Title) {
			t.Errorf("prompt %d missing section title", i)
		}
	}
}

func TestExecuteProgressPercents(t *testing.T) {
	p := newTestPlan(7)
	gen := newFakeGen()
	rec := &snapshotRecorder{}

	exec := plan.NewExecutor(p, gen, plan.WithPublisher(rec))
	if _, err := exec.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	snaps := rec.all()
	// One starting snapshot, one per item, one terminal snapshot.
	if len(snaps) != 9 {
		t.Fatalf("got %d snapshots, want 9", len(snaps))
	}

	first := snaps[0]
	if first.Percent != 0 || first.ItemIndex != -1 || first.Done {
		t.Errorf("starting snapshot = %+v", first)
	}
	if first.Total != 7 {
		t.Errorf("starting snapshot total = %d, want 7", first.Total)
	}

	wantPercents := []int{0, 14, 28, 42, 57, 71, 85}
	for i, want := range wantPercents {
		s := snaps[i+1]
		if s.Percent != want {
			t.Errorf("snapshot %d percent = %d, want %d", i, s.Percent, want)
		}
		if s.ItemIndex != i {
			t.Errorf("snapshot %d index = %d, want %d", i, s.ItemIndex, i)
		}
		if s.Done {
			t.Errorf("snapshot %d should not be terminal", i)
		}
		wantStage := "Generating: " + p.Items[i].Title
		if s.Stage != wantStage {
			t.Errorf("snapshot %d stage = %q, want %q", i, s.Stage, wantStage)
		}
	}

	final := snaps[8]
	if !final.Done || final.Percent != 100 || final.Stage != "Completed" {
		t.Errorf("terminal snapshot = %+v", final)
	}
	if final.ItemIndex != -1 {
		t.Errorf("terminal snapshot index = %d, want -1", final.ItemIndex)
	}
}

func TestExecuteHaltsOnFirstFailure(t *testing.T) {
	const n, failAt = 6, 3
	p := newTestPlan(n)
	gen := newFakeGen()
	gen.failAt = failAt
	gen.failErr = errors.New("model overloaded")
	rec := &snapshotRecorder{}

	exec := plan.NewExecutor(p, gen, plan.WithPublisher(rec))
	res, err := exec.Execute(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var ierr *plan.ItemError
	if !errors.As(err, &ierr) {
		t.Fatalf("error type = %T, want *ItemError", err)
	}
	if ierr.Index != failAt {
		t.Errorf("ItemError.Index = %d, want %d", ierr.Index, failAt)
	}
	if !errors.Is(err, gen.failErr) {
		t.Error("error chain should include the generator cause")
	}

	if p.Status != plan.StatusFailed {
		t.Errorf("plan status = %v, want Failed", p.Status)
	}
	for i, it := range p.Items {
		var want plan.ItemStatus
		switch {
		case i < failAt:
			want = plan.ItemCompleted
		case i == failAt:
			want = plan.ItemFailed
		default:
			want = plan.ItemPending
		}
		if it.Status != want {
			t.Errorf("item %d status = %v, want %v", i, it.Status, want)
		}
	}

	// Partial document keeps only completed sections.
	if res == nil {
		t.Fatal("expected partial result")
	}
	if strings.Count(res.Document, "## ") != failAt {
		t.Errorf("partial document has %d sections, want %d", strings.Count(res.Document, "## "), failAt)
	}

	// No item after the failure is ever attempted.
	if gen.calls != failAt+1 {
		t.Errorf("generator called %d times, want %d", gen.calls, failAt+1)
	}

	snaps := rec.all()
	final := snaps[len(snaps)-1]
	if !final.Done || final.Stage != "Failed" {
		t.Errorf("terminal snapshot = %+v", final)
	}
	if final.Percent != failAt*100/n {
		t.Errorf("terminal percent = %d, want %d", final.Percent, failAt*100/n)
	}
}

func TestExecuteEmptyPlanIsNoOp(t *testing.T) {
	p := &plan.Plan{ID: "plan-empty", Prompt: "anything", Status: plan.StatusPending}
	gen := newFakeGen()
	rec := &snapshotRecorder{}

	res, err := plan.NewExecutor(p, gen, plan.WithPublisher(rec)).Execute(context.Background())
	if err != nil {
		t.Fatalf("empty plan should be a no-op, got error: %v", err)
	}
	if res != nil {
		t.Errorf("empty plan result = %+v, want nil", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on an empty plan", gen.calls)
	}
	if snaps := rec.all(); len(snaps) != 0 {
		t.Errorf("empty plan published %d snapshots", len(snaps))
	}
	if p.Status != plan.StatusPending {
		t.Errorf("empty plan status = %v, want Pending", p.Status)
	}
}

func TestExecuteIsNoOpAfterTerminalState(t *testing.T) {
	for _, status := range []plan.Status{plan.StatusCompleted, plan.StatusFailed} {
		t.Run(status.String(), func(t *testing.T) {
			p := newTestPlan(6)
			p.Status = status
			gen := newFakeGen()

			res, err := plan.NewExecutor(p, gen).Execute(context.Background())
			if err != nil {
				t.Errorf("re-run of terminal plan errored: %v", err)
			}
			if res != nil {
				t.Error("re-run of terminal plan should return nil result")
			}
			if gen.calls != 0 {
				t.Errorf("generator called %d times on a terminal plan", gen.calls)
			}
		})
	}
}

func TestExecuteFailedPlanStaysFailed(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()
	gen.failAt = 2

	exec := plan.NewExecutor(p, gen)
	if _, err := exec.Execute(context.Background()); err == nil {
		t.Fatal("expected first run to fail")
	}

	// A halted plan can never resume.
	gen.failAt = -1
	res, err := exec.Execute(context.Background())
	if err != nil || res != nil {
		t.Errorf("second run = (%v, %v), want no-op", res, err)
	}
	if p.Items[3].Status != plan.ItemPending {
		t.Errorf("item after failure = %v, want Pending forever", p.Items[3].Status)
	}
}

func TestExecuteRejectsConcurrentRun(t *testing.T) {
	p := newTestPlan(6)
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &blockingGen{started: started, release: release}

	exec := plan.NewExecutor(p, gen)
	done := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background())
		done <- err
	}()

	<-started
	if _, err := exec.Execute(context.Background()); !errors.Is(err, plan.ErrExecutionInProgress) {
		t.Errorf("concurrent Execute error = %v, want ErrExecutionInProgress", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if p.Status != plan.StatusCompleted {
		t.Errorf("plan status = %v, want Completed", p.Status)
	}
}

// blockingGen signals when generation starts and waits until released.
type blockingGen struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func (g *blockingGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.startOnce.Do(func() { close(g.started) })
	<-g.release
	return "body", nil
}

func (g *blockingGen) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("not scripted")
}

func TestExecuteContextCancellation(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := plan.NewExecutor(p, gen).Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if p.Status != plan.StatusFailed {
		t.Errorf("plan status = %v, want Failed", p.Status)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times after cancellation", gen.calls)
	}
}

// archiveRecorder captures the archived record.
type archiveRecorder struct {
	rec  *plan.ArchiveRecord
	fail error
}

func (a *archiveRecorder) Archive(ctx context.Context, rec plan.ArchiveRecord) error {
	a.rec = &rec
	return a.fail
}

func TestExecuteArchivesOnSuccess(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()
	arch := &archiveRecorder{}

	exec := plan.NewExecutor(p, gen, plan.WithArchiver(arch))
	res, err := exec.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if arch.rec == nil {
		t.Fatal("archiver was not called")
	}
	if arch.rec.Prompt != p.Prompt || arch.rec.Document != res.Document {
		t.Error("archive record mismatch")
	}
	if res.ArchiveErr != nil {
		t.Errorf("ArchiveErr = %v, want nil", res.ArchiveErr)
	}
}

func TestExecuteArchiveFailureIsBestEffort(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()
	arch := &archiveRecorder{fail: errors.New("disk full")}

	res, err := plan.NewExecutor(p, gen, plan.WithArchiver(arch)).Execute(context.Background())
	if err != nil {
		t.Fatalf("archive failure must not fail the run: %v", err)
	}
	if p.Status != plan.StatusCompleted {
		t.Errorf("plan status = %v, want Completed", p.Status)
	}
	if res.ArchiveErr == nil || !strings.Contains(res.ArchiveErr.Error(), "disk full") {
		t.Errorf("ArchiveErr = %v", res.ArchiveErr)
	}
}

func TestExecuteDoesNotArchiveOnFailure(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()
	gen.failAt = 0
	arch := &archiveRecorder{}

	if _, err := plan.NewExecutor(p, gen, plan.WithArchiver(arch)).Execute(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if arch.rec != nil {
		t.Error("failed runs must not be archived")
	}
}

func TestExecuteRecordsTimings(t *testing.T) {
	p := newTestPlan(6)
	gen := newFakeGen()

	res, err := plan.NewExecutor(p, gen).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Duration < 0 {
		t.Error("result duration should not be negative")
	}
	if p.StartedAt.IsZero() || p.CompletedAt.IsZero() {
		t.Error("plan timestamps should be set")
	}
	for i, it := range p.Items {
		if it.StartTime.IsZero() || it.EndTime.IsZero() {
			t.Errorf("item %d timestamps should be set", i)
		}
		if it.EndTime.Before(it.StartTime) {
			t.Errorf("item %d ended before it started", i)
		}
	}
}
