// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrExecutionInProgress is returned when Execute is called while another
// execution of the same plan is still running.
var ErrExecutionInProgress = errors.New("plan execution already in progress")

// ItemError wraps the failure of a single plan item.
type ItemError struct {
	Index int
	Title string
	Cause error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("section %d (%s) failed: %v", e.Index+1, e.Title, e.Cause)
}

func (e *ItemError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// ARCHIVER
// =============================================================================

// ArchiveRecord is the completed-run payload handed to an Archiver.
type ArchiveRecord struct {
	// Prompt is the original user request
	Prompt string

	// Plan is the executed plan
	Plan *Plan

	// Document is the full generated markdown
	Document string

	// Duration is the total generation time
	Duration time.Duration
}

// Archiver persists a completed generation. Archiving is best effort:
// failures never change the outcome of a run.
type Archiver interface {
	Archive(ctx context.Context, rec ArchiveRecord) error
}

// =============================================================================
// RESULT
// =============================================================================

// Result captures the outcome of a plan execution.
type Result struct {
	// Plan is the executed plan with final item statuses
	Plan *Plan

	// Document is the markdown accumulated so far. On failure it holds
	// the sections completed before the halt.
	Document string

	// Duration is how long the run took
	Duration time.Duration

	// ArchiveErr holds any best-effort archive failure on success
	ArchiveErr error
}

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs a plan's items strictly in order, accumulating the document
// and publishing progress snapshots. The first item failure halts the run
// permanently; later items stay Pending.
type Executor struct {
	mu       sync.Mutex
	plan     *Plan
	doc      Document
	gen      TextGenerator
	pub      Publisher
	archiver Archiver
	running  bool
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithPublisher sets the progress snapshot receiver.
func WithPublisher(p Publisher) ExecutorOption {
	return func(e *Executor) {
		if p != nil {
			e.pub = p
		}
	}
}

// WithArchiver sets the best-effort archiver for successful runs.
func WithArchiver(a Archiver) ExecutorOption {
	return func(e *Executor) {
		e.archiver = a
	}
}

// NewExecutor creates an executor for the given plan.
func NewExecutor(p *Plan, gen TextGenerator, opts ...ExecutorOption) *Executor {
	e := &Executor{
		plan: p,
		gen:  gen,
		pub:  NopPublisher{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan returns the plan this executor operates on.
func (e *Executor) Plan() *Plan {
	return e.plan
}

// Document returns the markdown accumulated so far.
func (e *Executor) Document() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.String()
}

// Execute runs every pending item in order. Calling Execute on a plan that
// already reached a terminal state is a no-op returning (nil, nil). Calling
// it while a run is in flight returns ErrExecutionInProgress.
func (e *Executor) Execute(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrExecutionInProgress
	}
	if e.plan.Len() == 0 {
		e.mu.Unlock()
		return nil, nil
	}
	if e.plan.IsTerminal() {
		e.mu.Unlock()
		return nil, nil
	}
	if err := e.plan.Validate(); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	e.running = true
	e.plan.Status = StatusInProgress
	e.plan.StartedAt = time.Now()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	start := time.Now()
	total := e.plan.Len()

	e.publish(Snapshot{
		PlanID:    e.plan.ID,
		Stage:     "Starting generation",
		Percent:   0,
		ItemIndex: -1,
		Total:     total,
		At:        time.Now(),
	})

	for i := range e.plan.Items {
		if err := ctx.Err(); err != nil {
			return e.finishFailed(ctx, i, start, err)
		}

		item := &e.plan.Items[i]
		e.publish(Snapshot{
			PlanID:    e.plan.ID,
			Stage:     "Generating: " + item.Title,
			Percent:   percentFor(i, total),
			ItemIndex: i,
			Total:     total,
			At:        time.Now(),
		})

		e.mu.Lock()
		item.Status = ItemInProgress
		item.StartTime = time.Now()
		prompt := buildSectionPrompt(e.plan.Prompt, item.Title, e.doc.String())
		e.mu.Unlock()

		body, err := e.gen.GenerateText(ctx, prompt)
		if err != nil {
			e.mu.Lock()
			item.Status = ItemFailed
			item.EndTime = time.Now()
			item.Err = err
			e.mu.Unlock()
			return e.finishFailed(ctx, i, start, &ItemError{Index: i, Title: item.Title, Cause: err})
		}

		e.mu.Lock()
		e.doc.AppendSection(item.Title, body)
		item.Status = ItemCompleted
		item.EndTime = time.Now()
		e.mu.Unlock()
	}

	e.mu.Lock()
	e.plan.Status = StatusCompleted
	e.plan.CompletedAt = time.Now()
	doc := e.doc.String()
	e.mu.Unlock()

	e.publish(Snapshot{
		PlanID:    e.plan.ID,
		Stage:     "Completed",
		Percent:   100,
		ItemIndex: -1,
		Total:     total,
		Done:      true,
		At:        time.Now(),
	})

	res := &Result{
		Plan:     e.plan,
		Document: doc,
		Duration: time.Since(start),
	}
	if e.archiver != nil {
		res.ArchiveErr = e.archiver.Archive(ctx, ArchiveRecord{
			Prompt:   e.plan.Prompt,
			Plan:     e.plan,
			Document: doc,
			Duration: res.Duration,
		})
	}
	return res, nil
}

// finishFailed moves the plan to its terminal failed state, publishes the
// final snapshot, and returns the partial result alongside the error.
func (e *Executor) finishFailed(ctx context.Context, index int, start time.Time, cause error) (*Result, error) {
	e.mu.Lock()
	e.plan.Status = StatusFailed
	e.plan.CompletedAt = time.Now()
	doc := e.doc.String()
	total := e.plan.Len()
	e.mu.Unlock()

	e.publish(Snapshot{
		PlanID:    e.plan.ID,
		Stage:     "Failed",
		Percent:   percentFor(index, total),
		ItemIndex: -1,
		Total:     total,
		Done:      true,
		At:        time.Now(),
	})

	return &Result{
		Plan:     e.plan,
		Document: doc,
		Duration: time.Since(start),
	}, cause
}

func (e *Executor) publish(s Snapshot) {
	e.pub.Publish(s)
}

// buildSectionPrompt constructs the request for one section. It carries the
// original request, the section title, and everything written so far, which
// keeps each section consistent with what precedes it.
func buildSectionPrompt(original, title, document string) string {
	var b strings.Builder
	b.WriteString("You are writing one section of a larger document.\n\n")
	b.WriteString("Original request:\n")
	b.WriteString(original)
	b.WriteString("\n\nSection to write: ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if document == "" {
		b.WriteString("This is the first section of the document.\n")
	} else {
		b.WriteString("Document so far:\n")
		b.WriteString(document)
		b.WriteString("\n")
	}
	b.WriteString("\nWrite the section body in markdown. Do not repeat the section heading.")
	return b.String()
}
