// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TEXT GENERATOR
// =============================================================================

// TextGenerator is the minimal model interface the planner and executor need.
type TextGenerator interface {
	// GenerateText produces free-form text for a prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateStructured produces a JSON response for a prompt. The model
	// is asked for JSON output; callers still validate the payload.
	GenerateStructured(ctx context.Context, prompt string) (string, error)
}

// =============================================================================
// PLANNER
// =============================================================================

const (
	// MinSections is the smallest acceptable plan size
	MinSections = 6

	// MaxSections is the largest acceptable plan size
	MaxSections = 8

	// maxPlanResponseSize caps how much model output the parser will accept
	maxPlanResponseSize = 1024 * 1024
)

// PlanningError wraps failures while deriving a plan from a prompt.
type PlanningError struct {
	Prompt string
	Cause  error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %v", e.Cause)
}

func (e *PlanningError) Unwrap() error {
	return e.Cause
}

// Planner turns a user prompt into an ordered document plan.
type Planner struct {
	gen TextGenerator
}

// NewPlanner creates a planner backed by the given generator.
func NewPlanner(gen TextGenerator) *Planner {
	return &Planner{gen: gen}
}

// CreatePlan asks the model for a section outline and validates it into a
// Plan. All items start Pending.
func (p *Planner) CreatePlan(ctx context.Context, prompt string) (*Plan, error) {
	raw, err := p.gen.GenerateStructured(ctx, buildPlanPrompt(prompt))
	if err != nil {
		return nil, &PlanningError{Prompt: prompt, Cause: err}
	}

	items, err := parsePlanResponse(raw)
	if err != nil {
		return nil, &PlanningError{Prompt: prompt, Cause: err}
	}

	return &Plan{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Items:     items,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// buildPlanPrompt constructs the outline request sent to the model.
func buildPlanPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString("You are an expert technical writer planning a document.\n\n")
	b.WriteString("User request:\n")
	b.WriteString(prompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Produce a plan of %d to %d sections that together fully answer the request.\n", MinSections, MaxSections)
	b.WriteString("Respond with ONLY a JSON array. Each element must be an object with:\n")
	b.WriteString("  \"title\": short section heading\n")
	b.WriteString("  \"description\": one sentence on what the section covers\n")
	b.WriteString("No prose before or after the array.\n")
	return b.String()
}

// planItemJSON is the wire shape of one outline entry.
type planItemJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// parsePlanResponse extracts and validates the outline from model output.
// Models sometimes wrap JSON in markdown fences despite instructions, so
// fences are stripped before decoding.
func parsePlanResponse(raw string) ([]Item, error) {
	if len(raw) > maxPlanResponseSize {
		return nil, fmt.Errorf("plan response too large: %d bytes", len(raw))
	}

	cleaned := stripJSONFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty plan response")
	}

	var entries []planItemJSON
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("invalid plan JSON: %w", err)
	}

	if len(entries) < MinSections || len(entries) > MaxSections {
		return nil, fmt.Errorf("plan has %d sections, want %d-%d", len(entries), MinSections, MaxSections)
	}

	items := make([]Item, 0, len(entries))
	for i, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			return nil, fmt.Errorf("section %d has an empty title", i)
		}
		items = append(items, Item{
			ID:          uuid.New().String(),
			Title:       title,
			Description: strings.TrimSpace(e.Description),
			Status:      ItemPending,
		})
	}
	return items, nil
}

// stripJSONFences removes a surrounding ```json ... ``` or ``` ... ``` block.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
