// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jeranaias/architect-tui/internal/config"
	"github.com/jeranaias/architect-tui/internal/plan"
)

// scriptedGen is a TextGenerator that returns a fixed outline and
// numbered section bodies.
type scriptedGen struct {
	sections int
	planErr  error
	textErr  error
	calls    int
}

func (g *scriptedGen) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	if g.planErr != nil {
		return "", g.planErr
	}
	type entry struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	entries := make([]entry, g.sections)
	for i := range entries {
		entries[i] = entry{
			Title:       fmt.Sprintf("Part %d", i+1),
			Description: fmt.Sprintf("covers part %d", i+1),
		}
	}
	raw, err := json.Marshal(entries)
	return string(raw), err
}

func (g *scriptedGen) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.textErr != nil {
		return "", g.textErr
	}
	g.calls++
	return fmt.Sprintf("body %d", g.calls), nil
}

func TestRunGenerationProducesDocument(t *testing.T) {
	gen := &scriptedGen{sections: 6}
	cfg := config.Default()

	res, err := runGeneration(context.Background(), cfg, gen, nil, "design a cache", true)
	if err != nil {
		t.Fatalf("runGeneration failed: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.Plan.Status != plan.StatusCompleted {
		t.Errorf("plan status = %v, want Completed", res.Plan.Status)
	}
	if got := strings.Count(res.Document, "## Part "); got != 6 {
		t.Errorf("document has %d sections, want 6", got)
	}
	if gen.calls != 6 {
		t.Errorf("generator called %d times, want 6", gen.calls)
	}
}

func TestRunGenerationPlanningFailure(t *testing.T) {
	gen := &scriptedGen{planErr: errors.New("model unavailable")}
	cfg := config.Default()

	res, err := runGeneration(context.Background(), cfg, gen, nil, "design a cache", true)
	if err == nil {
		t.Fatal("expected planning error")
	}
	var perr *plan.PlanningError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *PlanningError", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
}
