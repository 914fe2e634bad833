// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides TTL caching for AI responses and run status.
package cache

import (
	"context"

	"github.com/jeranaias/architect-tui/internal/plan"
)

// =============================================================================
// CACHING GENERATOR
// =============================================================================

// CachingGenerator wraps a text generator with the response cache. Plan
// outlines are cached by prompt; section text is never cached because every
// section call carries the accumulated document and is effectively unique.
type CachingGenerator struct {
	gen   plan.TextGenerator
	cache *ResponseCache
}

// NewCachingGenerator wraps gen with cache lookups for structured calls.
func NewCachingGenerator(gen plan.TextGenerator, cache *ResponseCache) *CachingGenerator {
	return &CachingGenerator{gen: gen, cache: cache}
}

// GenerateText passes through to the wrapped generator.
func (g *CachingGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.gen.GenerateText(ctx, prompt)
}

// GenerateStructured returns a cached outline when one is fresh, otherwise
// calls the wrapped generator and stores the response.
func (g *CachingGenerator) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	if cached, ok := g.cache.Get(prompt); ok {
		return cached, nil
	}
	out, err := g.gen.GenerateStructured(ctx, prompt)
	if err != nil {
		return "", err
	}
	g.cache.Put(prompt, out)
	return out, nil
}
