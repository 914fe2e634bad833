// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides TTL/LRU caching for model responses, run status,
// and short-lived resolved secrets.
package cache

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// RESPONSE CACHE
// =============================================================================

const (
	// responseKeyPrefix namespaces cached model responses
	responseKeyPrefix = "ai_response:"

	// maxKeyChars caps how much of the prompt is used in the key
	maxKeyChars = 50

	// DefaultResponseTTL is how long cached responses stay valid
	DefaultResponseTTL = time.Hour

	// DefaultMaxEntries bounds the response cache size
	DefaultMaxEntries = 200
)

// ResponseCache provides LRU+TTL caching for model responses, keyed by a
// sanitized prefix of the prompt. Identical prompts within the TTL reuse the
// previous answer instead of spending quota.
type ResponseCache struct {
	mu          sync.Mutex
	entries     map[string]*responseEntry
	maxEntries  int
	ttl         time.Duration
	accessOrder []string

	// Statistics
	hits   int
	misses int

	// now is injectable for tests
	now func() time.Time
}

type responseEntry struct {
	value      string
	expiresAt  time.Time
	accessedAt time.Time
}

// Stats holds cache statistics.
type Stats struct {
	Hits       int
	Misses     int
	EntryCount int
	HitRate    float64
}

// NewResponseCache creates a response cache.
// maxEntries: maximum cached responses (default: 200)
// ttl: entry lifetime (default: 1h)
func NewResponseCache(maxEntries int, ttl time.Duration) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{
		entries:     make(map[string]*responseEntry),
		maxEntries:  maxEntries,
		ttl:         ttl,
		accessOrder: make([]string, 0, maxEntries),
		now:         time.Now,
	}
}

// Key derives the cache key for a prompt: lowercase, non-alphanumerics
// collapsed to underscores, truncated, and namespaced.
func Key(prompt string) string {
	s := strings.ToLower(strings.TrimSpace(prompt))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
		if b.Len() >= maxKeyChars {
			break
		}
	}
	return responseKeyPrefix + b.String()
}

// Get retrieves a cached response for a prompt.
// Returns the response and whether it was a cache hit.
func (c *ResponseCache) Get(prompt string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(prompt)
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	if c.now().After(entry.expiresAt) {
		c.removeLocked(key)
		c.misses++
		return "", false
	}

	entry.accessedAt = c.now()
	c.touchLocked(key)
	c.hits++
	return entry.value, true
}

// Put caches a response for a prompt.
func (c *ResponseCache) Put(prompt, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(prompt)

	// Evict least recently used until there is room
	for len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; exists {
			break
		}
		if len(c.accessOrder) == 0 {
			break
		}
		c.removeLocked(c.accessOrder[0])
	}

	if _, exists := c.entries[key]; !exists {
		c.accessOrder = append(c.accessOrder, key)
	}
	c.entries[key] = &responseEntry{
		value:      response,
		expiresAt:  c.now().Add(c.ttl),
		accessedAt: c.now(),
	}
	c.touchLocked(key)
}

// Invalidate removes the cached response for a prompt.
func (c *ResponseCache) Invalidate(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(Key(prompt))
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*responseEntry)
	c.accessOrder = c.accessOrder[:0]
}

// GetStats returns cache statistics.
func (c *ResponseCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		EntryCount: len(c.entries),
		HitRate:    rate,
	}
}

func (c *ResponseCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			break
		}
	}
}

func (c *ResponseCache) touchLocked(key string) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			break
		}
	}
	c.accessOrder = append(c.accessOrder, key)
}
