// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"sync"
	"time"
)

// =============================================================================
// SECRET CACHE
// =============================================================================

// DefaultSecretTTL bounds how long a resolved API key stays cached before the
// caller has to decrypt it from the keystore again.
const DefaultSecretTTL = 5 * time.Minute

// SecretCache holds one short-lived secret, sealed with an ephemeral AES-GCM
// key that never leaves the process. It exists so repeated generator builds
// within one session skip the keystore's PBKDF2 derivation, without keeping
// the plaintext key resident between uses.
type SecretCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	aead      cipher.AEAD
	sealed    []byte
	nonce     []byte
	expiresAt time.Time

	// now is injectable for tests
	now func() time.Time
}

// NewSecretCache creates a secret cache with the given TTL (default: 5m).
// Returns an error only if the process cannot source random key material.
func NewSecretCache(ttl time.Duration) (*SecretCache, error) {
	if ttl <= 0 {
		ttl = DefaultSecretTTL
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &SecretCache{
		ttl:  ttl,
		aead: aead,
		now:  time.Now,
	}, nil
}

// Set seals the secret and refreshes its TTL.
func (c *SecretCache) Set(secret string) error {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonce = nonce
	c.sealed = c.aead.Seal(nil, nonce, []byte(secret), nil)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Get opens the cached secret. The second return is false when nothing is
// cached or the entry expired.
func (c *SecretCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed == nil || c.now().After(c.expiresAt) {
		c.clearLocked()
		return "", false
	}
	plaintext, err := c.aead.Open(nil, c.nonce, c.sealed, nil)
	if err != nil {
		c.clearLocked()
		return "", false
	}
	return string(plaintext), true
}

// Clear drops the cached secret immediately.
func (c *SecretCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *SecretCache) clearLocked() {
	for i := range c.sealed {
		c.sealed[i] = 0
	}
	c.sealed = nil
	c.nonce = nil
}
