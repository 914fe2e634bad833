// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keystore encrypts the API key at rest with AES-256-GCM.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a value as encrypted (format: ENC:base64(nonce|ciphertext|tag))
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits)
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes)
const SaltSize = 32

// PBKDF2Iterations is the number of iterations for PBKDF2-SHA-256 key
// derivation, per OWASP guidance for modern hardware
const PBKDF2Iterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotInitialized indicates no master key exists yet
	ErrNotInitialized = errors.New("keystore not initialized")
	// ErrInvalidCiphertext indicates the ciphertext format is invalid
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data)
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// HELPERS
// =============================================================================

// ZeroBytes zeros sensitive byte slices to limit memory disclosure.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DeriveKey derives an AES-256 key from a password and salt.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// =============================================================================
// STORE
// =============================================================================

// Store encrypts and decrypts the API key using a master key kept in a
// 0600 file under the config directory. A random master key is generated on
// first use; a password-derived key can be used instead.
type Store struct {
	keyPath string
	aead    cipher.AEAD
}

// New creates a store rooted at dir. The master key is loaded if present;
// otherwise the store reports ErrNotInitialized until Init is called.
func New(dir string) (*Store, error) {
	s := &Store{keyPath: filepath.Join(dir, "master.key")}
	if _, err := os.Stat(s.keyPath); err == nil {
		if err := s.loadKey(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Init generates a random master key and writes it with 0600 permissions.
// Calling Init on an initialized store is a no-op.
func (s *Store) Init() error {
	if s.aead != nil {
		return nil
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer ZeroBytes(key)

	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(s.keyPath, []byte(encoded), 0600); err != nil {
		return fmt.Errorf("failed to write master key: %w", err)
	}

	return s.setKey(key)
}

// InitWithPassword derives the master key from a password. The random salt
// is written next to the key path so the key can be re-derived later.
func (s *Store) InitWithPassword(password string) error {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(s.keyPath+".salt", salt, 0600); err != nil {
		return fmt.Errorf("failed to write salt: %w", err)
	}

	key := DeriveKey(password, salt)
	defer ZeroBytes(key)
	return s.setKey(key)
}

// Unlock re-derives a password-based master key from the stored salt.
func (s *Store) Unlock(password string) error {
	salt, err := os.ReadFile(s.keyPath + ".salt")
	if err != nil {
		return ErrNotInitialized
	}
	key := DeriveKey(password, salt)
	defer ZeroBytes(key)
	return s.setKey(key)
}

// Initialized reports whether a master key is loaded.
func (s *Store) Initialized() bool {
	return s.aead != nil
}

func (s *Store) loadKey() error {
	encoded, err := os.ReadFile(s.keyPath)
	if err != nil {
		return fmt.Errorf("failed to read master key: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		return fmt.Errorf("corrupt master key: %w", err)
	}
	defer ZeroBytes(key)
	if len(key) != KeySize {
		return fmt.Errorf("master key has %d bytes, want %d", len(key), KeySize)
	}
	return s.setKey(key)
}

func (s *Store) setKey(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}
	s.aead = aead
	return nil
}

// =============================================================================
// ENCRYPT / DECRYPT
// =============================================================================

// Encrypt seals a plaintext value as ENC:base64(nonce|ciphertext|tag).
// Already-encrypted values pass through unchanged.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if s.aead == nil {
		return "", ErrNotInitialized
	}
	if strings.HasPrefix(plaintext, EncryptedPrefix) {
		return plaintext, nil
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an ENC:-prefixed value. Unprefixed values are returned
// unchanged, so plaintext keys from the environment still work.
func (s *Store) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return value, nil
	}
	if s.aead == nil {
		return "", ErrNotInitialized
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < NonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
