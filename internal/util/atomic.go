// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the architect application.
package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes an exported document without ever leaving a
// partially written file behind: the data goes to a temp file in the target
// directory, is fsynced, and is then renamed over the destination. A crash
// mid-write leaves either the old file or the complete new one.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	// The temp file must live in the destination directory: rename is only
	// atomic within one filesystem.
	f, err := os.CreateTemp(dir, ".architect-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	written := false
	defer func() {
		if !written {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, perm); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", absPath, err)
	}

	written = true
	return nil
}
