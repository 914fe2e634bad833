// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides document history persistence for architect.
//
// This package archives completed generation runs to a local SQLite
// database, with support for listing, search, and export of past
// documents.
//
// # Key Types
//
//   - History: SQLite-backed archive of generated documents
//   - Entry: One archived document with its section metadata
//   - Section: Per-section title and status within an entry
//
// # Usage
//
// Open the archive and record a finished run:
//
//	history, err := storage.Open(path)
//	err = history.Archive(ctx, record)
//
// List and load past documents:
//
//	entries, err := history.List(ctx, 20)
//	entry, err := history.Load(ctx, entries[0].ID)
//
// Search document titles and prompts:
//
//	results, err := history.Search(ctx, "query text")
//
// # Storage Location
//
// The database lives at ~/.architect/history.db by default; the path
// is configurable via history.database_path.
package storage
