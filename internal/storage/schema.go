// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists generation history in SQLite.
package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 2
)

// SQLite schema for generation history.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Documents table: one row per completed generation
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,            -- plan UUID
    title TEXT NOT NULL,
    prompt TEXT NOT NULL,
    content TEXT NOT NULL,          -- full generated markdown
    total_sections INTEGER NOT NULL,
    document_length INTEGER NOT NULL,
    generation_time_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL     -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

-- Sections table: the executed plan outline per document
CREATE TABLE IF NOT EXISTS document_sections (
    document_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    PRIMARY KEY (document_id, position),
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
) WITHOUT ROWID;

-- Quota events: one row per generation attempt, so the rolling-window
-- quota survives process restarts
CREATE TABLE IF NOT EXISTS quota_events (
    user_id TEXT NOT NULL,
    at INTEGER NOT NULL             -- Unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_quota_events_user_at ON quota_events(user_id, at);
`
