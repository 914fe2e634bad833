// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/architect-tui/internal/plan"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("document not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TYPES
// =============================================================================

// Section is one outline entry of an archived document.
type Section struct {
	Title       string
	Description string
}

// Entry is one archived generation.
type Entry struct {
	ID             string
	Title          string
	Prompt         string
	Content        string
	Sections       []Section
	TotalSections  int
	DocumentLength int
	GenerationTime time.Duration
	CreatedAt      time.Time
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the SQLite-backed archive of completed generations. It
// implements plan.Archiver.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)",
		fmt.Sprintf("%d", SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &History{db: db}, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// =============================================================================
// ARCHIVER
// =============================================================================

// Archive stores a completed generation. Satisfies plan.Archiver.
func (h *History) Archive(ctx context.Context, rec plan.ArchiveRecord) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
		(id, title, prompt, content, total_sections, document_length, generation_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Plan.ID,
		DeriveTitle(rec.Prompt),
		rec.Prompt,
		rec.Document,
		rec.Plan.Len(),
		len(rec.Document),
		rec.Duration.Milliseconds(),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM document_sections WHERE document_id = ?", rec.Plan.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	for i := range rec.Plan.Items {
		item := &rec.Plan.Items[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_sections (document_id, position, title, description)
			VALUES (?, ?, ?, ?)`,
			rec.Plan.ID, i, item.Title, item.Description,
		); err != nil {
			return fmt.Errorf("failed to save section %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// QUOTA JOURNAL
// =============================================================================

// quotaEventRetention is how long quota events are kept. Configured quota
// windows are shorter than this, so pruning never drops a countable event.
const quotaEventRetention = 24 * time.Hour

// RecordQuotaEvent logs one generation attempt for quota accounting and
// prunes events past retention. Satisfies quota.Journal.
func (h *History) RecordQuotaEvent(userID string, at time.Time) error {
	if _, err := h.db.Exec(
		"INSERT INTO quota_events (user_id, at) VALUES (?, ?)",
		userID, at.UnixMilli(),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	horizon := at.Add(-quotaEventRetention).UnixMilli()
	if _, err := h.db.Exec("DELETE FROM quota_events WHERE at < ?", horizon); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// QuotaWindow returns the user's attempt timestamps at or after since,
// oldest first. Satisfies quota.Journal.
func (h *History) QuotaWindow(userID string, since time.Time) ([]time.Time, error) {
	rows, err := h.db.Query(
		"SELECT at FROM quota_events WHERE user_id = ? AND at >= ? ORDER BY at",
		userID, since.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var events []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		events = append(events, time.UnixMilli(ms))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return events, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// List returns archived entries newest first, without content, up to limit.
// A non-positive limit returns everything.
func (h *History) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, title, prompt, total_sections, document_length, generation_time_ms, created_at
		FROM documents ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search returns entries whose title or prompt contains the query, newest
// first, without content.
func (h *History) Search(ctx context.Context, query string) ([]Entry, error) {
	pattern := "%" + query + "%"
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, title, prompt, total_sections, document_length, generation_time_ms, created_at
		FROM documents
		WHERE title LIKE ? OR prompt LIKE ?
		ORDER BY created_at DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Load returns a full entry including content and sections.
func (h *History) Load(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	var genMs int64
	var created int64
	err := h.db.QueryRowContext(ctx, `
		SELECT id, title, prompt, content, total_sections, document_length, generation_time_ms, created_at
		FROM documents WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.Prompt, &e.Content, &e.TotalSections, &e.DocumentLength, &genMs, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	e.GenerationTime = time.Duration(genMs) * time.Millisecond
	e.CreatedAt = time.Unix(created, 0)

	rows, err := h.db.QueryContext(ctx, `
		SELECT title, description FROM document_sections
		WHERE document_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s Section
		var desc sql.NullString
		if err := rows.Scan(&s.Title, &desc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		s.Description = desc.String
		e.Sections = append(e.Sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &e, nil
}

// Delete removes an archived entry. Deleting a missing entry returns
// ErrNotFound.
func (h *History) Delete(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every archived entry and returns how many were removed.
func (h *History) Clear(ctx context.Context) (int, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM documents")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return int(n), nil
}

// Count returns the number of archived entries.
func (h *History) Count(ctx context.Context) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var genMs, created int64
		if err := rows.Scan(&e.ID, &e.Title, &e.Prompt, &e.TotalSections, &e.DocumentLength, &genMs, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		e.GenerationTime = time.Duration(genMs) * time.Millisecond
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// maxTitleWords bounds how much of the prompt becomes the display title.
const maxTitleWords = 8

var titleCaser = cases.Title(language.English)

// DeriveTitle builds a short display title from the first words of the
// prompt.
func DeriveTitle(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return "Untitled Document"
	}
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	title := titleCaser.String(strings.Join(words, " "))
	if len(strings.Fields(prompt)) > maxTitleWords {
		title += "..."
	}
	return title
}
