// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports documents as structured JSON for downstream tooling.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonSection struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type jsonDocument struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Prompt   string        `json:"prompt"`
	Content  string        `json:"content"`
	Sections []jsonSection `json:"sections,omitempty"`
	Metadata *jsonMetadata `json:"metadata,omitempty"`
}

type jsonMetadata struct {
	TotalSections    int    `json:"totalSections"`
	DocumentLength   int    `json:"documentLength"`
	GenerationTimeMs int64  `json:"generationTimeMs"`
	CreatedAt        string `json:"createdAt"`
	ExportedAt       string `json:"exportedAt"`
}

// Export converts an archived document to JSON.
func (e *JSONExporter) Export(entry *storage.Entry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry is nil")
	}

	doc := jsonDocument{
		ID:      entry.ID,
		Title:   entry.Title,
		Prompt:  entry.Prompt,
		Content: entry.Content,
	}
	for _, s := range entry.Sections {
		doc.Sections = append(doc.Sections, jsonSection{Title: s.Title, Description: s.Description})
	}
	if e.options.IncludeMetadata {
		doc.Metadata = &jsonMetadata{
			TotalSections:    entry.TotalSections,
			DocumentLength:   entry.DocumentLength,
			GenerationTimeMs: entry.GenerationTime.Milliseconds(),
			CreatedAt:        entry.CreatedAt.Format(time.RFC3339),
			ExportedAt:       time.Now().Format(time.RFC3339),
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the JSON MIME type.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
