// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports documents to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts an archived document to Markdown.
func (e *MarkdownExporter) Export(entry *storage.Entry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry is nil")
	}
	if entry.Content == "" {
		return nil, fmt.Errorf("entry has no content")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(entry.Title)))
		sb.WriteString(fmt.Sprintf("prompt: %s\n", escapeYAML(entry.Prompt)))
		sb.WriteString(fmt.Sprintf("date: %s\n", entry.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("sections: %d\n", entry.TotalSections))
		if entry.GenerationTime > 0 {
			sb.WriteString(fmt.Sprintf("generation_time: %s\n", entry.GenerationTime.Round(time.Millisecond)))
		}
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: architect-tui\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n", entry.Title))
	sb.WriteString(entry.Content)
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeYAML escapes a value for use in the frontmatter.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.ContainsAny(s, ":#{}[]&*!|>'\"%@`") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
