// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/architect-tui/internal/storage"
)

func testEntry() *storage.Entry {
	return &storage.Entry{
		ID:     "doc-1",
		Title:  "Explain Database Indexes",
		Prompt: "explain database indexes",
		Content: "\n\n## Overview\n\nIndexes speed up lookups.\n\n" +
			"## Example\n\n```go\nfunc main() {}\n```\n\nInline `b-tree` reference.",
		Sections: []storage.Section{
			{Title: "Overview", Description: "what indexes are"},
			{Title: "Example", Description: "a worked example"},
		},
		TotalSections:  2,
		DocumentLength: 120,
		GenerationTime: 42 * time.Second,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(testEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, "---\n") {
		t.Error("expected YAML frontmatter")
	}
	if !strings.Contains(s, "title: Explain Database Indexes") {
		t.Error("frontmatter missing title")
	}
	if !strings.Contains(s, "sections: 2") {
		t.Error("frontmatter missing section count")
	}
	if !strings.Contains(s, "# Explain Database Indexes") {
		t.Error("missing top-level heading")
	}
	if !strings.Contains(s, "## Overview") {
		t.Error("content should be embedded verbatim")
	}
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeMetadata = false
	out, err := NewMarkdownExporter(opts).Export(testEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(string(out), "---\n") {
		t.Error("frontmatter should be omitted")
	}
}

func TestMarkdownExportRejectsEmpty(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("expected error for nil entry")
	}
	if _, err := NewMarkdownExporter(nil).Export(&storage.Entry{}); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestEscapeYAML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{"has: colon", `"has: colon"`},
		{`has "quotes"`, `"has \"quotes\""`},
		{"multi\nline", "multi line"},
	}
	for _, tt := range tests {
		if got := escapeYAML(tt.in); got != tt.want {
			t.Errorf("escapeYAML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(testEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["id"] != "doc-1" || doc["title"] != "Explain Database Indexes" {
		t.Errorf("doc = %v", doc)
	}
	meta, ok := doc["metadata"].(map[string]interface{})
	if !ok {
		t.Fatal("missing metadata")
	}
	if meta["totalSections"].(float64) != 2 {
		t.Errorf("totalSections = %v", meta["totalSections"])
	}
	if meta["generationTimeMs"].(float64) != 42000 {
		t.Errorf("generationTimeMs = %v", meta["generationTimeMs"])
	}
	sections, ok := doc["sections"].([]interface{})
	if !ok || len(sections) != 2 {
		t.Errorf("sections = %v", doc["sections"])
	}
}

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(testEntry())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "<!DOCTYPE html>") {
		t.Error("expected full HTML page")
	}
	if !strings.Contains(s, "<h1>Explain Database Indexes</h1>") {
		t.Error("missing title heading")
	}
	if !strings.Contains(s, "<h2>Overview</h2>") {
		t.Error("markdown headings should become h2")
	}
	if !strings.Contains(s, "code-block") {
		t.Error("fenced code should be rendered as a code block")
	}
	if strings.Contains(s, "```") {
		t.Error("no raw fences should survive")
	}
	if !strings.Contains(s, "inline-code") {
		t.Error("inline code should be styled")
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.OpenAfterExport = false

	path, err := ExportToFile(testEntry(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(path, "Explain_Database_Indexes") {
		t.Errorf("filename should carry sanitized title: %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(data) == 0 {
		t.Error("exported file is empty")
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"markdown", "md", "html", "json"} {
		if _, err := ForFormat(format, nil); err != nil {
			t.Errorf("ForFormat(%q) failed: %v", format, err)
		}
	}
	if _, err := ForFormat("docx", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Simple Title", "Simple_Title"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "document"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
