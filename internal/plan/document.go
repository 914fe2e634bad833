// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plan

import "strings"

// =============================================================================
// DOCUMENT
// =============================================================================

// Document accumulates generated sections in order. Sections are appended
// exactly as produced; bodies are never trimmed or reflowed.
type Document struct {
	b strings.Builder
}

// AppendSection appends a markdown section with the fixed layout of a blank
// line, a level-2 heading, a blank line, then the body verbatim.
func (d *Document) AppendSection(title, body string) {
	d.b.WriteString("\n\n## ")
	d.b.WriteString(title)
	d.b.WriteString("\n\n")
	d.b.WriteString(body)
}

// String returns the accumulated document text.
func (d *Document) String() string {
	return d.b.String()
}

// Len returns the accumulated document length in bytes.
func (d *Document) Len() int {
	return d.b.Len()
}

// Reset clears the document.
func (d *Document) Reset() {
	d.b.Reset()
}
