// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	htmlfmt "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/architect-tui/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports documents to a standalone HTML page with embedded CSS
// and chroma syntax highlighting for fenced code blocks.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

var codeBlockRegex = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")

// Export converts an archived document to HTML.
func (e *HTMLExporter) Export(entry *storage.Entry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry is nil")
	}
	if entry.Content == "" {
		return nil, fmt.Errorf("entry has no content")
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(entry.Title)))
	sb.WriteString("<style>\n" + e.getCSS() + "</style>\n")
	sb.WriteString("</head>\n<body>\n<main>\n")

	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(entry.Title)))
	if e.options.IncludeMetadata {
		sb.WriteString("<div class=\"meta\">\n")
		sb.WriteString(fmt.Sprintf("<span>%d sections</span>", entry.TotalSections))
		sb.WriteString(fmt.Sprintf(" &middot; <span>%s</span>", entry.CreatedAt.Format(time.DateOnly)))
		if entry.GenerationTime > 0 {
			sb.WriteString(fmt.Sprintf(" &middot; <span>generated in %s</span>", entry.GenerationTime.Round(time.Second)))
		}
		sb.WriteString("\n</div>\n")
	}

	sb.WriteString(e.formatContent(entry.Content))

	sb.WriteString("\n</main>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the HTML MIME type.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// formatContent converts the generated markdown to HTML. Fenced code blocks
// are highlighted with chroma; the rest gets lightweight heading, inline
// code, and paragraph handling.
func (e *HTMLExporter) formatContent(content string) string {
	// Pull code blocks out first so their contents are not mangled by the
	// paragraph pass.
	type block struct{ placeholder, rendered string }
	var blocks []block

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		placeholder := fmt.Sprintf("\x00CODEBLOCK%d\x00", len(blocks))
		blocks = append(blocks, block{
			placeholder: placeholder,
			rendered:    e.highlightCode(strings.TrimRight(parts[2], "\n"), parts[1]),
		})
		return placeholder
	})

	content = html.EscapeString(content)

	// Inline code
	inlineCodeRegex := regexp.MustCompile("`([^`]+)`")
	content = inlineCodeRegex.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	var out []string
	inParagraph := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "\x00CODEBLOCK"):
			if inParagraph {
				out = append(out, "</p>")
				inParagraph = false
			}
			out = append(out, trimmed)
		case strings.HasPrefix(trimmed, "### "):
			if inParagraph {
				out = append(out, "</p>")
				inParagraph = false
			}
			out = append(out, "<h3>"+strings.TrimPrefix(trimmed, "### ")+"</h3>")
		case strings.HasPrefix(trimmed, "## "):
			if inParagraph {
				out = append(out, "</p>")
				inParagraph = false
			}
			out = append(out, "<h2>"+strings.TrimPrefix(trimmed, "## ")+"</h2>")
		case trimmed == "":
			if inParagraph {
				out = append(out, "</p>")
				inParagraph = false
			}
		default:
			if !inParagraph {
				out = append(out, "<p>"+trimmed)
				inParagraph = true
			} else {
				out = append(out, trimmed)
			}
		}
	}
	if inParagraph {
		out = append(out, "</p>")
	}

	result := strings.Join(out, "\n")
	for _, b := range blocks {
		result = strings.Replace(result, b.placeholder, b.rendered, 1)
	}
	return result
}

// highlightCode renders one code block with chroma. Falls back to a plain
// escaped <pre> if highlighting fails.
func (e *HTMLExporter) highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	if e.options.Theme == "light" {
		styleName = "github"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := htmlfmt.New(htmlfmt.Standalone(false), htmlfmt.WithClasses(false))

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	return "<div class=\"code-block\">" + sb.String() + "</div>"
}

func (e *HTMLExporter) getCSS() string {
	bg, fg, accent := "#1e1e2e", "#cdd6f4", "#89b4fa"
	if e.options.Theme == "light" {
		bg, fg, accent = "#ffffff", "#1e1e2e", "#1e66f5"
	}
	return fmt.Sprintf(`
body { background: %s; color: %s; font-family: -apple-system, "Segoe UI", sans-serif; line-height: 1.6; }
main { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
h1, h2, h3 { color: %s; }
.meta { opacity: 0.7; font-size: 0.9rem; margin-bottom: 2rem; }
.code-block { margin: 1rem 0; border-radius: 6px; overflow-x: auto; }
.code-block pre { padding: 0.75rem 1rem; margin: 0; }
.inline-code { background: rgba(127, 127, 127, 0.2); padding: 0.1rem 0.3rem; border-radius: 3px; }
`, bg, fg, accent)
}
