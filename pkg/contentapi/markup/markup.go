// Package markup implements contentapi.Formatter for body text.
package markup

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTML renders Markdown-flavoured markup to HTML.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML creates an HTML formatter with tables, autolinks and
// strikethrough enabled. Raw HTML in the source is escaped.
func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
	}
}

func (h *HTML) Format(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(source), &buf); err != nil {
		slog.Warn("Markup conversion failed", "error", err)
		return source
	}
	return buf.String()
}

// Raw returns markup unchanged. It backs content_format=govspeak.
type Raw struct{}

func (Raw) Format(source string) string {
	return source
}
