package render

import (
	"github.com/gaurav-prasanna/canonhtml/core"
)

// MarkdownRenderer writes the document's Markdown export as-is.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown as bytes.
func (r *MarkdownRenderer) Render(doc core.Document) ([]byte, error) {
	return []byte(doc.Markdown), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// HTMLRenderer writes the canonical markup followed by a newline.
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render returns the canonical HTML.
func (r *HTMLRenderer) Render(doc core.Document) ([]byte, error) {
	if doc.HTML == "" {
		return nil, nil
	}
	return []byte(doc.HTML + "\n"), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}
