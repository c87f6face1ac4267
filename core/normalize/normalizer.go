// Package normalize converts between canonical HTML and Markdown. Export
// goes through html-to-markdown after the contract-only constructs
// (callouts, semantic spans) are rewritten into plain HTML that Markdown can
// express; import renders GitHub-flavored Markdown with goldmark so the
// result can be fed to the cleaner.
package normalize

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// MarkdownNormalizer converts canonical HTML to Markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize implements core.Normalizer.
func (n *MarkdownNormalizer) Normalize(canonical string) (string, error) {
	return ToMarkdown(canonical)
}

// ToMarkdown converts canonical HTML into Markdown. Callouts become block
// quotes led by their bold kind label and user-input or variable spans
// become inline code.
func ToMarkdown(canonical string) (string, error) {
	root := tree.Parse(canonical)
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("div.callout").Each(func(_ int, sel *goquery.Selection) {
		quoteCallout(sel.Get(0))
	})
	doc.Find("span.user-input, span.variable").Each(func(_ int, sel *goquery.Selection) {
		span := sel.Get(0)
		tree.Rename(span, "code")
		span.Attr = nil
	})

	markdown, err := htmltomarkdown.ConvertString(tree.Render(root))
	if err != nil {
		return "", errors.Wrap(err, "converting HTML to markdown")
	}
	return strings.TrimSpace(markdown) + "\n", nil
}

// quoteCallout turns a callout container into a blockquote whose first
// paragraph starts with the kind label, unless it already does.
func quoteCallout(div *html.Node) {
	kind := ""
	for _, c := range tree.ClassTokens(div) {
		if c != contract.CalloutClass {
			kind = c
		}
	}
	tree.Rename(div, "blockquote")
	div.Attr = nil
	if kind == "" {
		return
	}

	label := strings.ToUpper(kind[:1]) + kind[1:] + ":"
	first := div.FirstChild
	for first != nil && first.Type != html.ElementNode {
		first = first.NextSibling
	}
	if !tree.IsElement(first, "p") {
		first = tree.NewElement("p")
		tree.Prepend(div, first)
	}
	if lead := first.FirstChild; tree.IsElement(lead, "strong") &&
		strings.EqualFold(strings.TrimSpace(tree.Text(lead)), label) {
		return
	}
	strong := tree.NewElement("strong")
	strong.AppendChild(tree.NewText(label))
	if first.FirstChild != nil {
		first.InsertBefore(tree.NewText(" "), first.FirstChild)
	}
	tree.Prepend(first, strong)
}
