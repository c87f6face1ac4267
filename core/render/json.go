// Package render provides the output renderers for cleaned documents.
// This file implements the JSON report: the canonical HTML and its Markdown
// export together with the structure read back from the canonical tree.
package render

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/pkg/errors"
)

// JSONRenderer produces a structured JSON report.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render builds the report for doc.
func (r *JSONRenderer) Render(doc core.Document) ([]byte, error) {
	sel := goquery.NewDocumentFromNode(tree.Parse(doc.HTML)).Selection

	warnings := doc.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	report := core.Report{
		Source:    doc.Source,
		HTML:      doc.HTML,
		Markdown:  doc.Markdown,
		Warnings:  warnings,
		Text:      plainText(sel),
		Sections:  Sections(sel),
		Structure: Analyze(sel),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Analyze collects the structural metadata of canonical markup.
func Analyze(sel *goquery.Selection) core.Structure {
	s := core.Structure{
		Headings: []core.Heading{},
		Links:    []core.Link{},
		Callouts: map[string]int{},
	}
	sel.Find("h1, h2, h3").Each(func(_ int, h *goquery.Selection) {
		id, _ := h.Attr("id")
		s.Headings = append(s.Headings, core.Heading{
			Level: int(goquery.NodeName(h)[1] - '0'),
			Text:  collapse(h.Text()),
			ID:    id,
		})
	})
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		s.Links = append(s.Links, core.Link{Text: collapse(a.Text()), Href: href})
	})
	sel.Find("div.callout").Each(func(_ int, d *goquery.Selection) {
		for _, k := range contract.CalloutKinds {
			if d.HasClass(k) {
				s.Callouts[k]++
			}
		}
	})
	s.Lists = sel.Find("ol, ul").Length()
	s.Items = sel.Find("li").Length()
	s.Tables = sel.Find("table").Length()
	s.Images = sel.Find("img").Length()
	return s
}

// Sections splits the top-level blocks at each heading.
func Sections(sel *goquery.Selection) []core.Section {
	sections := []core.Section{}
	var current *core.Section
	var body []string

	flush := func() {
		if current != nil {
			current.Text = strings.Join(body, "\n")
			sections = append(sections, *current)
		}
	}
	sel.Children().Each(func(_ int, block *goquery.Selection) {
		name := goquery.NodeName(block)
		if name == "h1" || name == "h2" || name == "h3" {
			flush()
			id, _ := block.Attr("id")
			current = &core.Section{Heading: collapse(block.Text()), Level: int(name[1] - '0'), ID: id}
			body = nil
			return
		}
		if current == nil {
			return
		}
		if text := collapse(block.Text()); text != "" {
			body = append(body, text)
		}
	})
	flush()
	return sections
}

func plainText(sel *goquery.Selection) string {
	var blocks []string
	sel.Children().Each(func(_ int, block *goquery.Selection) {
		if text := collapse(block.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
