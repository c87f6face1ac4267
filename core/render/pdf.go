// This file implements the PDF renderer. It walks the canonical tree rather
// than the Markdown, so callouts and nested list numbering survive.
// Images are not embedded; their alt text is printed instead.

package render

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// headingSizes are font sizes in points by heading level.
var headingSizes = map[string]float64{"h1": 18, "h2": 15, "h3": 13}

// calloutFills are the box shades per callout kind.
var calloutFills = map[string][3]int{
	"note":    {232, 241, 252},
	"warning": {255, 243, 205},
	"example": {240, 240, 240},
}

const listIndent = 6.0

// PDFRenderer renders canonical HTML as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the document's canonical HTML into PDF bytes.
func (r *PDFRenderer) Render(doc core.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	w.left, _, _, _ = pdf.GetMargins()

	if doc.Source != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, w.tr("Source: "+doc.Source), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	}

	root := tree.Parse(doc.HTML)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		w.block(c, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing PDF")
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type pdfWriter struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	left float64
	fill bool
}

// para writes one wrapped paragraph at indent.
func (w *pdfWriter) para(text string, indent, height float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	w.pdf.SetX(w.left + indent)
	w.pdf.MultiCell(0, height, w.tr(text), "", "L", w.fill)
}

func (w *pdfWriter) block(n *html.Node, indent float64) {
	if n.Type == html.TextNode {
		w.pdf.SetFont("Helvetica", "", 10)
		w.para(collapse(n.Data), indent, 5)
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3":
		size := headingSizes[n.Data]
		w.pdf.Ln(4)
		w.pdf.SetFont("Helvetica", "B", size)
		w.para(inlineText(n), indent, size*0.6)
		w.pdf.Ln(2)
	case "p":
		w.pdf.SetFont("Helvetica", "", 10)
		w.para(inlineText(n), indent, 5)
		w.pdf.Ln(1)
	case "ul", "ol":
		w.list(n, indent)
	case "pre":
		w.pdf.Ln(2)
		w.pdf.SetFont("Courier", "", 9)
		w.pdf.SetFillColor(245, 245, 245)
		for _, line := range strings.Split(tree.TextContent(n), "\n") {
			w.pdf.SetX(w.left + indent)
			w.pdf.MultiCell(0, 4.5, w.tr(line), "", "L", true)
		}
		w.pdf.Ln(2)
	case "div":
		w.callout(n, indent)
	case "blockquote":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.block(c, indent+listIndent)
		}
	case "table":
		w.table(n, indent)
	case "hr":
		y := w.pdf.GetY() + 2
		pageW, _ := w.pdf.GetPageSize()
		_, _, right, _ := w.pdf.GetMargins()
		w.pdf.Line(w.left+indent, y, pageW-right, y)
		w.pdf.Ln(4)
	default:
		w.pdf.SetFont("Helvetica", "", 10)
		w.para(inlineText(n), indent, 5)
	}
}

func (w *pdfWriter) list(list *html.Node, indent float64) {
	start := 1
	if v, err := strconv.Atoi(tree.Attr(list, "start")); err == nil && v > 0 {
		start = v
	}
	typ := tree.Attr(list, "type")
	i := 0
	for _, li := range tree.ElementChildren(list) {
		if li.Data != "li" {
			continue
		}
		marker := "\u2022"
		if list.Data == "ol" {
			marker = ItemLabel(start+i, typ)
		}
		i++

		var text strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if tree.IsElement(c, "ul", "ol", "p", "pre", "table", "div", "blockquote") {
				nested = append(nested, c)
				continue
			}
			text.WriteString(inlineText(c))
		}

		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.SetX(w.left + indent)
		w.pdf.CellFormat(listIndent+2, 5, w.tr(marker), "", 0, "L", w.fill, 0, "")
		if t := collapse(text.String()); t != "" {
			w.pdf.MultiCell(0, 5, w.tr(t), "", "L", w.fill)
		} else {
			w.pdf.Ln(5)
		}
		for _, c := range nested {
			w.block(c, indent+listIndent+2)
		}
	}
	w.pdf.Ln(1)
}

func (w *pdfWriter) callout(div *html.Node, indent float64) {
	kind := ""
	for _, c := range tree.ClassTokens(div) {
		if _, ok := calloutFills[c]; ok {
			kind = c
		}
	}
	if kind == "" {
		for c := div.FirstChild; c != nil; c = c.NextSibling {
			w.block(c, indent)
		}
		return
	}

	rgb := calloutFills[kind]
	w.pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
	w.pdf.Ln(2)
	w.pdf.SetFont("Helvetica", "B", 10)
	w.fill = true
	w.para(strings.ToUpper(kind[:1])+kind[1:], indent, 6)
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		w.pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
		w.block(c, indent)
	}
	w.fill = false
	w.pdf.Ln(2)
}

// table writes each row as one line of cell texts.
func (w *pdfWriter) table(table *html.Node, indent float64) {
	w.pdf.Ln(2)
	for _, tr := range tree.Elements(table) {
		if tr.Data != "tr" {
			continue
		}
		var cells []string
		bold := false
		for _, cell := range tree.ElementChildren(tr) {
			if cell.Data == "th" {
				bold = true
			}
			cells = append(cells, collapse(tree.TextContent(cell)))
		}
		style := ""
		if bold {
			style = "B"
		}
		w.pdf.SetFont("Helvetica", style, 9)
		w.para(strings.Join(cells, " | "), indent, 5)
	}
	w.pdf.Ln(2)
}

// inlineText returns the visible text of n with line breaks kept and
// images replaced by their alt text.
func inlineText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case tree.IsElement(c, "br"):
			b.WriteString("\n")
		case tree.IsElement(c, "img"):
			if alt := tree.Attr(c, "alt"); alt != "" {
				b.WriteString("[" + alt + "]")
			}
		default:
			b.WriteString(inlineText(c))
		}
	}
	return b.String()
}

// ItemLabel formats the marker of the n-th item of an ordered list with the
// given type attribute.
func ItemLabel(n int, typ string) string {
	switch typ {
	case "a":
		return alpha(n) + "."
	case "A":
		return strings.ToUpper(alpha(n)) + "."
	case "i":
		return roman(n) + "."
	case "I":
		return strings.ToUpper(roman(n)) + "."
	default:
		return strconv.Itoa(n) + "."
	}
}

// alpha counts a..z, aa..az and so on.
func alpha(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var romanDigits = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(n int) string {
	var b strings.Builder
	for _, d := range romanDigits {
		for n >= d.value {
			b.WriteString(d.symbol)
			n -= d.value
		}
	}
	return b.String()
}
