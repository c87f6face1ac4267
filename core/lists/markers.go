package lists

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

var (
	ignoreRe = regexp.MustCompile(`(?i)mso-list\s*:\s*ignore`)
	markerRe = regexp.MustCompile(`^[\s\x{00A0}]*(?:[\x{2022}\x{00B7}\x{2219}\x{25AA}\x{25CF}\x{25E6}\x{25A0}\x{F0B7}\x{F0A7}]|[-*o](?:[\s\x{00A0}]|$)|\(?(?:\d{1,3}|[A-Za-z]|[ivxlcdmIVXLCDM]{1,6})[.)](?:[\s\x{00A0}]|$))[\s\x{00A0}]*`)
)

// maxSpacerPt is the largest font size of the spacer spans Word uses to pad
// a rendered marker.
const maxSpacerPt = 7.0

// StripMarker removes the rendered list marker from the start of p's
// content. Word's marker helper spans are removed outright; when one of them
// carried the marker, the text itself is left alone.
func StripMarker(p *html.Node) {
	helper := false
	for _, el := range tree.Elements(p) {
		if el.Data != "span" || el.Parent == nil {
			continue
		}
		style := tree.Attr(el, "style")
		switch {
		case ignoreRe.MatchString(style):
			tree.Detach(el)
			helper = true
		case isSpacerSpan(el, style):
			tree.Detach(el)
		}
	}
	if !helper {
		trimFirstText(p)
	}
}

func isSpacerSpan(span *html.Node, style string) bool {
	for c := span.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.Trim(c.Data, " \t\r\n\u00a0") != "" {
			return false
		}
	}
	size, ok := tree.Length(tree.ParseStyle(style).Get("font-size"))
	if !ok {
		if v, found := fontShorthandSize(style); found {
			size, ok = v, true
		}
	}
	return ok && size <= maxSpacerPt*96/72
}

// fontShorthandSize reads the size from a "font: 7.0pt Times" shorthand.
func fontShorthandSize(style string) (float64, bool) {
	for _, f := range strings.Fields(tree.ParseStyle(style).Get("font")) {
		if px, ok := tree.Length(f); ok {
			return px, true
		}
	}
	return 0, false
}

// trimFirstText strips a marker from the first text run under n. Leading
// whitespace and blank inline wrappers are skipped; the first real content
// ends the search whether or not it held a marker. It reports whether real
// content was found.
func trimFirstText(n *html.Node) bool {
	for _, c := range tree.Children(n) {
		switch c.Type {
		case html.TextNode:
			if tree.IsBlankText(c.Data) {
				n.RemoveChild(c)
				continue
			}
			if loc := markerRe.FindStringIndex(c.Data); loc != nil {
				c.Data = c.Data[loc[1]:]
				if c.Data == "" {
					n.RemoveChild(c)
				}
			}
			return true
		case html.ElementNode:
			if tree.IsVoid(c.Data) {
				return true
			}
			if tree.IsBlank(c) {
				continue
			}
			if trimFirstText(c) {
				return true
			}
		}
	}
	return false
}
