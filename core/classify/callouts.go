package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// blockStyleClasses are the word processor's callout paragraph styles.
var blockStyleClasses = map[string]string{
	"noteblock":    "note",
	"warnblock":    "warning",
	"exampleblock": "example",
}

// paraStyles are the web app's paragraph-style names for the same styles.
var paraStyles = map[string]string{
	"note block":    "note",
	"noteblock":     "note",
	"warn block":    "warning",
	"warning block": "warning",
	"warnblock":     "warning",
	"example block": "example",
	"exampleblock":  "example",
}

// calloutColors are the border/background pairs pasted callouts carry.
var calloutColors = []struct {
	kind       string
	border     string
	background string
}{
	{"note", "#0073e6", "#f9f9f9"},
	{"warning", "#ff9800", "#fff3cd"},
	{"example", "#aaaaaa", "#f0f0f0"},
}

var (
	hexColorRe = regexp.MustCompile(`#(?:[0-9a-f]{6}|[0-9a-f]{3})\b`)
	rgbColorRe = regexp.MustCompile(`rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)
	labelRe    = regexp.MustCompile(`(?i)^(note|example)\s*:?$`)
)

// allowedCalloutChildren may appear directly inside a callout.
var allowedCalloutChildren = map[string]bool{"p": true, "ul": true, "ol": true}

// Callouts detects the three source shapes of callouts and normalizes every
// callout container. With detection off it only normalizes, which is what
// re-validation needs.
type Callouts struct {
	detect bool
	rules  dispatch
}

// NewCallouts creates the detecting callout classifier.
func NewCallouts() *Callouts {
	return &Callouts{detect: true, rules: dispatch{
		"p":    {calloutFromBlockStyle},
		"div":  {calloutFromColors},
		anyTag: {calloutFromParaStyle},
	}}
}

// NewCalloutNormalizer creates a classifier that only normalizes existing
// callout containers.
func NewCalloutNormalizer() *Callouts {
	return &Callouts{}
}

// Name implements core.Stage.
func (c *Callouts) Name() string {
	if c.detect {
		return "callouts"
	}
	return "callout-normalize"
}

// Apply implements core.Stage.
func (c *Callouts) Apply(ctx *core.ParseContext) {
	if c.detect {
		c.rules.run(ctx)
	}
	for _, el := range tree.Elements(ctx.Root) {
		if el.Data == "div" && hasCalloutClass(el) && attached(el, ctx.Root) {
			NormalizeCallout(ctx, el)
		}
	}
}

func calloutFromBlockStyle(ctx *core.ParseContext, p *html.Node) bool {
	for _, c := range tree.ClassTokens(p) {
		if kind, ok := blockStyleClasses[strings.ToLower(c)]; ok {
			wrapCallout(ctx, p, kind)
			return true
		}
	}
	return false
}

func calloutFromParaStyle(ctx *core.ParseContext, n *html.Node) bool {
	style := strings.ToLower(strings.Join(strings.Fields(tree.Attr(n, "data-ccp-parastyle")), " "))
	kind, ok := paraStyles[style]
	if !ok {
		return false
	}
	target := tree.Closest(n, "p")
	if target == nil {
		target = tree.Closest(n, "div")
	}
	if target == nil {
		target = n
	}
	wrapCallout(ctx, target, kind)
	return true
}

func calloutFromColors(ctx *core.ParseContext, div *html.Node) bool {
	if hasCalloutClass(div) {
		return false
	}
	kind := colorKind(tree.ParseStyle(tree.Attr(div, "style")))
	if kind == "" {
		return false
	}
	tree.SetAttr(div, "class", contract.CalloutClass+" "+kind)
	tree.RemoveAttr(div, "style")
	ctx.Logger.Debug("callout from inline colors", "kind", kind)
	return true
}

// colorKind returns the callout kind whose border and background colors the
// style declares, or "".
func colorKind(st tree.Style) string {
	border := firstColor(st.Get("border-left-color"))
	if border == "" {
		border = firstColor(st.Get("border-left"))
	}
	background := firstColor(st.Get("background-color"))
	if background == "" {
		background = firstColor(st.Get("background"))
	}
	if border == "" || background == "" {
		return ""
	}
	for _, c := range calloutColors {
		if border == c.border && background == c.background {
			return c.kind
		}
	}
	return ""
}

// firstColor extracts the first hex or rgb() color in v as lower-case
// six-digit hex.
func firstColor(v string) string {
	v = strings.ToLower(v)
	if m := rgbColorRe.FindStringSubmatch(v); m != nil {
		var rgb [3]int
		for i := range rgb {
			rgb[i], _ = strconv.Atoi(m[i+1])
			rgb[i] = min(rgb[i], 255)
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
	}
	hex := hexColorRe.FindString(v)
	if len(hex) == 4 {
		return "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
	}
	return hex
}

// wrapCallout wraps block in a new callout container unless it already sits
// inside one. Neighbouring callouts are never merged.
func wrapCallout(ctx *core.ParseContext, block *html.Node, kind string) {
	if insideCallout(block) {
		return
	}
	div := tree.NewElement("div", html.Attribute{Key: "class", Val: contract.CalloutClass + " " + kind})
	tree.Wrap(block, div)
	if block.Data == "div" {
		tree.Unwrap(block)
	}
	tree.RemoveAttr(block, "data-ccp-parastyle")
	ctx.Logger.Debug("wrapped callout", "kind", kind, "source", block.Data)
}

func insideCallout(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Data == "div" && hasCalloutClass(p) {
			return true
		}
	}
	return false
}

func hasCalloutClass(n *html.Node) bool {
	for _, c := range tree.ClassTokens(n) {
		if c == contract.CalloutClass {
			return true
		}
	}
	return false
}

// NormalizeCallout restricts div's content to paragraphs and lists: nested
// containers and quotes are flattened, headings and preformatted blocks become
// paragraphs, loose inline content is wrapped, and other blocks are moved
// out right after the callout. A "Note:" or "Example:" label stays with the
// text that follows it and is normalized.
func NormalizeCallout(ctx *core.ParseContext, div *html.Node) {
	for flattened := true; flattened; {
		flattened = false
		for _, c := range tree.ElementChildren(div) {
			if tree.IsElement(c, "div", "section", "article", "blockquote") {
				tree.Unwrap(c)
				flattened = true
			}
		}
	}

	var hoist []*html.Node
	for _, c := range tree.ElementChildren(div) {
		switch {
		case allowedCalloutChildren[c.Data]:
		case c.Data == "pre" || isHeading(c):
			tree.Rename(c, "p")
			c.Attr = nil
		case tree.IsBlock(c):
			hoist = append(hoist, c)
		}
	}
	ref := div
	for _, b := range hoist {
		tree.InsertAfter(ref, b)
		ref = b
		ctx.Warn("Moved <%s> out of callout.", b.Data)
	}

	tree.WrapInlineRuns(div, "p")
	relocateLabel(div)
	normalizeLabel(div)
}

func isHeading(n *html.Node) bool {
	return tree.IsElement(n, "h1", "h2", "h3", "h4", "h5", "h6")
}

// relocateLabel merges a first paragraph holding nothing but a label into
// the paragraph that follows it.
func relocateLabel(div *html.Node) {
	els := tree.ElementChildren(div)
	if len(els) < 2 || els[0].Data != "p" || els[1].Data != "p" {
		return
	}
	first, next := els[0], els[1]
	var label *html.Node
	for _, c := range tree.Children(first) {
		switch {
		case c.Type == html.TextNode && tree.IsBlankText(c.Data):
		case label == nil && tree.IsElement(c, "strong", "b") && labelRe.MatchString(tree.Text(c)):
			label = c
		default:
			return
		}
	}
	if label == nil {
		return
	}
	tree.Prepend(next, label)
	tree.Detach(first)
}

// normalizeLabel rewrites the first paragraph's leading label to the
// canonical "Note:" or "Example:" followed by a no-break space.
func normalizeLabel(div *html.Node) {
	var first *html.Node
	for _, c := range tree.ElementChildren(div) {
		if c.Data == "p" {
			first = c
			break
		}
	}
	if first == nil {
		return
	}
	label := first.FirstChild
	for label != nil && label.Type == html.TextNode && tree.IsBlankText(label.Data) {
		next := label.NextSibling
		first.RemoveChild(label)
		label = next
	}
	if !tree.IsElement(label, "strong", "b") {
		return
	}
	m := labelRe.FindStringSubmatch(tree.Text(label))
	if m == nil {
		return
	}
	word := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	for label.FirstChild != nil {
		label.RemoveChild(label.FirstChild)
	}
	label.AppendChild(tree.NewText(word + ":\u00a0"))
	if next := label.NextSibling; next != nil && next.Type == html.TextNode {
		next.Data = strings.TrimLeft(next.Data, " \t\r\n\u00a0")
		if next.Data == "" {
			first.RemoveChild(next)
		}
	}
}
