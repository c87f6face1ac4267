// Package enforce applies the markup contract to a tree: disallowed tags are
// dropped or unwrapped, attributes are filtered against the per-tag
// allow-list, and the tags with value rules (links, images, callouts, lists,
// cells) have their attribute values checked.
package enforce

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// hook checks the values on one retained element. It returns false when it
// removed or unwrapped the element.
type hook func(ctx *core.ParseContext, n *html.Node) bool

// rowGroups are inserted by the HTML parser around every table body, so
// unwrapping them is not worth a warning.
var rowGroups = map[string]bool{"tbody": true, "thead": true, "tfoot": true}

// Enforcer is the contract enforcement stage.
type Enforcer struct {
	hooks map[string]hook
}

// New creates an Enforcer.
func New() *Enforcer {
	return &Enforcer{hooks: map[string]hook{
		"a":    enforceLink,
		"img":  enforceImage,
		"span": enforceSpan,
		"div":  enforceDiv,
		"pre":  enforcePre,
		"td":   enforceCell,
		"th":   enforceCell,
		"ol":   enforceOrderedList,
		"p":    enforceParagraph,
	}}
}

// Name implements core.Stage.
func (e *Enforcer) Name() string { return "enforce" }

// Apply implements core.Stage.
func (e *Enforcer) Apply(ctx *core.ParseContext) {
	e.walk(ctx, ctx.Root)
}

// walk enforces the subtree below n, children before their parent.
func (e *Enforcer) walk(ctx *core.ParseContext, n *html.Node) {
	for _, c := range tree.Children(n) {
		switch c.Type {
		case html.CommentNode, html.DoctypeNode:
			n.RemoveChild(c)
		case html.ElementNode:
			if ctx.Policy.Drops(c.Data) {
				n.RemoveChild(c)
				ctx.Warn("Removed <%s> element.", c.Data)
				continue
			}
			e.walk(ctx, c)
			e.element(ctx, c)
		}
	}
}

func (e *Enforcer) element(ctx *core.ParseContext, n *html.Node) {
	if to, ok := ctx.Policy.Alias(n.Data); ok {
		tree.Rename(n, to)
	}
	if !ctx.Policy.AllowsTag(n.Data) {
		if !rowGroups[n.Data] {
			ctx.Warn("Removed unsupported <%s> (unwrapped).", n.Data)
		}
		tree.Unwrap(n)
		return
	}

	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && ctx.Policy.AllowsAttr(n.Data, a.Key) {
			kept = append(kept, a)
			continue
		}
		ctx.Warn("Removed forbidden attribute %s from <%s>.", a.Key, n.Data)
	}
	n.Attr = kept

	if h, ok := e.hooks[n.Data]; ok && !h(ctx, n) {
		return
	}
	if ctx.Policy.IsVoid(n.Data) {
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
	}
}

func enforceLink(ctx *core.ParseContext, a *html.Node) bool {
	href := stripControl(strings.TrimSpace(tree.Attr(a, "href")))
	if href == "" {
		ctx.Warn("Link missing href; unwrapped <a>.")
		tree.Unwrap(a)
		return false
	}

	if frag, ok := fragment(href); ok {
		if frag == "" {
			ctx.Warn("Link has an empty fragment; unwrapped <a>.")
			tree.Unwrap(a)
			return false
		}
		a.Attr = []html.Attribute{{Key: "href", Val: "#" + frag}}
		return true
	}

	u, err := url.Parse(href)
	if err != nil {
		ctx.Warn("Link href %q could not be parsed; unwrapped <a>.", href)
		tree.Unwrap(a)
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	switch {
	case (scheme == "file" || scheme == "about") && u.Fragment != "":
		a.Attr = []html.Attribute{{Key: "href", Val: "#" + u.Fragment}}
	case scheme == "mailto" && ctx.Policy.AllowsScheme(scheme):
		a.Attr = []html.Attribute{{Key: "href", Val: href}}
	case scheme == "" || ctx.Policy.AllowsScheme(scheme):
		a.Attr = []html.Attribute{
			{Key: "href", Val: href},
			{Key: "rel", Val: "noopener noreferrer"},
			{Key: "target", Val: "_blank"},
		}
	default:
		ctx.Warn("Removed link with disallowed scheme %q; unwrapped <a>.", scheme)
		tree.Unwrap(a)
		return false
	}
	return true
}

// fragment reports whether href targets the current document and returns
// the target id. The word processor's bookmark:// pseudo-scheme counts.
func fragment(href string) (string, bool) {
	if strings.HasPrefix(href, "#") {
		return href[1:], true
	}
	const bookmark = "bookmark://"
	if len(href) >= len(bookmark) && strings.EqualFold(href[:len(bookmark)], bookmark) {
		return href[len(bookmark):], true
	}
	return "", false
}

// stripControl removes control and invisible format characters that
// browsers ignore inside a URL scheme.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

func enforceImage(ctx *core.ParseContext, img *html.Node) bool {
	src := strings.TrimSpace(tree.Attr(img, "src"))
	if src == "" {
		ctx.Warn("Image missing src; removed <img>.")
		tree.Detach(img)
		return false
	}
	if !allowedImageSource(ctx.Policy, src) {
		ctx.Warn("Image src is not an allowed URL; removed <img>.")
		tree.Detach(img)
		return false
	}
	reduceClass(ctx.Policy, img)
	positiveAttr(ctx, img, "width", "height")
	return true
}

func allowedImageSource(p *contract.Policy, src string) bool {
	if strings.HasPrefix(strings.ToLower(src), "data:image/") {
		return true
	}
	u, err := url.Parse(stripControl(src))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "" || ((scheme == "http" || scheme == "https") && p.AllowsScheme(scheme))
}

func enforceSpan(ctx *core.ParseContext, span *html.Node) bool {
	reduceClass(ctx.Policy, span)
	if len(span.Attr) == 0 {
		tree.Unwrap(span)
		return false
	}
	return true
}

func enforceDiv(ctx *core.ParseContext, div *html.Node) bool {
	if !tree.HasAttr(div, "class") {
		return true
	}
	tokens := strings.Fields(strings.ToLower(tree.Attr(div, "class")))
	callout := false
	kinds := map[string]bool{}
	for _, t := range tokens {
		if t == contract.CalloutClass {
			callout = true
		}
		for _, k := range contract.CalloutKinds {
			if t == k {
				kinds[k] = true
			}
		}
	}
	if !callout {
		tree.RemoveAttr(div, "class")
		return true
	}
	if len(kinds) != 1 {
		ctx.Warn("Invalid callout class on <div>; unwrapped callout.")
		tree.Unwrap(div)
		return false
	}
	for k := range kinds {
		tree.SetAttr(div, "class", contract.CalloutClass+" "+k)
	}
	return true
}

func enforcePre(_ *core.ParseContext, pre *html.Node) bool {
	if tree.HasAttr(pre, "spellcheck") {
		if strings.EqualFold(strings.TrimSpace(tree.Attr(pre, "spellcheck")), "false") {
			tree.SetAttr(pre, "spellcheck", "false")
		} else {
			tree.RemoveAttr(pre, "spellcheck")
		}
	}
	text := preText(pre)
	for pre.FirstChild != nil {
		pre.RemoveChild(pre.FirstChild)
	}
	if text != "" {
		pre.AppendChild(tree.NewText(text))
	}
	return true
}

// preText flattens preformatted content to its text, keeping line breaks.
func preText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case tree.IsElement(c, "br"):
				b.WriteByte('\n')
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

func enforceCell(ctx *core.ParseContext, cell *html.Node) bool {
	positiveAttr(ctx, cell, "colspan", "rowspan")
	return true
}

func enforceOrderedList(ctx *core.ParseContext, ol *html.Node) bool {
	if tree.HasAttr(ol, "type") {
		switch t := strings.TrimSpace(tree.Attr(ol, "type")); t {
		case "a", "A", "i", "I":
			tree.SetAttr(ol, "type", t)
		case "1":
			tree.RemoveAttr(ol, "type")
		default:
			tree.RemoveAttr(ol, "type")
			ctx.Warn("Removed invalid type from <ol>.")
		}
	}
	if tree.HasAttr(ol, "start") {
		n, ok := positive(tree.Attr(ol, "start"))
		switch {
		case !ok:
			tree.RemoveAttr(ol, "start")
			ctx.Warn("Removed invalid start from <ol>.")
		case n == 1:
			tree.RemoveAttr(ol, "start")
		default:
			tree.SetAttr(ol, "start", strconv.Itoa(n))
		}
	}
	return true
}

func enforceParagraph(_ *core.ParseContext, p *html.Node) bool {
	if !tree.IsBlank(p) || hasIDBelow(p) {
		return true
	}
	if tree.IsElement(p.FirstChild, "br") && p.FirstChild == p.LastChild {
		return true
	}
	for p.FirstChild != nil {
		p.RemoveChild(p.FirstChild)
	}
	p.AppendChild(tree.NewElement("br"))
	return true
}

func hasIDBelow(n *html.Node) bool {
	for _, el := range tree.Elements(n) {
		if tree.HasAttr(el, "id") {
			return true
		}
	}
	return false
}

// reduceClass keeps the first class token the policy allows on n, or drops
// the attribute.
func reduceClass(p *contract.Policy, n *html.Node) {
	if !tree.HasAttr(n, "class") {
		return
	}
	allowed := p.ClassTokens(n.Data)
	for _, c := range tree.ClassTokens(n) {
		for _, a := range allowed {
			if strings.EqualFold(c, a) {
				tree.SetAttr(n, "class", a)
				return
			}
		}
	}
	tree.RemoveAttr(n, "class")
}

// positiveAttr drops each of keys whose value is not a positive integer and
// normalizes the rest.
func positiveAttr(ctx *core.ParseContext, n *html.Node, keys ...string) {
	for _, k := range keys {
		if !tree.HasAttr(n, k) {
			continue
		}
		v, ok := positive(tree.Attr(n, k))
		if !ok {
			tree.RemoveAttr(n, k)
			ctx.Warn("Removed invalid %s from <%s>.", k, n.Data)
			continue
		}
		tree.SetAttr(n, k, strconv.Itoa(v))
	}
}

func positive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
