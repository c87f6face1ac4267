package classify

import (
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// Bookmarks turns named anchors without href (word-processor bookmarks) into
// id targets: the id of the heading they open, or an empty marker span.
type Bookmarks struct {
	rules dispatch
}

// NewBookmarks creates the bookmark classifier.
func NewBookmarks() *Bookmarks {
	return &Bookmarks{rules: dispatch{"a": {convertBookmark}}}
}

// Name implements core.Stage.
func (b *Bookmarks) Name() string { return "bookmarks" }

// Apply implements core.Stage.
func (b *Bookmarks) Apply(ctx *core.ParseContext) { b.rules.run(ctx) }

func convertBookmark(_ *core.ParseContext, a *html.Node) bool {
	if tree.HasAttr(a, "href") {
		return false
	}
	name := strings.TrimSpace(tree.Attr(a, "name"))
	if name == "" {
		return false
	}
	if h := tree.Closest(a, "h1", "h2", "h3", "h4", "h5", "h6"); h != nil && tree.Attr(h, "id") == "" && leads(a, h) {
		tree.SetAttr(h, "id", name)
		tree.Unwrap(a)
		return true
	}
	marker := tree.NewElement("span", html.Attribute{Key: "id", Val: name})
	a.Parent.InsertBefore(marker, a)
	tree.Unwrap(a)
	return true
}

// leads reports whether nothing visible precedes n inside ancestor.
func leads(n, ancestor *html.Node) bool {
	for cur := n; cur != ancestor && cur != nil; cur = cur.Parent {
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if !tree.IsBlank(s) {
				return false
			}
		}
	}
	return true
}
