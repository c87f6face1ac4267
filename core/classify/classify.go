// Package classify implements the structural classifiers. Each classifier
// recognizes source-specific shapes (vendor wrappers, heading styles,
// bookmarks, inline formatting, callouts, tables) and rewrites them into the
// canonical shape. Classifiers are core.Stage values; the rules inside each
// one are registered in a dispatch table keyed by tag.
package classify

import (
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// rule inspects one element and rewrites it if it recognizes the shape. It
// returns true when it handled the element, which stops later rules for it.
type rule func(ctx *core.ParseContext, n *html.Node) bool

// anyTag registers a rule for every element.
const anyTag = "*"

// dispatch maps a tag to the rules tried on it, in order.
type dispatch map[string][]rule

// run visits every element of ctx.Root in document order and applies the
// rules registered for its tag. Elements detached by an earlier rewrite are
// skipped.
func (d dispatch) run(ctx *core.ParseContext) {
	for _, el := range tree.Elements(ctx.Root) {
		if !attached(el, ctx.Root) {
			continue
		}
		rules := append(append([]rule(nil), d[el.Data]...), d[anyTag]...)
		for _, r := range rules {
			if r(ctx, el) {
				break
			}
		}
	}
}

// attached reports whether n is still below root.
func attached(n, root *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
