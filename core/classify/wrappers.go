package classify

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// vendorWrappers are layout-only containers emitted by the word-processor
// web app around paragraphs, lists and tables.
var vendorWrappers = cascadia.MustCompile(
	"div.OutlineElement, div.ListContainerWrapper, div.TableContainer, div.TableCellContent",
)

// Wrappers flattens vendor layout containers so later classifiers see the
// real blocks as siblings.
type Wrappers struct {
	rules dispatch
}

// NewWrappers creates the wrapper classifier.
func NewWrappers() *Wrappers {
	return &Wrappers{rules: dispatch{"div": {flattenVendorWrapper, flattenParaBorder}}}
}

// Name implements core.Stage.
func (w *Wrappers) Name() string { return "wrappers" }

// Apply implements core.Stage.
func (w *Wrappers) Apply(ctx *core.ParseContext) {
	w.rules.run(ctx)
	for unwrapSectionRoot(ctx.Root) {
	}
}

func flattenVendorWrapper(_ *core.ParseContext, n *html.Node) bool {
	if !vendorWrappers.Match(n) {
		return false
	}
	tree.Unwrap(n)
	return true
}

// flattenParaBorder unwraps Word's bordered-paragraph container, dropping
// the blank padding paragraphs it holds.
func flattenParaBorder(_ *core.ParseContext, n *html.Node) bool {
	if !strings.Contains(strings.ToLower(tree.Attr(n, "style")), "mso-element:para-border-div") {
		return false
	}
	for _, c := range tree.ElementChildren(n) {
		if c.Data == "p" && tree.IsBlank(c) {
			tree.Detach(c)
		}
	}
	tree.Unwrap(n)
	return true
}

// unwrapSectionRoot unwraps a lone div that holds the whole document, such
// as Word's WordSection1. It reports whether it unwrapped anything.
func unwrapSectionRoot(root *html.Node) bool {
	var only *html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode:
			if only != nil {
				return false
			}
			only = c
		case !tree.IsBlank(c):
			return false
		}
	}
	if !tree.IsElement(only, "div") || isCalloutCandidate(only) {
		return false
	}
	tree.Unwrap(only)
	return true
}

// isCalloutCandidate reports whether a div could be a callout and so must
// keep its identity.
func isCalloutCandidate(n *html.Node) bool {
	if hasCalloutClass(n) || tree.HasAttr(n, "data-ccp-parastyle") {
		return true
	}
	return strings.Contains(strings.ToLower(tree.Attr(n, "style")), "border-left")
}
