package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

var msoHeadingRe = regexp.MustCompile(`(?i)^MsoHeading([1-6])$`)

// Headings promotes paragraph-like elements that declare a heading role or
// a vendor heading style to real h1-h6 elements.
type Headings struct {
	rules dispatch
}

// NewHeadings creates the heading classifier.
func NewHeadings() *Headings {
	return &Headings{rules: dispatch{"p": {promoteHeading}, "div": {promoteHeading}}}
}

// Name implements core.Stage.
func (h *Headings) Name() string { return "headings" }

// Apply implements core.Stage.
func (h *Headings) Apply(ctx *core.ParseContext) { h.rules.run(ctx) }

// HeadingLevel returns the heading level n declares, or 0.
func HeadingLevel(n *html.Node) int {
	if strings.EqualFold(strings.TrimSpace(tree.Attr(n, "role")), "heading") {
		if l, err := strconv.Atoi(strings.TrimSpace(tree.Attr(n, "aria-level"))); err == nil && l >= 1 && l <= 6 {
			return l
		}
	}
	for _, c := range tree.ClassTokens(n) {
		if m := msoHeadingRe.FindStringSubmatch(c); m != nil {
			return int(m[1][0] - '0')
		}
	}
	return 0
}

func promoteHeading(_ *core.ParseContext, n *html.Node) bool {
	level := HeadingLevel(n)
	if level == 0 {
		return false
	}
	h := tree.NewElement("h" + strconv.Itoa(level))
	if id := tree.Attr(n, "id"); id != "" {
		tree.SetAttr(h, "id", id)
	}
	tree.MoveChildren(h, n)
	tree.Replace(n, h)
	return true
}
