package lists

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// OnlineLists recombines the web app's clipboard lists. The web app emits
// every item, or every run of items, as its own one-level list and records
// the real structure in data-listid and data-aria-level on the items.
type OnlineLists struct{}

// NewOnlineLists creates the stage.
func NewOnlineLists() *OnlineLists { return &OnlineLists{} }

// Name implements core.Stage.
func (o *OnlineLists) Name() string { return "online-lists" }

// Apply implements core.Stage.
func (o *OnlineLists) Apply(ctx *core.ParseContext) {
	if n := MergeOnlineLists(ctx.Root); n > 0 {
		ctx.Logger.Debug("merged web app list segments", "lists", n)
	}
}

// MergeOnlineLists combines consecutive lists of root whose items share a
// data-listid into one nested list. It returns the number of combined lists
// produced.
func MergeOnlineLists(root *html.Node) int {
	merged := 0
	for node := firstElement(root.FirstChild); node != nil; node = nextElement(node) {
		if !tree.IsElement(node, "ol", "ul") {
			continue
		}
		id := listID(node)
		if id == "" {
			continue
		}
		segments := []*html.Node{node}
		var pending, separators []*html.Node
		for cur := nextElement(node); cur != nil; cur = nextElement(cur) {
			if cur.Data != node.Data {
				if isSeparator(cur) {
					pending = append(pending, cur)
					continue
				}
				break
			}
			if listID(cur) != id {
				break
			}
			segments = append(segments, cur)
			separators = append(separators, pending...)
			pending = nil
		}
		if len(segments) == 1 && !hasNestedLevels(node) {
			continue
		}

		combined := combine(node.Data, segments)
		root.InsertBefore(combined, node)
		for _, s := range segments {
			tree.Detach(s)
		}
		for _, s := range separators {
			tree.Detach(s)
		}
		node = combined
		merged++
	}
	return merged
}

// combine moves the items of segments into a new list nested by each item's
// aria level.
func combine(tag string, segments []*html.Node) *html.Node {
	combined := tree.NewElement(tag)
	stack := []*html.Node{combined}
	styles := map[int]Style{}

	for _, seg := range segments {
		style := StyleFromCSS(tree.ParseStyle(tree.Attr(seg, "style")).Get("list-style-type"))
		for _, li := range tree.ElementChildren(seg) {
			if li.Data != "li" {
				continue
			}
			level := itemLevel(li)
			if tag == "ol" && style != Decimal {
				styles[level] = style
			}
			for len(stack) < level {
				holder := lastItem(stack[len(stack)-1])
				if holder == nil {
					break
				}
				nested := tree.NewElement(tag)
				if tag == "ol" {
					if t := styles[len(stack)+1].TypeAttr(); t != "" {
						tree.SetAttr(nested, "type", t)
					}
				}
				holder.AppendChild(nested)
				stack = append(stack, nested)
			}
			if len(stack) > level {
				stack = stack[:level]
			}
			tree.Detach(li)
			stack[len(stack)-1].AppendChild(li)
		}
	}
	if tag == "ol" {
		if t := styles[1].TypeAttr(); t != "" {
			tree.SetAttr(combined, "type", t)
		}
	}
	return combined
}

func listID(list *html.Node) string {
	for _, el := range tree.Elements(list) {
		if el.Data == "li" {
			return strings.TrimSpace(tree.Attr(el, "data-listid"))
		}
	}
	return ""
}

func itemLevel(li *html.Node) int {
	v := tree.Attr(li, "data-aria-level")
	if v == "" {
		v = tree.Attr(li, "aria-level")
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func hasNestedLevels(list *html.Node) bool {
	for _, el := range tree.Elements(list) {
		if el.Data == "li" && itemLevel(el) > 1 {
			return true
		}
	}
	return false
}

func lastItem(list *html.Node) *html.Node {
	for c := list.LastChild; c != nil; c = c.PrevSibling {
		if tree.IsElement(c, "li") {
			return c
		}
	}
	return nil
}

// isSeparator reports whether n is blank spacing the web app leaves between
// list segments.
func isSeparator(n *html.Node) bool {
	return n.Data == "br" || (n.Data == "p" && tree.IsBlank(n) && !carriesID(n))
}

func firstElement(n *html.Node) *html.Node {
	for ; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}

func nextElement(n *html.Node) *html.Node {
	return firstElement(n.NextSibling)
}
