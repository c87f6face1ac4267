package lists

import (
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// Cleaner puts existing lists into canonical shape. It runs on freshly
// rebuilt lists and on re-validated markup alike.
type Cleaner struct{}

// NewCleaner creates the list cleanup stage.
func NewCleaner() *Cleaner { return &Cleaner{} }

// Name implements core.Stage.
func (c *Cleaner) Name() string { return "list-cleanup" }

// Apply implements core.Stage.
func (c *Cleaner) Apply(ctx *core.ParseContext) { Cleanup(ctx.Root) }

// Cleanup repairs list structure below root: stray items get a list, list
// children that are not items are moved into items, adjacent compatible
// lists are merged, orphan nesting is folded into the previous item and a
// sole leading paragraph in an item is unwrapped.
func Cleanup(root *html.Node) {
	dropDefaultStarts(root)
	wrapStrayItems(root)
	repairChildren(root)
	mergeAdjacent(root)
	foldOrphans(root)
	mergeAdjacent(root)
	unwrapLeadingParagraphs(root)
}

func isList(n *html.Node) bool { return tree.IsElement(n, "ul", "ol") }

// containers returns root and every element below it.
func containers(root *html.Node) []*html.Node {
	return append([]*html.Node{root}, tree.Elements(root)...)
}

func wrapStrayItems(root *html.Node) {
	for _, parent := range containers(root) {
		if isList(parent) {
			continue
		}
		var run *html.Node
		for _, c := range tree.Children(parent) {
			switch {
			case tree.IsElement(c, "li"):
				if run == nil {
					run = tree.NewElement("ul")
					parent.InsertBefore(run, c)
				}
				parent.RemoveChild(c)
				run.AppendChild(c)
			case run != nil && c.Type == html.TextNode && tree.IsBlankText(c.Data):
				parent.RemoveChild(c)
			default:
				run = nil
			}
		}
	}
}

func repairChildren(root *html.Node) {
	for _, list := range tree.Elements(root) {
		if !isList(list) {
			continue
		}
		var prev, synthetic *html.Node
		for _, c := range tree.Children(list) {
			switch {
			case tree.IsElement(c, "li"):
				prev, synthetic = c, nil
			case c.Type == html.CommentNode || (c.Type == html.TextNode && tree.IsBlankText(c.Data)):
				list.RemoveChild(c)
			case isList(c) && prev != nil:
				list.RemoveChild(c)
				prev.AppendChild(c)
			default:
				if synthetic == nil {
					synthetic = tree.NewElement("li")
					list.InsertBefore(synthetic, c)
					prev = synthetic
				}
				list.RemoveChild(c)
				synthetic.AppendChild(c)
			}
		}
	}
}

// sameKind reports whether lists a and b can be merged: same tag and, for
// ordered lists, the same numbering type.
func sameKind(a, b *html.Node) bool {
	if !isList(a) || !isList(b) || a.Data != b.Data {
		return false
	}
	return a.Data == "ul" || strings.TrimSpace(tree.Attr(a, "type")) == strings.TrimSpace(tree.Attr(b, "type"))
}

// isIgnorable reports whether n may sit between two lists that still count
// as adjacent.
func isIgnorable(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return tree.IsBlankText(n.Data)
	case html.CommentNode:
		return true
	case html.ElementNode:
		return n.Data == "br" || (n.Data == "p" && tree.IsBlank(n) && !carriesID(n))
	}
	return false
}

func mergeAdjacent(root *html.Node) {
	for _, parent := range containers(root) {
		for list := parent.FirstChild; list != nil; list = list.NextSibling {
			if !isList(list) {
				continue
			}
			for {
				var between []*html.Node
				next := list.NextSibling
				for next != nil && isIgnorable(next) {
					between = append(between, next)
					next = next.NextSibling
				}
				if next == nil || !sameKind(list, next) || tree.HasAttr(next, "start") {
					break
				}
				for _, b := range between {
					parent.RemoveChild(b)
				}
				tree.MoveChildren(list, next)
				parent.RemoveChild(next)
			}
		}
	}
}

// foldOrphans moves the nested lists of an item that has nothing else into
// the previous item.
func foldOrphans(root *html.Node) {
	for _, li := range tree.Elements(root) {
		if li.Data != "li" || li.Parent == nil {
			continue
		}
		prev := li.PrevSibling
		for prev != nil && !tree.IsElement(prev, "li") {
			prev = prev.PrevSibling
		}
		if prev == nil || !isOrphan(li) {
			continue
		}
		for _, c := range tree.Children(li) {
			if isList(c) {
				li.RemoveChild(c)
				prev.AppendChild(c)
			}
		}
		tree.Detach(li)
	}
}

func isOrphan(li *html.Node) bool {
	lists := 0
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case isList(c):
			lists++
		case !tree.IsBlank(c) || carriesID(c):
			return false
		}
	}
	return lists > 0 && !tree.HasAttr(li, "id")
}

func unwrapLeadingParagraphs(root *html.Node) {
	for _, li := range tree.Elements(root) {
		if li.Data != "li" {
			continue
		}
		var first *html.Node
		paragraphs := 0
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && tree.IsBlankText(c.Data) {
				continue
			}
			if first == nil {
				first = c
			}
			if tree.IsElement(c, "p") {
				paragraphs++
			}
		}
		if !tree.IsElement(first, "p") || paragraphs != 1 || hasBlock(first) || tree.HasAttr(first, "id") {
			continue
		}
		tree.Unwrap(first)
	}
}

func hasBlock(n *html.Node) bool {
	for _, el := range tree.Elements(n) {
		if tree.IsBlock(el) {
			return true
		}
	}
	return false
}

func dropDefaultStarts(root *html.Node) {
	for _, el := range tree.Elements(root) {
		if el.Data == "ol" && strings.TrimSpace(tree.Attr(el, "start")) == "1" {
			tree.RemoveAttr(el, "start")
		}
	}
}
