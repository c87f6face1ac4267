package lists

import (
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// Rebuild turns runs of list-item paragraphs into nested lists, on the
// document body and inside every callout.
type Rebuild struct{}

// NewRebuild creates the list reconstruction stage.
func NewRebuild() *Rebuild { return &Rebuild{} }

// Name implements core.Stage.
func (r *Rebuild) Name() string { return "lists" }

// Apply implements core.Stage.
func (r *Rebuild) Apply(ctx *core.ParseContext) {
	containers := []*html.Node{ctx.Root}
	for _, el := range tree.Elements(ctx.Root) {
		if el.Data == "div" && isCallout(el) {
			containers = append(containers, el)
		}
	}
	for _, c := range containers {
		n := newAssembler(c).run()
		if n > 0 {
			ctx.Logger.Debug("rebuilt list items", "container", c.Data, "items", n)
		}
	}
}

func isCallout(n *html.Node) bool {
	for _, c := range tree.ClassTokens(n) {
		if c == contract.CalloutClass {
			return true
		}
	}
	return false
}

// frame is one open list during assembly.
type frame struct {
	list     *html.Node
	kind     Kind
	style    Style
	level    int
	lastItem *html.Node
	// promoted frames were opened deeper than their items declared, by rank
	// nesting or carry-over; sourceLevel is the level the items declared.
	promoted    bool
	sourceLevel int
}

type assembler struct {
	container *html.Node
	stack     []*frame
	frames    map[*html.Node]*frame
	lastItem  *html.Node
	items     int
}

func newAssembler(container *html.Node) *assembler {
	return &assembler{container: container, frames: map[*html.Node]*frame{}}
}

func (a *assembler) top() *frame {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// run re-emits the container's children in order, replacing list-item
// paragraphs with list structure. It returns the number of items built.
func (a *assembler) run() int {
	input := tree.Children(a.container)
	for _, n := range input {
		a.container.RemoveChild(n)
	}
	for _, n := range input {
		if info, ok := Classify(n); ok {
			a.emit(n, info)
			continue
		}
		if len(a.stack) > 0 && isSpacer(n) {
			continue
		}
		a.closeTo(0)
		a.container.AppendChild(n)
	}
	a.closeTo(0)
	return a.items
}

func (a *assembler) emit(p *html.Node, info Info) {
	level, promoted := a.resolveLevel(info)
	if len(a.stack) == 0 && a.lastItem != nil && a.carryOver(info) {
		level = a.top().level + 1
		promoted = true
	}

	a.closeTo(level)
	if top := a.top(); top != nil && top.level == level && top.kind != info.Kind {
		a.closeTo(level - 1)
	}
	top := a.top()
	switch {
	case top == nil || top.level < level || top.kind != info.Kind:
		a.push(info, level, promoted)
	case info.Kind == Ordered && info.Style != top.style:
		a.closeTo(level - 1)
		a.push(info, level, promoted)
	}

	li := tree.NewElement("li")
	if id := tree.Attr(p, "id"); id != "" {
		tree.SetAttr(li, "id", id)
	}
	StripMarker(p)
	tree.MoveChildren(li, p)
	top = a.top()
	top.list.AppendChild(li)
	top.lastItem = li
	a.lastItem = li
	a.items++
}

// resolveLevel applies rank nesting and the level clamp. It reports whether
// the level was raised by rank promotion.
func (a *assembler) resolveLevel(info Info) (int, bool) {
	level := info.Level
	top := a.top()
	if top == nil {
		return level, false
	}
	promoted := false
	if info.Kind == Ordered && top.kind == Ordered && info.Style != top.style &&
		(info.Level == top.level || (!info.Explicit && info.Level < top.level)) {
		switch {
		case info.Style.Rank() > top.style.Rank():
			level, promoted = top.level+1, true
		case info.Style.Rank() < top.style.Rank():
			level = max(1, top.level-1)
		}
	}
	if top.promoted && !promoted && top.kind == info.Kind && top.style == info.Style && info.Level == top.sourceLevel {
		level = top.level
	}
	return min(level, top.level+1), promoted
}

// carryOver decides whether an ordered list starting after closed content
// should nest under the last emitted item instead. When it does, the frames leading
// to that item are reopened and the content emitted since is moved into the
// item so document order is kept.
func (a *assembler) carryOver(info Info) bool {
	parentList := a.lastItem.Parent
	text := tree.Text(a.lastItem)
	intro := info.Kind == Ordered && (strings.HasSuffix(text, ":") || strings.HasSuffix(text, "\uff1a"))
	deeper := info.Kind == Ordered && parentList != nil && parentList.Data == "ol" &&
		info.Style.Rank() > StyleFromType(tree.Attr(parentList, "type")).Rank()
	if !intro && !deeper {
		return false
	}

	root := a.lastItem
	for root.Parent != nil && root.Parent != a.container {
		root = root.Parent
	}
	if root.Parent != a.container {
		return false
	}
	var between []*html.Node
	for n := root.NextSibling; n != nil; n = n.NextSibling {
		if !isContinuation(n) {
			return false
		}
		between = append(between, n)
	}

	var chain []*frame
	for n := a.lastItem.Parent; n != nil && n != a.container; n = n.Parent {
		if f, ok := a.frames[n]; ok {
			chain = append([]*frame{f}, chain...)
		}
	}
	if len(chain) == 0 {
		return false
	}
	for _, n := range between {
		a.container.RemoveChild(n)
		if !tree.IsBlank(n) {
			a.lastItem.AppendChild(n)
		}
	}
	a.stack = chain
	return true
}

// isContinuation reports whether n may sit inside a list item as
// continuation content.
func isContinuation(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return tree.IsBlankText(n.Data)
	case html.CommentNode:
		return true
	case html.ElementNode:
		switch n.Data {
		case "p", "blockquote", "pre", "table":
			return true
		case "div":
			return !isCallout(n)
		}
	}
	return false
}

func (a *assembler) push(info Info, level int, promoted bool) {
	list := tree.NewElement(info.Kind.Tag())
	if t := info.Style.TypeAttr(); info.Kind == Ordered && t != "" {
		tree.SetAttr(list, "type", t)
	}
	if top := a.top(); top != nil {
		holder := top.lastItem
		if holder == nil {
			holder = tree.NewElement("li")
			top.list.AppendChild(holder)
			top.lastItem = holder
		}
		holder.AppendChild(list)
	} else {
		a.container.AppendChild(list)
	}
	f := &frame{
		list:        list,
		kind:        info.Kind,
		style:       info.Style,
		level:       level,
		promoted:    promoted,
		sourceLevel: info.Level,
	}
	a.stack = append(a.stack, f)
	a.frames[list] = f
}

func (a *assembler) closeTo(level int) {
	for len(a.stack) > 0 && a.top().level > level {
		a.stack = a.stack[:len(a.stack)-1]
	}
}

// isSpacer reports whether n is blank spacing that may sit between list
// items without closing the list.
func isSpacer(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return tree.IsBlankText(n.Data)
	case html.CommentNode:
		return true
	case html.ElementNode:
		if n.Data == "br" {
			return true
		}
		return n.Data == "p" && tree.IsBlank(n) && !carriesID(n)
	}
	return false
}

func carriesID(n *html.Node) bool {
	if tree.HasAttr(n, "id") {
		return true
	}
	for _, el := range tree.Elements(n) {
		if tree.HasAttr(el, "id") {
			return true
		}
	}
	return false
}
