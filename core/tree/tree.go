// Package tree is the document model shared by every stage: an x/net/html
// node tree rooted at the document <body>, its serializer, and the node
// operations the rewriters use.
package tree

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements may never carry children when serialized.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// blockElements are elements that start a new block in flow content.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "center": true, "dd": true, "details": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
}

// Parse parses markup with the HTML5 error-tolerant parser and returns the
// detached <body> element. It never fails: if the parser gives up, the raw
// input is kept as a single text node.
func Parse(markup string) *html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	if err == nil {
		if body := findBody(doc); body != nil {
			Detach(body)
			return body
		}
	}
	body := NewElement("body")
	if markup != "" {
		body.AppendChild(NewText(markup))
	}
	return body
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

// Render serializes the children of root and trims surrounding whitespace.
func Render(root *html.Node) string {
	var out bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		clearVoid(c)
		var buf bytes.Buffer
		if err := html.Render(&buf, c); err != nil {
			out.WriteString(html.EscapeString(TextContent(c)))
			continue
		}
		out.Write(buf.Bytes())
	}
	return strings.TrimSpace(out.String())
}

// Canonical parses and re-serializes markup, giving a form that compares
// equal for structurally equal trees.
func Canonical(markup string) string {
	return Render(Parse(markup))
}

func clearVoid(n *html.Node) {
	if n.Type == html.ElementNode && voidElements[n.Data] {
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clearVoid(c)
	}
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with one of the given tags.
// With no tags it reports whether n is an element at all.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsVoid reports whether tag is an HTML void element.
func IsVoid(tag string) bool {
	return voidElements[tag]
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockElements[n.Data]
}

// Attr returns the value of key, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	return dom.GetAttributeOr(n, key, "")
}

// HasAttr reports whether n carries key.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets key to val, keeping the attribute's position if present.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key and reports whether it was present.
func RemoveAttr(n *html.Node, key string) bool {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// ClassTokens splits the class attribute into tokens.
func ClassTokens(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClassFold reports whether n has a class token equal to token under
// case folding.
func HasClassFold(n *html.Node, token string) bool {
	for _, c := range ClassTokens(n) {
		if strings.EqualFold(c, token) {
			return true
		}
	}
	return false
}

// Children returns a snapshot of n's children, safe to iterate while the
// tree is being rewritten.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns a snapshot of n's element children.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Elements returns every element below root in document order.
func Elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Closest returns the nearest ancestor-or-self element with one of tags.
func Closest(n *html.Node, tags ...string) *html.Node {
	for ; n != nil; n = n.Parent {
		if IsElement(n, tags...) {
			return n
		}
	}
	return nil
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// Replace puts repl where old is and detaches old.
func Replace(old, repl *html.Node) {
	if old.Parent == nil {
		return
	}
	Detach(repl)
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

// Rename changes the tag of n in place.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// MoveChildren appends all children of src to dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Wrap inserts wrapper at n's position and moves n inside it.
func Wrap(n, wrapper *html.Node) {
	if n.Parent != nil {
		n.Parent.InsertBefore(wrapper, n)
		n.Parent.RemoveChild(n)
	}
	wrapper.AppendChild(n)
}

// Prepend inserts child as the first child of parent.
func Prepend(parent, child *html.Node) {
	Detach(child)
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

// InsertAfter inserts child right after ref.
func InsertAfter(ref, child *html.Node) {
	Detach(child)
	if ref.NextSibling == nil {
		ref.Parent.AppendChild(child)
		return
	}
	ref.Parent.InsertBefore(child, ref.NextSibling)
}

// TextContent concatenates the text nodes below n exactly as written.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return b.String()
}

// Text returns the trimmed visible text of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return TrimText(n.Data)
	}
	return TrimText(dom.CollectText(n))
}

// TrimText trims whitespace, NBSP and zero-width spaces from both ends.
func TrimText(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v', '\u00a0', '\u200b', '\ufeff':
		return true
	}
	return false
}

// IsBlankText reports whether s holds only whitespace.
func IsBlankText(s string) bool {
	return TrimText(s) == ""
}

// IsBlank reports whether n renders no visible content: no non-blank text
// and no embedded images or rules.
func IsBlank(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return IsBlankText(n.Data)
	case html.CommentNode:
		return true
	case html.ElementNode:
		if n.Data == "img" || n.Data == "hr" || n.Data == "table" {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !IsBlank(c) {
				return false
			}
		}
		return true
	}
	return true
}

// IsInline reports whether n is text or a non-block element.
func IsInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return !blockElements[n.Data]
	}
	return false
}

// WrapInlineRuns groups each maximal run of inline children of parent that
// carries visible content into a new tag element. Block children stay where
// they are. It returns the number of wrappers created.
func WrapInlineRuns(parent *html.Node, tag string) int {
	created := 0
	var run []*html.Node
	flush := func() {
		defer func() { run = nil }()
		visible := false
		for _, n := range run {
			if !IsBlank(n) {
				visible = true
				break
			}
		}
		if !visible {
			return
		}
		wrapper := NewElement(tag)
		parent.InsertBefore(wrapper, run[0])
		for _, n := range run {
			parent.RemoveChild(n)
			wrapper.AppendChild(n)
		}
		trimEdges(wrapper)
		created++
	}
	for _, c := range Children(parent) {
		if IsInline(c) {
			run = append(run, c)
			continue
		}
		if c.Type == html.CommentNode {
			continue
		}
		flush()
	}
	flush()
	return created
}

// trimEdges drops whitespace-only text at the start and end of n.
func trimEdges(n *html.Node) {
	for n.FirstChild != nil && n.FirstChild.Type == html.TextNode && IsBlankText(n.FirstChild.Data) {
		n.RemoveChild(n.FirstChild)
	}
	for n.LastChild != nil && n.LastChild.Type == html.TextNode && IsBlankText(n.LastChild.Data) {
		n.RemoveChild(n.LastChild)
	}
}
