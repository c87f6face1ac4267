package classify

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// semanticClasses maps vendor character-style classes to the contract's
// span vocabulary.
var semanticClasses = map[string]string{
	"userinput":         "user-input",
	"userinputvariable": "variable",
	"user-input":        "user-input",
	"variable":          "variable",
}

// charStyles maps the web app's character-style names.
var charStyles = map[string]string{
	"user input":          "user-input",
	"userinput":           "user-input",
	"user input variable": "variable",
	"userinputvariable":   "variable",
}

// Inline recognizes semantic character styles and turns inline visual
// styling into formatting elements before attributes are stripped.
type Inline struct {
	rules dispatch
}

// NewInline creates the inline classifier.
func NewInline() *Inline {
	return &Inline{rules: dispatch{
		"span": {semanticSpan, styledSpan},
		"b":    {unwrapNormalWeight},
	}}
}

// Name implements core.Stage.
func (i *Inline) Name() string { return "inline" }

// Apply implements core.Stage.
func (i *Inline) Apply(ctx *core.ParseContext) {
	i.rules.run(ctx)
	for _, el := range tree.Elements(ctx.Root) {
		if spacedInline[el.Data] {
			moveTrailingSpace(el)
		}
	}
}

var spacedInline = map[string]bool{
	"strong": true, "b": true, "em": true, "i": true, "u": true,
	"s": true, "sub": true, "sup": true, "span": true, "a": true,
}

// moveTrailingSpace moves one trailing space of el into the text that
// follows it, so the formatting stops at the word boundary.
func moveTrailingSpace(el *html.Node) {
	last, next := el.LastChild, el.NextSibling
	if last == nil || last.Type != html.TextNode || !strings.HasSuffix(last.Data, " ") {
		return
	}
	if next == nil || next.Type != html.TextNode || next.Data == "" {
		return
	}
	if r, _ := utf8.DecodeRuneInString(next.Data); unicode.IsSpace(r) {
		return
	}
	last.Data = strings.TrimSuffix(last.Data, " ")
	next.Data = " " + next.Data
}

func semanticSpan(_ *core.ParseContext, n *html.Node) bool {
	kind := ""
	for _, c := range tree.ClassTokens(n) {
		if k, ok := semanticClasses[strings.ToLower(c)]; ok {
			kind = k
			break
		}
	}
	if kind == "" {
		style := strings.ToLower(strings.Join(strings.Fields(tree.Attr(n, "data-ccp-charstyle")), " "))
		kind = charStyles[style]
	}
	if kind == "" {
		return false
	}
	tree.SetAttr(n, "class", kind)
	tree.RemoveAttr(n, "style")
	return true
}

// styledSpan nests formatting elements for the span's inline style inside
// it; the enforcer later unwraps the attribute-less span.
func styledSpan(_ *core.ParseContext, n *html.Node) bool {
	st := tree.ParseStyle(tree.Attr(n, "style"))
	var tags []string
	if isBold(st.Get("font-weight")) {
		tags = append(tags, "strong")
	}
	if fs := strings.ToLower(st.Get("font-style")); fs == "italic" || fs == "oblique" {
		tags = append(tags, "em")
	}
	deco := strings.ToLower(st.Get("text-decoration") + " " + st.Get("text-decoration-line"))
	if strings.Contains(deco, "underline") {
		tags = append(tags, "u")
	}
	if strings.Contains(deco, "line-through") {
		tags = append(tags, "s")
	}
	switch strings.ToLower(st.Get("vertical-align")) {
	case "super":
		tags = append(tags, "sup")
	case "sub":
		tags = append(tags, "sub")
	}
	if len(tags) == 0 || tree.IsBlank(n) {
		return false
	}

	outer := tree.NewElement(tags[0])
	inner := outer
	for _, t := range tags[1:] {
		el := tree.NewElement(t)
		inner.AppendChild(el)
		inner = el
	}
	tree.MoveChildren(inner, n)
	n.AppendChild(outer)
	tree.RemoveAttr(n, "style")
	return true
}

func isBold(weight string) bool {
	weight = strings.ToLower(strings.TrimSpace(weight))
	if weight == "bold" || weight == "bolder" {
		return true
	}
	w, err := strconv.Atoi(weight)
	return err == nil && w >= 600
}

// unwrapNormalWeight removes <b> wrappers that explicitly render at normal
// weight, such as the document-wide wrapper some editors put on the
// clipboard.
func unwrapNormalWeight(_ *core.ParseContext, n *html.Node) bool {
	weight := strings.ToLower(strings.TrimSpace(tree.ParseStyle(tree.Attr(n, "style")).Get("font-weight")))
	if weight != "normal" && weight != "400" && !strings.HasPrefix(tree.Attr(n, "id"), "docs-internal-guid") {
		return false
	}
	tree.Unwrap(n)
	return true
}
