// Package strip implements the noise stage of the pipeline.
// It removes everything that carries no document content before any
// structure is inferred:
//  1. comments, foreign-namespace elements (o:, v:, w:, m:) and metadata
//  2. scripts and stylesheets
//  3. review-comment artifacts left by word processors
package strip

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// vendorPrefixes are namespace prefixes of Office XML islands.
var vendorPrefixes = map[string]bool{"o": true, "v": true, "w": true, "m": true}

// metadataTags are removed with their content.
var metadataTags = map[string]bool{
	"script": true, "style": true, "meta": true, "link": true, "xml": true,
	"title": true, "noscript": true, "template": true,
}

// Review-comment signatures. References are the inline markers pointing at a
// comment; bodies and separators are the comment text blocks at the end.
var (
	commentRefs = cascadia.MustCompile(strings.Join([]string{
		"span.MsoCommentReference",
		`a[style*="mso-comment-reference"]`,
		`a[href^="#_msocom_"]`,
		`a[name^="_msocom_"]`,
		`a[href^="#cmnt"]`,
	}, ", "))
	commentBodies = cascadia.MustCompile(strings.Join([]string{
		"div.MsoCommentText",
		`[id^="_com_"]`,
		`[id^="cmnt"]`,
	}, ", "))
	commentSeparators = cascadia.MustCompile(strings.Join([]string{
		"hr.msocomoff",
		`hr[id^="_com_"]`,
		`hr[id^="msocom"]`,
	}, ", "))
)

var commentParagraphRe = regexp.MustCompile(`^\s*Comment\s*\[[^\]]+\]\s*:`)

// Stripper removes noise nodes from a parsed document.
type Stripper struct{}

// New creates a Stripper.
func New() *Stripper {
	return &Stripper{}
}

// Name implements core.Stage.
func (s *Stripper) Name() string { return "strip" }

// Apply removes comments, vendor and metadata elements, review comments and
// "Comment [x]:" paragraphs from ctx.Root.
func (s *Stripper) Apply(ctx *core.ParseContext) {
	removeComments(ctx.Root)

	for _, el := range tree.Elements(ctx.Root) {
		if el.Parent == nil {
			continue
		}
		if prefix, _, ok := strings.Cut(el.Data, ":"); ok && vendorPrefixes[prefix] {
			tree.Detach(el)
			continue
		}
		if metadataTags[el.Data] {
			if el.Data == "script" || el.Data == "style" {
				ctx.Warn("Removed <%s> element.", el.Data)
			}
			tree.Detach(el)
		}
	}

	if removed := removeReviewComments(ctx.Root); removed > 0 {
		ctx.Warn("Removed %d review comment artifact(s).", removed)
	}

	for _, el := range tree.Elements(ctx.Root) {
		if el.Parent != nil && tree.IsElement(el, "p", "div") && commentParagraphRe.MatchString(tree.Text(el)) {
			tree.Detach(el)
		}
	}
}

func removeComments(n *html.Node) {
	for _, c := range tree.Children(n) {
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
			continue
		}
		removeComments(c)
	}
}

// removeReviewComments deletes comment references, bodies and separators,
// together with any wrapper they leave empty. It returns the number of
// artifacts removed.
func removeReviewComments(root *html.Node) int {
	doc := goquery.NewDocumentFromNode(root)
	removed := 0

	doc.FindMatcher(commentRefs).Each(func(_ int, sel *goquery.Selection) {
		parent := sel.Parent()
		sel.Remove()
		removed++
		if parent.Length() > 0 && goquery.NodeName(parent) == "sup" && tree.IsBlank(parent.Get(0)) {
			parent.Remove()
		}
	})

	bodies := doc.FindMatcher(commentBodies)
	removed += bodies.Length()
	bodies.Remove()

	doc.FindMatcher(commentSeparators).Each(func(_ int, sel *goquery.Selection) {
		parent := sel.Parent()
		sel.Remove()
		removed++
		if parent.Length() > 0 && parent.Get(0) != root && tree.IsBlank(parent.Get(0)) {
			parent.Remove()
		}
	})
	return removed
}

// wordEscapes maps the backslash escapes Word writes into some exports.
var wordEscapes = strings.NewReplacer(
	`\92`, "'",
	`\91`, "'",
	`\93`, `"`,
	`\94`, `"`,
	`\96`, "-",
	`\97`, "--",
)

// NormalizeEscapes replaces Word's escaped quote and dash sequences in raw
// markup before it is parsed.
func NormalizeEscapes(raw string) string {
	return wordEscapes.Replace(raw)
}
