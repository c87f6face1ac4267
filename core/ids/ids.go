// Package ids makes element ids safe and unique and, on ingestion, makes
// sure every in-document link has something to land on.
package ids

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// MaxLength caps sanitized ids.
const MaxLength = 80

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	disallowed   = regexp.MustCompile(`[^A-Za-z0-9_\-:.]`)
	tokenSplitRe = regexp.MustCompile(`[_\-\s]+`)
)

// Normalizer is the id stage.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer { return &Normalizer{} }

// Name implements core.Stage.
func (n *Normalizer) Name() string { return "ids" }

// Apply implements core.Stage.
func (n *Normalizer) Apply(ctx *core.ParseContext) {
	Dedupe(ctx.Root)
	if ctx.Direction != core.Ingest {
		SanitizeFragments(ctx.Root)
		return
	}
	if created := Retarget(ctx.Root); created > 0 {
		ctx.Logger.Debug("added link target markers", "markers", created)
	}
}

// Sanitize reduces id to the characters ids may use. It returns "" when
// nothing usable is left.
func Sanitize(id string) string {
	id = spaceRun.ReplaceAllString(strings.TrimSpace(id), "_")
	id = disallowed.ReplaceAllString(id, "")
	if id == "" {
		return ""
	}
	if c := id[0]; !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		id = "id_" + id
	}
	if len(id) > MaxLength {
		id = id[:MaxLength]
	}
	return id
}

// Dedupe sanitizes every id below root and makes repeats unique. The first
// holder of an id keeps it; the n-th repeat becomes id-n, skipping suffixed
// forms that are already taken anywhere in the document.
func Dedupe(root *html.Node) {
	var holders []*html.Node
	reserved := map[string]bool{}
	for _, el := range tree.Elements(root) {
		if !tree.HasAttr(el, "id") {
			continue
		}
		id := Sanitize(tree.Attr(el, "id"))
		if id == "" {
			tree.RemoveAttr(el, "id")
			continue
		}
		tree.SetAttr(el, "id", id)
		reserved[id] = true
		holders = append(holders, el)
	}

	used := map[string]bool{}
	seen := map[string]int{}
	for _, el := range holders {
		id := tree.Attr(el, "id")
		seen[id]++
		if seen[id] == 1 && !used[id] {
			used[id] = true
			continue
		}
		for n := seen[id]; ; n++ {
			candidate := fmt.Sprintf("%s-%d", id, n)
			if !reserved[candidate] && !used[candidate] {
				tree.SetAttr(el, "id", candidate)
				used[candidate] = true
				break
			}
		}
	}
}

// SanitizeFragments rewrites every in-document link so its target is a
// valid id, and returns the distinct targets in document order.
func SanitizeFragments(root *html.Node) []string {
	var targets []string
	wanted := map[string]bool{}
	for _, el := range tree.Elements(root) {
		if el.Data != "a" {
			continue
		}
		href := strings.TrimSpace(tree.Attr(el, "href"))
		if !strings.HasPrefix(href, "#") || len(href) == 1 {
			continue
		}
		target := Sanitize(href[1:])
		if target == "" {
			continue
		}
		if target != href[1:] {
			tree.SetAttr(el, "href", "#"+target)
		}
		if !wanted[target] {
			wanted[target] = true
			targets = append(targets, target)
		}
	}
	return targets
}

// Retarget sanitizes the targets of in-document links and gives each
// target without a matching id one: the first id-less heading whose leading
// words spell the target, or else an empty marker span at the top of the
// document. It returns the number of markers added.
func Retarget(root *html.Node) int {
	targets := SanitizeFragments(root)
	ids := map[string]bool{}
	var headings []*html.Node
	for _, el := range tree.Elements(root) {
		if id := tree.Attr(el, "id"); id != "" {
			ids[id] = true
		}
		if tree.IsElement(el, "h1", "h2", "h3", "h4", "h5", "h6") {
			headings = append(headings, el)
		}
	}

	var markers []*html.Node
	for _, target := range targets {
		if ids[target] {
			continue
		}
		if h := matchHeading(headings, target); h != nil {
			tree.SetAttr(h, "id", target)
			ids[target] = true
			continue
		}
		markers = append(markers, tree.NewElement("span", html.Attribute{Key: "id", Val: target}))
		ids[target] = true
	}
	anchor := root.FirstChild
	for _, m := range markers {
		if anchor == nil {
			root.AppendChild(m)
		} else {
			root.InsertBefore(m, anchor)
		}
	}
	return len(markers)
}

func matchHeading(headings []*html.Node, target string) *html.Node {
	want := targetTokens(target)
	if len(want) == 0 {
		return nil
	}
	for _, h := range headings {
		if tree.HasAttr(h, "id") {
			continue
		}
		words := textTokens(tree.Text(h))
		if len(words) < len(want) {
			continue
		}
		match := true
		for i, w := range want {
			if words[i] != w {
				match = false
				break
			}
		}
		if match {
			return h
		}
	}
	return nil
}

// targetTokens splits "_This_is_the" into ["this", "is", "the"].
func targetTokens(id string) []string {
	var out []string
	for _, t := range tokenSplitRe.Split(strings.TrimLeft(id, "_"), -1) {
		if t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

func textTokens(s string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) })
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
