package contract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/microcosm-cc/bluemonday"
)

var (
	idPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-:.]*$`)
	integerPattern = regexp.MustCompile(`^[1-9][0-9]*$`)
	listTypes      = regexp.MustCompile(`^[aAiI]$`)
	falsePattern   = regexp.MustCompile(`^false$`)
)

// Bluemonday compiles the contract into an equivalent bluemonday policy, so
// an independent sanitizer can cross-check canonical output.
func (p *Policy) Bluemonday() *bluemonday.Policy {
	bm := bluemonday.NewPolicy()
	bm.AllowElements(p.Tags()...)
	bm.AllowURLSchemes(p.schemeList()...)
	bm.AllowRelativeURLs(true)
	bm.AllowDataURIImages()

	for _, tag := range p.order {
		for _, attr := range p.Attrs(tag) {
			switch {
			case attr == "class" && len(p.classes[tag]) > 0:
				bm.AllowAttrs("class").Matching(p.classPattern(tag)).OnElements(tag)
			case attr == "id":
				bm.AllowAttrs("id").Matching(idPattern).OnElements(tag)
			case attr == "colspan", attr == "rowspan", attr == "start", attr == "width", attr == "height":
				bm.AllowAttrs(attr).Matching(integerPattern).OnElements(tag)
			case attr == "type" && tag == "ol":
				bm.AllowAttrs(attr).Matching(listTypes).OnElements(tag)
			case attr == "spellcheck":
				bm.AllowAttrs(attr).Matching(falsePattern).OnElements(tag)
			default:
				bm.AllowAttrs(attr).OnElements(tag)
			}
		}
	}
	return bm
}

// classPattern matches the class values the enforcer emits for tag: a
// callout container carries "callout <kind>", other tags one token.
func (p *Policy) classPattern(tag string) *regexp.Regexp {
	tokens := p.classes[tag]
	if tag == "div" {
		kinds := make([]string, len(CalloutKinds))
		for i, k := range CalloutKinds {
			kinds[i] = regexp.QuoteMeta(k)
		}
		return regexp.MustCompile(`^` + CalloutClass + ` (?:` + strings.Join(kinds, "|") + `)$`)
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)$`)
}

func (p *Policy) schemeList() []string {
	out := make([]string, 0, len(p.schemes))
	for s := range p.schemes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Verify runs markup through the bluemonday form of the contract and reports
// where the result differs from the input. An empty result means the markup
// already conforms.
func (p *Policy) Verify(markup string) []string {
	want := tree.Canonical(markup)
	got := tree.Canonical(p.Bluemonday().Sanitize(markup))
	if want == got {
		return nil
	}
	return []string{fmt.Sprintf("contract violation near %q", divergence(want, got))}
}

// divergence returns a short window of a around the first byte where a and b
// differ.
func divergence(a, b string) string {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	start := max(0, i-20)
	end := min(len(a), i+40)
	return a[start:end]
}
