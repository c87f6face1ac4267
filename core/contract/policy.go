// Package contract holds the canonical markup contract: which tags survive,
// which attributes each tag may carry, the class vocabularies, the URL
// schemes links may use, and which tags are void.
//
// The contract is written as a declarative table (Spec) and compiled once
// into an immutable Policy that every stage reads concurrently.
package contract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TagRule describes one allowed tag.
type TagRule struct {
	Tag     string
	Attrs   []string
	Classes []string // allowed class tokens; requires "class" in Attrs
}

// Alias renames a source tag to a contract tag before the allow check.
type Alias struct {
	From, To string
}

// Spec is the declarative form of a contract.
type Spec struct {
	Tags    []TagRule
	Schemes []string
	Void    []string
	Aliases []Alias
	Drop    []string
}

// Policy is a compiled, read-only contract.
type Policy struct {
	tags    map[string]bool
	attrs   map[string]map[string]bool
	classes map[string][]string
	schemes map[string]bool
	void    map[string]bool
	aliases map[string]string
	drop    map[string]bool
	order   []string
}

// CalloutKinds are the recognized admonition kinds, in canonical order.
var CalloutKinds = []string{"note", "warning", "example"}

// CalloutClass is the class token every callout container carries.
const CalloutClass = "callout"

var schemeRe = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*$`)

// Canonical is the contract every document is normalized into.
var Canonical = Spec{
	Tags: []TagRule{
		{Tag: "h1", Attrs: []string{"id"}},
		{Tag: "h2", Attrs: []string{"id"}},
		{Tag: "h3", Attrs: []string{"id"}},
		{Tag: "p", Attrs: []string{"id"}},
		{Tag: "ul"},
		{Tag: "ol", Attrs: []string{"type", "start"}},
		{Tag: "li", Attrs: []string{"id"}},
		{Tag: "blockquote"},
		{Tag: "pre", Attrs: []string{"spellcheck"}},
		{Tag: "div", Attrs: []string{"class"}, Classes: append([]string{CalloutClass}, CalloutKinds...)},
		{Tag: "table"},
		{Tag: "tr"},
		{Tag: "th", Attrs: []string{"colspan", "rowspan"}},
		{Tag: "td", Attrs: []string{"colspan", "rowspan"}},
		{Tag: "hr"},
		{Tag: "img", Attrs: []string{"src", "alt", "class", "width", "height"}, Classes: []string{"screenshot", "icon"}},
		{Tag: "span", Attrs: []string{"class", "id"}, Classes: []string{"user-input", "variable"}},
		{Tag: "strong"},
		{Tag: "em"},
		{Tag: "u"},
		{Tag: "s"},
		{Tag: "sub"},
		{Tag: "sup"},
		{Tag: "a", Attrs: []string{"href", "target", "rel"}},
		{Tag: "br"},
	},
	Schemes: []string{"http", "https", "mailto"},
	Void:    []string{"br", "hr", "img"},
	Aliases: []Alias{
		{"b", "strong"}, {"i", "em"}, {"strike", "s"}, {"del", "s"}, {"ins", "u"},
		{"h4", "h3"}, {"h5", "h3"}, {"h6", "h3"},
	},
	Drop: []string{
		"script", "style", "noscript", "template", "iframe", "object", "embed",
		"svg", "math", "title", "meta", "link", "head", "xml",
	},
}

var defaultPolicy = MustCompile(Canonical)

// Default returns the compiled canonical contract.
func Default() *Policy {
	return defaultPolicy
}

// MustCompile is like Compile but panics on an invalid spec. It is meant for
// package-level policies, so a broken table fails at startup.
func MustCompile(spec Spec) *Policy {
	p, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// Compile validates spec and builds a Policy from it.
func Compile(spec Spec) (*Policy, error) {
	p := &Policy{
		tags:    make(map[string]bool),
		attrs:   make(map[string]map[string]bool),
		classes: make(map[string][]string),
		schemes: make(map[string]bool),
		void:    make(map[string]bool),
		aliases: make(map[string]string),
		drop:    make(map[string]bool),
	}
	for _, r := range spec.Tags {
		tag := strings.ToLower(strings.TrimSpace(r.Tag))
		if tag == "" {
			return nil, errors.New("contract: empty tag in rule")
		}
		if p.tags[tag] {
			return nil, errors.Errorf("contract: duplicate rule for <%s>", tag)
		}
		p.tags[tag] = true
		p.order = append(p.order, tag)
		set := make(map[string]bool, len(r.Attrs))
		for _, a := range r.Attrs {
			set[strings.ToLower(a)] = true
		}
		p.attrs[tag] = set
		if len(r.Classes) > 0 {
			if !set["class"] {
				return nil, errors.Errorf("contract: <%s> lists class tokens but does not allow class", tag)
			}
			p.classes[tag] = append([]string(nil), r.Classes...)
		}
	}
	for _, s := range spec.Schemes {
		s = strings.ToLower(s)
		if !schemeRe.MatchString(s) {
			return nil, errors.Errorf("contract: invalid scheme %q", s)
		}
		p.schemes[s] = true
	}
	for _, v := range spec.Void {
		if !p.tags[v] {
			return nil, errors.Errorf("contract: void tag <%s> is not allowed", v)
		}
		p.void[v] = true
	}
	for _, a := range spec.Aliases {
		if !p.tags[a.To] {
			return nil, errors.Errorf("contract: alias <%s> targets disallowed <%s>", a.From, a.To)
		}
		if p.tags[a.From] {
			return nil, errors.Errorf("contract: alias source <%s> is itself allowed", a.From)
		}
		p.aliases[a.From] = a.To
	}
	for _, d := range spec.Drop {
		if p.tags[d] {
			return nil, errors.Errorf("contract: drop tag <%s> is also allowed", d)
		}
		p.drop[d] = true
	}
	return p, nil
}

// AllowsTag reports whether tag survives as-is.
func (p *Policy) AllowsTag(tag string) bool { return p.tags[tag] }

// AllowsAttr reports whether attr is allowed on tag.
func (p *Policy) AllowsAttr(tag, attr string) bool { return p.attrs[tag][attr] }

// Attrs returns the allowed attribute names for tag, sorted.
func (p *Policy) Attrs(tag string) []string {
	out := make([]string, 0, len(p.attrs[tag]))
	for a := range p.attrs[tag] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ClassTokens returns the class vocabulary for tag, in declaration order.
func (p *Policy) ClassTokens(tag string) []string { return p.classes[tag] }

// AllowsScheme reports whether links may use scheme.
func (p *Policy) AllowsScheme(scheme string) bool { return p.schemes[strings.ToLower(scheme)] }

// IsVoid reports whether tag must have no children.
func (p *Policy) IsVoid(tag string) bool { return p.void[tag] }

// Alias returns the contract tag that replaces tag, if any.
func (p *Policy) Alias(tag string) (string, bool) {
	to, ok := p.aliases[tag]
	return to, ok
}

// Drops reports whether tag is removed together with its content.
func (p *Policy) Drops(tag string) bool { return p.drop[tag] }

// Tags returns the allowed tags in declaration order.
func (p *Policy) Tags() []string {
	return append([]string(nil), p.order...)
}
