// Package lists rebuilds real ul/ol/li structure from the flat paragraph
// sequences word processors emit for lists, and keeps existing lists in
// canonical shape.
package lists

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

// Kind is the list element a paragraph belongs in.
type Kind int

const (
	Unordered Kind = iota
	Ordered
)

// Tag returns "ul" or "ol".
func (k Kind) Tag() string {
	if k == Ordered {
		return "ol"
	}
	return "ul"
}

func (k Kind) String() string { return k.Tag() }

// Style is the numbering style of an ordered list.
type Style int

const (
	None Style = iota
	Decimal
	LowerAlpha
	UpperAlpha
	LowerRoman
	UpperRoman
)

var styleNames = map[Style]string{
	None:       "none",
	Decimal:    "decimal",
	LowerAlpha: "lower-alpha",
	UpperAlpha: "upper-alpha",
	LowerRoman: "lower-roman",
	UpperRoman: "upper-roman",
}

func (s Style) String() string { return styleNames[s] }

// Rank orders numbering styles by how deep they usually sit: decimal,
// then alphabetic, then roman.
func (s Style) Rank() int {
	switch s {
	case LowerAlpha, UpperAlpha:
		return 1
	case LowerRoman, UpperRoman:
		return 2
	}
	return 0
}

// TypeAttr returns the ol type attribute for s, or "" for decimal.
func (s Style) TypeAttr() string {
	switch s {
	case LowerAlpha:
		return "a"
	case UpperAlpha:
		return "A"
	case LowerRoman:
		return "i"
	case UpperRoman:
		return "I"
	}
	return ""
}

// StyleFromType maps an ol type attribute back to a Style.
func StyleFromType(t string) Style {
	switch strings.TrimSpace(t) {
	case "a":
		return LowerAlpha
	case "A":
		return UpperAlpha
	case "i":
		return LowerRoman
	case "I":
		return UpperRoman
	}
	return Decimal
}

// StyleFromCSS maps a list-style-type value to a Style.
func StyleFromCSS(v string) Style {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lower-alpha", "lower-latin":
		return LowerAlpha
	case "upper-alpha", "upper-latin":
		return UpperAlpha
	case "lower-roman":
		return LowerRoman
	case "upper-roman":
		return UpperRoman
	}
	return Decimal
}

// Info describes a paragraph recognized as a list item.
type Info struct {
	Kind  Kind
	Level int
	Style Style
	// GroupID is the Word list id from mso-list, or -1.
	GroupID int
	// Explicit is set when the level came from markup rather than indentation.
	Explicit bool
}

const (
	maxLevel      = 6
	pxPerLevel    = 24
	indentMinimum = 8
)

var (
	msoListRe    = regexp.MustCompile(`(?i)mso-list:\s*l(\d+)\s+level(\d+)`)
	levelRe      = regexp.MustCompile(`(?i)level\s*(\d+)`)
	bulletRe     = regexp.MustCompile(`^(?:[\x{2022}\x{00B7}\x{2219}\x{25AA}\x{25CF}\x{25E6}\x{25A0}\x{F0B7}\x{F0A7}]|[-*o][\s\x{00A0}])`)
	orderedRe    = regexp.MustCompile(`^\(?(\d{1,3}|[A-Za-z]|[ivxlcdmIVXLCDM]{1,6})[.)](?:[\s\x{00A0}]|$)`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
	uppercaseRun = regexp.MustCompile(`^[A-Z]+$`)
)

// Classify reports whether paragraph p is a list item and, if so, how it
// should be nested.
func Classify(p *html.Node) (Info, bool) {
	if !tree.IsElement(p, "p") {
		return Info{}, false
	}
	rawStyle := tree.Attr(p, "style")
	text := strings.TrimLeftFunc(tree.TextContent(p), isLeadingSpace)

	msoClass, bulletClass := false, false
	for _, c := range tree.ClassTokens(p) {
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, "msolist") {
			msoClass = true
			bulletClass = bulletClass || strings.HasPrefix(lc, "msolistbullet")
		}
	}
	mso := msoListRe.FindStringSubmatch(rawStyle)
	dataLevel, hasDataLevel := positiveInt(tree.Attr(p, "data-level"))
	isBullet := bulletRe.MatchString(text)
	marker := orderedRe.FindStringSubmatch(text)

	explicit := mso != nil || msoClass || hasDataLevel || strings.Contains(strings.ToLower(rawStyle), "mso-list")
	if !explicit && !isBullet && marker == nil {
		return Info{}, false
	}

	info := Info{Kind: Ordered, Style: Decimal, GroupID: -1}
	if isBullet || bulletClass {
		info.Kind, info.Style = Unordered, None
	} else if marker != nil {
		info.Style = markerStyle(marker[1])
	}

	switch {
	case mso != nil:
		info.GroupID, _ = strconv.Atoi(mso[1])
		info.Level, _ = strconv.Atoi(mso[2])
		info.Explicit = true
	case hasDataLevel:
		info.Level = dataLevel
		info.Explicit = true
	default:
		if m := levelRe.FindStringSubmatch(rawStyle); m != nil {
			info.Level, _ = strconv.Atoi(m[1])
			info.Explicit = true
		} else {
			info.Level = indentLevel(tree.ParseStyle(rawStyle))
		}
	}
	info.Level = max(1, min(maxLevel, info.Level))
	return info, true
}

// indentLevel infers a nesting level from the paragraph's left indentation.
// Hanging indents are ignored.
func indentLevel(st tree.Style) int {
	px := st.LeftEdge("margin") + st.LeftEdge("padding")
	if ti, ok := tree.Length(st.Get("text-indent")); ok && ti > 0 {
		px += ti
	}
	if px <= indentMinimum {
		return 1
	}
	return 1 + int((px+pxPerLevel*0.4)/pxPerLevel)
}

func markerStyle(token string) Style {
	switch {
	case digitsRe.MatchString(token):
		return Decimal
	case len(token) == 1 && unicode.IsUpper(rune(token[0])):
		return UpperAlpha
	case len(token) == 1:
		return LowerAlpha
	case uppercaseRun.MatchString(token):
		return UpperRoman
	}
	return LowerRoman
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func isLeadingSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff'
}
