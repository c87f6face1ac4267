package tree

import (
	"regexp"
	"strconv"
	"strings"
)

// Style is a parsed inline style attribute. Declarations keep source order;
// lookups return the last value for a property.
type Style struct {
	decls []declaration
}

type declaration struct {
	prop  string
	value string
}

// ParseStyle splits an inline style attribute into declarations. Property
// names are lower-cased and "!important" is dropped.
func ParseStyle(s string) Style {
	var st Style
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if prop == "" {
			continue
		}
		st.decls = append(st.decls, declaration{prop: prop, value: value})
	}
	return st
}

// Get returns the value of prop, or "".
func (s Style) Get(prop string) string {
	for i := len(s.decls) - 1; i >= 0; i-- {
		if s.decls[i].prop == prop {
			return s.decls[i].value
		}
	}
	return ""
}

// Has reports whether prop is declared.
func (s Style) Has(prop string) bool {
	for _, d := range s.decls {
		if d.prop == prop {
			return true
		}
	}
	return false
}

// LeftEdge returns the left component of a box property ("margin" or
// "padding") in px, reading the longhand first and then the shorthand.
func (s Style) LeftEdge(box string) float64 {
	if s.Has(box + "-left") {
		px, _ := Length(s.Get(box + "-left"))
		return px
	}
	parts := strings.Fields(s.Get(box))
	var v string
	switch len(parts) {
	case 0:
		return 0
	case 1:
		v = parts[0]
	case 2, 3:
		v = parts[1]
	default:
		v = parts[3]
	}
	px, _ := Length(v)
	return px
}

var lengthRe = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))\s*([a-z]*)$`)

var pxPerUnit = map[string]float64{
	"":    1,
	"px":  1,
	"pt":  96.0 / 72.0,
	"pc":  16,
	"in":  96,
	"cm":  96 / 2.54,
	"mm":  96 / 25.4,
	"em":  16,
	"rem": 16,
}

// Length converts a CSS length to px at 96 dpi.
func Length(v string) (float64, bool) {
	m := lengthRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if m == nil {
		return 0, false
	}
	factor, ok := pxPerUnit[m[2]]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return n * factor, true
}
