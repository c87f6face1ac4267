package crawl

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// skippedExtensions never lead to a document worth cleaning.
var skippedExtensions = extensionSet(
	".png .jpg .jpeg .gif .svg .webp .ico .bmp",
	".css .js .mjs .json .xml",
	".woff .woff2 .ttf .eot",
	".mp4 .webm .mp3 .wav .zip .tar .gz",
	".pdf .doc .docx .xls .xlsx .ppt .pptx",
)

// markupExtensions are the file types a directory batch picks up.
var markupExtensions = extensionSet(".htm .html .xhtml")

func extensionSet(groups ...string) map[string]bool {
	set := make(map[string]bool)
	for _, g := range groups {
		for _, ext := range strings.Fields(g) {
			set[ext] = true
		}
	}
	return set
}

// IsMarkupFile reports whether path names an exported HTML document.
func IsMarkupFile(p string) bool {
	return markupExtensions[strings.ToLower(filepath.Ext(p))]
}

// Scope decides which URLs belong to a site crawl: http(s) pages on the
// start host.
type Scope struct {
	host string
}

// NewScope returns the Scope of a crawl starting at start.
func NewScope(start string) (*Scope, error) {
	u, err := url.Parse(start)
	if err != nil {
		return nil, errors.Wrap(err, "parsing start URL")
	}
	if u.Host == "" {
		return nil, errors.Errorf("start URL %q has no host", start)
	}
	return &Scope{host: u.Host}, nil
}

// Key returns the form of link used to de-duplicate pages, with the
// fragment and any trailing slash removed. It reports false for links
// outside the scope.
func (s *Scope) Key(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Host, s.host) || skippedExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}
	u.Fragment, u.RawFragment = "", ""
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String(), true
}
