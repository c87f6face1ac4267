// Package crawl finds the documents a batch run processes. A directory root
// is walked for exported HTML files; an http(s) root is discovered through
// sitemap.xml or, failing that, same-host link crawling.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/fetch"
	"github.com/pkg/errors"
)

// MaxPages bounds a link crawl.
const MaxPages = 100

// sitemapURL holds a URL from a sitemap.xml.
type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapIndex is the root element of a sitemap.xml.
type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// DiscoverAll lists the documents below root: markup files of a directory
// in lexical order, the file itself, or the pages of a site.
func DiscoverAll(ctx context.Context, root string, loader core.Loader) ([]string, error) {
	if fetch.IsURL(root) {
		return discoverSite(ctx, root, loader)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsMarkupFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}
	return files, nil
}

func discoverSite(ctx context.Context, baseURL string, loader core.Loader) ([]string, error) {
	scope, err := NewScope(baseURL)
	if err != nil {
		return nil, err
	}
	parsed, _ := url.Parse(baseURL)

	sitemap := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, parsed.Host)
	urls, err := discoverFromSitemap(ctx, sitemap, scope, loader)
	if err == nil && len(urls) > 0 {
		return urls, nil
	}
	return discoverFromLinks(ctx, baseURL, scope, loader), nil
}

// discoverFromSitemap loads sitemap.xml and keeps its in-scope page URLs.
func discoverFromSitemap(ctx context.Context, sitemapURL string, scope *Scope, loader core.Loader) ([]string, error) {
	src, err := loader.Load(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal([]byte(src.Body), &sitemap); err != nil {
		return nil, errors.Wrap(err, "decoding sitemap")
	}

	frontier := NewFrontier(scope, MaxPages)
	for _, u := range sitemap.URLs {
		if frontier.Full() {
			break
		}
		frontier.Offer(u.Loc)
	}
	return frontier.Pages(), nil
}

// discoverFromLinks crawls breadth-first from startURL.
func discoverFromLinks(ctx context.Context, startURL string, scope *Scope, loader core.Loader) []string {
	frontier := NewFrontier(scope, MaxPages)
	frontier.Offer(startURL)

	for page, ok := frontier.Pop(); ok && ctx.Err() == nil; page, ok = frontier.Pop() {
		src, err := loader.Load(ctx, page)
		if err != nil {
			// a broken page does not stop the crawl
			continue
		}
		links, err := extractLinks(src.Body, page)
		if err != nil {
			continue
		}
		for _, link := range links {
			if frontier.Full() {
				break
			}
			frontier.Offer(link)
		}
	}
	return frontier.Pages()
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(markup, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// resolveURL resolves a potentially relative URL against base. In-page and
// non-web links resolve to "".
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if s := strings.ToLower(parsed.Scheme); s != "" && s != "http" && s != "https" {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
