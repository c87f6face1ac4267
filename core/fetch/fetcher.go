// Package fetch implements the Loader interface.
// A source is "-" for standard input, an http(s) URL, or a file path.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/pkg/errors"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "canonhtml/1.0 (https://github.com/gaurav-prasanna/canonhtml)"
	// maxBodySize bounds what is read from any source.
	maxBodySize = 32 << 20
)

// ErrTooLarge is returned for sources above the size limit.
var ErrTooLarge = errors.New("source exceeds size limit")

// SourceLoader loads raw markup from stdin, the network or disk.
type SourceLoader struct {
	client *http.Client
	stdin  io.Reader
}

// New creates a SourceLoader with a sensible HTTP timeout.
func New() *SourceLoader {
	return &SourceLoader{
		client: &http.Client{Timeout: defaultTimeout},
		stdin:  os.Stdin,
	}
}

// WithStdin returns a copy of l that reads "-" from r.
func (l *SourceLoader) WithStdin(r io.Reader) *SourceLoader {
	c := *l
	c.stdin = r
	return &c
}

// IsURL reports whether src names an http(s) resource.
func IsURL(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load retrieves the markup named by src.
func (l *SourceLoader) Load(ctx context.Context, src string) (*core.Source, error) {
	switch {
	case src == "-":
		body, err := readLimited(l.stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading stdin")
		}
		return &core.Source{Name: "stdin", Body: body}, nil
	case IsURL(src):
		return l.fetch(ctx, src)
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", src)
		}
		defer f.Close()
		body, err := readLimited(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", src)
		}
		return &core.Source{Name: src, Body: body}, nil
	}
}

func (l *SourceLoader) fetch(ctx context.Context, url string) (*core.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return &core.Source{Name: url, Body: body}, nil
}

func readLimited(r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxBodySize {
		return "", ErrTooLarge
	}
	return string(body), nil
}
