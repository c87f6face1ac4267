// Package output handles file naming and writing for rendered documents.
// A single document is written flat, named after its source
// (guide.htm becomes guide.html, https://example.com/docs/intro becomes
// example_com_docs_intro.html). In batch mode names mirror the source tree
// or the URL path. Without an output directory everything goes to stdout.
package output

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Writer writes rendered output to disk or to a stream.
type Writer struct {
	OutputDir string
	stream    io.Writer
}

// New creates a Writer targeting outputDir, creating it if needed. An empty
// outputDir writes to stream instead.
func New(outputDir string, stream io.Writer) (*Writer, error) {
	if outputDir == "" {
		return &Writer{stream: stream}, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	return &Writer{OutputDir: outputDir}, nil
}

// ToStream reports whether output goes to the stream.
func (w *Writer) ToStream() bool {
	return w.OutputDir == ""
}

// Write writes data for the source called name and returns the path
// written, or "-" for the stream.
func (w *Writer) Write(name string, data []byte, ext string) (string, error) {
	if w.ToStream() {
		return w.emit(data)
	}
	path := filepath.Join(w.OutputDir, BaseName(name)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing file %s", path)
	}
	return path, nil
}

// WriteTree writes data for one document of a batch rooted at root,
// mirroring the document's path below root or its URL path.
// Example: https://site.com/docs/intro becomes <dir>/docs/intro.html.
func (w *Writer) WriteTree(name, root string, data []byte, ext string) (string, error) {
	if w.ToStream() {
		return w.emit(data)
	}
	fullPath := filepath.Join(w.OutputDir, relativePath(name, root)+ext)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating directory %s", dir)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", errors.Wrapf(err, "writing file %s", fullPath)
	}
	return fullPath, nil
}

func (w *Writer) emit(data []byte) (string, error) {
	if _, err := w.stream.Write(data); err != nil {
		return "", errors.Wrap(err, "writing output")
	}
	return "-", nil
}

// relativePath returns the extension-less output path of name inside a
// batch rooted at root.
func relativePath(name, root string) string {
	if parsed, err := url.Parse(name); err == nil && parsed.Host != "" {
		urlPath := strings.Trim(parsed.Path, "/")
		if urlPath == "" {
			urlPath = "index"
		}
		urlPath = strings.TrimSuffix(urlPath, filepath.Ext(urlPath))
		return filepath.FromSlash(urlPath)
	}
	rel, err := filepath.Rel(root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return BaseName(name)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// BaseName converts a source name into a flat file name without extension.
// Example: https://example.com/docs/intro becomes example_com_docs_intro.
func BaseName(name string) string {
	if parsed, err := url.Parse(name); err == nil && parsed.Host != "" {
		parts := []string{sanitize(parsed.Host)}
		path := strings.Trim(parsed.Path, "/")
		if path != "" {
			for _, seg := range strings.Split(path, "/") {
				parts = append(parts, sanitize(strings.TrimSuffix(seg, filepath.Ext(seg))))
			}
		}
		return strings.Join(parts, "_")
	}
	base := filepath.Base(name)
	return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
}

// sanitize replaces everything but letters, digits, '-' and '_' with
// underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
