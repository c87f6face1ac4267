// Package core defines the pipeline interfaces for canonhtml.
// Each stage of the pipeline is a clean, testable interface operating on
// a ParseContext owned by a single invocation.
package core

import (
	"context"
	"io"
	"log/slog"

	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"golang.org/x/net/html"
)

// Direction tells stages which entry point is running.
type Direction int

const (
	// Ingest is the full clean pipeline for raw, untrusted markup.
	Ingest Direction = iota
	// Revalidate is the narrow re-sanitization of already canonical markup.
	Revalidate
)

// String returns the direction name used in log records.
func (d Direction) String() string {
	if d == Revalidate {
		return "revalidate"
	}
	return "ingest"
}

// Result is the output of one pipeline run.
type Result struct {
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings"`
}

// ParseContext carries everything a stage needs for one run. Nothing in it
// outlives the run or is shared with another invocation.
type ParseContext struct {
	Root      *html.Node
	Policy    *contract.Policy
	Warnings  *Warnings
	Logger    *slog.Logger
	Direction Direction
}

// NewParseContext creates a context over root with the default policy and a
// discarding logger.
func NewParseContext(root *html.Node, dir Direction) *ParseContext {
	return &ParseContext{
		Root:      root,
		Policy:    contract.Default(),
		Warnings:  &Warnings{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Direction: dir,
	}
}

// Warn records a human-readable warning.
func (c *ParseContext) Warn(format string, args ...any) {
	c.Warnings.Addf(format, args...)
}

// Stage is one rewrite step of the pipeline.
type Stage interface {
	Name() string
	Apply(ctx *ParseContext)
}

// Source is a raw input document as loaded from disk, stdin or the network.
type Source struct {
	Name string
	Body string
}

// Document is a cleaned document handed to renderers.
type Document struct {
	Source   string
	HTML     string
	Markdown string
	Warnings []string
}

// Loader retrieves raw markup from a file path, "-" or a URL.
type Loader interface {
	Load(ctx context.Context, src string) (*Source, error)
}

// Normalizer converts canonical HTML into Markdown for export.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts a cleaned document into a final output format.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
