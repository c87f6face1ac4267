// Package pipeline wires the stages into the two public entry points:
// Clean for raw markup from any source, and SanitizeToContract for markup
// that is already canonical and only needs to be checked again.
package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/classify"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/enforce"
	"github.com/gaurav-prasanna/canonhtml/core/ids"
	"github.com/gaurav-prasanna/canonhtml/core/lists"
	"github.com/gaurav-prasanna/canonhtml/core/strip"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"golang.org/x/net/html"
)

type options struct {
	logger *slog.Logger
	policy *contract.Policy
}

// Option configures a single Clean or SanitizeToContract call.
type Option func(*options)

// WithLogger sends per-stage debug records to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPolicy replaces the default contract.
func WithPolicy(p *contract.Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy: contract.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ingestStages rebuild structure from foreign markup. They run before the
// finishing stages.
func ingestStages() []core.Stage {
	return []core.Stage{
		strip.New(),
		classify.NewWrappers(),
		classify.NewHeadings(),
		classify.NewBookmarks(),
		classify.NewInline(),
		classify.NewCallouts(),
		classify.NewTables(),
		lists.NewOnlineLists(),
		lists.NewRebuild(),
	}
}

// finishingStages bring any tree into the contract. Both entry points end
// with them.
func finishingStages() []core.Stage {
	return []core.Stage{
		enforce.New(),
		classify.NewTables(),
		classify.NewCalloutNormalizer(),
		lists.NewCleaner(),
		ids.New(),
	}
}

// Clean converts raw markup into canonical markup. It never fails: whatever
// cannot be kept is dropped and reported as a warning.
func Clean(raw string, opts ...Option) core.Result {
	o := newOptions(opts)
	root := tree.Parse(strip.NormalizeEscapes(raw))
	ctx := newContext(root, core.Ingest, o)
	return run(ctx, append(ingestStages(), finishingStages()...))
}

// SanitizeToContract re-checks markup that was produced by Clean and possibly
// edited since. It does not try to recover lists, callouts or headings from
// formatting.
func SanitizeToContract(markup string, opts ...Option) core.Result {
	o := newOptions(opts)
	ctx := newContext(tree.Parse(markup), core.Revalidate, o)
	return run(ctx, finishingStages())
}

func newContext(root *html.Node, dir core.Direction, o options) *core.ParseContext {
	ctx := core.NewParseContext(root, dir)
	ctx.Policy = o.policy
	ctx.Logger = o.logger
	return ctx
}

func run(ctx *core.ParseContext, stages []core.Stage) core.Result {
	for _, s := range stages {
		start := time.Now()
		s.Apply(ctx)
		ctx.Logger.Debug("stage complete",
			"stage", s.Name(),
			"direction", ctx.Direction.String(),
			"warnings", ctx.Warnings.Len(),
			"elapsed", time.Since(start),
		)
	}
	return core.Result{HTML: tree.Render(ctx.Root), Warnings: ctx.Warnings.List()}
}
