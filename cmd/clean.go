// This file holds the clean command, which orchestrates the pipeline:
// load, import (Markdown only), clean, export, render, write.
// It handles flag validation, renderer selection and batch mode.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/fetch"
	"github.com/gaurav-prasanna/canonhtml/core/normalize"
	"github.com/gaurav-prasanna/canonhtml/core/output"
	"github.com/gaurav-prasanna/canonhtml/core/pipeline"
	"github.com/gaurav-prasanna/canonhtml/core/render"
	"github.com/gaurav-prasanna/canonhtml/crawl"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagAll      bool
	flagHTML     bool
	flagPDF      bool
	flagMarkdown bool
	flagJSON     bool
	flagFrom     string
	flagWarnings bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <input>...",
	Short: "Clean documents into canonical markup",
	Long: `Clean loads each input (a file, "-" for stdin, or a URL), rebuilds its
structure, applies the markup contract and writes the result in the chosen
format (HTML by default, Markdown, JSON or PDF).

Examples:
  canonhtml clean guide.htm
  canonhtml clean guide.htm --markdown --output_dir ./out
  canonhtml clean ./exports --all --json --output_dir ./out
  canonhtml clean notes.md --from markdown --pdf --output_dir ./out`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().BoolVar(&flagAll, "all", false, "Treat each input as a directory or site and clean every document found")

	// Output format flags (mutually exclusive).
	cleanCmd.Flags().BoolVar(&flagHTML, "html", false, "Output canonical HTML (default)")
	cleanCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown")
	cleanCmd.Flags().BoolVar(&flagJSON, "json", false, "Output a structured JSON report")
	cleanCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	cleanCmd.MarkFlagsMutuallyExclusive("html", "markdown", "json", "pdf")

	cleanCmd.Flags().StringVar(&flagFrom, "from", "html", "Input format: html or markdown")
	cleanCmd.Flags().BoolVar(&flagWarnings, "warnings", false, "Print every warning, not just the count")
}

// job is one document of a clean run.
type job struct {
	name string
	root string // batch root, empty for single documents
}

func runClean(cmd *cobra.Command, args []string) error {
	if flagFrom != "html" && flagFrom != "markdown" {
		return fmt.Errorf("--from must be html or markdown, got %q", flagFrom)
	}
	renderer := selectRenderer()
	if flagPDF && flagOutputDir == "" {
		return fmt.Errorf("--pdf needs --output_dir")
	}

	loader := fetch.New()
	writer, err := output.New(flagOutputDir, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var jobs []job
	for _, arg := range args {
		if !flagAll {
			jobs = append(jobs, job{name: arg})
			continue
		}
		found, err := crawl.DiscoverAll(ctx, arg, loader)
		if err != nil {
			return fmt.Errorf("discovering documents: %w", err)
		}
		logger.Info("discovered documents", "root", arg, "count", len(found))
		for _, name := range found {
			jobs = append(jobs, job{name: name, root: arg})
		}
	}

	status := cmd.ErrOrStderr()
	var errCount int
	for i, j := range jobs {
		if len(jobs) > 1 {
			fmt.Fprintf(status, "[%d/%d] %s\n", i+1, len(jobs), j.name)
		}
		src, doc, err := processDocument(ctx, j.name, loader, renderer)
		if err != nil {
			fmt.Fprintf(status, "  error: %v\n", err)
			errCount++
			continue
		}
		data, err := renderer.Render(doc)
		if err != nil {
			fmt.Fprintf(status, "  render error: %v\n", err)
			errCount++
			continue
		}

		var path string
		if j.root == "" {
			path, err = writer.Write(j.name, data, renderer.Extension())
		} else {
			path, err = writer.WriteTree(j.name, j.root, data, renderer.Extension())
		}
		if err != nil {
			fmt.Fprintf(status, "  write error: %v\n", err)
			errCount++
			continue
		}
		report(status, path, src, data, doc.Warnings)
	}

	if errCount > 0 {
		return fmt.Errorf("%d/%d documents failed", errCount, len(jobs))
	}
	return nil
}

// processDocument loads one source and runs it through the pipeline.
func processDocument(ctx context.Context, name string, loader core.Loader, renderer core.Renderer) (*core.Source, core.Document, error) {
	// 1. Load
	src, err := loader.Load(ctx, name)
	if err != nil {
		return nil, core.Document{}, fmt.Errorf("load: %w", err)
	}

	// 2. Import Markdown
	markup := src.Body
	if flagFrom == "markdown" {
		if markup, err = normalize.FromMarkdown(markup); err != nil {
			return nil, core.Document{}, fmt.Errorf("import: %w", err)
		}
	}

	// 3. Clean
	res := pipeline.Clean(markup, pipeline.WithLogger(logger.With("source", src.Name)))
	doc := core.Document{Source: src.Name, HTML: res.HTML, Warnings: res.Warnings}

	// 4. Export Markdown when the renderer needs it
	if needsMarkdown(renderer) {
		if doc.Markdown, err = normalize.New().Normalize(res.HTML); err != nil {
			return nil, core.Document{}, fmt.Errorf("normalize: %w", err)
		}
	}
	return src, doc, nil
}

func needsMarkdown(r core.Renderer) bool {
	switch r.(type) {
	case *render.MarkdownRenderer, *render.JSONRenderer:
		return true
	}
	return false
}

// report prints the one-line summary of a written document.
func report(w io.Writer, path string, src *core.Source, data []byte, warnings []string) {
	fmt.Fprintf(w, "  %s (%s -> %s, %d warnings)\n",
		path,
		humanize.Bytes(uint64(len(src.Body))),
		humanize.Bytes(uint64(len(data))),
		len(warnings))
	if flagWarnings {
		for _, msg := range warnings {
			fmt.Fprintf(w, "    - %s\n", msg)
		}
	}
}

// selectRenderer creates the Renderer for the chosen format flag.
func selectRenderer() core.Renderer {
	switch {
	case flagMarkdown:
		return render.NewMarkdownRenderer()
	case flagJSON:
		return render.NewJSONRenderer()
	case flagPDF:
		return render.NewPDFRenderer()
	default:
		return render.NewHTMLRenderer()
	}
}
