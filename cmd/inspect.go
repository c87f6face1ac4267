package cmd

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/classify"
	"github.com/gaurav-prasanna/canonhtml/core/fetch"
	"github.com/gaurav-prasanna/canonhtml/core/lists"
	"github.com/gaurav-prasanna/canonhtml/core/strip"
	"github.com/gaurav-prasanna/canonhtml/core/tree"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Show how each paragraph is classified for list reconstruction",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// listCandidate is one paragraph the list engine would turn into an item.
type listCandidate struct {
	Paragraph int
	Text      string
	Kind      string
	Style     string
	Level     int
	GroupID   int
	Explicit  bool
}

func runInspect(cmd *cobra.Command, args []string) error {
	src, err := fetch.New().Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	candidates := inspectLists(src.Body)
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no list paragraphs found")
		return nil
	}
	_, err = pp.Fprintln(cmd.OutOrStdout(), candidates)
	return err
}

// inspectLists classifies the paragraphs of raw markup the way the list
// stage sees them, after noise and wrappers are gone.
func inspectLists(raw string) []listCandidate {
	ctx := core.NewParseContext(tree.Parse(strip.NormalizeEscapes(raw)), core.Ingest)
	ctx.Logger = logger
	strip.New().Apply(ctx)
	classify.NewWrappers().Apply(ctx)

	var out []listCandidate
	n := 0
	for _, el := range tree.Elements(ctx.Root) {
		if el.Data != "p" {
			continue
		}
		n++
		info, ok := lists.Classify(el)
		if !ok {
			continue
		}
		text := strings.Join(strings.Fields(tree.TextContent(el)), " ")
		if r := []rune(text); len(r) > 40 {
			text = string(r[:40]) + "..."
		}
		out = append(out, listCandidate{
			Paragraph: n,
			Text:      text,
			Kind:      info.Kind.String(),
			Style:     info.Style.String(),
			Level:     info.Level,
			GroupID:   info.GroupID,
			Explicit:  info.Explicit,
		})
	}
	return out
}
