package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/canonhtml/core"
	"github.com/gaurav-prasanna/canonhtml/core/contract"
	"github.com/gaurav-prasanna/canonhtml/core/fetch"
	"github.com/gaurav-prasanna/canonhtml/core/output"
	"github.com/gaurav-prasanna/canonhtml/core/pipeline"
	"github.com/gaurav-prasanna/canonhtml/core/render"
	"github.com/spf13/cobra"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <input>",
	Short: "Re-apply the contract to markup that is already canonical",
	Long: `Sanitize is for canonical markup that was edited after cleaning. It
enforces the contract and fixes ids but does not infer lists, callouts or
headings from formatting.`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

var checkCmd = &cobra.Command{
	Use:   "check <input>...",
	Short: "Report where documents break the markup contract",
	Long: `Check runs each input through an independent sanitizer built from the
contract and reports the first place it changes the markup. It exits with
status 1 when any document does not conform.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(checkCmd)
	sanitizeCmd.Flags().BoolVar(&flagWarnings, "warnings", false, "Print every warning, not just the count")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	src, err := fetch.New().Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	res := pipeline.SanitizeToContract(src.Body, pipeline.WithLogger(logger.With("source", src.Name)))

	renderer := render.NewHTMLRenderer()
	data, err := renderer.Render(core.Document{Source: src.Name, HTML: res.HTML, Warnings: res.Warnings})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	writer, err := output.New(flagOutputDir, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(src.Name, data, renderer.Extension())
	if err != nil {
		return err
	}
	report(cmd.ErrOrStderr(), path, src, data, res.Warnings)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	loader := fetch.New()
	policy := contract.Default()
	out := cmd.OutOrStdout()

	failed := 0
	for _, name := range args {
		src, err := loader.Load(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		violations := policy.Verify(src.Body)
		if len(violations) == 0 {
			fmt.Fprintf(out, "ok    %s\n", src.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s\n", src.Name)
		for _, v := range violations {
			fmt.Fprintf(out, "      %s\n", v)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents break the contract", failed, len(args))
	}
	return nil
}
