// Package cmd implements the canonhtml CLI using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagVerbose   bool
	flagOutputDir string

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "canonhtml",
	Short: "canonhtml - turn pasted or exported HTML into canonical markup",
	Long: `canonhtml converts HTML from word processors, web editors and the
clipboard into a small canonical markup contract: real lists, callouts,
clean tables and safe links.

Usage:
  canonhtml clean <input>... [flags]
  canonhtml sanitize <input>
  canonhtml check <input>...
  canonhtml inspect <input>`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every pipeline stage")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: stdout)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
