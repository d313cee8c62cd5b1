package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

var refactorCmd = &cobra.Command{
	Use:   "refactor [path]",
	Short: "AI-powered search for cross-file duplication (via OpenRouter)",
	Long: `Sends every source file of the crate to a chat model and asks for code
duplicated across files that could move into shared functions, traits or
modules. Patterns are listed by estimated savings. Nothing is written.

Examples:
  cargo syntax refactor
  cargo syntax refactor ./my-crate --model google/gemini-2.5-pro`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefactor,
}

func init() {
	refactorCmd.Flags().String("model", "", "OpenRouter model ID")

	rootCmd.AddCommand(refactorCmd)
}

func runRefactor(cmd *cobra.Command, args []string) error {
	root := getPath(args)
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()

	ps, err := scanNonEmpty(cmd.Context(), root)
	if err != nil {
		return err
	}
	svc := newRewriteService(cmd)

	fmt.Fprintf(out, "Scanning %d files (%d tokens) for cross-file duplication via %s...\n\n",
		len(ps.Files), ps.TotalTokens, svc.Model())
	fmt.Fprint(status, "  analyzing... ")
	result, err := svc.Refactor(cmd.Context(), ps)
	if err != nil {
		fmt.Fprintln(status, "failed")
		return err
	}
	fmt.Fprintln(status, "done")

	if len(result.Patterns) == 0 {
		fmt.Fprintln(out, "No significant cross-file duplication found. ✓")
	}
	for i, p := range result.Patterns {
		fmt.Fprintf(out, "  %d. %s\n", i+1, p.Description)
		fmt.Fprintf(out, "     Files: %s\n", strings.Join(p.Files, ", "))
		fmt.Fprintf(out, "     Fix: %s\n", p.Suggestion)
		fmt.Fprintf(out, "     Saves: ~%d tokens\n\n", p.TokensSaved)
	}

	separatorLine(out, 70)
	fmt.Fprintln(out, result.Summary)
	if n := len(result.Patterns); n > 0 {
		total := result.Saveable()
		fmt.Fprintf(out, "%d pattern(s) found, ~%d tokens saveable (%.1f%% of project)\n",
			n, total, stats.Pct(total, ps.TotalTokens))
	}
	return nil
}
