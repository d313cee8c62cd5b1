package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// defaultReview is how many files review and batch handle by default.
const defaultReview = 5

var reviewCmd = &cobra.Command{
	Use:   "review [n]",
	Short: "AI-powered review of the N most token-heavy files (via OpenRouter)",
	Long: `Asks a chat model for token-saving suggestions for each of the N
heaviest files. Files larger than the model's context budget are skipped.
Nothing is written.

Examples:
  cargo syntax review
  cargo syntax review 3 --model google/gemini-2.5-flash`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("model", "", "OpenRouter model ID")
	reviewCmd.Flags().String("path", ".", "Crate root to scan")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	n, err := getCount(args, 0, defaultReview)
	if err != nil {
		return err
	}
	root, _ := cmd.Flags().GetString("path")
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()

	ps, err := scanNonEmpty(cmd.Context(), root)
	if err != nil {
		return err
	}
	svc := newRewriteService(cmd)
	limit := svc.ContextLimit()
	files := ps.Top(n)
	show := len(files)

	fmt.Fprintf(out, "Scanning project... %d files, %d tokens total\n", len(ps.Files), ps.TotalTokens)
	fmt.Fprintf(out, "Reviewing top %d files via %s...\n\n", show, svc.Model())

	totalSavings, topTokens := 0, 0
	for i, f := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		topTokens += f.Tokens
		fmt.Fprintf(out, "  #%-2d %s  (%d lines, %d tokens, T/L: %.1f, %.1f%% of total)\n",
			i+1, f.Path, f.Lines, f.Tokens, f.Ratio, stats.Pct(f.Tokens, ps.TotalTokens))

		if f.Tokens > limit {
			fmt.Fprintf(out, "      (skipped - %d tokens exceeds %d limit for %s)\n", f.Tokens, limit, svc.Model())
			fmt.Fprintln(out, "      Tip: split this file into smaller modules.")
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintf(status, "      [%d/%d] reviewing... ", i+1, show)
		review, err := svc.ReviewFile(cmd.Context(), f)
		if err != nil {
			fmt.Fprintln(status, "failed")
			fmt.Fprintf(out, "      (review failed: %v)\n\n", err)
			continue
		}
		fmt.Fprintln(status, "done")

		for _, s := range review.Suggestions {
			fmt.Fprintf(out, "      - %s [%s] (~%d tokens)\n", s.Description, s.Location, s.TokensSaved)
		}
		if review.Savings > 0 {
			fmt.Fprintf(out, "      => est. savings: ~%d tokens (%.1f%%)\n", review.Savings, stats.Pct(review.Savings, f.Tokens))
			totalSavings += review.Savings
		}
		fmt.Fprintln(out)
	}

	separatorLine(out, 70)
	fmt.Fprintf(out, "Reviewed %d/%d files (%d of %d tokens)\n", show, len(ps.Files), topTokens, ps.TotalTokens)
	if totalSavings > 0 {
		fmt.Fprintf(out, "Estimated total savings: ~%d tokens (%.1f%%)\n", totalSavings, stats.Pct(totalSavings, ps.TotalTokens))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run `cargo syntax rewrite <file>` on any file to apply changes.")
	return nil
}
