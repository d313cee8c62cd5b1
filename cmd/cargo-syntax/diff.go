package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/internal/service/rewrite"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
)

var diffCmd = &cobra.Command{
	Use:   "diff [range]",
	Short: "AI-powered review of changed code only (via OpenRouter)",
	Long: `Reviews the source files changed in the working tree, the index or a
revision range, asking a chat model for token savings in the changed
lines. Without arguments the unstaged changes are reviewed.

A range is either a single revision, compared with the working tree, or
A..B. With --fix every file that got suggestions is rewritten in turn.

Examples:
  cargo syntax diff
  cargo syntax diff --staged
  cargo syntax diff main..HEAD
  cargo syntax diff HEAD~3 --fix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("model", "", "OpenRouter model ID")
	diffCmd.Flags().Bool("staged", false, "Review staged changes")
	diffCmd.Flags().Bool("fix", false, "Rewrite the files that got suggestions")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	staged, _ := cmd.Flags().GetBool("staged")
	fix, _ := cmd.Flags().GetBool("fix")
	opts := vcs.DiffOptions{Staged: staged}
	if len(args) > 0 {
		opts.Range = args[0]
	}
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()

	repo, err := newScanService(&skipLog{}).OpenRepo(".")
	if err != nil {
		return err
	}
	diffs, err := vcs.Diff(repo, opts)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		fmt.Fprintln(out, "No changes to review.")
		return nil
	}
	walker := scanner.NewWalker(cfg)
	var sources []vcs.FileDiff
	for _, d := range diffs {
		if walker.Match(d.Path) {
			sources = append(sources, d)
		}
	}
	if len(sources) == 0 {
		fmt.Fprintf(out, "No %s file changes found.\n", cfg.Scan.Extension)
		return nil
	}

	svc := newRewriteService(cmd)
	fmt.Fprintf(out, "Analyzing %s changes via %s...\n\n", opts.Label(), svc.Model())

	reviews := make([]*rewrite.ChangeReview, 0, len(sources))
	for _, d := range sources {
		fmt.Fprint(status, "  reviewing... ")
		r, err := svc.ReviewChange(cmd.Context(), d)
		if err != nil {
			fmt.Fprintln(status, "failed")
			return err
		}
		reviews = append(reviews, r)

		fmt.Fprintf(out, "%s  (%s, +%d lines, ~+%d tokens, T/L: %.1f)\n",
			d.Path, r.Status(), d.Added, r.AddedTokens, r.Ratio())
		switch {
		case r.Err != nil:
			fmt.Fprintln(status, "failed")
			fmt.Fprintf(out, "  (review failed: %v)\n", r.Err)
		case r.Review.Efficient():
			fmt.Fprintln(status, "done")
			fmt.Fprintln(out, "  ✓ Changes look token-efficient")
		default:
			fmt.Fprintln(status, "done")
			for _, s := range r.Review.Suggestions {
				fmt.Fprintf(out, "  - %s [%s] (~%d tokens)\n", s.Description, s.Location, s.TokensSaved)
			}
		}
		fmt.Fprintln(out)
	}

	sum := rewrite.Summarize(reviews)
	separatorLine(out, 70)
	fmt.Fprintf(out, "Summary: %d file(s) changed, ~+%d tokens added\n", sum.Files, sum.AddedTokens)
	switch {
	case sum.Efficient == sum.Files:
		fmt.Fprintln(out, "All changes look token-efficient. ✓")
	case sum.Saveable > 0:
		fmt.Fprintf(out, "%d suggestion(s) could save ~%d tokens (%.0f%%)\n", sum.Suggestions, sum.Saveable, sum.SavePct())
	}

	if len(sum.ToFix) == 0 {
		return nil
	}
	if !fix {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run `cargo syntax diff --fix` to rewrite, or `cargo syntax rewrite <file>` individually.")
		return nil
	}

	fmt.Fprintf(out, "\nRewriting %d file(s) with suggestions...\n\n", len(sum.ToFix))
	for _, path := range sum.ToFix {
		file := filepath.Join(repo.RepoPath(), filepath.FromSlash(path))
		fmt.Fprint(status, "  rewriting... ")
		res, err := svc.RewriteFile(cmd.Context(), file)
		if err != nil {
			fmt.Fprintln(status, "failed")
			return err
		}
		fmt.Fprintln(status, "done")
		fmt.Fprintf(out, "%s\n", path)
		printRewriteResult(out, res)
		fmt.Fprintln(out)
		if err := promptRewrite(out, res, path); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}
