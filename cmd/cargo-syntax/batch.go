package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/lint"
	"github.com/syntaxai/cargo-syntax/internal/service/rewrite"
)

var batchCmd = &cobra.Command{
	Use:   "batch [n]",
	Short: "Bulk AI-powered rewrite of the most token-heavy files",
	Long: `Rewrites the N heaviest files one after another. Each rewrite that saves
tokens is offered for acceptance, or accepted outright with --auto. With
--validate, cargo check and cargo test run after every accepted rewrite and
a failing file is rolled back.

Examples:
  cargo syntax batch 3
  cargo syntax batch 10 --auto --validate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("model", "", "OpenRouter model ID")
	batchCmd.Flags().String("path", ".", "Crate root to scan")
	batchCmd.Flags().Bool("validate", false, "Run cargo check + cargo test after each rewrite, rollback on failure")
	batchCmd.Flags().Bool("auto", false, "Accept improving rewrites without prompting")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	n, err := getCount(args, 0, defaultReview)
	if err != nil {
		return err
	}
	root, _ := cmd.Flags().GetString("path")
	auto, _ := cmd.Flags().GetBool("auto")
	out := cmd.OutOrStdout()

	ps, err := scanNonEmpty(cmd.Context(), root)
	if err != nil {
		return err
	}

	opts := rewrite.BatchOptions{
		N:      n,
		Auto:   auto,
		Out:    out,
		Status: cmd.ErrOrStderr(),
		Confirm: func() (bool, error) {
			return confirm(out, "  Accept? [y/n] ")
		},
	}
	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		opts.Validator = lint.New(root)
	}

	_, err = newRewriteService(cmd).Batch(cmd.Context(), root, ps, opts)
	return err
}
