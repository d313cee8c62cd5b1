package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/progress"
	"github.com/syntaxai/cargo-syntax/internal/report"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/history"
)

var compareCmd = &cobra.Command{
	Use:   "compare <branch>",
	Short: "Compare the working tree with another branch or revision",
	Long: `Measures the working tree and the given branch, tag or commit and shows
files, lines, tokens, T/L ratio and grade side by side. A T/L difference
under 0.1 counts as similar.

Examples:
  cargo syntax compare main
  cargo syntax compare v0.3.0`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	target := args[0]

	svc := newScanService(&skipLog{})
	repo, err := svc.OpenRepo(".")
	if err != nil {
		return err
	}
	current, err := vcs.CurrentBranch(repo)
	if err != nil {
		return err
	}

	// Both sides cover the whole repository.
	ps, err := scanCrate(cmd.Context(), repo.RepoPath())
	if err != nil {
		return err
	}

	spinner := progress.NewSpinner("Scanning " + target + "...")
	snap, err := svc.Snapshot(cmd.Context(), repo, target)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	return render(report.NewCompare(history.FromStats(current, ps), *snap))
}
