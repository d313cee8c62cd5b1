package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/progress"
	"github.com/syntaxai/cargo-syntax/internal/report"
)

// defaultHistory is how many commits history scans.
const defaultHistory = 10

var historyCmd = &cobra.Command{
	Use:   "history [n]",
	Short: "Show the token trend over the last N commits",
	Long: `Measures the source files of each of the last N commits reachable from
HEAD, read straight from the git object store, and reports how tokens and
the T/L ratio moved.

Examples:
  cargo syntax history
  cargo syntax history 25 -f json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("path", ".", "Path inside the git repository")

	rootCmd.AddCommand(historyCmd)
}

var errNoCommits = errors.New("no commits found")

func runHistory(cmd *cobra.Command, args []string) error {
	n, err := getCount(args, 0, defaultHistory)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("path")

	svc := newScanService(&skipLog{})
	repo, err := svc.OpenRepo(path)
	if err != nil {
		return err
	}

	spinner := progress.NewSpinner(fmt.Sprintf("Scanning %d commits for token trends...", n))
	snaps, err := svc.History(cmd.Context(), repo, n)
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()
	if len(snaps) == 0 {
		return errNoCommits
	}

	return render(report.NewHistory(snaps))
}
