package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/lint"
	"github.com/syntaxai/cargo-syntax/internal/progress"
	"github.com/syntaxai/cargo-syntax/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Run strict clippy and fmt checks",
	Long:  `Runs cargo clippy with warnings denied and cargo fmt --check.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Auto-fix clippy warnings and format code",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFix,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [path]",
	Short: "Suggest token-efficiency improvements from clippy",
	Long: `Runs clippy with the lints whose fixes shorten code and lists the hints
per file, files with the most hints first, next to each file's T/L ratio.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(suggestCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	return lint.New(getPath(args), lint.WithOutput(os.Stdout)).Check(cmd.Context())
}

func runFix(cmd *cobra.Command, args []string) error {
	return lint.New(getPath(args), lint.WithOutput(os.Stdout)).Fix(cmd.Context())
}

func runSuggest(cmd *cobra.Command, args []string) error {
	root := getPath(args)

	spinner := progress.NewSpinner("Running clippy with token-efficiency lints...")
	hints, err := lint.New(root).Suggest(cmd.Context())
	if err != nil {
		spinner.FinishError(err)
		return err
	}
	spinner.FinishSuccess()

	ps, err := scanCrate(cmd.Context(), root)
	if err != nil {
		return err
	}
	return render(report.NewSuggest(lint.Group(hints, ratiosByPath(ps))))
}
