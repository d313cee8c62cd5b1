package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/report"
)

var badgeCmd = &cobra.Command{
	Use:   "badge [path]",
	Short: "Generate a token efficiency badge for your README",
	Long: `Prints a shields.io badge for the project's grade and T/L ratio as
Markdown, HTML and reStructuredText.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBadge,
}

func init() {
	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
	ps, err := scanCrate(cmd.Context(), getPath(args))
	if err != nil {
		return err
	}
	return render(report.NewBadge(ps.Ratio()))
}
