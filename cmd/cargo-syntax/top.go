package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/report"
)

var topCmd = &cobra.Command{
	Use:   "top [n]",
	Short: "Show the N most token-heavy files",
	Long: `Ranks files by token count and shows each file's share of the project.

Examples:
  cargo syntax top
  cargo syntax top 5 --path crates/core`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTop,
}

func init() {
	topCmd.Flags().String("path", ".", "Crate root to scan")

	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	n, err := getCount(args, 0, report.DefaultTop)
	if err != nil {
		return err
	}
	root, _ := cmd.Flags().GetString("path")

	ps, err := scanCrate(cmd.Context(), root)
	if err != nil {
		return err
	}
	return render(report.NewTop(ps, n))
}
