package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/progress"
	"github.com/syntaxai/cargo-syntax/internal/report"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/deep"
)

var deepCmd = &cobra.Command{
	Use:     "deep [path]",
	Aliases: []string{"dup", "duplicates"},
	Short:   "Find duplicated blocks and near-duplicate functions",
	Long: `Finds blocks of normalized lines repeated across files and functions in
the same file whose bodies are nearly identical, and estimates how many
tokens extracting them would save.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeep,
}

func init() {
	rootCmd.AddCommand(deepCmd)
}

func runDeep(cmd *cobra.Command, args []string) error {
	ps, err := scanCrate(cmd.Context(), getPath(args))
	if err != nil {
		return err
	}

	spinner := progress.NewSpinner("Detecting duplicates...")
	res := deep.Run(ps)
	spinner.FinishSuccess()

	return render(report.NewDeep(ps, res))
}
