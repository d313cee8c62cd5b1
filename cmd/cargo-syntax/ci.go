package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/output"
	"github.com/syntaxai/cargo-syntax/internal/report"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
)

var ciCmd = &cobra.Command{
	Use:   "ci [path]",
	Short: "Fail the build when token thresholds are exceeded",
	Long: `Checks the project against a token budget, a maximum T/L ratio and a
minimum grade. Exits with status 1 when any check fails. Thresholds not
given on the command line come from the [ci] section of the config file.

Examples:
  cargo syntax ci --max-tokens 50000
  cargo syntax ci --max-tl 9.5 --min-grade B --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCI,
}

func init() {
	ciCmd.Flags().Int("max-tokens", 0, "Maximum total tokens")
	ciCmd.Flags().Float64("max-tl", 0, "Maximum tokens per line")
	ciCmd.Flags().String("min-grade", "", "Minimum grade (A+, A, B, C, D)")
	ciCmd.Flags().Bool("json", false, "Shorthand for --format json")

	rootCmd.AddCommand(ciCmd)
}

// ciThresholds merges the flags that were set over the configured defaults.
func ciThresholds(cmd *cobra.Command) (report.Thresholds, error) {
	th := report.Thresholds{
		MaxTokens: cfg.CI.MaxTokens,
		MaxTL:     cfg.CI.MaxTL,
		MinGrade:  cfg.CI.MinGrade,
	}
	if cmd.Flags().Changed("max-tokens") {
		th.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	}
	if cmd.Flags().Changed("max-tl") {
		th.MaxTL, _ = cmd.Flags().GetFloat64("max-tl")
	}
	if cmd.Flags().Changed("min-grade") {
		th.MinGrade, _ = cmd.Flags().GetString("min-grade")
	}

	if th.MaxTokens < 0 || th.MaxTL < 0 {
		return th, fmt.Errorf("thresholds must not be negative")
	}
	if th.MinGrade != "" && !grade.Valid(th.MinGrade) {
		return th, fmt.Errorf("invalid grade %q: expected one of A+, A, B, C, D", th.MinGrade)
	}
	return th, nil
}

func runCI(cmd *cobra.Command, args []string) error {
	th, err := ciThresholds(cmd)
	if err != nil {
		return err
	}

	ps, err := scanCrate(cmd.Context(), getPath(args))
	if err != nil {
		return err
	}
	result := report.Gate(ps, th)

	format := getFormat()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = output.FormatJSON
	}
	formatter, err := output.NewFormatter(format, outputFile, !color.NoColor)
	if err != nil {
		return err
	}
	defer formatter.Close()
	if err := formatter.Output(result); err != nil {
		return err
	}

	if !result.Pass {
		return &exitError{code: 1}
	}
	return nil
}
