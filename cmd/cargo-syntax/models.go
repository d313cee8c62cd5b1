package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/openrouter"
)

// modelLister is the part of the OpenRouter client models needs.
type modelLister interface {
	ListModels(ctx context.Context) ([]openrouter.Model, error)
}

var newModelLister = func() modelLister {
	return openrouter.FromConfig(cfg)
}

var modelsCmd = &cobra.Command{
	Use:   "models [search]",
	Short: "List available OpenRouter models for code tasks",
	Long: `Lists OpenRouter models sorted by input price. Without a search term only
code-capable model families are shown, followed by recommendations.

Examples:
  cargo syntax models
  cargo syntax models claude`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	search := ""
	if len(args) > 0 {
		search = args[0]
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Fetching models from OpenRouter...")
	fmt.Fprintln(out)

	all, err := newModelLister().ListModels(cmd.Context())
	if err != nil {
		return err
	}
	models := openrouter.FilterModels(all, search)

	fmt.Fprintf(out, "%-50s %10s %12s %12s\n", "Model ID", "Context", "Input/M", "Output/M")
	separatorLine(out, 86)
	for _, m := range models {
		fmt.Fprintf(out, "%-50s %10s %12s %12s\n",
			m.ID, openrouter.FormatContext(m), openrouter.FormatInputCost(m), openrouter.FormatOutputCost(m))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d model(s) found\n", len(models))

	if search == "" {
		printRecommendations(out, models)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: cargo syntax rewrite src/main.rs --model <MODEL_ID>")
	fmt.Fprintln(out, "   or: cargo syntax review 5 --model <MODEL_ID>")
	return nil
}

func printRecommendations(w io.Writer, models []openrouter.Model) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recommended for cargo-syntax:")
	for _, p := range openrouter.Recommendations(models) {
		ctx := ""
		if p.Model.ContextLength != nil {
			ctx = strconv.Itoa(*p.Model.ContextLength)
		}
		fmt.Fprintf(w, "  %-6s %-40s - %s, %s ctx, %s\n",
			p.Label, p.Model.ID, openrouter.FormatInputCost(p.Model), ctx, p.Description)
	}
}
