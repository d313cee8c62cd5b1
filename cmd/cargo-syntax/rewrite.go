package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/service/rewrite"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "AI-powered rewrite of a file for token efficiency (via OpenRouter)",
	Long: `Sends a .rs file to a chat model with instructions to minimise its tokens
while keeping behaviour identical, reports the token difference and the
changes made, and asks before writing the result.

Needs OPENROUTER_API_KEY. The model comes from --model, CARGO_SYNTAX_MODEL,
llm.model in the config file, or defaults to deepseek/deepseek-chat.

Examples:
  cargo syntax rewrite src/main.rs
  cargo syntax rewrite src/lib.rs --model anthropic/claude-sonnet-4 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().String("model", "", "OpenRouter model ID")
	rewriteCmd.Flags().BoolP("yes", "y", false, "Write the rewrite without asking")

	rootCmd.AddCommand(rewriteCmd)
}

// newRewriteService builds the service for the chat commands, honouring
// --model.
var newRewriteService = func(cmd *cobra.Command) *rewrite.Service {
	opts := []rewrite.Option{rewrite.WithConfig(cfg)}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		opts = append(opts, rewrite.WithModel(model))
	}
	return rewrite.New(opts...)
}

func separatorLine(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("─", width))
}

func runRewrite(cmd *cobra.Command, args []string) error {
	file := args[0]
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
	svc := newRewriteService(cmd)

	fmt.Fprintf(out, "Sending %s to %s via OpenRouter...\n", file, svc.Model())
	fmt.Fprint(status, "  rewriting... ")
	res, err := svc.RewriteFile(cmd.Context(), file)
	if err != nil {
		fmt.Fprintln(status, "failed")
		return err
	}
	fmt.Fprintln(status, "done")
	fmt.Fprintf(out, "  %d lines, %d tokens\n", res.LinesBefore, res.TokensBefore)

	printRewriteResult(out, res)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Changes:")
	if changes, err := svc.Explain(cmd.Context(), res); err != nil {
		fmt.Fprintln(out, "  (could not generate explanation)")
	} else {
		for _, c := range changes {
			fmt.Fprintf(out, "  - %s (~%d tokens)\n", c.Description, c.TokensSaved)
		}
	}
	fmt.Fprintln(out)

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return writeRewrite(out, res, file)
	}
	return promptRewrite(out, res, file)
}

func printRewriteResult(w io.Writer, res *rewrite.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Result:")
	fmt.Fprintf(w, "  Lines:  %d → %d\n", res.LinesBefore, res.LinesAfter)
	fmt.Fprintf(w, "  Tokens: %d → %d\n", res.TokensBefore, res.TokensAfter)

	saved, pct := res.Saved(), res.SavedPct()
	switch {
	case saved > 0:
		fmt.Fprintln(w, color.GreenString("  Saved:  %d tokens (%.1f%%)", saved, pct))
	case saved < 0:
		fmt.Fprintln(w, color.RedString("  Added:  %d tokens (%.1f%%)", -saved, -pct))
	default:
		fmt.Fprintln(w, "  No token change.")
	}
}

// promptRewrite asks whether to keep the rewrite; "diff" shows the changed
// lines and asks again.
func promptRewrite(w io.Writer, res *rewrite.Result, file string) error {
	answer, err := ask(w, "Accept? [y/n/diff] ")
	if err != nil {
		return err
	}
	switch answer {
	case "y", "yes":
		return writeRewrite(w, res, file)
	case "d", "diff":
		separatorLine(w, 70)
		for _, line := range res.Diff() {
			fmt.Fprintln(w, line)
		}
		separatorLine(w, 70)
		fmt.Fprintln(w)
		ok, err := confirm(w, "Accept? [y/n] ")
		if err != nil {
			return err
		}
		if ok {
			return writeRewrite(w, res, file)
		}
	}
	fmt.Fprintln(w, "Discarded.")
	return nil
}

func writeRewrite(w io.Writer, res *rewrite.Result, file string) error {
	if err := res.Apply(); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	color.New(color.FgGreen).Fprintf(w, "Written to %s\n", file)
	return nil
}
