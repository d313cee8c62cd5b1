package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/lint"
	"github.com/syntaxai/cargo-syntax/internal/service/rewrite"
)

var generateTestsCmd = &cobra.Command{
	Use:   "generate-tests <file>",
	Short: "AI-powered integration tests for a file (via OpenRouter)",
	Long: `Asks a chat model for integration tests covering the public functions of
a .rs file, shows them with a coverage summary, and offers to write or
append them to a file under tests/. Written tests are compiled with
cargo test --no-run.

Run from the crate root so the crate name can be read from Cargo.toml.

Examples:
  cargo syntax generate-tests src/tokens.rs
  cargo syntax generate-tests src/parser.rs --to tests/parser.rs`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateTests,
}

func init() {
	generateTestsCmd.Flags().String("model", "", "OpenRouter model ID")
	generateTestsCmd.Flags().String("to", "", "Test file to write (default tests/test_<name>.rs)")

	rootCmd.AddCommand(generateTestsCmd)
}

func runGenerateTests(cmd *cobra.Command, args []string) error {
	file := args[0]
	target, _ := cmd.Flags().GetString("to")
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
	svc := newRewriteService(cmd)

	plan, err := svc.PlanTests(".", file, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Generating tests for %s (%d lines, %d tokens) via %s...\n",
		file, plan.Source.Lines, plan.Source.Tokens, svc.Model())
	fmt.Fprint(status, "  analyzing... ")
	gen, err := svc.GenerateTests(cmd.Context(), plan)
	if err != nil {
		fmt.Fprintln(status, "failed")
		return err
	}
	fmt.Fprintln(status, "done")

	fmt.Fprintf(out, "  Generated: %d lines, %d tokens\n\n", gen.Lines, gen.Tokens)
	if cov := gen.Coverage; cov != nil {
		fmt.Fprintf(out, "  Tests: %d\n", cov.TestCount)
		if len(cov.FunctionsTested) > 0 {
			fmt.Fprintf(out, "  Covered: %s\n", strings.Join(cov.FunctionsTested, ", "))
		}
		if len(cov.FunctionsUntestable) > 0 {
			fmt.Fprintf(out, "  Skipped: %s (need I/O/network)\n", strings.Join(cov.FunctionsUntestable, ", "))
		}
		fmt.Fprintf(out, "  %s\n", cov.Notes)
	}

	fmt.Fprintln(out)
	separatorLine(out, 70)
	fmt.Fprintln(out, gen.Code)
	separatorLine(out, 70)
	fmt.Fprintln(out)

	answer, err := ask(out, fmt.Sprintf("Write to %s? [y/n/append] ", plan.Target))
	if err != nil {
		return err
	}
	switch answer {
	case "y", "yes":
		if err := rewrite.WriteTests(plan.Target, gen.Code, false); err != nil {
			return fmt.Errorf("failed to write %s: %w", plan.Target, err)
		}
		color.New(color.FgGreen).Fprintf(out, "Written to %s\n", plan.Target)
	case "a", "append":
		if err := rewrite.WriteTests(plan.Target, gen.Code, true); err != nil {
			return fmt.Errorf("failed to write %s: %w", plan.Target, err)
		}
		color.New(color.FgGreen).Fprintf(out, "Appended to %s\n", plan.Target)
	default:
		fmt.Fprintln(out, "Discarded.")
		return nil
	}
	compileTests(cmd.Context(), status, plan.Target)
	return nil
}

// compileTests reports on w whether the crate's tests still build.
// Failures are printed, not returned: the file is already written.
func compileTests(ctx context.Context, w io.Writer, target string) {
	fmt.Fprint(w, "  compiling tests... ")
	err := lint.New(".", lint.WithRunner(cargoRunner)).CompileTests(ctx, target)
	var cerr *lint.CompileError
	switch {
	case err == nil:
		fmt.Fprintln(w, "compiled OK")
	case errors.As(err, &cerr):
		fmt.Fprintln(w, color.RedString("COMPILE ERROR"))
		for _, line := range cerr.Lines {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintf(w, "  Fix errors or delete %s and retry\n", target)
	default:
		fmt.Fprintf(w, "failed to run cargo test: %v\n", err)
	}
}
