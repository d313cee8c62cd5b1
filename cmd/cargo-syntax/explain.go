package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/service/rewrite"
)

var explainCmd = &cobra.Command{
	Use:   "explain <path>",
	Short: "AI-powered explanation of a file or project (via OpenRouter)",
	Long: `Explains a .rs file (purpose, key items, dependencies) or, given a
directory, the architecture of the crate below it and where to start
reading. Project explanations send the first lines of every file.

Examples:
  cargo syntax explain src/main.rs
  cargo syntax explain .`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().String("model", "", "OpenRouter model ID")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("path not found: %s", path)
	}
	if err != nil {
		return err
	}
	svc := newRewriteService(cmd)
	if info.IsDir() {
		return explainProject(cmd, svc, path)
	}
	return explainFile(cmd, svc, path)
}

func explainFile(cmd *cobra.Command, svc *rewrite.Service, path string) error {
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
	src, err := svc.ReadSource(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Explaining %s (%d lines, %d tokens) via %s...\n\n", path, src.Lines, src.Tokens, svc.Model())
	fmt.Fprint(status, "  analyzing... ")
	e, err := svc.ExplainFile(cmd.Context(), src)
	if err != nil {
		fmt.Fprintln(status, "failed")
		return err
	}
	fmt.Fprintln(status, "done")

	fmt.Fprintf(out, "  %s\n\n", e.Purpose)
	if len(e.KeyItems) > 0 {
		fmt.Fprintln(out, "  Key items:")
		for _, item := range e.KeyItems {
			fmt.Fprintf(out, "    %s (%s) - %s\n", item.Name, item.Kind, item.Description)
		}
		fmt.Fprintln(out)
	}
	if len(e.DependsOn) > 0 {
		fmt.Fprintf(out, "  Dependencies: %s\n", strings.Join(e.DependsOn, ", "))
	}
	return nil
}

func explainProject(cmd *cobra.Command, svc *rewrite.Service, root string) error {
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
	ps, err := scanNonEmpty(cmd.Context(), root)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Explaining project (%d files, %d tokens) via %s...\n\n", len(ps.Files), ps.TotalTokens, svc.Model())
	fmt.Fprint(status, "  analyzing... ")
	e, err := svc.ExplainProject(cmd.Context(), ps)
	if err != nil {
		fmt.Fprintln(status, "failed")
		return err
	}
	fmt.Fprintln(status, "done")

	fmt.Fprintf(out, "  %s\n\n", e.Summary)
	if len(e.Modules) > 0 {
		fmt.Fprintln(out, "  Modules:")
		for _, m := range e.Modules {
			fmt.Fprintf(out, "    %-40s %s\n", m.Path, m.Purpose)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  Start here: %s\n", e.StartHere)
	return nil
}
