package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/report"
	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/pkg/watch"
)

var auditCmd = &cobra.Command{
	Use:   "audit [path]",
	Short: "Audit token count and lines of code per file",
	Long: `Scans every .rs file outside the build directory and prints lines, tokens
and tokens per line (T/L) per file, the project totals, the code/comment/blank
split, the spread of per-file ratios and the efficiency grade.

The path may also name a remote repository (owner/repo, owner/repo@tag or a
git URL); it is shallow-cloned into a temp directory and removed afterwards.

Examples:
  cargo syntax audit
  cargo syntax audit crates/core -f markdown
  cargo syntax audit serde-rs/serde@v1.0.200
  cargo syntax audit --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolP("watch", "w", false, "Re-run the audit whenever a source file changes")
	auditCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before re-running in watch mode")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	root := getPath(args)
	if err := auditOnce(cmd.Context(), root); err != nil {
		return err
	}

	if w, _ := cmd.Flags().GetBool("watch"); !w {
		return nil
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	return watchAudit(cmd.Context(), root, debounce)
}

func auditOnce(ctx context.Context, root string) error {
	ps, err := scanCrate(ctx, root)
	if err != nil {
		return err
	}
	return render(report.NewAudit(ps))
}

func watchAudit(ctx context.Context, root string, debounce time.Duration) error {
	w, err := watch.NewWatcher(root, scanner.NewWalker(cfg), debounce)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	w.SetCallback(func([]string) {
		fmt.Println()
		if err := auditOnce(ctx, root); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		}
	})

	err = w.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
