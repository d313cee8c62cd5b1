package rewrite

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// Validator builds and tests the crate after a rewrite is written.
type Validator interface {
	Validate(ctx context.Context) error
}

// BatchOptions configures Batch.
type BatchOptions struct {
	// N is the number of heaviest files to rewrite.
	N int
	// Validator, when set, runs after each accepted rewrite; a failure
	// restores the original file.
	Validator Validator
	// Auto accepts every improving rewrite without calling Confirm.
	Auto bool
	// Confirm asks whether to write an improving rewrite.
	Confirm func() (bool, error)
	// Out receives the report, Status the per-step progress.
	Out    io.Writer
	Status io.Writer
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Rewritten int     `json:"rewritten"`
	Skipped   int     `json:"skipped"`
	Failed    int     `json:"failed"`
	Saved     int     `json:"saved"`
	SavedPct  float64 `json:"saved_pct"`
}

// Batch rewrites the n heaviest files of ps, whose paths are relative to
// root. Files whose rewrite does not shrink them are left alone.
func (s *Service) Batch(ctx context.Context, root string, ps *project.ProjectStats, opts BatchOptions) (*BatchSummary, error) {
	out, status := opts.Out, opts.Status
	if out == nil {
		out = io.Discard
	}
	if status == nil {
		status = io.Discard
	}

	files := ps.Top(opts.N)
	count := len(files)

	fmt.Fprintf(out, "Batch rewriting top %d files via %s...\n", count, s.model)
	if opts.Validator != nil {
		fmt.Fprintln(out, "  Validation: cargo check + cargo test after each rewrite")
	}
	if opts.Auto && opts.Validator == nil {
		fmt.Fprintln(out, "  WARNING: --auto without --validate accepts all rewrites blindly")
	}
	if opts.Auto {
		fmt.Fprintln(out, "  Auto-apply: skipping interactive prompts")
	}
	fmt.Fprintln(out)

	sum := &BatchSummary{}
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		fmt.Fprintf(out, "[%d/%d] %s  (%d tokens, %d lines, T/L: %.1f)\n",
			i+1, count, f.Path, f.Tokens, f.Lines, f.Ratio)

		fmt.Fprint(status, "  rewriting... ")
		res, err := s.RewriteFile(ctx, filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			fmt.Fprintln(status, "failed")
			fmt.Fprintf(out, "  Error: %v\n\n", err)
			sum.Failed++
			continue
		}
		fmt.Fprintln(status, "done")

		saved := res.Saved()
		if saved <= 0 {
			fmt.Fprintf(out, "  No improvement (%+d tokens). Skipping.\n\n", saved)
			sum.Skipped++
			continue
		}
		fmt.Fprintf(out, "  %d → %d tokens (saves %d, %.1f%%)\n",
			res.TokensBefore, res.TokensAfter, saved, res.SavedPct())

		accepted := opts.Auto
		if !accepted && opts.Confirm != nil {
			if accepted, err = opts.Confirm(); err != nil {
				return sum, err
			}
		}
		if !accepted {
			fmt.Fprintf(out, "  Skipped.\n\n")
			sum.Skipped++
			continue
		}

		if err := res.Apply(); err != nil {
			return sum, err
		}
		if opts.Validator != nil {
			fmt.Fprint(status, "  validating... ")
			if err := opts.Validator.Validate(ctx); err != nil {
				fmt.Fprintln(status, "failed ✗")
				fmt.Fprintf(out, "  %v\n", err)
				fmt.Fprintln(out, "  Rolling back...")
				if err := res.Restore(); err != nil {
					return sum, err
				}
				sum.Failed++
				fmt.Fprintln(out)
				continue
			}
			fmt.Fprintln(status, "passed ✓")
		} else {
			fmt.Fprintln(out, "  Applied.")
		}
		sum.Rewritten++
		sum.Saved += saved
		fmt.Fprintln(out)
	}

	sum.SavedPct = stats.Pct(sum.Saved, ps.TotalTokens)
	fmt.Fprintln(out, strings.Repeat("─", 70))
	fmt.Fprintf(out, "Batch complete: %d rewritten, %d skipped, %d failed\n", sum.Rewritten, sum.Skipped, sum.Failed)
	if sum.Saved > 0 {
		fmt.Fprintf(out, "Total saved: ~%d tokens (%.1f%% of project)\n", sum.Saved, sum.SavedPct)
	}
	return sum, nil
}
