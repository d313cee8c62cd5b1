package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/deep"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// maxLocations is how many locations a cluster lists before eliding.
const maxLocations = 3

// DuplicateBlock is a cluster with file paths resolved. Lines are 1-based.
type DuplicateBlock struct {
	Span      int      `json:"span"`
	FileCount int      `json:"file_count"`
	Preview   string   `json:"preview"`
	Locations []string `json:"locations"`
	Tokens    int      `json:"tokens_per_instance"`
	Savings   int      `json:"savings"`
}

// SimilarFunctions is a near-duplicate pair. Lines are 1-based.
type SimilarFunctions struct {
	File       string  `json:"file"`
	FnA        string  `json:"fn_a"`
	LineA      int     `json:"line_a"`
	FnB        string  `json:"fn_b"`
	LineB      int     `json:"line_b"`
	Similarity float64 `json:"similarity"`
	Savings    int     `json:"savings"`
}

// Deep is the deep-analysis report.
type Deep struct {
	Blocks       []DuplicateBlock   `json:"duplicate_blocks"`
	Functions    []SimilarFunctions `json:"near_duplicates"`
	PatternCount int                `json:"pattern_count"`
	TotalSavings int                `json:"total_savings"`
	TotalTokens  int                `json:"total_tokens"`
	SavingsPct   float64            `json:"savings_pct"`
}

// NewDeep resolves the file indexes of res against ps.
func NewDeep(ps *project.ProjectStats, res *deep.Result) *Deep {
	d := &Deep{
		Blocks:       make([]DuplicateBlock, len(res.Clusters)),
		Functions:    make([]SimilarFunctions, len(res.NearDuplicates)),
		PatternCount: res.PatternCount(),
		TotalSavings: res.TotalSavings,
		TotalTokens:  ps.TotalTokens,
		SavingsPct:   stats.Pct(res.TotalSavings, ps.TotalTokens),
	}
	for i, c := range res.Clusters {
		locs := make([]string, len(c.Occurrences))
		for j, o := range c.Occurrences {
			locs[j] = fmt.Sprintf("%s:%d", ps.Files[o.FileIdx].Path, o.Start+1)
		}
		d.Blocks[i] = DuplicateBlock{
			Span:      c.Span(),
			FileCount: c.FileCount(),
			Preview:   c.Preview,
			Locations: locs,
			Tokens:    c.TokensPerInstance,
			Savings:   deep.ClusterSavings(c),
		}
	}
	for i, nd := range res.NearDuplicates {
		d.Functions[i] = SimilarFunctions{
			File:       ps.Files[nd.FileIdx].Path,
			FnA:        nd.FnA.Name,
			LineA:      nd.FnA.Line + 1,
			FnB:        nd.FnB.Name,
			LineB:      nd.FnB.Line + 1,
			Similarity: nd.Similarity,
			Savings:    nd.Savings,
		}
	}
	return d
}

// previewLine joins the first two preview lines for a one-line summary.
func previewLine(preview string) string {
	lines := project.SplitLines(preview)
	if len(lines) > 2 {
		lines = lines[:2]
	}
	return strings.Join(lines, " | ")
}

func locationList(locs []string) string {
	if len(locs) > maxLocations {
		return fmt.Sprintf("%s, (+%d more)", strings.Join(locs[:2], ", "), len(locs)-2)
	}
	return strings.Join(locs, ", ")
}

func (d *Deep) summary() string {
	return fmt.Sprintf("Deep analysis: %d pattern(s), ~%d tokens saveable (%.1f%% of project)",
		d.PatternCount, d.TotalSavings, d.SavingsPct)
}

func (d *Deep) RenderText(w io.Writer, colored bool) error {
	idx := 0
	if len(d.Blocks) > 0 {
		fmt.Fprintln(w, "Cross-file duplicates:")
		fmt.Fprintln(w)
		for _, b := range d.Blocks {
			idx++
			fmt.Fprintf(w, "  %d. %d-line block duplicated in %d files\n", idx, b.Span, len(b.Locations))
			fmt.Fprintf(w, "     %s\n", previewLine(b.Preview))
			fmt.Fprintf(w, "     Files: %s\n", locationList(b.Locations))
			fmt.Fprintf(w, "     Saves: ~%d tokens\n\n", b.Savings)
		}
	}
	if len(d.Functions) > 0 {
		fmt.Fprintln(w, "Near-duplicate functions:")
		fmt.Fprintln(w)
		for _, f := range d.Functions {
			idx++
			fmt.Fprintf(w, "  %d. %s ≈ %s (differ by ~%d tokens)\n", idx, f.FnA, f.FnB, f.Savings)
			fmt.Fprintf(w, "     File: %s:%d, :%d\n", f.File, f.LineA, f.LineB)
			fmt.Fprintf(w, "     Saves: ~%d tokens\n\n", f.Savings)
		}
	}
	separator(w, 70)
	fmt.Fprintln(w, d.summary())
	return nil
}

func (d *Deep) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "## Deep Analysis")
	fmt.Fprintln(w)
	if len(d.Blocks) > 0 {
		fmt.Fprintln(w, "### Cross-file duplicates")
		fmt.Fprintln(w)
		for i, b := range d.Blocks {
			fmt.Fprintf(w, "%d. **%d-line block** in %d files, saves ~%d tokens\n", i+1, b.Span, len(b.Locations), b.Savings)
			fmt.Fprintf(w, "   - `%s`\n", strings.Join(b.Locations, "`, `"))
		}
		fmt.Fprintln(w)
	}
	if len(d.Functions) > 0 {
		fmt.Fprintln(w, "### Near-duplicate functions")
		fmt.Fprintln(w)
		for i, f := range d.Functions {
			fmt.Fprintf(w, "%d. `%s` ≈ `%s` in `%s` (lines %d, %d), saves ~%d tokens\n",
				i+1, f.FnA, f.FnB, f.File, f.LineA, f.LineB, f.Savings)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, d.summary())
	return nil
}

func (d *Deep) RenderData() any {
	return d
}
