package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// DefaultTop is how many files top and review show.
const DefaultTop = 10

// RankedFile is one row of a Top report.
type RankedFile struct {
	Rank   int     `json:"rank"`
	Path   string  `json:"path"`
	Lines  int     `json:"lines"`
	Tokens int     `json:"tokens"`
	Ratio  float64 `json:"ratio"`
	// Share is the file's percentage of all project tokens.
	Share  float64 `json:"share"`
}

// Top lists the heaviest files of a project.
type Top struct {
	Files       []RankedFile `json:"files"`
	TopTokens   int          `json:"top_tokens"`
	TopPct      float64      `json:"top_pct"`
	TotalTokens int          `json:"total_tokens"`
}

// NewTop ranks the n heaviest files of ps. Ties keep walk order.
func NewTop(ps *project.ProjectStats, n int) *Top {
	heaviest := ps.Top(n)
	t := &Top{
		Files:       make([]RankedFile, len(heaviest)),
		TotalTokens: ps.TotalTokens,
	}
	for i, f := range heaviest {
		t.Files[i] = RankedFile{
			Rank:   i + 1,
			Path:   f.Path,
			Lines:  f.Lines,
			Tokens: f.Tokens,
			Ratio:  f.Ratio,
			Share:  stats.Pct(f.Tokens, ps.TotalTokens),
		}
		t.TopTokens += f.Tokens
	}
	t.TopPct = stats.Pct(t.TopTokens, ps.TotalTokens)
	return t
}

var topHeaders = []string{"#", "File", "Lines", "Tokens", "T/L", "% Tot"}

func (t *Top) rows() [][]string {
	rows := make([][]string, len(t.Files))
	for i, f := range t.Files {
		rows[i] = []string{
			strconv.Itoa(f.Rank),
			f.Path,
			strconv.Itoa(f.Lines),
			strconv.Itoa(f.Tokens),
			ratioText(f.Ratio),
			fmt.Sprintf("%.1f%%", f.Share),
		}
	}
	return rows
}

func (t *Top) summary() string {
	return fmt.Sprintf("Top %d = %d tokens (%.1f%% of %d total)",
		len(t.Files), t.TopTokens, t.TopPct, t.TotalTokens)
}

func (t *Top) RenderText(w io.Writer, colored bool) error {
	fmt.Fprintf(w, "Top %d most token-heavy files:\n\n", len(t.Files))
	if err := textTable(w, colored, topHeaders, t.rows(), nil); err != nil {
		return err
	}
	fmt.Fprintln(w, t.summary())
	return nil
}

func (t *Top) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Top %d most token-heavy files\n\n", len(t.Files))
	if err := markdownTable(w, topHeaders, t.rows(), nil); err != nil {
		return err
	}
	fmt.Fprintln(w, t.summary())
	return nil
}

func (t *Top) RenderData() any {
	return t
}
