package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/history"
)

const messageWidth = 30

// History is the token trend over recent commits.
type History struct {
	// Snapshots are newest first.
	Snapshots []history.Snapshot `json:"snapshots"`
	Summary   history.Summary    `json:"summary"`
}

// NewHistory summarises newest-first snapshots.
func NewHistory(snaps []history.Snapshot) *History {
	if snaps == nil {
		snaps = []history.Snapshot{}
	}
	return &History{Snapshots: snaps, Summary: history.Summarize(snaps)}
}

var historyHeaders = []string{"Commit", "Files", "Tokens", "Lines", "T/L", "Message"}

// rows lists the oldest commit first.
func (h *History) rows() [][]string {
	rows := make([][]string, 0, len(h.Snapshots))
	for _, s := range slices.Backward(h.Snapshots) {
		rows = append(rows, []string{
			s.Rev,
			strconv.Itoa(s.Files),
			strconv.Itoa(s.Tokens),
			strconv.Itoa(s.Lines),
			ratioText(s.Ratio()),
			truncate(s.Commit.Summary, messageWidth),
		})
	}
	return rows
}

func (h *History) trend() string {
	s := h.Summary
	return fmt.Sprintf("Trend: %+d tokens (%+.1f%%) over %d commits", s.Delta, s.DeltaPct, s.Commits)
}

func (h *History) fit() string {
	s := h.Summary
	return fmt.Sprintf("Fit: %+.1f tokens/commit, %+.2f T/L per commit (R² %.2f)", s.Slope, s.RatioSlope, s.RSquared)
}

func (h *History) RenderText(w io.Writer, colored bool) error {
	if err := textTable(w, colored, historyHeaders, h.rows(), nil); err != nil {
		return err
	}
	if h.Summary.Commits >= 2 {
		fmt.Fprintln(w, h.trend())
		fmt.Fprintln(w, h.fit())
	}
	return nil
}

func (h *History) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## Token History (%d commits)\n\n", len(h.Snapshots))
	if err := markdownTable(w, historyHeaders, h.rows(), nil); err != nil {
		return err
	}
	if h.Summary.Commits >= 2 {
		fmt.Fprintf(w, "%s\n\n%s\n", h.trend(), h.fit())
	}
	return nil
}

func (h *History) RenderData() any {
	return h
}

// Compare is a side-by-side view of two trees.
type Compare struct {
	history.Comparison
	CurrentGrade string `json:"current_grade"`
	TargetGrade  string `json:"target_grade"`
}

// NewCompare diffs the current tree against target.
func NewCompare(current, target history.Snapshot) *Compare {
	return &Compare{
		Comparison:   history.Compare(current, target),
		CurrentGrade: current.Grade().Letter,
		TargetGrade:  target.Grade().Letter,
	}
}

func (c *Compare) verdict() string {
	switch c.Verdict {
	case history.CurrentBetter:
		return "Current branch is more token-efficient (lower T/L ratio)"
	case history.CurrentWorse:
		return "Current branch is less token-efficient (higher T/L ratio)"
	default:
		return fmt.Sprintf("Both branches have similar token efficiency (T/L ratio within %.1f)", history.RatioTolerance)
	}
}

func (c *Compare) rows() [][]string {
	cur, tgt := c.Current, c.Target
	return [][]string{
		{"Files", strconv.Itoa(cur.Files), strconv.Itoa(tgt.Files), fmt.Sprintf("%+d", c.FileDelta)},
		{"Lines", strconv.Itoa(cur.Lines), strconv.Itoa(tgt.Lines), fmt.Sprintf("%+d", c.LineDelta)},
		{"Tokens", strconv.Itoa(cur.Tokens), strconv.Itoa(tgt.Tokens), fmt.Sprintf("%+d", c.TokenDelta)},
		{"T/L ratio", ratioText(cur.Ratio()), ratioText(tgt.Ratio()), fmt.Sprintf("%+.1f", c.RatioDelta)},
		{"Grade", c.CurrentGrade, c.TargetGrade, ""},
	}
}

func (c *Compare) headers() []string {
	return []string{"", c.Current.Rev, c.Target.Rev, "Delta"}
}

func (c *Compare) tokenDelta() string {
	return fmt.Sprintf("Token delta: %+d (%+.1f%%)", c.TokenDelta, c.TokenPct)
}

func (c *Compare) RenderText(w io.Writer, colored bool) error {
	fmt.Fprintf(w, "Comparing token efficiency: %s vs %s\n\n", c.Current.Rev, c.Target.Rev)
	if err := textTable(w, colored, c.headers(), c.rows(), nil); err != nil {
		return err
	}
	fmt.Fprintln(w, c.verdict())
	if c.TokenDelta != 0 {
		fmt.Fprintln(w, c.tokenDelta())
	}
	return nil
}

func (c *Compare) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "## %s vs %s\n\n", c.Current.Rev, c.Target.Rev)
	if err := markdownTable(w, c.headers(), c.rows(), nil); err != nil {
		return err
	}
	fmt.Fprintln(w, c.verdict())
	if c.TokenDelta != 0 {
		fmt.Fprintf(w, "\n%s\n", c.tokenDelta())
	}
	return nil
}

func (c *Compare) RenderData() any {
	return c
}
