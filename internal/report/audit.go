package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/syntaxai/cargo-syntax/internal/output"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// Audit is the per-file token report for a project.
type Audit struct {
	Files        []project.FileStats    `json:"files"`
	TotalLines   int                    `json:"total_lines"`
	TotalTokens  int                    `json:"total_tokens"`
	CodeLines    int                    `json:"code_lines"`
	CommentLines int                    `json:"comment_lines"`
	BlankLines   int                    `json:"blank_lines"`
	Ratio        float64                `json:"ratio"`
	Grade        grade.Grade            `json:"grade"`
	Verdict      string                 `json:"verdict"`
	Distribution stats.Distribution     `json:"distribution"`
	Context      output.TokenBudgetInfo `json:"context"`
}

// NewAudit summarises ps. Files keep walk order.
func NewAudit(ps *project.ProjectStats) *Audit {
	g := ps.Grade()
	files := ps.Files
	if files == nil {
		files = []project.FileStats{}
	}
	window := output.SmallestFit(ps.TotalTokens)
	if window == 0 {
		window = output.Budget200K
	}
	return &Audit{
		Files:        files,
		TotalLines:   ps.TotalLines,
		TotalTokens:  ps.TotalTokens,
		CodeLines:    ps.CodeLines,
		CommentLines: ps.CommentLines,
		BlankLines:   ps.BlankLines,
		Ratio:        ps.Ratio(),
		Grade:        g,
		Verdict:      grade.Describe(g.Letter),
		Distribution: stats.Describe(ps.Ratios()),
		Context:      output.BudgetInfo(ps.TotalTokens, window),
	}
}

var auditHeaders = []string{"File", "Lines", "Tokens", "T/L"}

func (a *Audit) rows() [][]string {
	rows := make([][]string, len(a.Files))
	for i, f := range a.Files {
		rows[i] = []string{f.Path, strconv.Itoa(f.Lines), strconv.Itoa(f.Tokens), ratioText(f.Ratio)}
	}
	return rows
}

func (a *Audit) footer() []string {
	return []string{"Total", strconv.Itoa(a.TotalLines), strconv.Itoa(a.TotalTokens), ratioText(a.Ratio)}
}

func (a *Audit) breakdown() string {
	return fmt.Sprintf("Code: %d | Comments: %d | Blanks: %d", a.CodeLines, a.CommentLines, a.BlankLines)
}

func (a *Audit) spread() string {
	d := a.Distribution
	return fmt.Sprintf("Per-file T/L: mean %.1f, stddev %.1f, median %.1f, p90 %.1f, max %.1f",
		d.Mean, d.StdDev, d.P50, d.P90, d.Max)
}

func (a *Audit) contextLine() string {
	c := a.Context
	if c.Tokens > c.Budget {
		return fmt.Sprintf("Context: %s tokens exceed a %s window", output.FormatTokenCount(c.Tokens), c.BudgetLabel)
	}
	return fmt.Sprintf("Context: %s tokens, %.1f%% of a %s window",
		output.FormatTokenCount(c.Tokens), c.UsagePercent, c.BudgetLabel)
}

func (a *Audit) RenderText(w io.Writer, colored bool) error {
	if err := textTable(w, colored, auditHeaders, a.rows(), a.footer()); err != nil {
		return err
	}
	fmt.Fprintln(w, a.breakdown())
	if a.Distribution.Count > 1 {
		fmt.Fprintln(w, a.spread())
	}
	fmt.Fprintln(w, a.contextLine())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Token efficiency: %s (%.1f tokens/line)\n", gradeText(a.Grade, colored), a.Ratio)
	fmt.Fprintln(w, a.Verdict)
	return nil
}

func (a *Audit) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "## Token Audit")
	fmt.Fprintln(w)
	if err := markdownTable(w, auditHeaders, a.rows(), a.footer()); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n\n", a.breakdown())
	if a.Distribution.Count > 1 {
		fmt.Fprintf(w, "%s\n\n", a.spread())
	}
	fmt.Fprintf(w, "%s\n\n", a.contextLine())
	fmt.Fprintf(w, "**Token efficiency: %s** (%.1f tokens/line)\n\n%s\n", a.Grade.Letter, a.Ratio, a.Verdict)
	return nil
}

func (a *Audit) RenderData() any {
	return a
}
