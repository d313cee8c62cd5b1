package report

import (
	"fmt"
	"io"
	"math"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

// Thresholds are the ci gate limits. Zero values disable a check.
type Thresholds struct {
	MaxTokens int
	MaxTL     float64
	MinGrade  string
}

// CI is the outcome of the ci gate.
type CI struct {
	Files       int      `json:"files"`
	TotalTokens int      `json:"total_tokens"`
	TotalLines  int      `json:"total_lines"`
	Ratio       float64  `json:"ratio"`
	Grade       string   `json:"grade"`
	Pass        bool     `json:"pass"`
	Failures    []string `json:"failures"`
}

// Gate checks ps against th. Checks use the unrounded ratio.
func Gate(ps *project.ProjectStats, th Thresholds) *CI {
	ratio := ps.Ratio()
	letter := grade.Of(ratio).Letter
	failures := []string{}

	if th.MaxTokens > 0 && ps.TotalTokens > th.MaxTokens {
		failures = append(failures,
			fmt.Sprintf("token budget exceeded: %d > %d (max)", ps.TotalTokens, th.MaxTokens))
	}
	if th.MaxTL > 0 && ratio > th.MaxTL {
		failures = append(failures,
			fmt.Sprintf("T/L ratio too high: %.1f > %.1f (max)", ratio, th.MaxTL))
	}
	if th.MinGrade != "" && grade.Rank(letter) < grade.Rank(th.MinGrade) {
		failures = append(failures,
			fmt.Sprintf("grade too low: %s < %s (minimum)", letter, th.MinGrade))
	}

	return &CI{
		Files:       len(ps.Files),
		TotalTokens: ps.TotalTokens,
		TotalLines:  ps.TotalLines,
		Ratio:       ratio,
		Grade:       letter,
		Pass:        len(failures) == 0,
		Failures:    failures,
	}
}

func (c *CI) RenderText(w io.Writer, colored bool) error {
	fmt.Fprintf(w, "cargo syntax ci: %d files, %d tokens, %.1f T/L, grade %s\n",
		c.Files, c.TotalTokens, c.Ratio, gradeText(grade.Of(c.Ratio), colored))
	if c.Pass {
		fmt.Fprintln(w, "PASS")
		return nil
	}
	fmt.Fprintln(w)
	for _, f := range c.Failures {
		fmt.Fprintf(w, "  FAIL: %s\n", f)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "FAILED (%d check(s))\n", len(c.Failures))
	return nil
}

func (c *CI) RenderMarkdown(w io.Writer) error {
	status := "PASS"
	if !c.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(w, "## Token Budget: %s\n\n", status)
	fmt.Fprintln(w, "| Files | Tokens | Lines | T/L | Grade |")
	fmt.Fprintln(w, "| --- | --- | --- | --- | --- |")
	fmt.Fprintf(w, "| %d | %d | %d | %.1f | %s |\n\n", c.Files, c.TotalTokens, c.TotalLines, c.Ratio, c.Grade)
	for _, f := range c.Failures {
		fmt.Fprintf(w, "- %s\n", f)
	}
	if len(c.Failures) > 0 {
		fmt.Fprintln(w)
	}
	return nil
}

// RenderData rounds the ratio to two decimals.
func (c *CI) RenderData() any {
	out := *c
	out.Ratio = math.Round(c.Ratio*100) / 100
	return &out
}
