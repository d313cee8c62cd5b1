// Package report builds the views printed by the CLI and returned by the MCP
// tools. Every view is an output.Renderable, so text, markdown, JSON and TOON
// all come from the same value.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/syntaxai/cargo-syntax/internal/output"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
)

func textTable(w io.Writer, colored bool, headers []string, rows [][]string, footer []string) error {
	return output.NewTable("", headers, rows, footer, nil).RenderText(w, colored)
}

func markdownTable(w io.Writer, headers []string, rows [][]string, footer []string) error {
	return output.NewTable("", headers, rows, footer, nil).RenderMarkdown(w)
}

func separator(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("-", width))
}

func ratioText(r float64) string {
	return fmt.Sprintf("%.1f", r)
}

func gradeText(g grade.Grade, colored bool) string {
	if colored {
		return output.GradeColor(g, g.Letter)
	}
	return g.Letter
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
