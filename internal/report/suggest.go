package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/syntaxai/cargo-syntax/internal/lint"
)

// Suggest renders grouped clippy hints.
type Suggest struct {
	lint.Suggestions
}

// NewSuggest wraps grouped hints.
func NewSuggest(s lint.Suggestions) *Suggest {
	if s.Files == nil {
		s.Files = []lint.FileHints{}
	}
	return &Suggest{Suggestions: s}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func fileHeader(f lint.FileHints) string {
	label := plural(len(f.Hints), "suggestion", "suggestions")
	if f.HasRatio {
		return fmt.Sprintf("%s  (%d %s, T/L: %.1f)", f.File, len(f.Hints), label, f.Ratio)
	}
	return fmt.Sprintf("%s  (%d %s)", f.File, len(f.Hints), label)
}

func (s *Suggest) RenderText(w io.Writer, colored bool) error {
	if s.Total == 0 {
		fmt.Fprintln(w, "No suggestions - code already follows token-efficient patterns.")
		return nil
	}
	for _, f := range s.Files {
		fmt.Fprintln(w, fileHeader(f))
		for _, h := range f.Hints {
			fmt.Fprintf(w, "  line %4d  %-38s  %s\n", h.Line, h.Lint, h.Message)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, strings.Repeat("─", 70))
	fmt.Fprintf(w, "%d suggestion(s) across %d file(s)\n", s.Total, len(s.Files))
	fmt.Fprintln(w, "Run `cargo syntax fix` to auto-apply all fixable suggestions.")
	return nil
}

func (s *Suggest) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "## Token-efficiency suggestions")
	fmt.Fprintln(w)
	for _, f := range s.Files {
		fmt.Fprintf(w, "### %s\n\n", fileHeader(f))
		for _, h := range f.Hints {
			fmt.Fprintf(w, "- line %d `%s`: %s\n", h.Line, h.Lint, h.Message)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d suggestion(s) across %d file(s)\n", s.Total, len(s.Files))
	return nil
}

func (s *Suggest) RenderData() any {
	return s.Suggestions
}
