// Package project measures the token cost of every source file in a tree.
package project

import (
	"cmp"
	"slices"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// FileStats holds the measurements of one source file.
type FileStats struct {
	Path         string  `json:"path"`
	Content      string  `json:"-"`
	Lines        int     `json:"lines"`
	Tokens       int     `json:"tokens"`
	Ratio        float64 `json:"ratio"`
	CodeLines    int     `json:"code_lines"`
	CommentLines int     `json:"comment_lines"`
	BlankLines   int     `json:"blank_lines"`
}

// NewFileStats measures content with a known token count.
func NewFileStats(path, content string, tokens int) FileStats {
	lines := CountLines(content)
	counts := ClassifyLines(content)
	return FileStats{
		Path:         path,
		Content:      content,
		Lines:        lines,
		Tokens:       tokens,
		Ratio:        stats.Ratio(tokens, lines),
		CodeLines:    counts.Code,
		CommentLines: counts.Comment,
		BlankLines:   counts.Blank,
	}
}

// ProjectStats aggregates FileStats. Files keep walk order.
type ProjectStats struct {
	Files        []FileStats `json:"files"`
	TotalLines   int         `json:"total_lines"`
	TotalTokens  int         `json:"total_tokens"`
	CodeLines    int         `json:"code_lines"`
	CommentLines int         `json:"comment_lines"`
	BlankLines   int         `json:"blank_lines"`
}

// Add appends f and updates the totals.
func (p *ProjectStats) Add(f FileStats) {
	p.Files = append(p.Files, f)
	p.TotalLines += f.Lines
	p.TotalTokens += f.Tokens
	p.CodeLines += f.CodeLines
	p.CommentLines += f.CommentLines
	p.BlankLines += f.BlankLines
}

// Ratio is the project-wide tokens per line.
func (p *ProjectStats) Ratio() float64 {
	return stats.Ratio(p.TotalTokens, p.TotalLines)
}

// Grade grades the project-wide ratio.
func (p *ProjectStats) Grade() grade.Grade {
	return grade.Of(p.Ratio())
}

// ByTokens returns a copy of the files, heaviest first. Ties keep walk order.
func (p *ProjectStats) ByTokens() []FileStats {
	files := slices.Clone(p.Files)
	slices.SortStableFunc(files, func(a, b FileStats) int {
		return cmp.Compare(b.Tokens, a.Tokens)
	})
	return files
}

// Top returns the n heaviest files.
func (p *ProjectStats) Top(n int) []FileStats {
	files := p.ByTokens()
	if n < len(files) {
		files = files[:max(n, 0)]
	}
	return files
}

// Ratios returns every file's ratio in walk order.
func (p *ProjectStats) Ratios() []float64 {
	out := make([]float64, len(p.Files))
	for i, f := range p.Files {
		out[i] = f.Ratio
	}
	return out
}
