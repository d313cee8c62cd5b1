// Package deep finds token savings hidden in repeated code: blocks copied
// across files and near-identical functions within a file.
package deep

import (
	"strings"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

// Result is the outcome of a deep analysis.
type Result struct {
	Clusters       []Cluster       `json:"clusters"`
	NearDuplicates []NearDuplicate `json:"near_duplicates"`
	TotalSavings   int             `json:"total_savings"`
}

// PatternCount is the number of reported findings.
func (r *Result) PatternCount() int {
	return len(r.Clusters) + len(r.NearDuplicates)
}

// Analyzer runs the duplicate detectors.
type Analyzer struct {
	count func(string) int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithCounter replaces the token counter. Errors from c count as zero.
func WithCounter(c tokenizer.Counter) Option {
	return func(a *Analyzer) {
		a.count = func(s string) int {
			n, err := c(s)
			if err != nil {
				return 0
			}
			return n
		}
	}
}

// New creates a deep analyzer using the o200k_base tokenizer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{count: tokenizer.CountOrZero}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze never fails: token counting errors count as zero and a project
// without files yields an empty result.
func (a *Analyzer) Analyze(stats *project.ProjectStats) *Result {
	result := &Result{
		Clusters:       []Cluster{},
		NearDuplicates: []NearDuplicate{},
	}
	if stats == nil || len(stats.Files) == 0 {
		return result
	}

	normalized := make([][]string, len(stats.Files))
	for i, f := range stats.Files {
		lines := project.SplitLines(f.Content)
		norm := make([]string, len(lines))
		for j, l := range lines {
			norm[j] = normalizeLine(l)
		}
		normalized[i] = norm
	}

	result.Clusters = a.findDuplicateBlocks(normalized, stats.Files)
	result.NearDuplicates = a.findNearDuplicates(stats.Files)

	for _, c := range result.Clusters {
		result.TotalSavings += ClusterSavings(c)
	}
	for _, nd := range result.NearDuplicates {
		result.TotalSavings += nd.Savings
	}
	return result
}

// Run analyzes stats with the default tokenizer.
func Run(stats *project.ProjectStats) *Result {
	return New().Analyze(stats)
}

// normalizeLine collapses whitespace runs to single spaces and trims.
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
