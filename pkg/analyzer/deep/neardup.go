package deep

import (
	"cmp"
	"slices"
	"strings"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

const (
	// MinBodyLen skips functions too small to be worth merging.
	MinBodyLen = 30
	// MinNearSavings drops pairs that would save almost nothing.
	MinNearSavings = 5
	// SimilarityThreshold is the exclusive lower bound for a near-duplicate.
	SimilarityThreshold = 0.75
)

// FnRef names a function and its 0-based header line.
type FnRef struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// NearDuplicate is a pair of functions in one file that differ in only a
// few words.
type NearDuplicate struct {
	FileIdx    int     `json:"file_idx"`
	FnA        FnRef   `json:"fn_a"`
	FnB        FnRef   `json:"fn_b"`
	Similarity float64 `json:"similarity"`
	Savings    int     `json:"savings"`
}

func (a *Analyzer) findNearDuplicates(files []project.FileStats) []NearDuplicate {
	var results []NearDuplicate

	for fileIdx, f := range files {
		fns := ExtractFunctions(f.Content)
		norms := make([]string, len(fns))
		for i, fn := range fns {
			norms[i] = normalizeLine(fn.Body)
		}

		for i := 0; i < len(fns); i++ {
			for j := i + 1; j < len(fns); j++ {
				if len(norms[i]) < MinBodyLen || len(norms[j]) < MinBodyLen {
					continue
				}
				sim := Similarity(norms[i], norms[j])
				if sim <= SimilarityThreshold || sim >= 1.0 {
					continue
				}

				savings := min(a.count(fns[i].Body), a.count(fns[j].Body)) * 60 / 100
				if savings < MinNearSavings {
					continue
				}
				results = append(results, NearDuplicate{
					FileIdx:    fileIdx,
					FnA:        FnRef{Name: fns[i].Name, Line: fns[i].Line},
					FnB:        FnRef{Name: fns[j].Name, Line: fns[j].Line},
					Similarity: sim,
					Savings:    savings,
				})
			}
		}
	}

	slices.SortStableFunc(results, func(x, y NearDuplicate) int {
		return cmp.Compare(y.Savings, x.Savings)
	})
	return results
}

// Similarity is the share of words of a that also occur in b, over the
// longer word list. Repeated words in a each count.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	wa := strings.Fields(a)
	wb := strings.Fields(b)

	matching := 0
	for _, w := range wa {
		if slices.Contains(wb, w) {
			matching++
		}
	}

	total := max(len(wa), len(wb))
	if total == 0 {
		return 0.0
	}
	return float64(matching) / float64(total)
}
