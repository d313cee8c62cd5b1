package deep

import (
	"cmp"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

const (
	// WindowSize is the number of non-blank lines in a fingerprint window.
	WindowSize = 3
	// MinWindowLen drops windows of braces, short imports and the like.
	MinWindowLen = 20
)

// Occurrence locates one copy of a duplicated block. Lines are 0-based and
// End is the third non-blank line of the window.
type Occurrence struct {
	FileIdx int `json:"file_idx"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// Cluster is a block found verbatim (after whitespace normalization) in at
// least two files.
type Cluster struct {
	Occurrences       []Occurrence `json:"occurrences"`
	Preview           string       `json:"preview"`
	TokensPerInstance int          `json:"tokens_per_instance"`
}

// Span is the line count of the first occurrence.
func (c Cluster) Span() int {
	if len(c.Occurrences) == 0 {
		return 0
	}
	return c.Occurrences[0].End - c.Occurrences[0].Start + 1
}

// FileCount is the number of distinct files holding the block.
func (c Cluster) FileCount() int {
	files := roaring.New()
	for _, o := range c.Occurrences {
		files.Add(uint32(o.FileIdx))
	}
	return int(files.GetCardinality())
}

// ClusterSavings estimates tokens recovered by extracting the block: 80% of
// every copy beyond the first.
func ClusterSavings(c Cluster) int {
	n := len(c.Occurrences)
	if n <= 1 {
		return 0
	}
	return c.TokensPerInstance * (n - 1) * 80 / 100
}

type fingerprint struct {
	fileIdx   int
	startLine int
}

func (a *Analyzer) findDuplicateBlocks(normalized [][]string, files []project.FileStats) []Cluster {
	buckets := make(map[uint64][]fingerprint)

	for fileIdx, lines := range normalized {
		var nonBlank []int
		for i, l := range lines {
			if l != "" {
				nonBlank = append(nonBlank, i)
			}
		}

		for w := 0; w+WindowSize <= len(nonBlank); w++ {
			var sb strings.Builder
			for k := 0; k < WindowSize; k++ {
				if k > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(lines[nonBlank[w+k]])
			}
			combined := sb.String()
			if len(combined) < MinWindowLen {
				continue
			}
			h := xxhash.Sum64String(combined)
			buckets[h] = append(buckets[h], fingerprint{fileIdx: fileIdx, startLine: nonBlank[w]})
		}
	}

	var clusters []Cluster
	for _, fps := range buckets {
		if !spansFiles(fps) {
			continue
		}

		// Guard against hash collisions
		first := windowText(normalized[fps[0].fileIdx], fps[0].startLine)
		match := true
		for _, fp := range fps[1:] {
			if windowText(normalized[fp.fileIdx], fp.startLine) != first {
				match = false
				break
			}
		}
		if !match {
			continue
		}

		preview := originalWindow(files[fps[0].fileIdx].Content, fps[0].startLine)
		occurrences := make([]Occurrence, len(fps))
		for i, fp := range fps {
			occurrences[i] = Occurrence{
				FileIdx: fp.fileIdx,
				Start:   fp.startLine,
				End:     windowEnd(normalized[fp.fileIdx], fp.startLine),
			}
		}

		clusters = append(clusters, Cluster{
			Occurrences:       occurrences,
			Preview:           preview,
			TokensPerInstance: a.count(preview),
		})
	}

	slices.SortFunc(clusters, func(x, y Cluster) int {
		if c := cmp.Compare(len(y.Occurrences), len(x.Occurrences)); c != 0 {
			return c
		}
		if c := cmp.Compare(ClusterSavings(y), ClusterSavings(x)); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Occurrences[0].FileIdx, y.Occurrences[0].FileIdx); c != 0 {
			return c
		}
		return cmp.Compare(x.Occurrences[0].Start, y.Occurrences[0].Start)
	})

	return subsume(clusters)
}

// subsume drops clusters whose every occurrence starts inside an occurrence
// of a cluster kept before it. Only starts are compared.
func subsume(sorted []Cluster) []Cluster {
	kept := make([]Cluster, 0, len(sorted))
	var spans []coverage
	for _, c := range sorted {
		dominated := false
		for _, cov := range spans {
			if cov.contains(c) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, c)
			spans = append(spans, newCoverage(c))
		}
	}
	return kept
}

// coverage is the set of lines, per file, spanned by one cluster.
type coverage map[int]*roaring.Bitmap

func newCoverage(c Cluster) coverage {
	cov := make(coverage)
	for _, o := range c.Occurrences {
		lines, ok := cov[o.FileIdx]
		if !ok {
			lines = roaring.New()
			cov[o.FileIdx] = lines
		}
		lines.AddRange(uint64(o.Start), uint64(o.End)+1)
	}
	return cov
}

func (cov coverage) contains(c Cluster) bool {
	for _, o := range c.Occurrences {
		lines, ok := cov[o.FileIdx]
		if !ok || !lines.Contains(uint32(o.Start)) {
			return false
		}
	}
	return true
}

func spansFiles(fps []fingerprint) bool {
	for _, fp := range fps[1:] {
		if fp.fileIdx != fps[0].fileIdx {
			return true
		}
	}
	return false
}

// windowText joins the first WindowSize non-blank normalized lines from start.
func windowText(lines []string, start int) string {
	window := make([]string, 0, WindowSize)
	for _, l := range lines[start:] {
		if l == "" {
			continue
		}
		window = append(window, l)
		if len(window) == WindowSize {
			break
		}
	}
	return strings.Join(window, "\n")
}

// windowEnd returns the index of the WindowSize-th non-blank line from start,
// or the last line when fewer remain.
func windowEnd(lines []string, start int) int {
	collected, end := 0, start
	for i := start; i < len(lines); i++ {
		if lines[i] != "" {
			collected++
		}
		end = i
		if collected >= WindowSize {
			break
		}
	}
	return end
}

// originalWindow returns the unnormalized source lines from start through
// the WindowSize-th non-blank line.
func originalWindow(content string, start int) string {
	lines := project.SplitLines(content)
	if start >= len(lines) {
		return ""
	}
	collected, end := 0, start
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			collected++
		}
		end = i
		if collected >= WindowSize {
			break
		}
	}
	return strings.Join(lines[start:end+1], "\n")
}
