package history

import "github.com/syntaxai/cargo-syntax/pkg/stats"

// Summary describes how token counts moved across a newest-first series.
type Summary struct {
	Commits  int     `json:"commits"`
	Delta    int     `json:"delta"`
	DeltaPct float64 `json:"delta_pct"`
	// Slope is the fitted token change per commit, oldest to newest.
	Slope    float64 `json:"slope"`
	RSquared float64 `json:"r_squared"`
	// RatioSlope is the fitted T/L change per commit.
	RatioSlope float64 `json:"ratio_slope"`
}

// Summarize compares the newest snapshot with the oldest. snaps must be
// newest first, as returned for a git log.
func Summarize(snaps []Snapshot) Summary {
	s := Summary{Commits: len(snaps)}
	if len(snaps) < 2 {
		return s
	}

	newest, oldest := snaps[0], snaps[len(snaps)-1]
	s.Delta = newest.Tokens - oldest.Tokens
	s.DeltaPct = stats.PctDelta(s.Delta, oldest.Tokens)

	tokens := make([]float64, len(snaps))
	ratios := make([]float64, len(snaps))
	for i := range snaps {
		snap := snaps[len(snaps)-1-i]
		tokens[i] = float64(snap.Tokens)
		ratios[i] = snap.Ratio()
	}
	trend := stats.LinearTrend(tokens)
	s.Slope = trend.Slope
	s.RSquared = trend.RSquared
	s.RatioSlope = stats.LinearTrend(ratios).Slope
	return s
}
