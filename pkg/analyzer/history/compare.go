package history

import "github.com/syntaxai/cargo-syntax/pkg/stats"

// RatioTolerance is the T/L difference below which two trees count as equal.
const RatioTolerance = 0.1

// Verdict says which side of a comparison is leaner.
type Verdict string

const (
	CurrentBetter Verdict = "better"
	CurrentWorse  Verdict = "worse"
	Similar       Verdict = "similar"
)

// Comparison holds the differences current minus target.
type Comparison struct {
	Current    Snapshot `json:"current"`
	Target     Snapshot `json:"target"`
	FileDelta  int      `json:"file_delta"`
	LineDelta  int      `json:"line_delta"`
	TokenDelta int      `json:"token_delta"`
	TokenPct   float64  `json:"token_pct"`
	RatioDelta float64  `json:"ratio_delta"`
	Verdict    Verdict  `json:"verdict"`
}

// Compare diffs two snapshots.
func Compare(current, target Snapshot) Comparison {
	c := Comparison{
		Current:    current,
		Target:     target,
		FileDelta:  current.Files - target.Files,
		LineDelta:  current.Lines - target.Lines,
		TokenDelta: current.Tokens - target.Tokens,
		RatioDelta: current.Ratio() - target.Ratio(),
	}
	c.TokenPct = stats.PctDelta(c.TokenDelta, target.Tokens)

	switch {
	case c.RatioDelta < -RatioTolerance:
		c.Verdict = CurrentBetter
	case c.RatioDelta > RatioTolerance:
		c.Verdict = CurrentWorse
	default:
		c.Verdict = Similar
	}
	return c
}
