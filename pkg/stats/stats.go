// Package stats provides the arithmetic helpers shared by reports: token
// ratios, percentages and distribution summaries.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Ratio returns tokens per line. It is 0 when lines is 0.
func Ratio(tokens, lines int) float64 {
	if lines == 0 {
		return 0
	}
	return float64(tokens) / float64(lines)
}

// Pct returns part as a percentage of total. It is 0 when total is 0.
func Pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// PctDelta returns a signed change as a percentage of base.
func PctDelta(delta, base int) float64 {
	if base == 0 {
		return 0
	}
	return float64(delta) / float64(base) * 100
}

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Distribution summarises a set of per-file ratios.
type Distribution struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Describe computes a Distribution. The input is not modified.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   sorted[0],
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// Trend holds least-squares regression statistics for an ordered series.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// LinearTrend fits ys against their index (0, 1, 2, ...).
// Returns zero values if fewer than 2 points are provided.
func LinearTrend(ys []float64) Trend {
	n := len(ys)
	if n < 2 {
		return Trend{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Trend{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(xs, ys, nil, intercept, slope),
	}
}
