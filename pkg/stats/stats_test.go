package stats

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		tokens, lines int
		want          float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{0, 10, 0},
		{50, 10, 5},
		{7, 2, 3.5},
	}

	for _, tt := range tests {
		if got := Ratio(tt.tokens, tt.lines); got != tt.want {
			t.Errorf("Ratio(%d, %d) = %v, want %v", tt.tokens, tt.lines, got, tt.want)
		}
	}
}

func TestPct(t *testing.T) {
	if got := Pct(5, 0); got != 0 {
		t.Errorf("Pct(5, 0) = %v, want 0", got)
	}
	if got := Pct(25, 100); got != 25 {
		t.Errorf("Pct(25, 100) = %v, want 25", got)
	}
	if got := Pct(1, 3); math.Abs(got-33.333) > 0.01 {
		t.Errorf("Pct(1, 3) = %v, want ~33.33", got)
	}
}

func TestPctDelta(t *testing.T) {
	if got := PctDelta(-10, 100); got != -10 {
		t.Errorf("PctDelta(-10, 100) = %v, want -10", got)
	}
	if got := PctDelta(10, 0); got != 0 {
		t.Errorf("PctDelta(10, 0) = %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := Percentile(sorted, 50); got != 6 {
		t.Errorf("Percentile(50) = %v, want 6", got)
	}
	if got := Percentile(sorted, 100); got != 10 {
		t.Errorf("Percentile(100) = %v, want 10", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
}

func TestDescribe(t *testing.T) {
	if d := Describe(nil); d.Count != 0 || d.Mean != 0 {
		t.Errorf("Describe(nil) = %+v, want zero", d)
	}

	values := []float64{9, 3, 6}
	d := Describe(values)
	if d.Count != 3 {
		t.Errorf("Count = %d, want 3", d.Count)
	}
	if d.Mean != 6 {
		t.Errorf("Mean = %v, want 6", d.Mean)
	}
	if d.Min != 3 || d.Max != 9 {
		t.Errorf("Min/Max = %v/%v, want 3/9", d.Min, d.Max)
	}
	if d.P50 != 6 {
		t.Errorf("P50 = %v, want 6", d.P50)
	}
	if d.StdDev != 3 {
		t.Errorf("StdDev = %v, want 3", d.StdDev)
	}
	if values[0] != 9 {
		t.Error("Describe must not reorder its input")
	}

	single := Describe([]float64{4.5})
	if single.StdDev != 0 || single.P90 != 4.5 {
		t.Errorf("Describe(single) = %+v", single)
	}
}

func TestLinearTrend(t *testing.T) {
	if tr := LinearTrend([]float64{1}); tr.Slope != 0 {
		t.Errorf("LinearTrend(single).Slope = %v, want 0", tr.Slope)
	}

	tr := LinearTrend([]float64{10, 20, 30, 40})
	if math.Abs(tr.Slope-10) > 1e-9 {
		t.Errorf("Slope = %v, want 10", tr.Slope)
	}
	if math.Abs(tr.Intercept-10) > 1e-9 {
		t.Errorf("Intercept = %v, want 10", tr.Intercept)
	}
	if math.Abs(tr.RSquared-1) > 1e-9 {
		t.Errorf("RSquared = %v, want 1", tr.RSquared)
	}
}
