package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		current Snapshot
		target  Snapshot
		want    Verdict
	}{
		{"leaner", Snapshot{Lines: 100, Tokens: 500}, Snapshot{Lines: 100, Tokens: 700}, CurrentBetter},
		{"heavier", Snapshot{Lines: 100, Tokens: 700}, Snapshot{Lines: 100, Tokens: 500}, CurrentWorse},
		{"within tolerance", Snapshot{Lines: 100, Tokens: 505}, Snapshot{Lines: 100, Tokens: 500}, Similar},
		{"identical", Snapshot{Lines: 10, Tokens: 50}, Snapshot{Lines: 10, Tokens: 50}, Similar},
		{"empty target", Snapshot{Lines: 10, Tokens: 50}, Snapshot{}, CurrentWorse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.current, tt.target).Verdict)
		})
	}
}

func TestCompareDeltas(t *testing.T) {
	c := Compare(
		Snapshot{Files: 3, Lines: 120, Tokens: 600},
		Snapshot{Files: 2, Lines: 100, Tokens: 400},
	)
	assert.Equal(t, 1, c.FileDelta)
	assert.Equal(t, 20, c.LineDelta)
	assert.Equal(t, 200, c.TokenDelta)
	assert.InDelta(t, 50.0, c.TokenPct, 1e-9)
	assert.InDelta(t, 1.0, c.RatioDelta, 1e-9)
	assert.Equal(t, CurrentWorse, c.Verdict)
}
