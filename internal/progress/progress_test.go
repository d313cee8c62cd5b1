package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerTick(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Scanning", 3, WithWriter(&buf), Hidden())

	tr.Tick()
	tr.Tick()
	assert.Equal(t, 2, tr.Current())
	tr.FinishSuccess()
}

func TestAnalyzerBridgeGrowsTotal(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Scanning", 0, WithWriter(&buf), Hidden())
	at := tr.Analyzer()

	at.Discover(2)
	at.Done("src/a.rs")
	at.Discover(3)
	at.Skip("src/b.rs")
	at.Done("src/c.rs")

	assert.Equal(t, 3, tr.Current())
	assert.Equal(t, 5, tr.bar.GetMax())
}

func TestFinishMessages(t *testing.T) {
	var buf bytes.Buffer
	NewSpinner("Measuring history", WithWriter(&buf), Hidden()).FinishSkipped("not a git repository")
	assert.Contains(t, buf.String(), "Measuring history skipped (not a git repository)")

	buf.Reset()
	NewTracker("Scanning", 1, WithWriter(&buf), Hidden()).FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Scanning error: boom")
}
