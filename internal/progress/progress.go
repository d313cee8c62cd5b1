// Package progress draws progress bars on stderr.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// Option configures a Tracker.
type Option func(*settings)

type settings struct {
	out     io.Writer
	visible bool
}

// WithWriter sends the bar and finish messages to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// Hidden disables drawing; finish messages are still written.
func Hidden() Option {
	return func(s *settings) {
		s.visible = false
	}
}

func apply(opts []Option) settings {
	s := settings{out: os.Stderr, visible: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(label string, opts ...Option) *Tracker {
	s := apply(opts)
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetVisibility(s.visible),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: s.out}
}

// NewTracker creates a progress bar with the given label and total count.
// The total may grow later through Analyzer.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	s := apply(opts)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetVisibility(s.visible),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: s.out}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.bar.Add(1)
}

// Analyzer returns an analyzer.Tracker that drives this bar. Totals
// discovered while walking resize the bar.
func (t *Tracker) Analyzer() *analyzer.Tracker {
	return analyzer.NewTracker(func(done, total int, _ string) {
		if total > t.bar.GetMax() {
			t.bar.ChangeMax(total)
		}
		_ = t.bar.Set(done)
	})
}

// Current returns the number of ticks so far.
func (t *Tracker) Current() int {
	return int(t.bar.State().CurrentNum)
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, reason)
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
