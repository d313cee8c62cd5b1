// Package analyzer holds what the measuring passes share: reporting how far
// a pass over files or revisions has got.
package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc is called each time an item finishes, with the number of
// items finished, the number discovered so far and the item's name.
type ProgressFunc func(done, total int, item string)

// Tracker counts items as a pass discovers and finishes them. Every method
// is a no-op on a nil *Tracker. Safe for concurrent use.
type Tracker struct {
	total   atomic.Int64
	done    atomic.Int64
	skipped atomic.Int64
	onDone  ProgressFunc
}

// NewTracker creates a tracker that reports to fn, which may be nil.
func NewTracker(fn ProgressFunc) *Tracker {
	return &Tracker{onDone: fn}
}

// Discover adds n items to the total. Passes that walk lazily discover one
// item at a time.
func (t *Tracker) Discover(n int) {
	if t == nil {
		return
	}
	t.total.Add(int64(n))
}

// Done marks item finished. The reported total never drops below the
// number done.
func (t *Tracker) Done(item string) {
	if t == nil {
		return
	}
	done := t.done.Add(1)
	total := max(t.total.Load(), done)
	if t.onDone != nil {
		t.onDone(int(done), int(total), item)
	}
}

// Skip marks item finished without a result.
func (t *Tracker) Skip(item string) {
	if t == nil {
		return
	}
	t.skipped.Add(1)
	t.Done(item)
}

// Completed returns the number of items finished, skipped ones included.
func (t *Tracker) Completed() int {
	if t == nil {
		return 0
	}
	return int(t.done.Load())
}

// Total returns the number of items discovered.
func (t *Tracker) Total() int {
	if t == nil {
		return 0
	}
	return int(t.total.Load())
}

// Skipped returns the number of items finished without a result.
func (t *Tracker) Skipped() int {
	if t == nil {
		return 0
	}
	return int(t.skipped.Load())
}

type trackerKey struct{}

// WithTracker returns a context carrying t. A nil t hides any tracker set
// further up.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext returns the tracker carried by ctx, or nil.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
