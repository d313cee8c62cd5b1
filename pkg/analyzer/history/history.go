// Package history measures token counts at past revisions of a repository.
package history

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/source"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

// Snapshot is the project roll-up at one revision.
type Snapshot struct {
	Rev     string         `json:"rev"`
	Commit  vcs.CommitInfo `json:"commit"`
	Files   int            `json:"files"`
	Lines   int            `json:"lines"`
	Tokens  int            `json:"tokens"`
	Skipped int            `json:"skipped,omitempty"`
}

// Ratio is tokens per line at this revision.
func (s Snapshot) Ratio() float64 {
	return stats.Ratio(s.Tokens, s.Lines)
}

// Grade grades the revision.
func (s Snapshot) Grade() grade.Grade {
	return grade.Of(s.Ratio())
}

// FromStats rolls up a working-tree scan for comparison with revisions.
func FromStats(name string, ps *project.ProjectStats) Snapshot {
	return Snapshot{
		Rev:    name,
		Files:  len(ps.Files),
		Lines:  ps.TotalLines,
		Tokens: ps.TotalTokens,
	}
}

type options struct {
	walker  *scanner.Walker
	count   tokenizer.Counter
	workers int
}

// Option is a functional option for snapshots.
type Option func(*options)

// WithWalker sets which tree paths count as source files.
func WithWalker(w *scanner.Walker) Option {
	return func(o *options) {
		o.walker = w
	}
}

// WithCounter replaces tokenizer.Count.
func WithCounter(c tokenizer.Counter) Option {
	return func(o *options) {
		o.count = c
	}
}

// WithWorkers bounds how many revisions are measured at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		walker:  scanner.NewWalker(nil),
		count:   tokenizer.Count,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// loaded is a revision whose source files are already in memory.
type loaded struct {
	rev   string
	paths []string
	src   source.MapSource
	// unread counts source files whose blob could not be read.
	unread int
}

// load reads every source file of rev. Git object access stays on the
// calling goroutine.
func load(repo vcs.Repository, rev string, walker *scanner.Walker) (*loaded, error) {
	tree, err := vcs.TreeAt(repo, rev)
	if err != nil {
		return nil, err
	}
	entries, err := tree.Entries()
	if err != nil {
		return nil, &vcs.RevisionError{Rev: rev, Err: err}
	}

	l := &loaded{rev: rev, src: source.MapSource{}}
	for _, e := range entries {
		if !walker.Match(e.Path) {
			continue
		}
		data, err := tree.File(e.Path)
		if err != nil {
			l.unread++
			continue
		}
		l.paths = append(l.paths, e.Path)
		l.src[e.Path] = string(data)
	}
	return l, nil
}

func measure(ctx context.Context, l *loaded, count tokenizer.Counter) (Snapshot, error) {
	skipped := l.unread
	ps, err := project.ScanFiles(ctx, l.paths,
		project.WithSource(l.src),
		project.WithCounter(count),
		project.WithWarn(func(string, error) { skipped++ }),
	)
	if err != nil {
		return Snapshot{}, &vcs.RevisionError{Rev: l.rev, Err: err}
	}
	snap := FromStats(l.rev, ps)
	snap.Skipped = skipped
	return snap, nil
}

// Take measures the source files at rev.
func Take(ctx context.Context, repo vcs.Repository, rev string, opts ...Option) (*Snapshot, error) {
	o := buildOptions(opts)
	l, err := load(repo, rev, o.walker)
	if err != nil {
		return nil, err
	}
	snap, err := measure(ctx, l, o.count)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Series measures each commit, returning snapshots in the order given.
// Trees are read one after another; token counting runs in parallel.
func Series(ctx context.Context, repo vcs.Repository, commits []vcs.CommitInfo, opts ...Option) ([]Snapshot, error) {
	o := buildOptions(opts)

	revs := make([]*loaded, len(commits))
	for i, c := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := load(repo, c.SHA, o.walker)
		if err != nil {
			return nil, err
		}
		revs[i] = l
	}

	tracker := analyzer.FromContext(ctx)
	tracker.Discover(len(revs))

	snaps := make([]Snapshot, len(revs))
	p := pool.New().WithMaxGoroutines(o.workers).WithContext(ctx).WithCancelOnError()
	for i, l := range revs {
		p.Go(func(ctx context.Context) error {
			// Progress is per revision here, not per file.
			snap, err := measure(analyzer.WithTracker(ctx, nil), l, o.count)
			if err != nil {
				return err
			}
			snap.Rev = commits[i].Short
			snap.Commit = commits[i]
			snaps[i] = snap
			tracker.Done(commits[i].Short)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}
