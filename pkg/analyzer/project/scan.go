package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer"
	"github.com/syntaxai/cargo-syntax/pkg/source"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

// ErrInvalidUTF8 marks files that are not text.
var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// WarnFunc receives per-file failures that do not stop a scan.
type WarnFunc func(path string, err error)

// Scanner reads and measures source files.
type Scanner struct {
	src     source.ContentSource
	walker  *scanner.Walker
	count   tokenizer.Counter
	warn    WarnFunc
	tracker *analyzer.Tracker
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithSource sets where file content is read from.
func WithSource(src source.ContentSource) Option {
	return func(s *Scanner) {
		s.src = src
	}
}

// WithWalker sets the walker used to enumerate files.
func WithWalker(w *scanner.Walker) Option {
	return func(s *Scanner) {
		s.walker = w
	}
}

// WithCounter replaces tokenizer.Count, e.g. with a caching counter.
func WithCounter(c tokenizer.Counter) Option {
	return func(s *Scanner) {
		s.count = c
	}
}

// WithWarn sets the callback for unreadable files.
func WithWarn(fn WarnFunc) Option {
	return func(s *Scanner) {
		s.warn = fn
	}
}

// WithProgress reports every file read, measured or skipped, to t. Without
// it the tracker carried by the context, if any, is used.
func WithProgress(t *analyzer.Tracker) Option {
	return func(s *Scanner) {
		s.tracker = t
	}
}

// StderrWarn prints a warning line to stderr.
func StderrWarn(path string, err error) {
	fmt.Fprintf(os.Stderr, "Warning: failed to read %s: %v\n", path, err)
}

// New creates a scanner reading from the filesystem with the default walker.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		src:    source.NewFilesystem(),
		walker: scanner.NewWalker(nil),
		count:  tokenizer.Count,
		warn:   StderrWarn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and measures every source file. Paths in the result are
// relative to root and slash-separated. Unreadable files are reported to
// the warn callback and skipped; a tokenizer failure aborts the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*ProjectStats, error) {
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}
	tracker := s.trackerFor(ctx)
	result := &ProjectStats{}

	for path := range s.walker.Walk(root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		tracker.Discover(1)
		if err := s.measure(tracker, result, path, rel); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ScanFiles measures an explicit list of paths, read as given from the
// source, in order. It is used for trees that cannot be walked on disk.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) (*ProjectStats, error) {
	tracker := s.trackerFor(ctx)
	tracker.Discover(len(paths))
	result := &ProjectStats{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.measure(tracker, result, path, filepath.ToSlash(path)); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *Scanner) trackerFor(ctx context.Context) *analyzer.Tracker {
	if s.tracker != nil {
		return s.tracker
	}
	return analyzer.FromContext(ctx)
}

// measure reads one file into result and marks it on tracker. Only token
// counting errors are returned; read errors go to the warn callback.
func (s *Scanner) measure(tracker *analyzer.Tracker, result *ProjectStats, path, display string) error {
	data, err := s.src.Read(path)
	if err == nil && !utf8.Valid(data) {
		err = ErrInvalidUTF8
	}
	if err != nil {
		if s.warn != nil {
			s.warn(display, err)
		}
		tracker.Skip(display)
		return nil
	}

	content := string(data)
	tokens, err := s.count(content)
	if err != nil {
		return fmt.Errorf("counting tokens in %s: %w", display, err)
	}
	result.Add(NewFileStats(display, content, tokens))
	tracker.Done(display)
	return nil
}

// Scan measures every source file below root.
func Scan(ctx context.Context, root string, opts ...Option) (*ProjectStats, error) {
	return New(opts...).Scan(ctx, root)
}

// ScanFiles measures the given paths.
func ScanFiles(ctx context.Context, paths []string, opts ...Option) (*ProjectStats, error) {
	return New(opts...).ScanFiles(ctx, paths)
}
