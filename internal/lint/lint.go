package lint

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrCheckFailed is returned when clippy or rustfmt reports problems.
var ErrCheckFailed = errors.New("check failed - run `cargo syntax fix` to auto-fix")

// ErrClippyFailed is returned when clippy produced no diagnostics at all,
// usually because the crate does not compile.
var ErrClippyFailed = errors.New("clippy failed to run - make sure the project compiles first (`cargo build`)")

// Linter runs cargo in a crate directory.
type Linter struct {
	dir    string
	runner Runner
	out    io.Writer
}

// Option is a functional option for Linter.
type Option func(*Linter)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(l *Linter) {
		l.runner = r
	}
}

// WithOutput sets where progress lines and tool output go.
func WithOutput(w io.Writer) Option {
	return func(l *Linter) {
		l.out = w
	}
}

// New creates a linter for the crate in dir.
func New(dir string, opts ...Option) *Linter {
	l := &Linter{dir: dir, runner: ExecRunner{}, out: io.Discard}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check runs strict clippy and a rustfmt check. Both always run.
func (l *Linter) Check(ctx context.Context) error {
	fmt.Fprintln(l.out, "Running clippy...")
	clippyErr := l.runner.Stream(ctx, l.dir, l.out, "cargo", "clippy", "--all-targets", "--", "-D", "warnings")
	if clippyErr != nil && !exitedNonZero(clippyErr) {
		return fmt.Errorf("running cargo clippy: %w", clippyErr)
	}

	fmt.Fprintln(l.out, "Running fmt check...")
	fmtErr := l.runner.Stream(ctx, l.dir, l.out, "cargo", "fmt", "--check")
	if fmtErr != nil && !exitedNonZero(fmtErr) {
		return fmt.Errorf("running cargo fmt: %w", fmtErr)
	}

	if clippyErr != nil || fmtErr != nil {
		return ErrCheckFailed
	}
	fmt.Fprintln(l.out, "All checks passed.")
	return nil
}

// Fix applies clippy's machine-applicable fixes and formats the crate.
// Exit statuses are not treated as failures.
func (l *Linter) Fix(ctx context.Context) error {
	fmt.Fprintln(l.out, "Running clippy --fix...")
	err := l.runner.Stream(ctx, l.dir, l.out, "cargo", "clippy", "--fix", "--allow-dirty", "--allow-no-vcs")
	if err != nil && !exitedNonZero(err) {
		return fmt.Errorf("running cargo clippy --fix: %w", err)
	}

	fmt.Fprintln(l.out, "Running fmt...")
	err = l.runner.Stream(ctx, l.dir, l.out, "cargo", "fmt")
	if err != nil && !exitedNonZero(err) {
		return fmt.Errorf("running cargo fmt: %w", err)
	}

	fmt.Fprintln(l.out, "Done.")
	return nil
}

// ValidationError is returned by Validate when cargo check or cargo test
// fails. Detail is the first line the tool printed.
type ValidationError struct {
	Step   string
	Detail string
}

func (e *ValidationError) Error() string {
	return "cargo " + e.Step + ": " + e.Detail
}

// Validate runs cargo check and then cargo test, both quiet. Tests are
// skipped when the crate does not build.
func (l *Linter) Validate(ctx context.Context) error {
	for _, step := range []string{"check", "test"} {
		var buf bytes.Buffer
		err := l.runner.Stream(ctx, l.dir, &buf, "cargo", step, "--quiet")
		if err == nil {
			continue
		}
		if !exitedNonZero(err) {
			return fmt.Errorf("running cargo %s: %w", step, err)
		}
		detail, _, _ := strings.Cut(strings.TrimSpace(buf.String()), "\n")
		if detail == "" {
			detail = "failed"
		}
		return &ValidationError{Step: step, Detail: detail}
	}
	return nil
}

// maxCompileLines caps the diagnostics a CompileError keeps.
const maxCompileLines = 10

// CompileError is returned by CompileTests when the test targets do not
// build. Lines holds the first diagnostics mentioning an error or the file.
type CompileError struct {
	File  string
	Lines []string
}

func (e *CompileError) Error() string {
	return "tests in " + e.File + " do not compile"
}

// CompileTests builds the test targets without running them. file is the
// test file just written; output lines naming it are kept as diagnostics.
func (l *Linter) CompileTests(ctx context.Context, file string) error {
	var buf bytes.Buffer
	err := l.runner.Stream(ctx, l.dir, &buf, "cargo", "test", "--no-run", "--quiet")
	if err == nil {
		return nil
	}
	if !exitedNonZero(err) {
		return fmt.Errorf("running cargo test: %w", err)
	}
	cerr := &CompileError{File: file}
	for line := range strings.Lines(buf.String()) {
		line = strings.TrimRight(line, "\r\n")
		if strings.Contains(line, "error") || strings.Contains(line, file) {
			cerr.Lines = append(cerr.Lines, line)
			if len(cerr.Lines) == maxCompileLines {
				break
			}
		}
	}
	return cerr
}

// FileHints groups the hints for one file.
type FileHints struct {
	File  string  `json:"file"`
	Ratio float64 `json:"ratio,omitempty"`
	// HasRatio is false when the file was not part of the scan.
	HasRatio bool   `json:"-"`
	Hints    []Hint `json:"hints"`
}

// Suggestions is the grouped result of Suggest.
type Suggestions struct {
	Files []FileHints `json:"files"`
	Total int         `json:"total"`
}

// Suggest runs clippy with WarnLints and returns the hints.
func (l *Linter) Suggest(ctx context.Context) ([]Hint, error) {
	out, err := l.runner.Output(ctx, l.dir, "cargo", SuggestArgs()...)
	if err != nil {
		if !exitedNonZero(err) {
			return nil, fmt.Errorf("running cargo clippy: %w", err)
		}
		if len(out) == 0 {
			return nil, ErrClippyFailed
		}
	}
	return ParseHints(out), nil
}

// Group collects hints per file, files with the most hints first and hints
// by line. ratios maps scanned paths to their T/L; a diagnostic path
// matches a scanned path that equals it or ends with "/"+path.
func Group(hints []Hint, ratios map[string]float64) Suggestions {
	byFile := make(map[string][]Hint)
	var order []string
	for _, h := range hints {
		if _, ok := byFile[h.File]; !ok {
			order = append(order, h.File)
		}
		byFile[h.File] = append(byFile[h.File], h)
	}

	s := Suggestions{Total: len(hints)}
	for _, file := range order {
		fh := FileHints{File: file, Hints: byFile[file]}
		slices.SortStableFunc(fh.Hints, func(a, b Hint) int { return cmp.Compare(a.Line, b.Line) })
		fh.Ratio, fh.HasRatio = lookupRatio(ratios, file)
		s.Files = append(s.Files, fh)
	}
	slices.SortStableFunc(s.Files, func(a, b FileHints) int {
		return cmp.Compare(len(b.Hints), len(a.Hints))
	})
	return s
}

func lookupRatio(ratios map[string]float64, file string) (float64, bool) {
	if r, ok := ratios[file]; ok {
		return r, true
	}
	keys := make([]string, 0, len(ratios))
	for k := range ratios {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if strings.HasSuffix(NormalizePath(k), "/"+file) || NormalizePath(k) == file {
			return ratios[k], true
		}
	}
	return 0, false
}
