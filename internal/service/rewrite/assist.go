package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/syntaxai/cargo-syntax/internal/openrouter"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
)

// ManifestHead is how many lines of each file a project explanation sees.
const ManifestHead = 30

// defaultCrate stands in for the crate name when Cargo.toml has none.
const defaultCrate = "crate_name"

// addedLineTokens estimates the tokens of one added line in a diff.
const addedLineTokens = 8

// Source is a file read for a chat request.
type Source struct {
	Path    string
	Content string
	Lines   int
	Tokens  int
}

// ReadSource reads and measures the Rust file at path.
func (s *Service) ReadSource(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	if filepath.Ext(path) != s.config.Scan.Extension {
		return nil, ErrNotRust
	}
	tokens, err := s.count(string(content))
	if err != nil {
		return nil, err
	}
	return &Source{
		Path:    path,
		Content: string(content),
		Lines:   project.CountLines(string(content)),
		Tokens:  tokens,
	}, nil
}

// Manifest lists every file of ps under a "--- path (L lines, T tokens) ---"
// header followed by its first head lines, or all of it when head <= 0.
func Manifest(ps *project.ProjectStats, head int) string {
	var b strings.Builder
	for _, f := range ps.Files {
		fmt.Fprintf(&b, "--- %s (%d lines, %d tokens) ---\n", f.Path, f.Lines, f.Tokens)
		lines := project.SplitLines(f.Content)
		if head > 0 && len(lines) > head {
			lines = lines[:head]
		}
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Refactor asks the model for duplication across the files of ps.
func (s *Service) Refactor(ctx context.Context, ps *project.ProjectStats) (*openrouter.Refactoring, error) {
	return s.client.Refactor(ctx, s.model, Manifest(ps, 0))
}

// ExplainFile asks the model to describe one file.
func (s *Service) ExplainFile(ctx context.Context, src *Source) (*openrouter.FileExplanation, error) {
	return s.client.ExplainFile(ctx, s.model, src.Content)
}

// ExplainProject asks the model to describe the crate measured in ps.
func (s *Service) ExplainProject(ctx context.Context, ps *project.ProjectStats) (*openrouter.ProjectExplanation, error) {
	return s.client.ExplainProject(ctx, s.model, Manifest(ps, ManifestHead))
}

// TestPlan says what tests to generate and where they go.
type TestPlan struct {
	Source *Source
	// Display is the source path as given on the command line.
	Display string
	Crate   string
	Module  string
	Target  string
}

// Prompt is the request sent to the model.
func (p *TestPlan) Prompt() string {
	return fmt.Sprintf("Crate name: %s\nModule path: %s\nImport as: use %s::%s::*;\n\nSource file (%s):\n%s",
		p.Crate, p.Module, p.Crate, p.Module, p.Display, p.Source.Content)
}

// PlanTests reads path, relative to dir, and derives the crate name, module
// path and default target. target overrides the default when set.
func (s *Service) PlanTests(dir, path, target string) (*TestPlan, error) {
	src, err := s.ReadSource(filepath.Join(dir, path))
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = DefaultTestPath(dir, path)
	}
	return &TestPlan{
		Source:  src,
		Display: filepath.ToSlash(path),
		Crate:   CrateName(dir),
		Module:  ModulePath(path),
		Target:  target,
	}, nil
}

// GeneratedTests is the model's test file for a plan.
type GeneratedTests struct {
	Code   string
	Lines  int
	Tokens int
	// Coverage is nil when the coverage request failed.
	Coverage *openrouter.Coverage
}

// GenerateTests asks the model for tests and then for a coverage summary
// of them. A failed coverage request does not fail the generation.
func (s *Service) GenerateTests(ctx context.Context, plan *TestPlan) (*GeneratedTests, error) {
	code, err := s.client.GenerateTests(ctx, s.model, plan.Prompt())
	if err != nil {
		return nil, err
	}
	tokens, err := s.count(code)
	if err != nil {
		return nil, err
	}
	gen := &GeneratedTests{Code: code, Lines: project.CountLines(code), Tokens: tokens}
	if cov, err := s.client.Coverage(ctx, s.model, plan.Source.Content, code); err == nil {
		gen.Coverage = cov
	}
	return gen, nil
}

// CrateName reads the package name from dir/Cargo.toml with dashes turned
// into underscores, as it is spelled in a use path.
func CrateName(dir string) string {
	tree, err := toml.LoadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		return defaultCrate
	}
	name, ok := tree.Get("package.name").(string)
	if !ok || name == "" {
		return defaultCrate
	}
	return strings.ReplaceAll(name, "-", "_")
}

// ModulePath turns a source path into its module path: src/commands/ci.rs
// becomes commands::ci and src/net/mod.rs becomes net.
func ModulePath(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "src/")
	p = strings.TrimSuffix(p, ".rs")
	p = strings.TrimSuffix(p, "/mod")
	return strings.ReplaceAll(p, "/", "::")
}

// DefaultTestPath is tests/test_<stem>.rs when dir has a tests directory or
// path is under src, and test_<stem>.rs otherwise.
func DefaultTestPath(dir, path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := "test_" + stem + ".rs"
	info, err := os.Stat(filepath.Join(dir, "tests"))
	if err == nil && info.IsDir() || strings.HasPrefix(filepath.ToSlash(path), "src") {
		return filepath.Join("tests", name)
	}
	return name
}

// WriteTests writes code to path, creating parent directories. With
// appendTo an existing file keeps its content and code follows a blank line.
func WriteTests(path, code string, appendTo bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if appendTo {
		existing, err := os.ReadFile(path)
		if err == nil {
			code = string(existing) + "\n\n" + code
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, []byte(code), 0o644)
}

// ChangeReview is the outcome for one changed file.
type ChangeReview struct {
	Diff  vcs.FileDiff
	Lines int
	// Tokens counts the whole file after the change.
	Tokens int
	// AddedTokens estimates the tokens the change added.
	AddedTokens int
	Review      *openrouter.ChangeReview
	// Err is set when the model request failed.
	Err error
}

// Ratio is the file's tokens per line.
func (r *ChangeReview) Ratio() float64 {
	return stats.Ratio(r.Tokens, r.Lines)
}

// Status is "new file" or "modified".
func (r *ChangeReview) Status() string {
	if r.Diff.Created {
		return "new file"
	}
	return "modified"
}

// ReviewChange measures d and asks the model about its changed lines. Model
// failures are recorded on the result rather than returned.
func (s *Service) ReviewChange(ctx context.Context, d vcs.FileDiff) (*ChangeReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens, err := s.count(d.Content)
	if err != nil {
		return nil, err
	}
	r := &ChangeReview{
		Diff:        d,
		Lines:       project.CountLines(d.Content),
		Tokens:      tokens,
		AddedTokens: d.Added * addedLineTokens,
	}
	r.Review, r.Err = s.client.ReviewChanges(ctx, s.model, d.Patch, d.Content)
	return r, nil
}

// ChangeSummary totals a diff review.
type ChangeSummary struct {
	Files       int
	Efficient   int
	AddedTokens int
	Suggestions int
	Saveable    int
	// ToFix lists the paths with suggestions.
	ToFix []string
}

// Summarize totals reviews.
func Summarize(reviews []*ChangeReview) ChangeSummary {
	var sum ChangeSummary
	for _, r := range reviews {
		sum.Files++
		sum.AddedTokens += r.AddedTokens
		if r.Review == nil {
			continue
		}
		if r.Review.Efficient() {
			sum.Efficient++
			continue
		}
		sum.Suggestions += len(r.Review.Suggestions)
		for _, sg := range r.Review.Suggestions {
			sum.Saveable += sg.TokensSaved
		}
		sum.ToFix = append(sum.ToFix, r.Diff.Path)
	}
	return sum
}

// SavePct is Saveable as a percentage of the added tokens.
func (c ChangeSummary) SavePct() float64 {
	return stats.Pct(c.Saveable, c.AddedTokens)
}
