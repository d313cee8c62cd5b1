// Package rewrite runs the chat-model operations on a crate: single-file
// rewrites, reviews, explanations, test generation, change reviews and
// batch rewrites with optional build validation.
package rewrite

import (
	"context"
	"errors"
	"os"

	"github.com/syntaxai/cargo-syntax/internal/openrouter"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/config"
	"github.com/syntaxai/cargo-syntax/pkg/stats"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

// ErrNotRust is returned for paths without the .rs extension.
var ErrNotRust = errors.New("only .rs files are supported")

// Client is the part of the chat API the service needs.
type Client interface {
	Rewrite(ctx context.Context, model, code string) (string, error)
	Explain(ctx context.Context, model, original, rewritten string) ([]openrouter.Change, error)
	Review(ctx context.Context, model, code string) ([]openrouter.Suggestion, error)
	Refactor(ctx context.Context, model, manifest string) (*openrouter.Refactoring, error)
	ExplainFile(ctx context.Context, model, code string) (*openrouter.FileExplanation, error)
	ExplainProject(ctx context.Context, model, manifest string) (*openrouter.ProjectExplanation, error)
	GenerateTests(ctx context.Context, model, prompt string) (string, error)
	Coverage(ctx context.Context, model, code, tests string) (*openrouter.Coverage, error)
	ReviewChanges(ctx context.Context, model, patch, content string) (*openrouter.ChangeReview, error)
}

// Service orchestrates rewrite and review operations.
type Service struct {
	config *config.Config
	client Client
	count  tokenizer.Counter
	model  string
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithClient replaces the OpenRouter client.
func WithClient(c Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithCounter replaces tokenizer.Count.
func WithCounter(c tokenizer.Counter) Option {
	return func(s *Service) {
		s.count = c
	}
}

// WithModel overrides the configured model.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// New creates a new rewrite service.
func New(opts ...Option) *Service {
	s := &Service{count: tokenizer.Count}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	if s.client == nil {
		s.client = openrouter.FromConfig(s.config)
	}
	if s.model == "" {
		s.model = s.config.Model()
	}
	return s
}

// Model returns the model requests are sent to.
func (s *Service) Model() string {
	return s.model
}

// Result is a rewrite of one file that has not been written yet.
type Result struct {
	Path         string `json:"path"`
	Original     string `json:"-"`
	Rewritten    string `json:"-"`
	TokensBefore int    `json:"tokens_before"`
	TokensAfter  int    `json:"tokens_after"`
	LinesBefore  int    `json:"lines_before"`
	LinesAfter   int    `json:"lines_after"`
}

// Saved is the token reduction; negative when the rewrite grew.
func (r *Result) Saved() int {
	return r.TokensBefore - r.TokensAfter
}

// SavedPct is Saved as a percentage of the original tokens.
func (r *Result) SavedPct() float64 {
	return stats.PctDelta(r.Saved(), r.TokensBefore)
}

// Apply writes the rewritten content over the file.
func (r *Result) Apply() error {
	return os.WriteFile(r.Path, []byte(r.Rewritten), 0o644)
}

// Restore writes the original content back.
func (r *Result) Restore() error {
	return os.WriteFile(r.Path, []byte(r.Original), 0o644)
}

// Diff lists changed lines by position: "- old" then "+ new", skipping
// empty sides.
func (r *Result) Diff() []string {
	before := project.SplitLines(r.Original)
	after := project.SplitLines(r.Rewritten)
	var out []string
	for i := range max(len(before), len(after)) {
		var old, cur string
		if i < len(before) {
			old = before[i]
		}
		if i < len(after) {
			cur = after[i]
		}
		if old == cur {
			continue
		}
		if old != "" {
			out = append(out, "- "+old)
		}
		if cur != "" {
			out = append(out, "+ "+cur)
		}
	}
	return out
}

// RewriteFile sends the file at path to the model and measures the reply.
func (s *Service) RewriteFile(ctx context.Context, path string) (*Result, error) {
	src, err := s.ReadSource(path)
	if err != nil {
		return nil, err
	}

	rewritten, err := s.client.Rewrite(ctx, s.model, src.Content)
	if err != nil {
		return nil, err
	}
	after, err := s.count(rewritten)
	if err != nil {
		return nil, err
	}

	return &Result{
		Path:         path,
		Original:     src.Content,
		Rewritten:    rewritten,
		TokensBefore: src.Tokens,
		TokensAfter:  after,
		LinesBefore:  src.Lines,
		LinesAfter:   project.CountLines(rewritten),
	}, nil
}

// Explain asks the model to list the changes a rewrite made.
func (s *Service) Explain(ctx context.Context, r *Result) ([]openrouter.Change, error) {
	return s.client.Explain(ctx, s.model, r.Original, r.Rewritten)
}

// Review is the outcome for one reviewed file.
type Review struct {
	Suggestions []openrouter.Suggestion `json:"suggestions"`
	// Savings is the suggested total capped at half the file.
	Savings int `json:"savings"`
}

// ContextLimit is the largest file, in tokens, sent for review.
func (s *Service) ContextLimit() int {
	return openrouter.ContextLimit(s.model)
}

// ReviewFile asks the model for token-saving suggestions for f.
func (s *Service) ReviewFile(ctx context.Context, f project.FileStats) (*Review, error) {
	suggestions, err := s.client.Review(ctx, s.model, f.Content)
	if err != nil {
		return nil, err
	}
	return &Review{
		Suggestions: suggestions,
		Savings:     openrouter.EstimatedSavings(suggestions, f.Tokens),
	}, nil
}
