// Package scanner measures a crate the way every command does: walker and
// token cache come from the configuration, revisions from git.
package scanner

import (
	"context"
	"path/filepath"

	"github.com/syntaxai/cargo-syntax/internal/cache"
	"github.com/syntaxai/cargo-syntax/internal/scanner"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/history"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
	"github.com/syntaxai/cargo-syntax/pkg/config"
	"github.com/syntaxai/cargo-syntax/pkg/tokenizer"
)

// Service scans working trees and revisions.
type Service struct {
	config *config.Config
	opener vcs.Opener
	count  tokenizer.Counter
	warn   project.WarnFunc
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCounter replaces tokenizer.Count.
func WithCounter(c tokenizer.Counter) Option {
	return func(s *Service) {
		s.count = c
	}
}

// WithWarn sets the callback for files skipped during a scan.
func WithWarn(fn project.WarnFunc) Option {
	return func(s *Service) {
		s.warn = fn
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		opener: vcs.DefaultOpener(),
		count:  tokenizer.Count,
		warn:   project.StderrWarn,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// Config returns the configuration in use.
func (s *Service) Config() *config.Config {
	return s.config
}

// Walker returns a walker for the configured source files.
func (s *Service) Walker() *scanner.Walker {
	return scanner.NewWalker(s.config)
}

// Counter returns the token counter for a crate at root, backed by the
// cache when it is enabled.
func (s *Service) Counter(root string) (tokenizer.Counter, error) {
	c, err := cache.FromConfig(s.config, root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	return c.Counter(s.count), nil
}

// Scan measures every source file under root. opts are applied after the
// service's own walker, counter and warn settings.
func (s *Service) Scan(ctx context.Context, root string, opts ...project.Option) (*project.ProjectStats, error) {
	if root == "" {
		root = "."
	}
	count, err := s.Counter(root)
	if err != nil {
		return nil, err
	}
	base := []project.Option{
		project.WithWalker(s.Walker()),
		project.WithCounter(count),
		project.WithWarn(s.warn),
	}
	return project.Scan(ctx, root, append(base, opts...)...)
}

// OpenRepo opens the git repository containing path.
func (s *Service) OpenRepo(path string) (vcs.Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}
	repo, err := s.opener.PlainOpenWithDetect(absPath)
	if err != nil {
		return nil, &GitError{Err: err}
	}
	return repo, nil
}

func (s *Service) historyOptions(repo vcs.Repository) ([]history.Option, error) {
	count, err := s.Counter(repo.RepoPath())
	if err != nil {
		return nil, err
	}
	return []history.Option{history.WithWalker(s.Walker()), history.WithCounter(count)}, nil
}

// Snapshot measures the source files of rev.
func (s *Service) Snapshot(ctx context.Context, repo vcs.Repository, rev string) (*history.Snapshot, error) {
	opts, err := s.historyOptions(repo)
	if err != nil {
		return nil, err
	}
	return history.Take(ctx, repo, rev, opts...)
}

// History measures the last n commits reachable from HEAD, newest first.
func (s *Service) History(ctx context.Context, repo vcs.Repository, n int) ([]history.Snapshot, error) {
	commits, err := vcs.RecentCommits(repo, n)
	if err != nil {
		return nil, err
	}
	opts, err := s.historyOptions(repo)
	if err != nil {
		return nil, err
	}
	return history.Series(ctx, repo, commits, opts...)
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not a git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "not a git repository (or any parent): " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
