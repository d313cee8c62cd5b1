// Package scanner enumerates Rust source files under a directory.
package scanner

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/syntaxai/cargo-syntax/pkg/config"
)

// Walker finds source files in a directory.
type Walker struct {
	extension string
	buildDir  string
	patterns  gitignore.Matcher
	gitignore bool
}

// NewWalker creates a walker from the scan and exclude sections of cfg.
func NewWalker(cfg *config.Config) *Walker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	w := &Walker{
		extension: cfg.Scan.Extension,
		buildDir:  cfg.Scan.BuildDir,
		gitignore: cfg.Exclude.Gitignore,
	}
	// Config patterns use gitignore syntax relative to the walk root
	if len(cfg.Exclude.Patterns) > 0 {
		patterns := make([]gitignore.Pattern, 0, len(cfg.Exclude.Patterns))
		for _, p := range cfg.Exclude.Patterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		w.patterns = gitignore.NewMatcher(patterns)
	}
	return w
}

// findGitRoot finds the root of the git repository by looking for .git.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// matcher pairs a gitignore matcher with the directory its patterns are
// relative to.
type matcher struct {
	base string
	m    gitignore.Matcher
}

func (w *Walker) loadMatchers(absRoot string) []matcher {
	var matchers []matcher

	if w.patterns != nil {
		matchers = append(matchers, matcher{base: absRoot, m: w.patterns})
	}

	if w.gitignore {
		if gitRoot := findGitRoot(absRoot); gitRoot != "" {
			// ReadPatterns walks every .gitignore below gitRoot
			if patterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(patterns) > 0 {
				matchers = append(matchers, matcher{base: gitRoot, m: gitignore.NewMatcher(patterns)})
			}
		}
	}

	return matchers
}

func excluded(matchers []matcher, path string, isDir bool) bool {
	for _, mt := range matchers {
		rel, err := filepath.Rel(mt.base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if mt.m.Match(strings.Split(rel, string(filepath.Separator)), isDir) {
			return true
		}
	}
	return false
}

// Walk lazily yields every source file below root in lexical order.
// Directories named after the build directory are never entered and
// unreadable entries are skipped. The sequence is not safe for reuse
// across goroutines.
func (w *Walker) Walk(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return
		}
		if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
			absRoot = resolved
		}
		matchers := w.loadMatchers(absRoot)

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}

			absPath := filepath.Join(absRoot, mustRel(root, path))

			// Symlinks that escape the root are skipped
			if d.Type()&fs.ModeSymlink != 0 {
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil || !isWithinRoot(resolved, absRoot) {
					return nil
				}
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if d.Name() == w.buildDir || d.Name() == ".git" || excluded(matchers, absPath, true) {
					return filepath.SkipDir
				}
				return nil
			}

			if filepath.Ext(path) != w.extension || excluded(matchers, absPath, false) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect walks root and returns all paths at once.
func (w *Walker) Collect(root string) []string {
	var files []string
	for path := range w.Walk(root) {
		files = append(files, path)
	}
	return files
}

// Match reports whether a slash-separated path relative to a project root
// would be yielded by Walk. It is used for paths that do not live on disk,
// such as entries of a git tree.
func (w *Walker) Match(rel string) bool {
	if filepath.Ext(rel) != w.extension {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if p == w.buildDir {
			return false
		}
	}
	if w.patterns == nil {
		return true
	}
	for i := 1; i < len(parts); i++ {
		if w.patterns.Match(parts[:i], true) {
			return false
		}
	}
	return !w.patterns.Match(parts, false)
}

// SkipDir reports whether Walk would skip the directory at the
// slash-separated path rel.
func (w *Walker) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		if p == w.buildDir || p == ".git" {
			return true
		}
		if w.patterns != nil && w.patterns.Match(parts[:i+1], true) {
			return true
		}
	}
	return false
}

func mustRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Separator suffix stops "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// PathError indicates a root that cannot be scanned.
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

// CheckRoot returns a *PathError unless root is an accessible directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return &PathError{Path: root, Err: fs.ErrInvalid}
	}
	return nil
}
