package vcs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOptions selects the two sides Diff compares, the way git diff does.
type DiffOptions struct {
	// Range is "A..B" to compare two revisions, or a single revision to
	// compare with the working tree (the index when Staged). An empty side
	// of "A..B" means HEAD.
	Range string
	// Staged compares with the index instead of the working tree. Without
	// a Range the base is HEAD.
	Staged bool
	// Match filters slash-separated paths; nil keeps every path.
	Match func(path string) bool
}

// Label names what opts compares.
func (o DiffOptions) Label() string {
	switch {
	case o.Staged:
		return "staged"
	case o.Range != "":
		return o.Range
	default:
		return "unstaged"
	}
}

// FileDiff is the change to one file.
type FileDiff struct {
	Path    string
	Created bool
	Added   int
	Removed int
	// Patch is a header line followed by the changed lines prefixed with
	// "+" or "-".
	Patch string
	// Content is the file after the change.
	Content string
}

type reader func(path string) ([]byte, error)

// Diff returns the files changed between the sides selected by opts,
// sorted by path. Deleted files are left out.
func Diff(repo Repository, opts DiffOptions) ([]FileDiff, error) {
	before, after, paths, err := sides(repo, opts)
	if err != nil {
		return nil, err
	}

	var diffs []FileDiff
	for _, path := range paths {
		if opts.Match != nil && !opts.Match(path) {
			continue
		}
		cur, err := after(path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		old, err := before(path)
		created := errors.Is(err, ErrNotFound)
		if err != nil && !created {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !created && bytes.Equal(old, cur) {
			continue
		}
		diffs = append(diffs, newFileDiff(path, string(old), string(cur), created))
	}
	return diffs, nil
}

func sides(repo Repository, opts DiffOptions) (before, after reader, paths []string, err error) {
	if from, to, ok := strings.Cut(opts.Range, ".."); ok {
		a, err := TreeAt(repo, orHead(from))
		if err != nil {
			return nil, nil, nil, err
		}
		b, err := TreeAt(repo, orHead(to))
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := a.Diff(b)
		if err != nil {
			return nil, nil, nil, &RevisionError{Rev: opts.Range, Err: err}
		}
		return a.File, b.File, changedPaths(changes), nil
	}

	status, err := repo.Status()
	if err != nil {
		return nil, nil, nil, err
	}

	after = worktreeFile(repo)
	if opts.Staged {
		after = repo.IndexFile
	}
	for _, st := range status {
		if changed(st.Staging) && (opts.Staged || opts.Range != "") ||
			changed(st.Worktree) && !opts.Staged {
			paths = append(paths, st.Path)
		}
	}

	if opts.Range == "" && !opts.Staged {
		return repo.IndexFile, after, paths, nil
	}

	base := orHead(opts.Range)
	tree, err := TreeAt(repo, base)
	if err != nil {
		return nil, nil, nil, err
	}
	if base != "HEAD" {
		head, err := TreeAt(repo, "HEAD")
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := tree.Diff(head)
		if err != nil {
			return nil, nil, nil, &RevisionError{Rev: base, Err: err}
		}
		paths = append(paths, changedPaths(changes)...)
	}
	return tree.File, after, unique(paths), nil
}

func orHead(rev string) string {
	if rev == "" {
		return "HEAD"
	}
	return rev
}

// changed reports whether a status code is a change git diff shows.
func changed(code git.StatusCode) bool {
	return code != git.Unmodified && code != git.Untracked
}

func changedPaths(changes Changes) []string {
	var paths []string
	for _, c := range changes {
		if c.To != "" {
			paths = append(paths, c.To)
		}
	}
	return unique(paths)
}

func unique(paths []string) []string {
	sort.Strings(paths)
	out := paths[:0]
	for i, p := range paths {
		if i == 0 || p != paths[i-1] {
			out = append(out, p)
		}
	}
	return out
}

func worktreeFile(repo Repository) reader {
	root := repo.RepoPath()
	return func(path string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return data, err
	}
}

func newFileDiff(path, before, after string, created bool) FileDiff {
	fd := FileDiff{Path: path, Created: created, Content: after}

	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	if created {
		b.WriteString("new file\n")
	}
	for _, d := range diff.Do(before, after) {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if prefix == "+" {
				fd.Added++
			} else {
				fd.Removed++
			}
			b.WriteString(prefix)
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	fd.Patch = b.String()
	return fd
}
