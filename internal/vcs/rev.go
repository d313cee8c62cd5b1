package vcs

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// RevisionError wraps a failure to resolve or read a revision.
type RevisionError struct {
	Rev string
	Err error
}

func (e *RevisionError) Error() string {
	return "revision " + e.Rev + ": " + e.Err.Error()
}

func (e *RevisionError) Unwrap() error {
	return e.Err
}

// ErrNoCommits is returned when a repository has no history yet.
var ErrNoCommits = errors.New("no commits found")

// CommitInfo summarises one commit of the log.
type CommitInfo struct {
	SHA     string
	Short   string
	Summary string
	Author  string
	Date    time.Time
}

// ShortHash is the abbreviated hash length used for display.
const ShortHash = 7

func newCommitInfo(c Commit) CommitInfo {
	sha := c.Hash().String()
	summary, _, _ := strings.Cut(strings.TrimSpace(c.Message()), "\n")
	author := c.Author()
	return CommitInfo{
		SHA:     sha,
		Short:   sha[:ShortHash],
		Summary: summary,
		Author:  author.Name,
		Date:    author.When,
	}
}

// CurrentBranch returns the checked-out branch name, or the short hash of
// HEAD when it is detached.
func CurrentBranch(repo Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", &RevisionError{Rev: "HEAD", Err: err}
	}
	if b := head.Branch(); b != "" {
		return b, nil
	}
	return head.Hash().String()[:ShortHash], nil
}

// RecentCommits returns up to n commits reachable from HEAD, newest first.
func RecentCommits(repo Repository, n int) ([]CommitInfo, error) {
	if n <= 0 {
		return nil, nil
	}
	iter, err := repo.Log(nil)
	if err != nil {
		return nil, &RevisionError{Rev: "HEAD", Err: err}
	}
	defer iter.Close()

	commits := make([]CommitInfo, 0, n)
	err = iter.ForEach(func(c Commit) error {
		commits = append(commits, newCommitInfo(c))
		if len(commits) >= n {
			return ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrStop) {
		return nil, &RevisionError{Rev: "HEAD", Err: err}
	}
	if len(commits) == 0 {
		return nil, ErrNoCommits
	}
	return commits, nil
}

// TreeAt resolves rev and returns its tree.
func TreeAt(repo Repository, rev string) (Tree, error) {
	commit, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, &RevisionError{Rev: rev, Err: err}
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, &RevisionError{Rev: rev, Err: err}
	}
	return tree, nil
}

// ListFiles returns every file path at rev, sorted, slash-separated and
// relative to the repository root.
func ListFiles(repo Repository, rev string) ([]string, error) {
	tree, err := TreeAt(repo, rev)
	if err != nil {
		return nil, err
	}
	entries, err := tree.Entries()
	if err != nil {
		return nil, &RevisionError{Rev: rev, Err: err}
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	sort.Strings(paths)
	return paths, nil
}

// ShowFile returns the content of path at rev.
func ShowFile(repo Repository, rev, path string) ([]byte, error) {
	tree, err := TreeAt(repo, rev)
	if err != nil {
		return nil, err
	}
	data, err := tree.File(path)
	if err != nil {
		return nil, &RevisionError{Rev: rev + ":" + path, Err: err}
	}
	return data, nil
}
