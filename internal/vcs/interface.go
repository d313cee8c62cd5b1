// Package vcs provides version control system abstractions.
package vcs

import (
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository provides access to git repository operations.
type Repository interface {
	// Head returns a reference to the HEAD commit.
	Head() (Reference, error)
	// Log returns a commit iterator starting from HEAD.
	Log(opts *LogOptions) (CommitIterator, error)
	// ResolveRevision resolves a branch, tag, short hash or expression such
	// as HEAD~2 to a commit.
	ResolveRevision(rev string) (Commit, error)
	// RepoPath returns the root path of the repository.
	RepoPath() string
	// Status lists the files whose index or worktree state differs from
	// HEAD, sorted by path.
	Status() ([]FileStatus, error)
	// IndexFile returns the staged content of a slash-separated path.
	IndexFile(path string) ([]byte, error)
}

// FileStatus is the index and worktree state of one path, using the git
// porcelain codes (' ' unmodified, 'M', 'A', 'D', 'R', 'C', '?', 'U').
type FileStatus struct {
	Path     string
	Staging  git.StatusCode
	Worktree git.StatusCode
}

// Reference represents a git reference (branch, tag, HEAD).
type Reference interface {
	Hash() plumbing.Hash
	// Branch returns the short branch name, or "" for a detached HEAD.
	Branch() string
}

// LogOptions configures the commit log query.
type LogOptions struct {
	Since *time.Time
}

// CommitIterator iterates over commits. Returning ErrStop from fn ends the
// iteration without error.
type CommitIterator interface {
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit represents a git commit.
type Commit interface {
	Hash() plumbing.Hash
	Tree() (Tree, error)
	Author() Signature
	Message() string
}

// Signature identifies a commit author.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// TreeEntry represents a file in a git tree.
type TreeEntry struct {
	Path string
	Size int64
}

// Tree represents a git tree object.
type Tree interface {
	// Entries returns all files in the tree (recursively).
	Entries() ([]TreeEntry, error)
	// File returns the content of the file at a slash-separated path.
	File(path string) ([]byte, error)
	// Diff lists the files that differ between this tree and to.
	Diff(to Tree) (Changes, error)
}

// Change is one file that differs between two trees. From is empty for an
// added file, To for a deleted one.
type Change struct {
	From string
	To   string
}

// Changes is the result of Tree.Diff.
type Changes []Change

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
