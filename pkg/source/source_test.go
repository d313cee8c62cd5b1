package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntaxai/cargo-syntax/internal/vcs"
)

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*TreeSource)(nil)
	_ ContentSource = MapSource(nil)
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/syntaxai/cargo-syntax")

	_, err = src.Read("nonexistent.rs")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTreeSource(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.rs"), []byte("fn main() {}\n"), 0o644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("src/main.rs")
	require.NoError(t, err)
	_, err = w.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	r, err := vcs.NewGitOpener().PlainOpen(dir)
	require.NoError(t, err)
	tree, err := vcs.TreeAt(r, "HEAD")
	require.NoError(t, err)

	src := NewTree(tree)

	content, err := src.Read("src/main.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(content))

	_, err = src.Read("src/gone.rs")
	var rerr *ReadError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "src/gone.rs", rerr.Path)
	assert.ErrorIs(t, err, vcs.ErrNotFound)
}

func TestMapSource(t *testing.T) {
	src := MapSource{"a.rs": "fn a() {}"}

	content, err := src.Read("a.rs")
	require.NoError(t, err)
	assert.Equal(t, "fn a() {}", string(content))

	_, err = src.Read("b.rs")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "b.rs")
}
