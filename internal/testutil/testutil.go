// Package testutil holds fixtures shared by package tests: project trees
// on disk and throwaway git repositories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateFileTree creates multiple files from a map of slash path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// Project creates a temp directory holding files.
func Project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	CreateFileTree(t, root, files)
	return root
}

// Epoch is the author time of the first commit made by a Repo.
var Epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// Repo is a git repository in a temp directory. Each Commit is authored
// one hour after the previous one.
type Repo struct {
	t    *testing.T
	Path string
	repo *git.Repository
	n    int
}

// InitRepo creates an empty repository on branch master.
func InitRepo(t *testing.T) *Repo {
	t.Helper()
	path := t.TempDir()
	r, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	return &Repo{t: t, Path: path, repo: r}
}

// Commit writes files into the worktree and commits them. An empty
// content removes the file.
func (r *Repo) Commit(msg string, files map[string]string) plumbing.Hash {
	r.t.Helper()
	w, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatal(err)
	}
	for name, content := range files {
		if content == "" {
			if _, err := w.Remove(name); err != nil {
				r.t.Fatalf("Remove(%s) error: %v", name, err)
			}
			continue
		}
		WriteFile(r.t, filepath.Join(r.Path, filepath.FromSlash(name)), content)
		if _, err := w.Add(name); err != nil {
			r.t.Fatalf("Add(%s) error: %v", name, err)
		}
	}
	hash, err := w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  Epoch.Add(time.Duration(r.n) * time.Hour),
		},
	})
	if err != nil {
		r.t.Fatalf("Commit(%q) error: %v", msg, err)
	}
	r.n++
	return hash
}

// Branch creates name at HEAD and checks it out.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	w, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatal(err)
	}
	err = w.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		r.t.Fatalf("Checkout(%s) error: %v", name, err)
	}
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	w, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatal(err)
	}
	if err := w.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)}); err != nil {
		r.t.Fatalf("Checkout(%s) error: %v", name, err)
	}
}
