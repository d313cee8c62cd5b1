package remote

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/syntaxai/cargo-syntax/internal/testutil"
)

func TestParse_LocalPath(t *testing.T) {
	src, err := Parse(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != nil {
		t.Errorf("expected nil for local path, got %+v", src)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantRef string
	}{
		{"shorthand", "rust-lang/regex", "https://github.com/rust-lang/regex", ""},
		{"shorthand with tag", "serde-rs/serde@v1.0.200", "https://github.com/serde-rs/serde", "v1.0.200"},
		{"github.com without scheme", "github.com/tokio-rs/tokio", "https://github.com/tokio-rs/tokio", ""},
		{"gitlab without scheme", "gitlab.com/group/crate@main", "https://gitlab.com/group/crate", "main"},
		{"https URL", "https://github.com/BurntSushi/ripgrep", "https://github.com/BurntSushi/ripgrep", ""},
		{"SSH URL", "git@github.com:owner/crate.git", "git@github.com:owner/crate.git", ""},
		{"SSH URL with ref", "git@github.com:owner/crate.git@dev", "git@github.com:owner/crate.git", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src == nil {
				t.Fatal("expected Source, got nil")
			}
			if src.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", src.URL, tt.wantURL)
			}
			if src.Ref != tt.wantRef {
				t.Errorf("Ref = %q, want %q", src.Ref, tt.wantRef)
			}
		})
	}
}

func TestParse_NotRemote(t *testing.T) {
	for _, input := range []string{"missing", "./src/lib", "a/b/c", "example.com/crate", "/abs/missing"} {
		src, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", input, err)
		}
		if src != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, src)
		}
	}
}

func TestParse_EmptyRef(t *testing.T) {
	if _, err := Parse("owner/crate@"); err == nil {
		t.Error("expected error for empty ref")
	}
}

// upstream builds a repository to clone from. Local clones go through
// git-upload-pack.
func upstream(t *testing.T) *testutil.Repo {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git not installed")
		}
	}
	repo := testutil.InitRepo(t)
	repo.Commit("init", map[string]string{"src/lib.rs": "pub fn a() {}\n"})
	repo.Branch("feature")
	repo.Commit("feature work", map[string]string{"src/extra.rs": "fn b() {}\n"})
	repo.Checkout("master")
	return repo
}

func TestSource_Clone(t *testing.T) {
	repo := upstream(t)
	src := &Source{URL: repo.Path}

	if err := src.Clone(context.Background(), nil, false); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	defer src.Cleanup()

	if !testutil.FileExists(filepath.Join(src.CloneDir, "src", "lib.rs")) {
		t.Error("src/lib.rs missing from clone")
	}
	if testutil.FileExists(filepath.Join(src.CloneDir, "src", "extra.rs")) {
		t.Error("default clone should be on master")
	}
}

func TestSource_Clone_WithRef(t *testing.T) {
	repo := upstream(t)
	src := &Source{URL: repo.Path, Ref: "feature"}

	if err := src.Clone(context.Background(), nil, false); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	defer src.Cleanup()

	cloned, err := git.PlainOpen(src.CloneDir)
	if err != nil {
		t.Fatalf("open cloned repo: %v", err)
	}
	head, err := cloned.Head()
	if err != nil {
		t.Fatalf("get HEAD: %v", err)
	}
	if head.Name().Short() != "feature" {
		t.Errorf("expected branch feature, got %s", head.Name())
	}
	if !testutil.FileExists(filepath.Join(src.CloneDir, "src", "extra.rs")) {
		t.Error("src/extra.rs missing from feature clone")
	}
}

func TestSource_Clone_MissingRef(t *testing.T) {
	repo := upstream(t)
	src := &Source{URL: repo.Path, Ref: "nope"}

	if err := src.Clone(context.Background(), nil, false); err == nil {
		src.Cleanup()
		t.Fatal("expected error for unknown ref")
	}
	if src.CloneDir != "" {
		t.Error("CloneDir should stay empty on failure")
	}
}

func TestSource_Cleanup(t *testing.T) {
	dir := t.TempDir()
	clone := filepath.Join(dir, "clone")
	if err := os.Mkdir(clone, 0o755); err != nil {
		t.Fatal(err)
	}

	src := &Source{CloneDir: clone}
	if err := src.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if testutil.FileExists(clone) {
		t.Error("clone directory should be removed")
	}
	if err := src.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error: %v", err)
	}
}
