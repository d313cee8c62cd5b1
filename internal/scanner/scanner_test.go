package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/syntaxai/cargo-syntax/pkg/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("Rel(%s): %v", p, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestNewWalker(t *testing.T) {
	w := NewWalker(nil)
	if w.extension != ".rs" || w.buildDir != "target" {
		t.Errorf("NewWalker(nil) = %+v, want .rs/target defaults", w)
	}
	if w.patterns != nil {
		t.Error("default walker should have no exclude patterns")
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":                 "fn main() {}\n",
		"src/lib.rs":                  "pub fn a() {}\n",
		"src/util/mod.rs":             "mod x;\n",
		"src/util/notes.txt":          "not rust\n",
		"build.rs":                    "fn main() {}\n",
		"target/debug/build/out.rs":   "generated\n",
		"crates/x/target/gen.rs":      "generated\n",
		"crates/x/src/lib.rs":         "fn x() {}\n",
		"crates/x/src/target_util.rs": "fn t() {}\n",
		"README.md":                   "# readme\n",
	})

	got := relPaths(t, root, NewWalker(nil).Collect(root))
	want := []string{
		"build.rs",
		"crates/x/src/lib.rs",
		"crates/x/src/target_util.rs",
		"src/lib.rs",
		"src/main.rs",
		"src/util/mod.rs",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalkSkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":        "",
		".git/hooks/pre.rs":  "",
		"crates/a/.git/x.rs": "",
	})

	got := relPaths(t, root, NewWalker(nil).Collect(root))
	if !slices.Equal(got, []string{"src/main.rs"}) {
		t.Errorf("Walk() = %v, want [src/main.rs]", got)
	}
}

func TestWalkStableOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.rs":   "",
		"a.rs":   "",
		"c/d.rs": "",
	})

	w := NewWalker(nil)
	first := w.Collect(root)
	second := w.Collect(root)
	if !slices.Equal(first, second) {
		t.Errorf("Walk order changed: %v vs %v", first, second)
	}
}

func TestWalkEarlyStop(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.rs": "",
		"b.rs": "",
		"c.rs": "",
	})

	count := 0
	for range NewWalker(nil).Walk(root) {
		count++
		if count == 1 {
			break
		}
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	paths := NewWalker(nil).Collect(filepath.Join(t.TempDir(), "nope"))
	if len(paths) != 0 {
		t.Errorf("Walk(missing) = %v, want empty", paths)
	}
}

func TestWalkSkipsUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.rs":          "",
		"locked/hide.rs": "",
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got := relPaths(t, root, NewWalker(nil).Collect(root))
	if !slices.Equal(got, []string{"ok.rs"}) {
		t.Errorf("Walk() = %v, want [ok.rs]", got)
	}
}

func TestWalkSkipsEscapingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.rs": "fn s() {}\n"})

	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.rs": "fn main() {}\n"})
	if err := os.Symlink(filepath.Join(outside, "secret.rs"), filepath.Join(root, "link.rs")); err != nil {
		t.Fatal(err)
	}

	got := relPaths(t, root, NewWalker(nil).Collect(root))
	if !slices.Equal(got, []string{"main.rs"}) {
		t.Errorf("Walk() = %v, want [main.rs]", got)
	}
}

func TestWalkCustomBuildDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"out/gen.rs":    "",
		"target/lib.rs": "",
	})

	cfg := config.DefaultConfig()
	cfg.Scan.BuildDir = "out"

	got := relPaths(t, root, NewWalker(cfg).Collect(root))
	if !slices.Equal(got, []string{"target/lib.rs"}) {
		t.Errorf("Walk() = %v, want [target/lib.rs]", got)
	}
}

func TestWalkExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":          "",
		"src/generated/api.rs": "",
		"benches/bench.rs":     "",
		"src/schema_gen.rs":    "",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"generated/", "benches", "*_gen.rs"}

	got := relPaths(t, root, NewWalker(cfg).Collect(root))
	if !slices.Equal(got, []string{"src/main.rs"}) {
		t.Errorf("Walk() = %v, want [src/main.rs]", got)
	}
}

func TestWalkGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":      "vendor/\n",
		"src/main.rs":     "",
		"vendor/dep/x.rs": "",
	})
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	// off by default
	got := relPaths(t, root, NewWalker(nil).Collect(root))
	if len(got) != 2 {
		t.Errorf("default Walk() = %v, want both files", got)
	}

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true
	got = relPaths(t, root, NewWalker(cfg).Collect(root))
	if !slices.Equal(got, []string{"src/main.rs"}) {
		t.Errorf("Walk() = %v, want [src/main.rs]", got)
	}
}

func TestMatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"examples/"}
	w := NewWalker(cfg)

	tests := []struct {
		path string
		want bool
	}{
		{"src/main.rs", true},
		{"main.rs", true},
		{"src/target.rs", true},
		{"target/debug/x.rs", false},
		{"crates/a/target/x.rs", false},
		{"examples/demo.rs", false},
		{"src/lib.go", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := w.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSkipDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"examples/"}
	w := NewWalker(cfg)

	tests := []struct {
		path string
		want bool
	}{
		{".", false},
		{"src", false},
		{"src/bin", false},
		{"target", true},
		{"crates/a/target", true},
		{".git", true},
		{"examples", true},
		{"examples/nested", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := w.SkipDir(tt.path); got != tt.want {
				t.Errorf("SkipDir(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "tmp", "root")

	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "a.rs"), true},
		{filepath.Join(root, "..", "other"), false},
		{root + "2", false},
	}

	for _, tt := range tests {
		if got := isWithinRoot(tt.path, root); got != tt.want {
			t.Errorf("isWithinRoot(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCheckRoot(t *testing.T) {
	dir := t.TempDir()
	if err := CheckRoot(dir); err != nil {
		t.Errorf("CheckRoot(dir) = %v", err)
	}

	var perr *PathError
	err := CheckRoot(filepath.Join(dir, "missing"))
	if !errors.As(err, &perr) {
		t.Fatalf("CheckRoot(missing) = %v, want *PathError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("PathError should unwrap to fs.ErrNotExist")
	}

	file := filepath.Join(dir, "f.rs")
	writeTree(t, dir, map[string]string{"f.rs": ""})
	if err := CheckRoot(file); !errors.As(err, &perr) {
		t.Errorf("CheckRoot(file) = %v, want *PathError", err)
	}
}
