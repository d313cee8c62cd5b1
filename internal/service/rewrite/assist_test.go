package rewrite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntaxai/cargo-syntax/internal/openrouter"
	"github.com/syntaxai/cargo-syntax/internal/testutil"
	"github.com/syntaxai/cargo-syntax/internal/vcs"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

func manifestStats() *project.ProjectStats {
	var ps project.ProjectStats
	ps.Add(project.NewFileStats("src/a.rs", "fn a() {}\nfn b() {}\nfn c() {}\n", 12))
	ps.Add(project.NewFileStats("src/b.rs", "struct B;\n", 3))
	return &ps
}

func TestManifest(t *testing.T) {
	ps := manifestStats()

	full := Manifest(ps, 0)
	assert.Equal(t, "--- src/a.rs (3 lines, 12 tokens) ---\nfn a() {}\nfn b() {}\nfn c() {}\n\n"+
		"--- src/b.rs (1 lines, 3 tokens) ---\nstruct B;\n\n", full)

	head := Manifest(ps, 2)
	assert.Contains(t, head, "fn b() {}\n\n--- src/b.rs")
	assert.NotContains(t, head, "fn c()")
}

func TestRefactorAndExplainProject(t *testing.T) {
	client := &fakeClient{
		refactoring: &openrouter.Refactoring{Summary: "low duplication"},
		projectExpl: &openrouter.ProjectExplanation{StartHere: "src/a.rs"},
	}
	svc := newService(client)
	ps := manifestStats()

	r, err := svc.Refactor(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, "low duplication", r.Summary)
	assert.Equal(t, Manifest(ps, 0), client.prompts["Refactor"])

	e, err := svc.ExplainProject(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, "src/a.rs", e.StartHere)
	assert.Equal(t, Manifest(ps, ManifestHead), client.prompts["ExplainProject"])
}

func TestExplainFile(t *testing.T) {
	root := testutil.Project(t, map[string]string{"src/lib.rs": "pub fn add() {}\n"})
	client := &fakeClient{fileExpl: &openrouter.FileExplanation{Purpose: "adds"}}
	svc := newService(client)

	src, err := svc.ReadSource(filepath.Join(root, "src", "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.Lines)
	assert.Equal(t, 4, src.Tokens)

	e, err := svc.ExplainFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "adds", e.Purpose)
	assert.Equal(t, "pub fn add() {}\n", client.prompts["ExplainFile"])
}

func TestPlanTests(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"Cargo.toml":         "[package]\nname = \"my-crate\"\nversion = \"0.1.0\"\n",
		"src/commands/ci.rs": "pub fn run() {}\n",
	})
	plan, err := newService(&fakeClient{}).PlanTests(root, "src/commands/ci.rs", "")
	require.NoError(t, err)
	assert.Equal(t, "my_crate", plan.Crate)
	assert.Equal(t, "commands::ci", plan.Module)
	assert.Equal(t, filepath.Join("tests", "test_ci.rs"), plan.Target)
	assert.Equal(t, "Crate name: my_crate\nModule path: commands::ci\nImport as: use my_crate::commands::ci::*;\n\n"+
		"Source file (src/commands/ci.rs):\npub fn run() {}\n", plan.Prompt())

	plan, err = newService(&fakeClient{}).PlanTests(root, "src/commands/ci.rs", "tests/ci.rs")
	require.NoError(t, err)
	assert.Equal(t, "tests/ci.rs", plan.Target)

	_, err = newService(&fakeClient{}).PlanTests(root, "src/missing.rs", "")
	assert.ErrorContains(t, err, "file not found")
}

func TestCrateName(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{"dashes", "[package]\nname = \"cargo-syntax\"\n", "cargo_syntax"},
		{"plain", "[package]\nname = \"demo\"\n", "demo"},
		{"workspace only", "[workspace]\nmembers = [\"a\"]\n", defaultCrate},
		{"invalid", "[package\n", defaultCrate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.Project(t, map[string]string{"Cargo.toml": tt.manifest})
			assert.Equal(t, tt.want, CrateName(root))
		})
	}
	assert.Equal(t, defaultCrate, CrateName(t.TempDir()))
}

func TestModulePath(t *testing.T) {
	tests := map[string]string{
		"src/tokens.rs":      "tokens",
		"src/commands/ci.rs": "commands::ci",
		"lib.rs":             "lib",
		"src/net/mod.rs":     "net",
		"src/modules.rs":     "modules",
	}
	for in, want := range tests {
		assert.Equal(t, want, ModulePath(in), in)
	}
}

func TestDefaultTestPath(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join("tests", "test_tokens.rs"), DefaultTestPath(root, "src/tokens.rs"))
	assert.Equal(t, filepath.Join("tests", "test_ci.rs"), DefaultTestPath(root, "src/commands/ci.rs"))
	assert.Equal(t, "test_lib.rs", DefaultTestPath(root, "lib.rs"))

	testutil.WriteFile(t, filepath.Join(root, "tests", "keep.rs"), "")
	assert.Equal(t, filepath.Join("tests", "test_lib.rs"), DefaultTestPath(root, "lib.rs"))
}

func TestGenerateTests(t *testing.T) {
	root := testutil.Project(t, map[string]string{"src/lib.rs": "pub fn add() {}\n"})
	client := &fakeClient{
		tests:    "#[test]\nfn test_add() { add(); }",
		coverage: &openrouter.Coverage{FunctionsTested: []string{"add"}, TestCount: 1},
	}
	svc := newService(client)
	plan, err := svc.PlanTests(root, "src/lib.rs", "")
	require.NoError(t, err)

	gen, err := svc.GenerateTests(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.Lines)
	assert.Equal(t, 6, gen.Tokens)
	require.NotNil(t, gen.Coverage)
	assert.Equal(t, 1, gen.Coverage.TestCount)
	assert.Equal(t, plan.Prompt(), client.prompts["GenerateTests"])
	assert.Equal(t, client.tests, client.prompts["Coverage"])

	client.coverageErr = errors.New("schema mismatch")
	gen, err = svc.GenerateTests(context.Background(), plan)
	require.NoError(t, err)
	assert.Nil(t, gen.Coverage)
}

func TestWriteTests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests", "test_lib.rs")

	require.NoError(t, WriteTests(path, "fn a() {}", false))
	assert.Equal(t, "fn a() {}", testutil.ReadFile(t, path))

	require.NoError(t, WriteTests(path, "fn b() {}", true))
	assert.Equal(t, "fn a() {}\n\nfn b() {}", testutil.ReadFile(t, path))

	require.NoError(t, WriteTests(path, "fn c() {}", false))
	assert.Equal(t, "fn c() {}", testutil.ReadFile(t, path))

	fresh := filepath.Join(filepath.Dir(path), "test_new.rs")
	require.NoError(t, WriteTests(fresh, "fn d() {}", true))
	assert.Equal(t, "fn d() {}", testutil.ReadFile(t, fresh))
}

func TestReviewChange(t *testing.T) {
	client := &fakeClient{review: &openrouter.ChangeReview{
		Suggestions: []openrouter.Suggestion{{Description: "use ?", Location: "fn run", TokensSaved: 10}},
		Verdict:     "minor_issues",
	}}
	svc := newService(client)
	d := vcs.FileDiff{
		Path:    "src/run.rs",
		Added:   2,
		Patch:   "diff --git a/src/run.rs b/src/run.rs\n+fn run() {\n+}\n",
		Content: "fn run() {\n}\n",
	}

	r, err := svc.ReviewChange(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Lines)
	assert.Equal(t, 4, r.Tokens)
	assert.Equal(t, 16, r.AddedTokens)
	assert.Equal(t, "modified", r.Status())
	assert.InDelta(t, 2.0, r.Ratio(), 0.001)
	assert.Equal(t, d.Patch, client.prompts["ReviewChanges"])
	require.NoError(t, r.Err)

	client.review, client.reviewErr = nil, errors.New("timeout")
	d.Created = true
	r, err = svc.ReviewChange(context.Background(), d)
	require.NoError(t, err, "model failures stay on the result")
	assert.EqualError(t, r.Err, "timeout")
	assert.Equal(t, "new file", r.Status())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ReviewChange(ctx, d)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	efficient := &openrouter.ChangeReview{Verdict: "efficient"}
	needsWork := &openrouter.ChangeReview{
		Suggestions: []openrouter.Suggestion{{TokensSaved: 20}, {TokensSaved: 4}},
		Verdict:     "needs_work",
	}
	reviews := []*ChangeReview{
		{Diff: vcs.FileDiff{Path: "src/a.rs"}, AddedTokens: 40, Review: efficient},
		{Diff: vcs.FileDiff{Path: "src/b.rs"}, AddedTokens: 80, Review: needsWork},
		{Diff: vcs.FileDiff{Path: "src/c.rs"}, AddedTokens: 8, Err: errors.New("failed")},
	}

	sum := Summarize(reviews)
	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, 1, sum.Efficient)
	assert.Equal(t, 128, sum.AddedTokens)
	assert.Equal(t, 2, sum.Suggestions)
	assert.Equal(t, 24, sum.Saveable)
	assert.Equal(t, []string{"src/b.rs"}, sum.ToFix)
	assert.InDelta(t, 18.75, sum.SavePct(), 0.001)
}
