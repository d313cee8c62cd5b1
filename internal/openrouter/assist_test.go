package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder replies with content and stores the request it saw.
func recorder(t *testing.T, content string, got *chatRequest) *Client {
	t.Helper()
	return server(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, got))
		_, _ = io.WriteString(w, reply(content))
	})
}

func TestRefactor(t *testing.T) {
	var got chatRequest
	c := recorder(t, `{"patterns": [
		{"description": "duplicate parse fns", "files": ["src/a.rs", "src/b.rs"], "suggestion": "extract trait", "tokens_saved": 120},
		{"description": "repeated error enum", "files": ["src/c.rs"], "suggestion": "share one enum", "tokens_saved": 30}
	], "summary": "moderate duplication"}`, &got)

	r, err := c.Refactor(context.Background(), "m", "--- src/a.rs ---")
	require.NoError(t, err)
	require.Len(t, r.Patterns, 2)
	assert.Equal(t, []string{"src/a.rs", "src/b.rs"}, r.Patterns[0].Files)
	assert.Equal(t, 150, r.Saveable())
	assert.Equal(t, "moderate duplication", r.Summary)
	assert.Equal(t, "refactor_result", got.ResponseFormat.JSONSchema.Name)
	assert.Equal(t, "--- src/a.rs ---", got.Messages[1].Content)
}

func TestExplainFile(t *testing.T) {
	var got chatRequest
	c := recorder(t, `{"purpose": "parses args", "key_items": [
		{"name": "Args", "kind": "struct", "description": "parsed flags"}
	], "depends_on": ["clap"]}`, &got)

	e, err := c.ExplainFile(context.Background(), "m", "struct Args;")
	require.NoError(t, err)
	assert.Equal(t, "parses args", e.Purpose)
	assert.Equal(t, []KeyItem{{"Args", "struct", "parsed flags"}}, e.KeyItems)
	assert.Equal(t, []string{"clap"}, e.DependsOn)
	assert.Equal(t, "file_explanation", got.ResponseFormat.JSONSchema.Name)
}

func TestExplainProject(t *testing.T) {
	var got chatRequest
	c := recorder(t, `{"summary": "a CLI", "modules": [{"path": "src/main.rs", "purpose": "entry"}], "start_here": "src/main.rs"}`, &got)

	e, err := c.ExplainProject(context.Background(), "m", "manifest")
	require.NoError(t, err)
	assert.Equal(t, "a CLI", e.Summary)
	assert.Equal(t, []ModuleInfo{{"src/main.rs", "entry"}}, e.Modules)
	assert.Equal(t, "src/main.rs", e.StartHere)
	assert.Equal(t, "project_explanation", got.ResponseFormat.JSONSchema.Name)
}

func TestGenerateTests(t *testing.T) {
	var got chatRequest
	c := recorder(t, "```rust\n#[test]\nfn test_add() {}\n```", &got)

	code, err := c.GenerateTests(context.Background(), "m", "Crate name: demo")
	require.NoError(t, err)
	assert.Equal(t, "#[test]\nfn test_add() {}", code)
	assert.Nil(t, got.ResponseFormat)
	assert.Contains(t, got.Messages[0].Content, "integration tests")
}

func TestCoverage(t *testing.T) {
	var got chatRequest
	c := recorder(t, `{"functions_tested": ["add"], "functions_untestable": ["load"], "test_count": 3, "coverage_notes": "io skipped"}`, &got)

	cov, err := c.Coverage(context.Background(), "m", "fn add() {}", "#[test] fn t() {}")
	require.NoError(t, err)
	assert.Equal(t, &Coverage{
		FunctionsTested:     []string{"add"},
		FunctionsUntestable: []string{"load"},
		TestCount:           3,
		Notes:               "io skipped",
	}, cov)
	assert.Equal(t, "SOURCE:\nfn add() {}\n\nGENERATED TESTS:\n#[test] fn t() {}", got.Messages[1].Content)
}

func TestReviewChanges(t *testing.T) {
	var got chatRequest
	c := recorder(t, `{"suggestions": [{"description": "use ?", "location": "fn run", "tokens_saved": 12}], "verdict": "minor_issues"}`, &got)

	r, err := c.ReviewChanges(context.Background(), "m", "+fn run() {}\n", "fn run() {}\n")
	require.NoError(t, err)
	assert.False(t, r.Efficient())
	assert.Equal(t, []Suggestion{{"use ?", "fn run", 12}}, r.Suggestions)
	assert.Equal(t, "GIT DIFF for this file:\n+fn run() {}\n\n\nFULL FILE CONTENT:\nfn run() {}\n", got.Messages[1].Content)
	assert.Equal(t, "diff_result", got.ResponseFormat.JSONSchema.Name)
}

func TestChangeReviewEfficient(t *testing.T) {
	assert.True(t, (&ChangeReview{Verdict: "needs_work"}).Efficient())
	assert.True(t, (&ChangeReview{Suggestions: []Suggestion{{}}, Verdict: "efficient"}).Efficient())
	assert.False(t, (&ChangeReview{Suggestions: []Suggestion{{}}, Verdict: "needs_work"}).Efficient())
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "fn main() {}", "fn main() {}"},
		{"rust block", "```rust\nfn main() {}\n```", "fn main() {}"},
		{"preamble", "Here are the tests:\n```rust\nfn test() {}\n```\n", "fn test() {}"},
		{"trailing prose", "```rs\nfn a() {}\n```\nDone.", "fn a() {}"},
		{"generic block", "```\nfn main() {}\n```", "fn main() {}"},
		{"unclosed", "```rust\nfn a() {}\n", "fn a() {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.in))
		})
	}
}
