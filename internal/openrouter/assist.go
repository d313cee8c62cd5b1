package openrouter

import (
	"context"
	"fmt"
	"strings"
)

const refactorPrompt = "You are a Rust architect analyzing an entire project for cross-file refactoring opportunities. " +
	"Focus on: " +
	"1. Duplicated code patterns across files (similar functions, repeated struct definitions, copy-pasted logic) " +
	"2. Code that should be extracted into shared modules, traits, or utility functions " +
	"3. Patterns where a generic/trait-based approach would eliminate repetition " +
	"Only suggest changes with clear, significant token savings. " +
	"Each suggestion must reference the specific files and functions involved. " +
	"Order by impact (highest savings first)."

const explainFilePrompt = "You are a Rust code explainer for developer onboarding. " +
	"Given a Rust source file, explain what it does clearly and concisely. " +
	"Focus on purpose, key types/functions, and how it fits into a project. " +
	"Be brief - developers want to understand quickly, not read an essay."

const explainProjectPrompt = "You are a Rust project explainer for developer onboarding. " +
	"Given a list of all source files with their sizes and contents, " +
	"explain the project architecture: what it does, how modules connect, " +
	"and where a new developer should start reading. Be concise."

const testsPrompt = "You are a Rust test engineer. Given a Rust source file from a crate, generate integration tests. " +
	"The tests will be placed in a separate file (tests/ directory), NOT inline in the source. " +
	"Rules: " +
	"1. Import the crate with `use <crate_name>::<module>::*;` - do NOT use `mod tests` or `use super::*;` " +
	"2. Write top-level #[test] functions - no wrapping `mod tests` block " +
	"3. Test every public function, including edge cases and error paths " +
	"4. Use assert!, assert_eq!, assert_ne! - no external test frameworks " +
	"5. For functions that return Result, test both Ok and Err paths " +
	"6. Use descriptive test names: test_<function>_<scenario> " +
	"7. Keep tests minimal and token-efficient (no unnecessary comments) " +
	"8. If a function requires complex setup (filesystem, network), mark with #[ignore] " +
	"9. In Rust edition 2024, std::env::set_var/remove_var are unsafe - wrap in unsafe {} " +
	"10. Return ONLY the test functions, no markdown fences or explanations"

const coveragePrompt = "Given a Rust source file and generated tests, produce a brief summary of test coverage."

const changesPrompt = "You are a Rust code auditor focused on token efficiency. " +
	"You are reviewing ONLY the changed/new code in a file. " +
	"Analyze the full file content but focus your suggestions on the recently changed parts. " +
	"List 1-5 concrete improvements to make the changes more token-efficient. " +
	"Only suggest changes that are clearly beneficial - if the code is already efficient, return an empty list."

var refactorSchema = MustSchema("refactor_result", `{
  "type": "object",
  "properties": {
    "patterns": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string", "description": "What is duplicated and where"},
          "files": {"type": "array", "items": {"type": "string"}, "description": "Files involved in this pattern"},
          "suggestion": {"type": "string", "description": "How to refactor: extract to shared fn/trait/module"},
          "tokens_saved": {"type": "integer", "description": "Estimated total tokens saved across all files"}
        },
        "required": ["description", "files", "suggestion", "tokens_saved"],
        "additionalProperties": false
      }
    },
    "summary": {"type": "string", "description": "Overall assessment of project duplication level"}
  },
  "required": ["patterns", "summary"],
  "additionalProperties": false
}`)

var fileExplanationSchema = MustSchema("file_explanation", `{
  "type": "object",
  "properties": {
    "purpose": {"type": "string", "description": "One-sentence summary of what this file does"},
    "key_items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "description": "Name of the function/struct/enum/trait"},
          "kind": {"type": "string", "description": "One of: function, struct, enum, trait, const, macro"},
          "description": {"type": "string", "description": "What it does in one sentence"}
        },
        "required": ["name", "kind", "description"],
        "additionalProperties": false
      }
    },
    "depends_on": {"type": "array", "items": {"type": "string"}, "description": "Key crate or module dependencies"}
  },
  "required": ["purpose", "key_items", "depends_on"],
  "additionalProperties": false
}`)

var projectExplanationSchema = MustSchema("project_explanation", `{
  "type": "object",
  "properties": {
    "summary": {"type": "string", "description": "2-3 sentence project summary"},
    "modules": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "path": {"type": "string"},
          "purpose": {"type": "string", "description": "One sentence"}
        },
        "required": ["path", "purpose"],
        "additionalProperties": false
      }
    },
    "start_here": {"type": "string", "description": "Which file(s) to read first and why"}
  },
  "required": ["summary", "modules", "start_here"],
  "additionalProperties": false
}`)

var coverageSchema = MustSchema("test_coverage", `{
  "type": "object",
  "properties": {
    "functions_tested": {"type": "array", "items": {"type": "string"}, "description": "List of public functions that have tests"},
    "functions_untestable": {"type": "array", "items": {"type": "string"}, "description": "Functions skipped (need I/O, network, etc.)"},
    "test_count": {"type": "integer", "description": "Total number of #[test] functions generated"},
    "coverage_notes": {"type": "string", "description": "Brief notes on what's covered and what's not"}
  },
  "required": ["functions_tested", "functions_untestable", "test_count", "coverage_notes"],
  "additionalProperties": false
}`)

var changeReviewSchema = MustSchema("diff_result", `{
  "type": "object",
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string", "description": "What to change and why it saves tokens"},
          "location": {"type": "string", "description": "Function name, line number, or code pattern"},
          "tokens_saved": {"type": "integer", "description": "Estimated number of tokens saved"}
        },
        "required": ["description", "location", "tokens_saved"],
        "additionalProperties": false
      }
    },
    "verdict": {"type": "string", "description": "One of: efficient, minor_issues, needs_work"}
  },
  "required": ["suggestions", "verdict"],
  "additionalProperties": false
}`)

// Pattern is one cross-file duplication a refactoring would remove.
type Pattern struct {
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Suggestion  string   `json:"suggestion"`
	TokensSaved int      `json:"tokens_saved"`
}

// Refactoring is the model's cross-file duplication report.
type Refactoring struct {
	Patterns []Pattern `json:"patterns"`
	Summary  string    `json:"summary"`
}

// Saveable sums the estimated savings of all patterns.
func (r *Refactoring) Saveable() int {
	total := 0
	for _, p := range r.Patterns {
		total += p.TokensSaved
	}
	return total
}

// KeyItem is a notable declaration of an explained file.
type KeyItem struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// FileExplanation describes one source file for a newcomer.
type FileExplanation struct {
	Purpose   string    `json:"purpose"`
	KeyItems  []KeyItem `json:"key_items"`
	DependsOn []string  `json:"depends_on"`
}

// ModuleInfo is one entry of a project explanation.
type ModuleInfo struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose"`
}

// ProjectExplanation describes a crate's architecture for a newcomer.
type ProjectExplanation struct {
	Summary   string       `json:"summary"`
	Modules   []ModuleInfo `json:"modules"`
	StartHere string       `json:"start_here"`
}

// Coverage summarises what a set of generated tests exercises.
type Coverage struct {
	FunctionsTested     []string `json:"functions_tested"`
	FunctionsUntestable []string `json:"functions_untestable"`
	TestCount           int      `json:"test_count"`
	Notes               string   `json:"coverage_notes"`
}

// ChangeReview is the model's verdict on the changed part of a file.
type ChangeReview struct {
	Suggestions []Suggestion `json:"suggestions"`
	Verdict     string       `json:"verdict"`
}

// Efficient reports whether the change needs no follow-up.
func (r *ChangeReview) Efficient() bool {
	return len(r.Suggestions) == 0 || r.Verdict == "efficient"
}

// Refactor asks model for cross-file duplication in a project manifest.
func (c *Client) Refactor(ctx context.Context, model, manifest string) (*Refactoring, error) {
	var result Refactoring
	if err := c.ChatJSON(ctx, model, refactorPrompt, manifest, refactorSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExplainFile asks model to describe one source file.
func (c *Client) ExplainFile(ctx context.Context, model, code string) (*FileExplanation, error) {
	var result FileExplanation
	if err := c.ChatJSON(ctx, model, explainFilePrompt, code, fileExplanationSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExplainProject asks model to describe a project from its manifest.
func (c *Client) ExplainProject(ctx context.Context, model, manifest string) (*ProjectExplanation, error) {
	var result ProjectExplanation
	if err := c.ChatJSON(ctx, model, explainProjectPrompt, manifest, projectExplanationSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateTests asks model for integration tests. prompt carries the crate
// name, module path and source.
func (c *Client) GenerateTests(ctx context.Context, model, prompt string) (string, error) {
	reply, err := c.Chat(ctx, model, testsPrompt, prompt)
	if err != nil {
		return "", err
	}
	return ExtractCode(reply), nil
}

// Coverage asks model which functions of code the tests exercise.
func (c *Client) Coverage(ctx context.Context, model, code, tests string) (*Coverage, error) {
	var result Coverage
	input := fmt.Sprintf("SOURCE:\n%s\n\nGENERATED TESTS:\n%s", code, tests)
	if err := c.ChatJSON(ctx, model, coveragePrompt, input, coverageSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReviewChanges asks model for token savings in the changed part of a file.
func (c *Client) ReviewChanges(ctx context.Context, model, patch, content string) (*ChangeReview, error) {
	var result ChangeReview
	input := fmt.Sprintf("GIT DIFF for this file:\n%s\n\nFULL FILE CONTENT:\n%s", patch, content)
	if err := c.ChatJSON(ctx, model, changesPrompt, input, changeReviewSchema, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExtractCode returns the body of the first fenced block in s, ignoring any
// text around it. Replies without a fence are returned trimmed.
func ExtractCode(s string) string {
	start := -1
	for _, open := range []string{"```rust", "```rs", "```"} {
		if i := strings.Index(s, open); i >= 0 {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(s)
	}
	body := s[start:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
