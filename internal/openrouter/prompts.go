package openrouter

import (
	"context"
	"fmt"
	"strings"
)

const rewritePrompt = "You are a Rust code optimizer focused on token efficiency. " +
	"Rewrite the given Rust code to minimize token count while preserving identical behavior. " +
	"Apply these rules: " +
	"- Prefer iterator chains over manual loops " +
	"- Use ? operator instead of match/unwrap on Result/Option " +
	"- Inline format args (write `\"{x}\"` not `\"{}\", x`) " +
	"- Remove redundant closures, borrows, lifetimes, clone calls " +
	"- Use manual_let_else, matches!, and other idiomatic patterns " +
	"- Collapse collapsible if/else blocks " +
	"- Remove unnecessary type annotations " +
	"- Remove comments that restate the code " +
	"Return ONLY the rewritten Rust code. No markdown fences, no explanations."

const explainPrompt = "You are a Rust code auditor. Given an ORIGINAL and REWRITTEN version of the same file, " +
	"list each change: what was changed and how many tokens it saves. " +
	"Be specific (mention function names, patterns)."

const reviewPrompt = "You are a Rust code auditor focused on token efficiency. " +
	"Analyze the given Rust file and list 3-8 DISTINCT improvements to reduce token count. " +
	"Each suggestion must be fundamentally different. Order by impact (highest savings first). " +
	"Do NOT repeat the same suggestion for multiple occurrences - mention it once."

var explainSchema = MustSchema("explain_result", `{
  "type": "object",
  "properties": {
    "changes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string", "description": "What was changed and where"},
          "tokens_saved": {"type": "integer", "description": "Number of tokens saved by this change"}
        },
        "required": ["description", "tokens_saved"],
        "additionalProperties": false
      }
    }
  },
  "required": ["changes"],
  "additionalProperties": false
}`)

var reviewSchema = MustSchema("review_result", `{
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
    }
  },
  "required": ["suggestions"],
  "additionalProperties": false
}`)

// Change is one item of a rewrite explanation.
type Change struct {
	Description string `json:"description"`
	TokensSaved int    `json:"tokens_saved"`
}

// Suggestion is one item of a file review.
type Suggestion struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	TokensSaved int    `json:"tokens_saved"`
}

// Rewrite asks model for a token-minimal version of code.
func (c *Client) Rewrite(ctx context.Context, model, code string) (string, error) {
	reply, err := c.Chat(ctx, model, rewritePrompt, code)
	if err != nil {
		return "", err
	}
	return StripFences(reply), nil
}

// Explain lists the changes between an original file and its rewrite.
func (c *Client) Explain(ctx context.Context, model, original, rewritten string) ([]Change, error) {
	var result struct {
		Changes []Change `json:"changes"`
	}
	input := fmt.Sprintf("ORIGINAL:\n%s\n\nREWRITTEN:\n%s", original, rewritten)
	if err := c.ChatJSON(ctx, model, explainPrompt, input, explainSchema, &result); err != nil {
		return nil, err
	}
	return result.Changes, nil
}

// Review asks model for distinct token-saving suggestions for one file.
func (c *Client) Review(ctx context.Context, model, code string) ([]Suggestion, error) {
	var result struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.ChatJSON(ctx, model, reviewPrompt, code, reviewSchema, &result); err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}

// EstimatedSavings sums the suggested savings, capped at half the file.
func EstimatedSavings(suggestions []Suggestion, fileTokens int) int {
	total := 0
	for _, s := range suggestions {
		total += s.TokensSaved
	}
	return min(total, fileTokens/2)
}

// DefaultContextLimit applies to models without a known limit.
const DefaultContextLimit = 20000

// ContextLimit is the largest file, in tokens, sent to model for review.
func ContextLimit(model string) int {
	id := strings.ToLower(model)
	has := func(sub string) bool { return strings.Contains(id, sub) }
	switch {
	case has("gemini"), has("claude-sonnet-4"), has("claude-opus"):
		return 100000
	case has("gpt-4o"), has("gpt-4.1"):
		return 80000
	case has("deepseek"), has("qwen"):
		return 30000
	default:
		return DefaultContextLimit
	}
}
