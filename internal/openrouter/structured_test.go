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

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fn main() {}", "fn main() {}"},
		{"  fn main() {}\n\n", "fn main() {}"},
		{"```rust\nfn main() {}\n```", "fn main() {}"},
		{"```rs\nfn a() {}\n```\n", "fn a() {}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\nplain\n```", "plain"},
		{"```rust\nno closing fence", "no closing fence"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.in), tt.in)
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"suggestions": [{"description": "d", "location": "fn a", "tokens_saved": 3}]}`, false},
		{"empty list", `{"suggestions": []}`, false},
		{"missing field", `{"suggestions": [{"description": "d", "tokens_saved": 3}]}`, true},
		{"wrong type", `{"suggestions": [{"description": "d", "location": "x", "tokens_saved": "3"}]}`, true},
		{"extra property", `{"suggestions": [], "note": "x"}`, true},
		{"not json", `suggestions: none`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reviewSchema.Validate(tt.doc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSchemaInvalid(t *testing.T) {
	_, err := NewSchema("bad", `{"type": 12}`)
	assert.Error(t, err)

	_, err = NewSchema("broken", `{`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustSchema("broken", `{`) })
}

func TestReview(t *testing.T) {
	var got chatRequest
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, reply("```json\n"+`{"suggestions": [
			{"description": "use ? instead of match", "location": "fn load", "tokens_saved": 40},
			{"description": "inline format args", "location": "line 12", "tokens_saved": 8}
		]}`+"\n```"))
	})

	suggestions, err := c.Review(context.Background(), "m", "fn load() {}")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, Suggestion{"use ? instead of match", "fn load", 40}, suggestions[0])

	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "review_result", got.ResponseFormat.JSONSchema.Name)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	assert.JSONEq(t, string(reviewSchema.raw), string(got.ResponseFormat.JSONSchema.Schema))
}

func TestReviewRejectsInvalidReply(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, reply(`{"suggestions": [{"description": "x"}]}`))
	})
	_, err := c.Review(context.Background(), "m", "fn a() {}")
	assert.ErrorContains(t, err, "review_result")
}

func TestExplain(t *testing.T) {
	var prompt string
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		prompt = req.Messages[1].Content
		_, _ = io.WriteString(w, reply(`{"changes": [{"description": "removed return", "tokens_saved": 2}]}`))
	})

	changes, err := c.Explain(context.Background(), "m", "old", "new")
	require.NoError(t, err)
	assert.Equal(t, []Change{{"removed return", 2}}, changes)
	assert.Equal(t, "ORIGINAL:\nold\n\nREWRITTEN:\nnew", prompt)
}

func TestRewrite(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, reply("```rust\nfn main() {}\n```"))
	})
	out, err := c.Rewrite(context.Background(), "m", "fn main() { return; }")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", out)
}

func TestEstimatedSavings(t *testing.T) {
	s := []Suggestion{{TokensSaved: 30}, {TokensSaved: 50}}
	assert.Equal(t, 80, EstimatedSavings(s, 1000))
	assert.Equal(t, 50, EstimatedSavings(s, 100))
	assert.Zero(t, EstimatedSavings(nil, 100))
}

func TestContextLimit(t *testing.T) {
	tests := map[string]int{
		"google/gemini-2.5-pro":      100000,
		"anthropic/claude-sonnet-4":  100000,
		"anthropic/claude-opus-4":    100000,
		"openai/gpt-4o":              80000,
		"openai/gpt-4.1-mini":        80000,
		"deepseek/deepseek-chat":     30000,
		"qwen/qwen3-coder:free":      30000,
		"mistralai/codestral-latest": DefaultContextLimit,
	}
	for model, want := range tests {
		assert.Equal(t, want, ContextLimit(model), model)
	}
}
