package openrouter

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Model is one entry of the models endpoint.
type Model struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ContextLength *int     `json:"context_length"`
	Pricing       *Pricing `json:"pricing"`
}

// Pricing holds per-token prices as decimal strings.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// PromptCost is the price per input token.
func (m Model) PromptCost() (float64, bool) {
	if m.Pricing == nil {
		return 0, false
	}
	return parsePrice(m.Pricing.Prompt)
}

// CompletionCost is the price per output token.
func (m Model) CompletionCost() (float64, bool) {
	if m.Pricing == nil {
		return 0, false
	}
	return parsePrice(m.Pricing.Completion)
}

// ListModels fetches every model OpenRouter offers.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	data, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding models: %w", err)
	}
	return resp.Data, nil
}

// codeKeywords select code-capable models when no search is given.
var codeKeywords = []string{"deepseek", "codestral", "coder", "qwen", "claude", "gpt-4", "gemini"}

// FilterModels keeps models whose id or name contains search, or, with an
// empty search, models whose id mentions a code-capable family. The result
// is sorted by prompt price, unpriced models last.
func FilterModels(models []Model, search string) []Model {
	q := strings.ToLower(search)
	var out []Model
	for _, m := range models {
		id := strings.ToLower(m.ID)
		if q != "" {
			if strings.Contains(id, q) || strings.Contains(strings.ToLower(m.Name), q) {
				out = append(out, m)
			}
			continue
		}
		if slices.ContainsFunc(codeKeywords, func(k string) bool { return strings.Contains(id, k) }) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b Model) int {
		return cmp.Compare(costOrMax(a), costOrMax(b))
	})
	return out
}

func costOrMax(m Model) float64 {
	if v, ok := m.PromptCost(); ok {
		return v
	}
	return math.MaxFloat64
}

// FormatContext renders the context length or a dash.
func FormatContext(m Model) string {
	if m.ContextLength == nil {
		return "-"
	}
	return strconv.Itoa(*m.ContextLength)
}

func formatPerMillion(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("$%.4f", v*1_000_000)
}

// FormatInputCost renders the price per million input tokens.
func FormatInputCost(m Model) string {
	return formatPerMillion(m.PromptCost())
}

// FormatOutputCost renders the price per million output tokens.
func FormatOutputCost(m Model) string {
	return formatPerMillion(m.CompletionCost())
}

// Pick is a recommended model for one use.
type Pick struct {
	Label       string
	Description string
	Model       Model
}

var pickCandidates = []struct {
	label, desc string
	ids         []string
}{
	{"Free", "free, good for trying out", []string{"qwen/qwen3-coder:free", "deepseek/deepseek-chat:free"}},
	{"Cheap", "best value for code tasks", []string{"deepseek/deepseek-chat", "deepseek/deepseek-chat-v3-0324"}},
	{"Best", "highest quality rewrites", []string{"anthropic/claude-sonnet-4", "anthropic/claude-sonnet-4.5"}},
	{"Large", "1M+ context for huge files", []string{"google/gemini-2.5-flash", "google/gemini-2.5-pro"}},
}

// Recommendations returns the first available candidate of each pick.
func Recommendations(models []Model) []Pick {
	var picks []Pick
	for _, p := range pickCandidates {
		for _, id := range p.ids {
			i := slices.IndexFunc(models, func(m Model) bool { return m.ID == id })
			if i >= 0 {
				picks = append(picks, Pick{Label: p.label, Description: p.desc, Model: models[i]})
				break
			}
		}
	}
	return picks
}
