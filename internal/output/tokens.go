package output

import "fmt"

// TokenBudgetInfo relates a token count to an LLM context window.
type TokenBudgetInfo struct {
	Tokens       int     `json:"tokens"`
	Budget       int     `json:"budget"`
	BudgetLabel  string  `json:"budget_label"`
	UsagePercent float64 `json:"usage_percent"`
	Remaining    int     `json:"remaining"`
}

// Common context window sizes for LLMs
const (
	Budget8K   = 8000
	Budget16K  = 16000
	Budget32K  = 32000
	Budget64K  = 64000
	Budget128K = 128000
	Budget200K = 200000
)

// DefaultBudget is the context window an audit compares against.
const DefaultBudget = Budget128K

// FormatTokenCount formats a token count for display.
// Counts >= 1000 are formatted as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// BudgetInfo computes how much of budget tokens would occupy.
func BudgetInfo(tokens, budget int) TokenBudgetInfo {
	if budget <= 0 {
		budget = DefaultBudget
	}

	return TokenBudgetInfo{
		Tokens:       tokens,
		Budget:       budget,
		BudgetLabel:  formatBudgetLabel(budget),
		UsagePercent: float64(tokens) / float64(budget) * 100,
		Remaining:    max(budget-tokens, 0),
	}
}

// SmallestFit returns the smallest common window that holds tokens, or 0
// when none does.
func SmallestFit(tokens int) int {
	for _, b := range BudgetTiers() {
		if tokens <= b {
			return b
		}
	}
	return 0
}

func formatBudgetLabel(budget int) string {
	if budget >= 1000 {
		return fmt.Sprintf("%dk", budget/1000)
	}
	return fmt.Sprintf("%d", budget)
}

// BudgetTiers returns common budget tiers, smallest first.
func BudgetTiers() []int {
	return []int{Budget8K, Budget16K, Budget32K, Budget64K, Budget128K, Budget200K}
}
