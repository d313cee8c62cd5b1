package deep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "fn main() {}", "fn main() {}", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "hello", "", 0.0},
		{"other empty", "", "hello", 0.0},
		{"disjoint", "a b c", "d e f", 0.0},
		{"one word differs", "fn format_input cost price", "fn format_output cost price", 0.75},
		{"longer side divides", "a b", "a b c d", 0.5},
		{"duplicates counted", "a a a b", "a c d e", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNearDuplicatesExcludeExactCopies(t *testing.T) {
	fn := "    let total = values.iter().map(|v| v * 2).sum::<i32>();\n    total\n}\n"
	code := "fn same(values: &[i32]) -> i32 {\n" + fn + "fn same(values: &[i32]) -> i32 {\n" + fn
	stats := statsOf(t, "a.rs", code)

	result := Run(stats)
	assert.Empty(t, result.NearDuplicates, "similarity 1.0 is left to the block detector")
}

func TestNearDuplicatesSkipShortBodies(t *testing.T) {
	code := "fn a() { 1 }\nfn b() { 2 }\n"
	stats := statsOf(t, "a.rs", code)
	assert.Empty(t, Run(stats).NearDuplicates)
}

func TestNearDuplicatesBelowThreshold(t *testing.T) {
	code := `fn load(path: &str) -> String {
    std::fs::read_to_string(path).unwrap_or_default()
}
fn save(path: &str, data: &str) {
    std::fs::write(path, data).expect("write failed");
}
`
	stats := statsOf(t, "a.rs", code)
	assert.Empty(t, Run(stats).NearDuplicates)
}

func TestNearDuplicatesSortedBySavings(t *testing.T) {
	small := `fn foo(values: &[i32]) -> i32 {
    values.iter().filter(|v| **v > 0).sum()
}
fn bar(values: &[i32]) -> i32 {
    values.iter().filter(|v| **v > 0).sum()
}
`
	large := `fn render_header(ctx: &Context, out: &mut String) {
    out.push_str(&format!("<h1>{}</h1>", ctx.title));
    out.push_str(&format!("<p>{}</p>", ctx.subtitle));
    out.push_str(&format!("<span>{}</span>", ctx.author));
}
fn render_footer(ctx: &Context, out: &mut String) {
    out.push_str(&format!("<h1>{}</h1>", ctx.title));
    out.push_str(&format!("<p>{}</p>", ctx.subtitle));
    out.push_str(&format!("<span>{}</span>", ctx.author));
}
`
	stats := statsOf(t, "small.rs", small, "large.rs", large)

	result := New(WithCounter(wordCounter)).Analyze(stats)
	require.Len(t, result.NearDuplicates, 2)
	assert.Equal(t, 1, result.NearDuplicates[0].FileIdx)
	assert.Equal(t, 0, result.NearDuplicates[1].FileIdx)
	assert.GreaterOrEqual(t, result.NearDuplicates[0].Savings, result.NearDuplicates[1].Savings)
}

func TestNearDuplicatesMinimumSavings(t *testing.T) {
	code := `fn foo(values: &[i32]) -> i32 {
    values.iter().filter(|v| **v > 0).sum()
}
fn bar(values: &[i32]) -> i32 {
    values.iter().filter(|v| **v > 0).sum()
}
`
	stats := statsOf(t, "a.rs", code)

	// 8 tokens per body gives 4 after the 60% cut
	result := New(WithCounter(func(string) (int, error) { return 8, nil })).Analyze(stats)
	assert.Empty(t, result.NearDuplicates)

	result = New(WithCounter(func(string) (int, error) { return 9, nil })).Analyze(stats)
	require.Len(t, result.NearDuplicates, 1)
	assert.Equal(t, 5, result.NearDuplicates[0].Savings)
}
