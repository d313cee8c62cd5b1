package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntaxai/cargo-syntax/internal/output"
	scannerSvc "github.com/syntaxai/cargo-syntax/internal/service/scanner"
	"github.com/syntaxai/cargo-syntax/internal/testutil"
	"github.com/syntaxai/cargo-syntax/pkg/config"
)

func wordCounter(s string) (int, error) {
	return len(strings.Fields(s)), nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	svc := scannerSvc.New(
		scannerSvc.WithConfig(config.DefaultConfig()),
		scannerSvc.WithCounter(wordCounter),
		scannerSvc.WithWarn(func(string, error) {}),
	)
	s, err := NewServer("test", WithScanner(svc))
	require.NoError(t, err)
	return s
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func crate(t *testing.T) string {
	return testutil.Project(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "fn main() {\n    let total = add(1, 2);\n    println!(\"{}\", total);\n}\n",
		"src/lib.rs":  "pub fn add(a: i32, b: i32) -> i32 {\n    a + b\n}\n",
	})
}

func TestServerCreation(t *testing.T) {
	server, err := NewServer("1.0.0-test")
	require.NoError(t, err)
	assert.NotNil(t, server.server)
	assert.NotNil(t, server.scanner)
}

func TestServerCreationEmptyVersion(t *testing.T) {
	server, err := NewServer("")
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"audit":   describeAudit,
		"top":     describeTop,
		"grade":   describeGrade,
		"deep":    describeDeep,
		"history": describeHistory,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			assert.NotEmpty(t, desc)
			assert.Contains(t, desc, "USE WHEN:")
			assert.Contains(t, desc, "INTERPRETING RESULTS:")
			assert.Contains(t, desc, "METRICS RETURNED:")
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, ".", getPath(ScanInput{}))
	assert.Equal(t, "/tmp/crate", getPath(ScanInput{Path: "/tmp/crate"}))
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"text", output.FormatText},
		{"bogus", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.expected, getFormat(ScanInput{Format: tt.format}))
		})
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: test error message", resultText(t, result))
}

func TestToolResult(t *testing.T) {
	data := map[string]any{"key": "value", "num": 42}
	result, _, err := toolResult(data, output.FormatJSON)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Equal(t, "value", decoded["key"])
}

func TestHandleAudit(t *testing.T) {
	root := crate(t)
	result, _, err := testServer(t).handleAudit(context.Background(), nil, ScanInput{Path: root, Format: "json"})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var decoded struct {
		Files       []map[string]any `json:"files"`
		TotalLines  int              `json:"total_lines"`
		TotalTokens int              `json:"total_tokens"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Len(t, decoded.Files, 2)
	assert.Equal(t, 7, decoded.TotalLines)
	assert.Positive(t, decoded.TotalTokens)
}

func TestHandleAuditMissingPath(t *testing.T) {
	result, _, err := testServer(t).handleAudit(context.Background(), nil, ScanInput{Path: "/nonexistent/crate"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(resultText(t, result), "Error: "))
}

func TestHandleTop(t *testing.T) {
	root := crate(t)
	input := TopInput{ScanInput: ScanInput{Path: root, Format: "json"}, N: 1}
	result, _, err := testServer(t).handleTop(context.Background(), nil, input)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var decoded struct {
		Files []struct {
			Rank int    `json:"rank"`
			Path string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, 1, decoded.Files[0].Rank)
	assert.Equal(t, "src/lib.rs", decoded.Files[0].Path)
}

func TestHandleGrade(t *testing.T) {
	root := crate(t)
	result, _, err := testServer(t).handleGrade(context.Background(), nil, ScanInput{Path: root, Format: "json"})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var decoded GradeResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	assert.Equal(t, 2, decoded.Files)
	assert.Equal(t, "A+", decoded.Grade)
	assert.Equal(t, "brightgreen", decoded.Color)
	assert.Contains(t, decoded.BadgeURL, "img.shields.io")
	assert.NotEmpty(t, decoded.Verdict)
}

func TestHandleDeep(t *testing.T) {
	block := "    let a = 1;\n    let b = 2;\n    let c = a + b;\n    println!(\"{}\", c);\n"
	root := testutil.Project(t, map[string]string{
		"src/one.rs": "fn one() {\n" + block + "}\n",
		"src/two.rs": "fn two() {\n" + block + "}\n",
	})

	result, _, err := testServer(t).handleDeep(context.Background(), nil, ScanInput{Path: root, Format: "json"})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var decoded struct {
		Blocks []struct {
			FileCount int `json:"file_count"`
		} `json:"duplicate_blocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	require.NotEmpty(t, decoded.Blocks)
	assert.Equal(t, 2, decoded.Blocks[0].FileCount)
}

func TestHandleHistory(t *testing.T) {
	r := testutil.InitRepo(t)
	r.Commit("first", map[string]string{"src/main.rs": "fn main() {}\n"})
	r.Commit("second", map[string]string{"src/lib.rs": "pub fn lib() {}\n"})

	input := HistoryInput{ScanInput: ScanInput{Path: r.Path, Format: "text"}, Commits: 5}
	result, _, err := testServer(t).handleHistory(context.Background(), nil, input)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	text := resultText(t, result)
	assert.Contains(t, text, "second")
	assert.Contains(t, text, "Trend:")
}

func TestHandleHistoryNotGit(t *testing.T) {
	result, _, err := testServer(t).handleHistory(context.Background(), nil, HistoryInput{ScanInput: ScanInput{Path: t.TempDir()}})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not a git repository")
}

func TestParsePrompt(t *testing.T) {
	def, err := parsePrompt([]byte("---\ndescription: Hello\narguments:\n  - name: path\n    default: \".\"\n---\nScan {{path}}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", def.Description)
	assert.Equal(t, "Scan {{path}}\n", def.Body)
	require.Len(t, def.Arguments, 1)
	assert.Equal(t, ".", def.Arguments[0].Default)

	def, err = parsePrompt([]byte("No frontmatter"))
	require.NoError(t, err)
	assert.Empty(t, def.Description)
	assert.Equal(t, "No frontmatter", def.Body)
}

func TestParsePromptUnusedArgument(t *testing.T) {
	_, err := parsePrompt([]byte("---\ndescription: x\narguments:\n  - name: window\n---\nno placeholder\n"))
	assert.ErrorContains(t, err, `argument "window" is not used`)
}

func TestPromptRender(t *testing.T) {
	def := promptDef{
		Body: "Audit {{path}} with n={{n}}",
		Arguments: []promptArg{
			{Name: "path", Default: "."},
			{Name: "n", Default: "5"},
		},
	}
	assert.Equal(t, "Audit . with n=5", def.render(nil))
	assert.Equal(t, "Audit crates/core with n=5", def.render(map[string]string{"path": "crates/core"}))
}

func TestLoadPrompts(t *testing.T) {
	defs, err := loadPrompts()
	require.NoError(t, err)

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
		assert.NotEmpty(t, def.Description, def.Name)
		assert.NotContains(t, def.render(nil), "{{", def.Name)
	}
	assert.Equal(t, []string{"efficiency-trend", "reduce-tokens", "token-budget"}, names)
}

func TestPromptHandler(t *testing.T) {
	def := promptDef{Description: "desc", Body: "look at {{path}}", Arguments: []promptArg{{Name: "path", Default: "."}}}
	handler := promptHandler(def)

	result, err := handler(context.Background(), &mcp.GetPromptRequest{})
	require.NoError(t, err)
	assert.Equal(t, "desc", result.Description)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.Role("user"), result.Messages[0].Role)
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "look at .", text.Text)

	result, err = handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "x", Arguments: map[string]string{"path": "src"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "look at src", result.Messages[0].Content.(*mcp.TextContent).Text)
}
