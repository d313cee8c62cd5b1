package mcpserver

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/syntaxai/cargo-syntax/internal/output"
	"github.com/syntaxai/cargo-syntax/internal/report"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/deep"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
	"github.com/syntaxai/cargo-syntax/pkg/analyzer/project"
)

// ScanInput is the base input for all tools.
type ScanInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Crate root to scan. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, markdown or text."`
}

// TopInput adds the number of files to list.
type TopInput struct {
	ScanInput
	N int `json:"n,omitempty" jsonschema:"Number of files to return. Default 10."`
}

// HistoryInput adds the number of commits to measure.
type HistoryInput struct {
	ScanInput
	Commits int `json:"commits,omitempty" jsonschema:"Number of recent commits to measure. Default 10."`
}

// GradeResult is returned by token_grade.
type GradeResult struct {
	Ratio       float64 `json:"ratio"`
	Grade       string  `json:"grade"`
	Color       string  `json:"color"`
	Verdict     string  `json:"verdict"`
	Files       int     `json:"files"`
	TotalLines  int     `json:"total_lines"`
	TotalTokens int     `json:"total_tokens"`
	BadgeURL    string  `json:"badge_url"`
}

func getPath(input ScanInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input ScanInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	case "text":
		return output.FormatText
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) scan(ctx context.Context, input ScanInput) (*project.ProjectStats, error) {
	return s.scanner.Scan(ctx, getPath(input))
}

// Tool handlers

func (s *Server) handleAudit(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	ps, err := s.scan(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.NewAudit(ps), getFormat(input))
}

func (s *Server) handleTop(ctx context.Context, req *mcp.CallToolRequest, input TopInput) (*mcp.CallToolResult, any, error) {
	n := input.N
	if n <= 0 {
		n = report.DefaultTop
	}
	ps, err := s.scan(ctx, input.ScanInput)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.NewTop(ps, n), getFormat(input.ScanInput))
}

func (s *Server) handleGrade(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	ps, err := s.scan(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	badge := report.NewBadge(ps.Ratio())
	result := GradeResult{
		Ratio:       ps.Ratio(),
		Grade:       badge.Grade.Letter,
		Color:       badge.Grade.Color,
		Verdict:     grade.Describe(badge.Grade.Letter),
		Files:       len(ps.Files),
		TotalLines:  ps.TotalLines,
		TotalTokens: ps.TotalTokens,
		BadgeURL:    badge.URL,
	}
	return toolResult(result, getFormat(input))
}

func (s *Server) handleDeep(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	ps, err := s.scan(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.NewDeep(ps, deep.Run(ps)), getFormat(input))
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, any, error) {
	n := input.Commits
	if n <= 0 {
		n = report.DefaultTop
	}
	repo, err := s.scanner.OpenRepo(getPath(input.ScanInput))
	if err != nil {
		return toolError(err.Error())
	}
	snaps, err := s.scanner.History(ctx, repo, n)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.NewHistory(snaps), getFormat(input.ScanInput))
}
