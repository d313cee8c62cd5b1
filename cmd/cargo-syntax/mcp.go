package main

import (
	"github.com/spf13/cobra"

	"github.com/syntaxai/cargo-syntax/internal/mcpserver"
	scannerSvc "github.com/syntaxai/cargo-syntax/internal/service/scanner"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for LLM tool integration",
	Long: `Starts an MCP (Model Context Protocol) server over stdio that exposes the
token analyses as tools an assistant can call.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "cargo-syntax": {
        "command": "cargo-syntax",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - token_audit     Per-file tokens, lines and T/L with the project grade
  - token_top       Heaviest files by token count
  - token_grade     Efficiency grade and README badge
  - token_deep      Duplicated blocks and near-duplicate functions
  - token_history   Token trend over recent commits`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// The client never sees stderr.
	svc := scannerSvc.New(
		scannerSvc.WithConfig(cfg),
		scannerSvc.WithWarn(func(string, error) {}),
	)
	server, err := mcpserver.NewServer(version, mcpserver.WithScanner(svc))
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
