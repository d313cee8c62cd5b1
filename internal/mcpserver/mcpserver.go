package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	scannerSvc "github.com/syntaxai/cargo-syntax/internal/service/scanner"
)

// Server wraps the MCP server and registers the token tools.
type Server struct {
	server  *mcp.Server
	scanner *scannerSvc.Service
}

// Option configures a Server.
type Option func(*Server)

// WithScanner sets the scan service used by the tools.
func WithScanner(svc *scannerSvc.Service) Option {
	return func(s *Server) {
		s.scanner = svc
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cargo-syntax",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	for _, opt := range opts {
		opt(s)
	}
	if s.scanner == nil {
		s.scanner = scannerSvc.New()
	}
	s.registerTools()
	if err := s.registerPrompts(); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "token_audit",
		Description: describeAudit(),
	}, s.handleAudit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "token_top",
		Description: describeTop(),
	}, s.handleTop)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "token_grade",
		Description: describeGrade(),
	}, s.handleGrade)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "token_deep",
		Description: describeDeep(),
	}, s.handleDeep)

	// Needs a git repository
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "token_history",
		Description: describeHistory(),
	}, s.handleHistory)
}
