// Package mcpserver exposes flow analysis over the Model Context Protocol
// so coding agents can query control flow without shelling out.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the seer analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates an MCP server with all seer tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "seer",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_flow",
		Description: describeFlow(),
	}, handleAnalyzeFlow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_deadcode",
		Description: describeDeadcode(),
	}, handleAnalyzeDeadcode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_hotpaths",
		Description: describeHotpaths(),
	}, handleAnalyzeHotpaths)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_calls",
		Description: describeCalls(),
	}, handleAnalyzeCalls)
}
