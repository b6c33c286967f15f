package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/seerlab/seer/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes seer's flow
analysis as tools that LLMs can invoke. This enables AI assistants to
reason about execution paths, dead code, and call structure.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "seer": {
        "command": "seer",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_flow      Control flow graphs with per-function statistics
  - analyze_deadcode  Unreachable lines inside function bodies
  - analyze_hotpaths  The most complex execution paths per function
  - analyze_calls     Function calls with control flow context`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(context.Background())
}
