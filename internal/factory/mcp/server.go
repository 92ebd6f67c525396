// Package mcp exposes the query engine as Model Context Protocol tools over
// stdio.
package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rsned/factory-planner/internal/factory/engine"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "factory-planner"

// Server wraps an mcp-go server around an Engine.
type Server struct {
	engine *engine.Engine
	mcp    *server.MCPServer
	logger *slog.Logger
}

// NewServer creates a server and registers every tool.
func NewServer(eng *engine.Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: eng,
		logger: logger,
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
	}

	s.mcp.AddTool(queryTool(), s.handleQuery)
	s.mcp.AddTool(flowGraphTool(), s.handleFlowGraph)
	s.mcp.AddTool(compareRecipesTool(), s.handleCompareRecipes)
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// Serve reads requests from in and writes responses to out until ctx is
// done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("MCP server starting", "tools", len(s.mcp.ListTools()))
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	err := stdio.Listen(ctx, in, out)
	s.logger.Info("MCP server stopped")
	return err
}

const instructions = `Plans production chains for a factory-building game.

Use "query" for any planner command, for example:
  produce 60 iron rods
  produce ? power from 30 coal
  recipes for iron ingot
  compare recipes for screws
Use "flow_graph" to get the Graphviz source for an optimization.
Rates are per minute and power is in MW.`
