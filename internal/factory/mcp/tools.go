package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rsned/factory-planner/internal/factory/result"
)

// Output formats for the query tool.
const (
	FormatText    = "text"
	FormatMessage = "message"
)

func queryTool() mcp.Tool {
	return mcp.NewTool("query",
		mcp.WithDescription("Run a planner query: optimizations (produce ...), recipe lookups (recipes for ...), recipe comparisons (compare recipes for ...) or entity details. Returns the plain text report, or the chat message layout as JSON."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query text, e.g. 'produce 60 iron rods from ? iron ore'"),
		),
		mcp.WithString("format",
			mcp.Description("Result layout"),
			mcp.Enum(FormatText, FormatMessage),
			mcp.DefaultString(FormatText),
		),
	)
}

func flowGraphTool() mcp.Tool {
	return mcp.NewTool("flow_graph",
		mcp.WithDescription("Solve an optimization query and return its production flow as Graphviz DOT source."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Optimization query text, e.g. 'produce 60 iron rods'"),
		),
	)
}

func compareRecipesTool() mcp.Tool {
	return mcp.NewTool("compare_recipes",
		mcp.WithDescription("Compare the standard recipe for an item against its alternates by resource use, power and complexity."),
		mcp.WithString("item",
			mcp.Required(),
			mcp.Description("Item name, e.g. 'screws'"),
		),
		mcp.WithBoolean("exclude_alternates",
			mcp.Description("Build each chain from standard recipes only"),
			mcp.DefaultBool(false),
		),
	)
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := req.GetString("format", FormatText)
	if format != FormatText && format != FormatMessage {
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}

	res, err := s.engine.Query(ctx, raw)
	if err != nil {
		return nil, err
	}
	if e, ok := res.(result.Error); ok {
		return mcp.NewToolResultError(e.Text), nil
	}

	if format == FormatText {
		return mcp.NewToolResultText(res.String()), nil
	}
	data, err := json.MarshalIndent(res.Message(result.NewBreadcrumbs(raw)), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleFlowGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.engine.Query(ctx, raw)
	if err != nil {
		return nil, err
	}
	switch r := res.(type) {
	case result.Error:
		return mcp.NewToolResultError(r.Text), nil
	case *result.Optimization:
		if !r.HasSolution() {
			return mcp.NewToolResultError(r.String()), nil
		}
		return mcp.NewToolResultText(r.Graph().DOT()), nil
	default:
		return mcp.NewToolResultError("flow graphs are only available for optimization queries"), nil
	}
}

func (s *Server) handleCompareRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := req.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw := "compare recipes for " + item
	if req.GetBool("exclude_alternates", false) {
		raw += " without alternate recipes"
	}

	res, err := s.engine.Query(ctx, raw)
	if err != nil {
		return nil, err
	}
	if e, ok := res.(result.Error); ok {
		return mcp.NewToolResultError(e.Text), nil
	}
	return mcp.NewToolResultText(res.String()), nil
}
