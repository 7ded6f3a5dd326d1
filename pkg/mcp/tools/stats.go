package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterStatsTool adds the get_query_stats tool, returning aggregates over
// the query history.
func RegisterStatsTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_query_stats",
		mcp.WithDescription("Returns query counts, success rate and average execution time"),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := json.Marshal(deps.Service.Statistics())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal statistics: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}
