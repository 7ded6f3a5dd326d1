package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

type schemaColumnInfo struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	IsPrimary  bool   `json:"is_primary"`
}

type schemaResult struct {
	Table    string             `json:"table"`
	RowCount int64              `json:"row_count"`
	Columns  []schemaColumnInfo `json:"columns"`
}

// RegisterSchemaTool adds the get_schema tool, returning the introspected
// layout of the SUS table.
func RegisterSchemaTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_schema",
		mcp.WithDescription("Returns the columns and row count of the SUS hospitalization table"),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := deps.Schema.GetTableInfo(ctx)
		if err != nil {
			deps.Logger.Error("Failed to introspect schema", zap.Error(err))
			return nil, fmt.Errorf("failed to introspect schema: %w", err)
		}

		result := schemaResult{
			Table:    info.Name,
			RowCount: info.RowCount,
		}
		for _, col := range info.Columns {
			result.Columns = append(result.Columns, schemaColumnInfo{
				Name:       col.Name,
				DataType:   col.DataType,
				IsNullable: col.IsNullable,
				IsPrimary:  col.IsPrimary,
			})
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}
