package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/models"
)

// RegisterQueryTools adds the question answering and SQL execution tools.
func RegisterQueryTools(s *server.MCPServer, deps *Deps) {
	registerAskQuestionTool(s, deps)
	registerExecuteSQLTool(s, deps)
	registerValidateSQLTool(s, deps)
}

func registerAskQuestionTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"ask_question",
		mcp.WithDescription(`Answer a natural-language question about the SUS hospitalization database.
The question is translated to SQL, validated, executed, and the results returned.
Questions should be asked in Portuguese, e.g. "Quantas internações houve em Porto Alegre?"`),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The natural-language question to answer")),
		mcp.WithString("session_id",
			mcp.Description("Optional session identifier for correlating related questions")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)

		question, _ := args["question"].(string)
		if strings.TrimSpace(question) == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		sessionID, _ := args["session_id"].(string)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		result := deps.Service.ProcessNaturalLanguageQuery(ctx, models.QueryRequest{
			UserQuery: question,
			SessionID: sessionID,
			Timestamp: time.Now().UTC(),
		})

		payload, err := json.Marshal(result)
		if err != nil {
			deps.Logger.Error("Failed to marshal query result", zap.Error(err))
			return nil, fmt.Errorf("failed to marshal query result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

func registerExecuteSQLTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"execute_sql",
		mcp.WithDescription(`Execute a SELECT statement against the SUS database.
The statement is validated first; mutating or suspicious SQL is rejected without execution.`),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SELECT statement to execute")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)

		sqlQuery, _ := args["sql"].(string)
		if strings.TrimSpace(sqlQuery) == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		result := deps.Service.ExecuteSQLQuery(ctx, sqlQuery)

		payload, err := json.Marshal(result)
		if err != nil {
			deps.Logger.Error("Failed to marshal execution result", zap.Error(err))
			return nil, fmt.Errorf("failed to marshal execution result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

func registerValidateSQLTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"validate_sql",
		mcp.WithDescription("Check whether a SQL statement would be allowed, without executing it."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SQL statement to validate")),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)

		sqlQuery, _ := args["sql"].(string)

		validation := deps.Service.ValidateSQLQuery(sqlQuery)

		payload, err := json.Marshal(validation)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal validation result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}
