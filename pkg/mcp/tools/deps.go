// Package tools registers the engine's MCP tools.
package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/models"
	"github.com/datasus-ai/txt2sql-engine/pkg/schema"
)

// QueryService is the pipeline surface the tools depend on.
type QueryService interface {
	ProcessNaturalLanguageQuery(ctx context.Context, req models.QueryRequest) models.QueryResult
	ValidateSQLQuery(sqlQuery string) models.ValidationResult
	ExecuteSQLQuery(ctx context.Context, sqlQuery string) models.QueryResult
	Statistics() models.QueryStatistics
}

// SchemaService is the schema surface the tools depend on.
type SchemaService interface {
	GetTableInfo(ctx context.Context) (*schema.TableInfo, error)
}

// Deps carries the services shared by all tool handlers.
type Deps struct {
	Service QueryService
	Schema  SchemaService
	Logger  *zap.Logger
}
