// Package datasource defines the narrow database capabilities the query
// pipeline consumes, plus a registry the dialect adapters hook into.
package datasource

import "context"

// QueryResult contains the results of a SQL query execution. Columns carries
// the result column names in order; each row maps column name to value.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Column describes a table column for schema introspection.
type Column struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	IsPrimary  bool   `json:"is_primary"`
}

// SQLExecutor executes SQL queries against the database.
// Used for running generated SQL in text2sql workflows.
type SQLExecutor interface {
	// Query runs a statement and returns results with column order preserved.
	Query(ctx context.Context, sqlQuery string) (*QueryResult, error)
}

// SchemaExtractor extracts database schema information.
// Used to build the schema context embedded in agent prompts.
type SchemaExtractor interface {
	// GetTables returns the names of all user tables.
	GetTables(ctx context.Context) ([]string, error)

	// GetColumns returns columns for a specific table.
	GetColumns(ctx context.Context, table string) ([]Column, error)

	// GetRowCount returns the number of rows in a table.
	GetRowCount(ctx context.Context, table string) (int64, error)

	// GetSampleRows returns up to limit rows from a table.
	GetSampleRows(ctx context.Context, table string, limit int) (*QueryResult, error)
}

// Datasource is the full capability set one dialect adapter provides.
// Each implementation owns its connection and must be closed when done.
type Datasource interface {
	SQLExecutor
	SchemaExtractor

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}
