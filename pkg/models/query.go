// Package models contains the value types shared across the query pipeline.
package models

import "time"

// QueryRequest is a natural-language question submitted to the pipeline.
// Immutable once created; the transport layer builds it from caller input.
type QueryRequest struct {
	UserQuery string         `json:"user_query"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// ValidationResult reports the safety and sanity checks for a SQL statement.
// IsSafe is true iff BlockedReasons is empty.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	IsSafe         bool     `json:"is_safe"`
	Warnings       []string `json:"warnings"`
	BlockedReasons []string `json:"blocked_reasons"`
}

// QueryResult is the outcome of one pipeline operation.
//
// Columns carries the result column names in order; each entry of Results
// maps column name to value for one row. A failed result always has a
// non-empty ErrorMessage and never fabricated rows. RowCount equals
// len(Results).
type QueryResult struct {
	SQLQuery      string           `json:"sql_query"`
	Columns       []string         `json:"columns,omitempty"`
	Results       []map[string]any `json:"results"`
	Success       bool             `json:"success"`
	ExecutionTime float64          `json:"execution_time"` // seconds
	RowCount      int              `json:"row_count"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
}

// QueryStatistics aggregates the pipeline's query history.
type QueryStatistics struct {
	TotalQueries         int     `json:"total_queries"`
	SuccessfulQueries    int     `json:"successful_queries"`
	SuccessRate          float64 `json:"success_rate"`           // percentage
	AverageExecutionTime float64 `json:"average_execution_time"` // seconds
	MostRecentQuery      string  `json:"most_recent_query,omitempty"`
}
