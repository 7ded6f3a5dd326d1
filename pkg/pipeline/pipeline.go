// Package pipeline orchestrates the natural-language-to-SQL flow: prompt
// assembly, agent invocation, SQL extraction and validation, execution, and
// answer recovery, with an append-only history of every attempt.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
	"github.com/datasus-ai/txt2sql-engine/pkg/apperrors"
	"github.com/datasus-ai/txt2sql-engine/pkg/logging"
	"github.com/datasus-ai/txt2sql-engine/pkg/models"
	"github.com/datasus-ai/txt2sql-engine/pkg/prompts"
	"github.com/datasus-ai/txt2sql-engine/pkg/sqlcheck"
)

// Agent drafts a free-text transcript, including SQL, for one question.
type Agent interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// SchemaProvider supplies the database context injected into prompts.
type SchemaProvider interface {
	SchemaContext(ctx context.Context) (string, error)
}

// SQLExecutor runs one SELECT and returns ordered rows.
type SQLExecutor interface {
	Query(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error)
}

// Pipeline wires the agent, schema service and database together. Safe for
// concurrent use; the history lock is never held across agent or database
// calls.
type Pipeline struct {
	agent    Agent
	schema   SchemaProvider
	executor SQLExecutor
	logger   *zap.Logger

	mu      sync.Mutex
	history []models.QueryResult
}

// New creates a query pipeline.
func New(agent Agent, schema SchemaProvider, executor SQLExecutor, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		agent:    agent,
		schema:   schema,
		executor: executor,
		logger:   logger.Named("pipeline"),
	}
}

// ProcessNaturalLanguageQuery answers a natural-language question end to end.
// It never returns an error: every outcome, success or failure, is expressed
// as a QueryResult and appended to the history.
func (p *Pipeline) ProcessNaturalLanguageQuery(ctx context.Context, req models.QueryRequest) models.QueryResult {
	start := time.Now()

	userQuery := strings.TrimSpace(req.UserQuery)
	if userQuery == "" {
		return p.record(p.failed("", start, apperrors.CategoryValidation, apperrors.ErrEmptyQuery.Error(), req))
	}

	p.logger.Info("Processing natural language query",
		zap.String("session_id", req.SessionID),
		zap.String("user_query", userQuery))

	schemaContext, err := p.schema.SchemaContext(ctx)
	if err != nil {
		p.logger.Error("Schema context unavailable", zap.Error(err))
		return p.record(p.failed("", start, apperrors.CategoryDatabase, "falha ao obter o esquema do banco: "+err.Error(), req))
	}

	prompt := prompts.BuildQueryPrompt(schemaContext, userQuery)

	transcript, err := p.agent.Run(ctx, prompt)
	if err != nil {
		p.logger.Error("Agent call failed", zap.Error(err))
		return p.record(p.failed("", start, apperrors.CategoryAgent, "falha no agente: "+err.Error(), req))
	}
	p.logger.Debug("Agent transcript received",
		zap.String("transcript", logging.Truncate(transcript, maxTranscriptLogLen)))

	extracted, err := sqlcheck.ExtractSQL(transcript)
	if err != nil {
		// No SQL in the transcript. The agent may still have narrated a
		// usable answer.
		if parsed := sqlcheck.ParseAgentResults(transcript); parsed.Strategy != "" {
			return p.record(p.parsedResult("", parsed, start, req))
		}
		return p.record(p.failed("", start, apperrors.CategoryQueryProcessing, apperrors.ErrNoSQLFound.Error(), req))
	}

	normalized := sqlcheck.NormalizeCityCase(extracted)
	if normalized != extracted {
		p.logger.Info("City name capitalization normalized",
			zap.String("original", extracted),
			zap.String("normalized", normalized))
	}

	validation := sqlcheck.Validate(normalized)
	if !validation.IsSafe || !validation.IsValid {
		result := p.failed(normalized, start, apperrors.CategoryValidation,
			apperrors.ErrQueryBlocked.Error()+": "+strings.Join(blockReasons(validation), "; "), req)
		return p.record(result)
	}

	execResult, err := p.executor.Query(ctx, normalized)
	if err != nil {
		p.logger.Warn("Execution failed, attempting answer recovery from transcript",
			zap.Error(err))
		if parsed := sqlcheck.ParseAgentResults(transcript); parsed.Strategy != "" {
			return p.record(p.parsedResult(normalized, parsed, start, req))
		}
		return p.record(p.failed(normalized, start, apperrors.CategoryDatabase, err.Error(), req))
	}

	result := models.QueryResult{
		SQLQuery:      normalized,
		Columns:       execResult.Columns,
		Results:       execResult.Rows,
		Success:       true,
		ExecutionTime: time.Since(start).Seconds(),
		RowCount:      execResult.RowCount,
		Metadata:      p.baseMetadata(req),
	}
	result.Metadata["city_case_normalized"] = normalized != extracted
	return p.record(result)
}

// ValidateSQLQuery checks a statement without executing it.
func (p *Pipeline) ValidateSQLQuery(sqlQuery string) models.ValidationResult {
	return sqlcheck.Validate(sqlQuery)
}

// ExecuteSQLQuery validates and runs a caller-supplied SELECT. Blocked
// statements never reach the database.
func (p *Pipeline) ExecuteSQLQuery(ctx context.Context, sqlQuery string) models.QueryResult {
	start := time.Now()
	req := models.QueryRequest{}

	validation := sqlcheck.Validate(sqlQuery)
	if !validation.IsSafe || !validation.IsValid {
		p.logger.Warn("SQL query blocked",
			zap.Strings("reasons", blockReasons(validation)))
		return p.record(p.failed(sqlQuery, start, apperrors.CategoryValidation,
			apperrors.ErrQueryBlocked.Error()+": "+strings.Join(blockReasons(validation), "; "), req))
	}

	execResult, err := p.executor.Query(ctx, sqlQuery)
	if err != nil {
		return p.record(p.failed(sqlQuery, start, apperrors.CategoryDatabase, err.Error(), req))
	}

	return p.record(models.QueryResult{
		SQLQuery:      sqlQuery,
		Columns:       execResult.Columns,
		Results:       execResult.Rows,
		Success:       true,
		ExecutionTime: time.Since(start).Seconds(),
		RowCount:      execResult.RowCount,
		Metadata:      p.baseMetadata(req),
	})
}

// History returns a copy of every result recorded so far, oldest first.
func (p *Pipeline) History() []models.QueryResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.QueryResult, len(p.history))
	copy(out, p.history)
	return out
}

// Statistics aggregates the recorded history.
func (p *Pipeline) Statistics() models.QueryStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := models.QueryStatistics{TotalQueries: len(p.history)}
	if len(p.history) == 0 {
		return stats
	}

	var totalTime float64
	for _, r := range p.history {
		if r.Success {
			stats.SuccessfulQueries++
		}
		totalTime += r.ExecutionTime
	}
	stats.SuccessRate = float64(stats.SuccessfulQueries) / float64(stats.TotalQueries) * 100
	stats.AverageExecutionTime = totalTime / float64(stats.TotalQueries)
	stats.MostRecentQuery = p.history[len(p.history)-1].SQLQuery
	return stats
}

func (p *Pipeline) record(result models.QueryResult) models.QueryResult {
	p.mu.Lock()
	p.history = append(p.history, result)
	p.mu.Unlock()

	p.logger.Info("Query recorded",
		zap.Bool("success", result.Success),
		zap.Int("row_count", result.RowCount),
		zap.Float64("execution_time", result.ExecutionTime))
	return result
}

func (p *Pipeline) failed(sqlQuery string, start time.Time, category, message string, req models.QueryRequest) models.QueryResult {
	metadata := p.baseMetadata(req)
	metadata["error_category"] = category
	return models.QueryResult{
		SQLQuery:      sqlQuery,
		Results:       []map[string]any{},
		Success:       false,
		ExecutionTime: time.Since(start).Seconds(),
		ErrorMessage:  message,
		Metadata:      metadata,
	}
}

// parsedResult builds a successful result from an answer recovered out of the
// agent's narration rather than from an executed statement.
func (p *Pipeline) parsedResult(sqlQuery string, parsed sqlcheck.ParsedAnswer, start time.Time, req models.QueryRequest) models.QueryResult {
	metadata := p.baseMetadata(req)
	metadata["parse_strategy"] = parsed.Strategy
	return models.QueryResult{
		SQLQuery:      sqlQuery,
		Columns:       parsed.Columns,
		Results:       parsed.Rows,
		Success:       true,
		ExecutionTime: time.Since(start).Seconds(),
		RowCount:      parsed.RowCount,
		Metadata:      metadata,
	}
}

func (p *Pipeline) baseMetadata(req models.QueryRequest) map[string]any {
	metadata := map[string]any{}
	if req.SessionID != "" {
		metadata["session_id"] = req.SessionID
	}
	return metadata
}

// blockReasons merges validity and safety failures into one reason list.
func blockReasons(v models.ValidationResult) []string {
	reasons := append([]string{}, v.BlockedReasons...)
	if !v.IsValid {
		reasons = append(reasons, "Consulta não é uma operação SELECT")
	}
	return reasons
}

const maxTranscriptLogLen = 500
