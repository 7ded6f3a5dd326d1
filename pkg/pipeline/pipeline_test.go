package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
	"github.com/datasus-ai/txt2sql-engine/pkg/apperrors"
	"github.com/datasus-ai/txt2sql-engine/pkg/llm"
	"github.com/datasus-ai/txt2sql-engine/pkg/models"
)

type staticSchema struct {
	context string
	err     error
}

func (s staticSchema) SchemaContext(ctx context.Context) (string, error) {
	return s.context, s.err
}

type fakeExecutor struct {
	result   *datasource.QueryResult
	err      error
	lastSQL  string
	numCalls int
}

func (f *fakeExecutor) Query(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	f.numCalls++
	f.lastSQL = sqlQuery
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestPipeline(transcript string, agentErr error, executor *fakeExecutor) (*Pipeline, *llm.MockLLMClient) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return transcript, agentErr
	}
	agent := llm.NewQueryAgent(mock)
	p := New(agent, staticSchema{context: "TABELA: sus_data"}, executor, zap.NewNop())
	return p, mock
}

func TestProcessNaturalLanguageQuerySuccess(t *testing.T) {
	transcript := "Vou contar as internações.\n" +
		"```sql\n" +
		"SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'porto alegre'\n" +
		"```\n" +
		"Final Answer: Foram 42 internações."
	executor := &fakeExecutor{result: &datasource.QueryResult{
		Columns:  []string{"COUNT(*)"},
		Rows:     []map[string]any{{"COUNT(*)": int64(42)}},
		RowCount: 1,
	}}
	p, mock := newTestPipeline(transcript, nil, executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{
		UserQuery: "Quantas internações houve em Porto Alegre?",
		SessionID: "s-1",
	})

	require.True(t, result.Success, "error: %s", result.ErrorMessage)
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, []string{"COUNT(*)"}, result.Columns)

	// The lowercase city literal must be normalized before execution.
	assert.Equal(t,
		"SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
		executor.lastSQL)
	assert.Equal(t, executor.lastSQL, result.SQLQuery)
	assert.Equal(t, true, result.Metadata["city_case_normalized"])
	assert.Equal(t, "s-1", result.Metadata["session_id"])

	assert.Equal(t, 1, mock.GenerateResponseCalls)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "TABELA: sus_data")
	assert.Contains(t, mock.Prompts[0], "Quantas internações houve em Porto Alegre?")

	assert.Len(t, p.History(), 1)
}

func TestProcessNaturalLanguageQueryEmpty(t *testing.T) {
	executor := &fakeExecutor{}
	p, _ := newTestPipeline("", nil, executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "   "})

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.CategoryValidation, result.Metadata["error_category"])
	assert.Equal(t, 0, executor.numCalls)
	assert.Len(t, p.History(), 1)
}

func TestProcessNaturalLanguageQueryAgentError(t *testing.T) {
	executor := &fakeExecutor{}
	p, _ := newTestPipeline("", errors.New("connection refused"), executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "quantos?"})

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.CategoryAgent, result.Metadata["error_category"])
	assert.Contains(t, result.ErrorMessage, "connection refused")
}

func TestProcessNaturalLanguageQuerySchemaError(t *testing.T) {
	mock := llm.NewMockLLMClient()
	p := New(llm.NewQueryAgent(mock), staticSchema{err: errors.New("no such table")}, &fakeExecutor{}, zap.NewNop())

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "quantos?"})

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.CategoryDatabase, result.Metadata["error_category"])
	assert.Equal(t, 0, mock.GenerateResponseCalls)
}

func TestProcessNaturalLanguageQueryBlocked(t *testing.T) {
	transcript := "```sql\nSELECT * FROM sus_data; DROP TABLE sus_data\n```"
	executor := &fakeExecutor{}
	p, _ := newTestPipeline(transcript, nil, executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "apague tudo"})

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.CategoryValidation, result.Metadata["error_category"])
	assert.Contains(t, result.ErrorMessage, "Palavra-chave perigosa detectada: DROP")
	assert.Equal(t, 0, executor.numCalls, "blocked SQL must never reach the database")
}

func TestProcessNaturalLanguageQueryNoSQLParsedAnswer(t *testing.T) {
	transcript := "Não preciso de SQL.\nFinal Answer: O total é 157 internações."
	executor := &fakeExecutor{}
	p, _ := newTestPipeline(transcript, nil, executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "quantos?"})

	require.True(t, result.Success)
	assert.Equal(t, "final_answer", result.Metadata["parse_strategy"])
	require.Len(t, result.Results, 1)
	assert.Equal(t, 157, result.Results[0]["result"])
	assert.Equal(t, 0, executor.numCalls)
}

func TestProcessNaturalLanguageQueryNoSQLNoAnswer(t *testing.T) {
	transcript := "Não sei responder a essa pergunta."
	p, _ := newTestPipeline(transcript, nil, &fakeExecutor{})

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "quantos?"})

	assert.False(t, result.Success)
	assert.Equal(t, apperrors.CategoryQueryProcessing, result.Metadata["error_category"])
	assert.Contains(t, result.ErrorMessage, "no SQL statement found")
}

func TestProcessNaturalLanguageQueryExecutionFallback(t *testing.T) {
	transcript := "```sql\nSELECT COUNT(*) FROM sus_data\n```\nFinal Answer: 98 internações."
	executor := &fakeExecutor{err: errors.New("database is locked")}
	p, _ := newTestPipeline(transcript, nil, executor)

	result := p.ProcessNaturalLanguageQuery(context.Background(), models.QueryRequest{UserQuery: "quantos?"})

	require.True(t, result.Success)
	assert.Equal(t, "final_answer", result.Metadata["parse_strategy"])
	require.Len(t, result.Results, 1)
	assert.Equal(t, 98, result.Results[0]["result"])
	assert.Equal(t, "SELECT COUNT(*) FROM sus_data", result.SQLQuery)
}

func TestExecuteSQLQueryBlocked(t *testing.T) {
	executor := &fakeExecutor{}
	p, _ := newTestPipeline("", nil, executor)

	result := p.ExecuteSQLQuery(context.Background(), "INSERT INTO sus_data VALUES (1)")

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "query blocked for safety")
	assert.Equal(t, 0, executor.numCalls)
}

func TestExecuteSQLQuerySuccess(t *testing.T) {
	executor := &fakeExecutor{result: &datasource.QueryResult{
		Columns:  []string{"IDADE"},
		Rows:     []map[string]any{{"IDADE": int64(30)}, {"IDADE": int64(65)}},
		RowCount: 2,
	}}
	p, _ := newTestPipeline("", nil, executor)

	result := p.ExecuteSQLQuery(context.Background(), "SELECT IDADE FROM sus_data")

	require.True(t, result.Success)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, []string{"IDADE"}, result.Columns)
}

func TestValidateSQLQuery(t *testing.T) {
	p, _ := newTestPipeline("", nil, &fakeExecutor{})

	safe := p.ValidateSQLQuery("SELECT COUNT(*) FROM sus_data")
	assert.True(t, safe.IsValid)
	assert.True(t, safe.IsSafe)

	blocked := p.ValidateSQLQuery("DROP TABLE sus_data")
	assert.False(t, blocked.IsValid)
	assert.False(t, blocked.IsSafe)
}

func TestStatistics(t *testing.T) {
	executor := &fakeExecutor{result: &datasource.QueryResult{
		Columns:  []string{"n"},
		Rows:     []map[string]any{{"n": int64(1)}},
		RowCount: 1,
	}}
	p, _ := newTestPipeline("", nil, executor)

	assert.Equal(t, models.QueryStatistics{}, p.Statistics())

	p.ExecuteSQLQuery(context.Background(), "SELECT 1")
	p.ExecuteSQLQuery(context.Background(), "DELETE FROM sus_data")

	stats := p.Statistics()
	assert.Equal(t, 2, stats.TotalQueries)
	assert.Equal(t, 1, stats.SuccessfulQueries)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)
	assert.Equal(t, "DELETE FROM sus_data", stats.MostRecentQuery)
}
