package sqlcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasus-ai/txt2sql-engine/pkg/apperrors"
)

func TestExtractSQL_TaggedFence(t *testing.T) {
	transcript := "I will count the patients.\n```sql\nSELECT COUNT(*) FROM pacientes\n```\nDone."

	sql, err := ExtractSQL(transcript)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM pacientes", sql)
}

func TestExtractSQL_UntaggedFence(t *testing.T) {
	transcript := "Here is the query:\n```\nSELECT IDADE FROM sus_data WHERE SEXO = 1\n```"

	sql, err := ExtractSQL(transcript)
	require.NoError(t, err)
	assert.Equal(t, "SELECT IDADE FROM sus_data WHERE SEXO = 1", sql)
}

func TestExtractSQL_ActionInputMarker(t *testing.T) {
	transcript := "Thought: I should query the database.\n" +
		"Action: sql_db_query\n" +
		"Action Input: SELECT COUNT(*) FROM sus_data WHERE MORTE = 1\n" +
		"Observation: [(42,)]"

	sql, err := ExtractSQL(transcript)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM sus_data WHERE MORTE = 1", sql)
}

func TestExtractSQL_BareStatement(t *testing.T) {
	transcript := "A consulta usada foi SELECT COUNT(*) FROM sus_data\ne retornou 42 linhas."

	sql, err := ExtractSQL(transcript)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM sus_data", sql)
}

// The tagged fence must win even when a bare SELECT appears earlier in prose.
func TestExtractSQL_PriorityOrder(t *testing.T) {
	transcript := "The agent considered SELECT 1 first.\n" +
		"```sql\nSELECT COUNT(*) FROM sus_data\n```"

	sql, err := ExtractSQL(transcript)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM sus_data", sql)
}

func TestExtractSQL_NoCandidate(t *testing.T) {
	transcript := "Não foi possível gerar uma consulta para esta pergunta."

	sql, err := ExtractSQL(transcript)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoSQLFound)
	assert.Empty(t, sql)
}
