package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatasource(t *testing.T) *Datasource {
	t.Helper()

	ds, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	_, err = ds.db.Exec(`
		CREATE TABLE sus_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			CIDADE_RESIDENCIA_PACIENTE TEXT,
			MORTE INTEGER,
			VAL_TOT REAL
		)`)
	require.NoError(t, err)

	_, err = ds.db.Exec(`
		INSERT INTO sus_data (CIDADE_RESIDENCIA_PACIENTE, MORTE, VAL_TOT) VALUES
		('Porto Alegre', 1, 1500.50),
		('Porto Alegre', 0, 320.00),
		('Canoas', 0, 89.90)`)
	require.NoError(t, err)

	return ds
}

func TestQuery(t *testing.T) {
	ds := newTestDatasource(t)

	result, err := ds.Query(context.Background(),
		"SELECT COUNT(*) AS total FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'")
	require.NoError(t, err)

	assert.Equal(t, []string{"total"}, result.Columns)
	require.Equal(t, 1, result.RowCount)
	assert.EqualValues(t, 2, result.Rows[0]["total"])
}

func TestQueryColumnOrder(t *testing.T) {
	ds := newTestDatasource(t)

	result, err := ds.Query(context.Background(),
		"SELECT MORTE, CIDADE_RESIDENCIA_PACIENTE FROM sus_data ORDER BY id LIMIT 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"MORTE", "CIDADE_RESIDENCIA_PACIENTE"}, result.Columns)
	assert.Equal(t, "Porto Alegre", result.Rows[0]["CIDADE_RESIDENCIA_PACIENTE"])
}

func TestQueryError(t *testing.T) {
	ds := newTestDatasource(t)

	_, err := ds.Query(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)
}

func TestGetTables(t *testing.T) {
	ds := newTestDatasource(t)

	tables, err := ds.GetTables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "sus_data")
}

func TestGetColumns(t *testing.T) {
	ds := newTestDatasource(t)

	columns, err := ds.GetColumns(context.Background(), "sus_data")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	assert.Equal(t, "id", columns[0].Name)
	assert.True(t, columns[0].IsPrimary)
	assert.Equal(t, "CIDADE_RESIDENCIA_PACIENTE", columns[1].Name)
	assert.Equal(t, "TEXT", columns[1].DataType)
	assert.False(t, columns[1].IsPrimary)
}

func TestGetRowCount(t *testing.T) {
	ds := newTestDatasource(t)

	count, err := ds.GetRowCount(context.Background(), "sus_data")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestGetSampleRows(t *testing.T) {
	ds := newTestDatasource(t)

	samples, err := ds.GetSampleRows(context.Background(), "sus_data", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, samples.RowCount)
}
