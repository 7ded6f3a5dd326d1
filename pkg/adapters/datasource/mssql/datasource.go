// Package mssql implements the datasource interfaces over SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
)

// Datasource provides SQL Server query execution and schema introspection.
type Datasource struct {
	db *sql.DB
}

// New connects to SQL Server using a sqlserver:// connection URL.
func New(ctx context.Context, connString string) (*Datasource, error) {
	db, err := sql.Open("sqlserver", connString)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}
	return &Datasource{db: db}, nil
}

// Query runs a statement and returns results with column order preserved.
func (d *Datasource) Query(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	rows, err := d.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// GetTables returns the names of all tables in the dbo schema.
func (d *Datasource) GetTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = 'dbo' AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetColumns returns columns for a specific table.
func (d *Datasource) GetColumns(ctx context.Context, table string) ([]datasource.Column, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END,
			CASE WHEN kcu.COLUMN_NAME IS NULL THEN 0 ELSE 1 END
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON kcu.TABLE_SCHEMA = c.TABLE_SCHEMA
			AND kcu.TABLE_NAME = c.TABLE_NAME
			AND kcu.COLUMN_NAME = c.COLUMN_NAME
			AND OBJECTPROPERTY(OBJECT_ID(kcu.CONSTRAINT_SCHEMA + '.' + kcu.CONSTRAINT_NAME), 'IsPrimaryKey') = 1
		WHERE c.TABLE_SCHEMA = 'dbo' AND c.TABLE_NAME = @p1
		ORDER BY c.ORDINAL_POSITION`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.Column
	for rows.Next() {
		var (
			col                   datasource.Column
			isNullable, isPrimary int
		)
		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &isPrimary); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		col.IsNullable = isNullable == 1
		col.IsPrimary = isPrimary == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetRowCount returns the number of rows in a table.
func (d *Datasource) GetRowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(table))
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return count, nil
}

// GetSampleRows returns up to limit rows from a table.
func (d *Datasource) GetSampleRows(ctx context.Context, table string, limit int) (*datasource.QueryResult, error) {
	query := fmt.Sprintf("SELECT TOP (%d) * FROM %s", limit, quoteIdentifier(table))
	return d.Query(ctx, query)
}

// Ping verifies the database is reachable.
func (d *Datasource) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the database connection.
func (d *Datasource) Close() error {
	return d.db.Close()
}

// collectRows converts database/sql rows into the ordered result shape.
func collectRows(rows *sql.Rows) (*datasource.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read column names: %w", err)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = values[i]
			}
		}
		resultRows = append(resultRows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &datasource.QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// quoteIdentifier brackets a SQL Server identifier.
func quoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
