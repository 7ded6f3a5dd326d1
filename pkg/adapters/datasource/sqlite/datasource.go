// Package sqlite implements the datasource interfaces over a SQLite file,
// the default target database for the SUS hospitalization dataset.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
)

// Datasource provides SQLite query execution and schema introspection.
type Datasource struct {
	db *sql.DB
}

// New opens a SQLite database file.
func New(ctx context.Context, path string) (*Datasource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &Datasource{db: db}, nil
}

// NewWithDB wraps an existing connection. The caller keeps ownership of db.
func NewWithDB(db *sql.DB) *Datasource {
	return &Datasource{db: db}
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

// GetTables returns the names of all user tables.
func (d *Datasource) GetTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
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

// GetColumns returns columns for a specific table via PRAGMA table_info.
func (d *Datasource) GetColumns(ctx context.Context, table string) ([]datasource.Column, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.Column
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		columns = append(columns, datasource.Column{
			Name:       name,
			DataType:   ctype,
			IsNullable: notNull == 0,
			IsPrimary:  pk > 0,
		})
	}
	return columns, rows.Err()
}

// GetRowCount returns the number of rows in a table.
func (d *Datasource) GetRowCount(ctx context.Context, table string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(table))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", table, err)
	}
	return count, nil
}

// GetSampleRows returns up to limit rows from a table.
func (d *Datasource) GetSampleRows(ctx context.Context, table string, limit int) (*datasource.QueryResult, error) {
	rows, err := d.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdentifier(table), limit))
	if err != nil {
		return nil, fmt.Errorf("sample rows of %s: %w", table, err)
	}
	defer rows.Close()

	return collectRows(rows)
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
// Raw byte slices become strings so results serialize cleanly.
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

// quoteIdentifier quotes a SQLite identifier, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
