package mssql

import (
	"context"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register("sqlserver", func(ctx context.Context, dsn string) (datasource.Datasource, error) {
		return New(ctx, dsn)
	})
}
