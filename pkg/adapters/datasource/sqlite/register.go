package sqlite

import (
	"context"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register("sqlite", func(ctx context.Context, dsn string) (datasource.Datasource, error) {
		return New(ctx, dsn)
	})
}
