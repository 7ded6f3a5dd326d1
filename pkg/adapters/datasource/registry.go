package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory opens a datasource from a driver-specific DSN
// (a file path for sqlite, a connection string for postgres and sqlserver).
type Factory func(ctx context.Context, dsn string) (Datasource, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(dbType string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[dbType] = factory
}

// Open creates a datasource of the given type. The adapter package must be
// imported (usually blank-imported by main) for its type to be registered.
func Open(ctx context.Context, dbType, dsn string) (Datasource, error) {
	registryMu.RLock()
	factory, ok := registry[dbType]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported database type %q (registered: %v)",
			dbType, RegisteredTypes())
	}
	return factory(ctx, dsn)
}

// RegisteredTypes returns the registered adapter types, sorted.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
