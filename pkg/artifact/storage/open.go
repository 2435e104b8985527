package storage

import (
	"context"
	"fmt"

	"mercator-hq/tabula/pkg/artifact"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
)

// Config selects and configures a store backend.
type Config struct {
	// Backend is one of "memory", "sqlite", "mysql", "redis".
	Backend string

	SQLite *SQLiteConfig
	MySQL  *MySQLConfig
	Redis  *RedisConfig
}

// Open creates the store named by config.Backend.
func Open(ctx context.Context, config Config) (artifact.Store, error) {
	switch config.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite, "":
		return NewSQLiteStore(config.SQLite)
	case BackendMySQL:
		return NewMySQLStore(ctx, config.MySQL)
	case BackendRedis:
		return NewRedisStore(ctx, config.Redis)
	default:
		return nil, newOpenError(config.Backend, fmt.Errorf("unknown backend %q", config.Backend))
	}
}

func newOpenError(backend string, err error) *artifact.StoreError {
	return artifact.NewStoreError(backend, "open", err)
}

// Compile-time interface checks.
var (
	_ artifact.Store  = (*MemoryStore)(nil)
	_ artifact.Pruner = (*MemoryStore)(nil)
	_ artifact.Store  = (*SQLStore)(nil)
	_ artifact.Pruner = (*SQLStore)(nil)
	_ artifact.Store  = (*RedisStore)(nil)
	_ artifact.Pruner = (*RedisStore)(nil)
)
