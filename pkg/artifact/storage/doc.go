// Package storage provides artifact.Store backends.
//
// # Backends
//
//   - MemoryStore: process memory, for tests and one-shot CLI runs
//   - SQLStore on SQLite: mattn/go-sqlite3 ("sqlite3") or modernc.org/sqlite
//     ("sqlite"), WAL mode and busy timeout applied per connection
//   - SQLStore on MySQL: go-sql-driver/mysql, versions assigned under
//     SELECT ... FOR UPDATE
//   - RedisStore: go-redis, versions assigned by INCR
//
// All backends number versions 0, 1, 2, ... per name and implement
// artifact.Pruner for retention.
//
// # Usage
//
//	store, err := storage.Open(ctx, storage.Config{
//	    Backend: storage.BackendSQLite,
//	    SQLite:  storage.DefaultSQLiteConfig(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	version, err := store.Save(ctx, "report.xlsx", data, tabular.MimeXLSX)
package storage
