package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver name.
	DriverCGO = "sqlite3"

	// DriverPureGo is the modernc.org/sqlite driver name.
	DriverPureGo = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite3" (cgo) or "sqlite"
	// (pure Go).
	// Default: "sqlite3"
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/artifacts.db",
		Driver:       DriverCGO,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// NewSQLiteStore opens a SQLite database and prepares the artifact schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	driver := config.Driver
	if driver == "" {
		driver = DriverCGO
	}

	logger := slog.Default().With("component", "artifact.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newOpenError(BackendSQLite, err)
		}
	}

	dsn, err := sqliteDSN(driver, config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, newOpenError(BackendSQLite, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s, err := newSQLStore(db, sqliteDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"driver", driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)
	return s, nil
}

// sqliteDSN builds a DSN that applies the pragmas on every pooled
// connection. The two drivers spell pragmas differently.
func sqliteDSN(driver string, config *SQLiteConfig) (string, error) {
	busy := config.BusyTimeout.Milliseconds()
	q := url.Values{}

	switch driver {
	case DriverCGO:
		q.Set("_busy_timeout", fmt.Sprintf("%d", busy))
		if config.WALMode {
			q.Set("_journal_mode", "WAL")
		}
	case DriverPureGo:
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		if config.WALMode {
			q.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		return "", newOpenError(BackendSQLite, fmt.Errorf("unknown sqlite driver %q", driver))
	}

	return "file:" + config.Path + "?" + q.Encode(), nil
}
