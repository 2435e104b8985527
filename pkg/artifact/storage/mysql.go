package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig contains configuration for the MySQL store.
type MySQLConfig struct {
	// DSN is the go-sql-driver/mysql data source name.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 20
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 10
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection.
	// Default: 10 minutes
	ConnMaxLifetime time.Duration
}

// DefaultMySQLConfig returns the default MySQL configuration without a DSN.
func DefaultMySQLConfig() *MySQLConfig {
	return &MySQLConfig{
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: 10 * time.Minute,
	}
}

// NewMySQLStore connects to MySQL and prepares the artifact schema.
func NewMySQLStore(ctx context.Context, config *MySQLConfig) (*SQLStore, error) {
	if config == nil || strings.TrimSpace(config.DSN) == "" {
		return nil, newOpenError(BackendMySQL, errors.New("mysql dsn cannot be empty"))
	}

	logger := slog.Default().With("component", "artifact.storage.mysql")

	dsn, err := mysqlDSN(config.DSN)
	if err != nil {
		return nil, newOpenError(BackendMySQL, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, newOpenError(BackendMySQL, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newOpenError(BackendMySQL, err)
	}

	s, err := newSQLStore(db, mysqlDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("MySQL store initialized", "max_open_conns", config.MaxOpenConns)
	return s, nil
}

// mysqlDSN parses the DSN and enforces the options the store relies on.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-key error, which
// racing writers can hit when the same new name is saved twice at once.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
