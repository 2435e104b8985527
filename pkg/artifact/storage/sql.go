package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/tabula/pkg/artifact"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	backend             string
	schema              []string
	insertSchemaVersion string
	// insertNext is a single statement assigning and returning the next
	// version. When empty, Save uses selectNext and insertVersion in a
	// transaction.
	insertNext string
	selectNext string
	// retryable reports whether a failed transactional save may be retried.
	retryable func(error) bool
}

// maxSaveAttempts bounds retries of a transactional save that lost a race.
const maxSaveAttempts = 3

var (
	sqliteDialect = dialect{
		backend:             BackendSQLite,
		schema:              sqliteSchema,
		insertSchemaVersion: sqliteInsertSchemaVersion,
		insertNext:          sqliteInsertNext,
	}

	mysqlDialect = dialect{
		backend:             BackendMySQL,
		schema:              mysqlSchema,
		insertSchemaVersion: mysqlInsertSchemaVersion,
		selectNext:          mysqlSelectNext,
		retryable:           isDuplicateKey,
	}
)

// SQLStore implements artifact.Store and artifact.Pruner on database/sql.
// Versions are decimal integers starting at 0, assigned inside the database
// so that concurrent writers never share a version.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect, logger *slog.Logger) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     time.Now,
	}
	if err := s.initialize(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize creates the schema and verifies its version.
func (s *SQLStore) initialize(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return s.storeErr("create_schema", err)
		}
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.ExecContext(ctx, s.dialect.insertSchemaVersion, SchemaVersion, s.now().Unix()); err != nil {
		return s.storeErr("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, getSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return s.storeErr("get_schema_version", err)
	}
	if version != SchemaVersion {
		return s.storeErr("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Save implements artifact.Store.
func (s *SQLStore) Save(ctx context.Context, name string, data []byte, mimeType string) (artifact.Version, error) {
	createdAt := s.now().UnixNano()

	var (
		version int64
		err     error
	)
	if s.dialect.insertNext != "" {
		err = s.db.QueryRowContext(ctx, s.dialect.insertNext,
			name, mimeType, len(data), data, createdAt, name).Scan(&version)
	} else {
		for attempt := 1; ; attempt++ {
			version, err = s.saveTx(ctx, name, data, mimeType, createdAt)
			if err == nil || s.dialect.retryable == nil || !s.dialect.retryable(err) || attempt >= maxSaveAttempts {
				break
			}
			s.logger.Debug("version conflict, retrying save", "artifact", name, "attempt", attempt)
		}
	}
	if err != nil {
		return "", s.storeErr("save", err)
	}

	s.logger.Debug("artifact saved", "artifact", name, "version", version, "size", len(data))
	return formatVersion(version), nil
}

func (s *SQLStore) saveTx(ctx context.Context, name string, data []byte, mimeType string, createdAt int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var version int64
	if err := tx.QueryRowContext(ctx, s.dialect.selectNext, name).Scan(&version); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, insertVersion, name, version, mimeType, len(data), data, createdAt); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version, nil
}

// List implements artifact.Store.
func (s *SQLStore) List(ctx context.Context) ([]artifact.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx, listLatest)
	if err != nil {
		return nil, s.storeErr("list", err)
	}
	defer rows.Close()

	out, err := scanDescriptors(rows)
	if err != nil {
		return nil, s.storeErr("list", err)
	}
	return out, nil
}

// Load implements artifact.Store.
func (s *SQLStore) Load(ctx context.Context, name string, version artifact.Version) (*artifact.Artifact, error) {
	var row *sql.Row
	if version == "" {
		row = s.db.QueryRowContext(ctx, loadLatest, name)
	} else {
		v, err := parseVersion(version)
		if err != nil {
			return nil, artifact.ErrNotFound
		}
		row = s.db.QueryRowContext(ctx, loadVersion, name, v)
	}

	var (
		a         artifact.Artifact
		v         int64
		createdAt int64
	)
	err := row.Scan(&a.Name, &v, &a.Size, &a.MimeType, &createdAt, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, s.storeErr("load", err)
	}
	a.Version = formatVersion(v)
	a.CreatedAt = time.Unix(0, createdAt)
	return &a, nil
}

// Versions implements artifact.Store.
func (s *SQLStore) Versions(ctx context.Context, name string) ([]artifact.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx, listVersions, name)
	if err != nil {
		return nil, s.storeErr("versions", err)
	}
	defer rows.Close()

	out, err := scanDescriptors(rows)
	if err != nil {
		return nil, s.storeErr("versions", err)
	}
	return out, nil
}

// PruneVersions implements artifact.Pruner.
func (s *SQLStore) PruneVersions(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	latest, err := s.latestVersions(ctx)
	if err != nil {
		return 0, s.storeErr("prune_versions", err)
	}

	var deleted int64
	for name, last := range latest {
		cutoff := last - int64(keep)
		if cutoff < 0 {
			continue
		}
		res, err := s.db.ExecContext(ctx, deleteUpTo, name, cutoff)
		if err != nil {
			return deleted, s.storeErr("prune_versions", err)
		}
		n, _ := res.RowsAffected()
		deleted += n
	}
	return deleted, nil
}

// PruneBefore implements artifact.Pruner.
func (s *SQLStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	latest, err := s.latestVersions(ctx)
	if err != nil {
		return 0, s.storeErr("prune_before", err)
	}

	var deleted int64
	for name, last := range latest {
		res, err := s.db.ExecContext(ctx, deleteOlder, name, last, cutoff.UnixNano())
		if err != nil {
			return deleted, s.storeErr("prune_before", err)
		}
		n, _ := res.RowsAffected()
		deleted += n
	}
	return deleted, nil
}

func (s *SQLStore) latestVersions(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, maxVersions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			name string
			last int64
		)
		if err := rows.Scan(&name, &last); err != nil {
			return nil, err
		}
		out[name] = last
	}
	return out, rows.Err()
}

// Ping implements artifact.Pinger.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storeErr("ping", err)
	}
	return nil
}

// Close implements artifact.Store.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return s.storeErr("close", err)
	}
	s.logger.Info("artifact store closed")
	return nil
}

// DB returns the underlying database handle.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) storeErr(op string, err error) error {
	return artifact.NewStoreError(s.dialect.backend, op, err)
}

func scanDescriptors(rows *sql.Rows) ([]artifact.Descriptor, error) {
	out := []artifact.Descriptor{}
	for rows.Next() {
		var (
			d         artifact.Descriptor
			v         int64
			createdAt int64
		)
		if err := rows.Scan(&d.Name, &v, &d.Size, &d.MimeType, &createdAt); err != nil {
			return nil, err
		}
		d.Version = formatVersion(v)
		d.CreatedAt = time.Unix(0, createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}
