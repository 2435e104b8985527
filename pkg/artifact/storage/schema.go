package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// sqliteSchema creates the artifact tables on SQLite.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS artifacts (
    name TEXT NOT NULL,
    version INTEGER NOT NULL,
    mime_type TEXT NOT NULL,
    size INTEGER NOT NULL,
    data BLOB NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (name, version)
)`,
	`CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at)`,
	`CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`,
}

// mysqlSchema creates the artifact tables on MySQL.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS artifacts (
    name VARCHAR(255) NOT NULL,
    version BIGINT NOT NULL,
    mime_type VARCHAR(255) NOT NULL,
    size BIGINT NOT NULL,
    data LONGBLOB NOT NULL,
    created_at BIGINT NOT NULL,
    PRIMARY KEY (name, version),
    INDEX idx_artifacts_created_at (created_at)
)`,
	`CREATE TABLE IF NOT EXISTS schema_version (
    version INT PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`,
}

const (
	sqliteInsertSchemaVersion = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?) ON CONFLICT(version) DO NOTHING`
	mysqlInsertSchemaVersion  = `INSERT IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`

	getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`
)

const (
	// sqliteInsertNext assigns the next version and inserts in one statement,
	// which SQLite runs under a single write lock.
	sqliteInsertNext = `INSERT INTO artifacts (name, version, mime_type, size, data, created_at)
SELECT ?, COALESCE(MAX(version) + 1, 0), ?, ?, ?, ? FROM artifacts WHERE name = ?
RETURNING version`

	mysqlSelectNext = `SELECT COALESCE(MAX(version) + 1, 0) FROM artifacts WHERE name = ? FOR UPDATE`

	insertVersion = `INSERT INTO artifacts (name, version, mime_type, size, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	listLatest = `SELECT a.name, a.version, a.size, a.mime_type, a.created_at
FROM artifacts a
JOIN (SELECT name, MAX(version) AS version FROM artifacts GROUP BY name) l
  ON a.name = l.name AND a.version = l.version
ORDER BY a.name`

	loadLatest = `SELECT name, version, size, mime_type, created_at, data
FROM artifacts WHERE name = ? ORDER BY version DESC LIMIT 1`

	loadVersion = `SELECT name, version, size, mime_type, created_at, data
FROM artifacts WHERE name = ? AND version = ?`

	listVersions = `SELECT name, version, size, mime_type, created_at
FROM artifacts WHERE name = ? ORDER BY version ASC`

	maxVersions = `SELECT name, MAX(version) FROM artifacts GROUP BY name`

	deleteUpTo = `DELETE FROM artifacts WHERE name = ? AND version <= ?`

	deleteOlder = `DELETE FROM artifacts WHERE name = ? AND version < ? AND created_at < ?`
)
