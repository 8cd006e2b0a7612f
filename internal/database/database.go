package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

// SchemaVersion is the schema this build reads and writes, tracked in
// PRAGMA user_version.
const SchemaVersion = 3

// ErrSchemaTooNew is returned when the database was created by a newer
// indexer than this build understands.
var ErrSchemaTooNew = errors.New("database schema is newer than this indexer supports")

// Default timeout for standalone database operations
const defaultTimeout = 5 * time.Second

// Store manages all database operations for the indexer.
type Store struct {
	db      *sql.DB
	dbPath  string
	mu      sync.Mutex
	txStart time.Time // transaction start time for metrics
}

// querier is satisfied by both *sql.DB and *sql.Tx, so statement helpers can
// run standalone or inside a directory transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the index database at dbPath and brings
// the schema up to SchemaVersion.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode with a busy timeout prevents "database is locked" errors;
	// foreign keys enforce file_tags referential integrity.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The engine is the only writer and every write path serializes through
	// the directory transaction, so one connection is all we want.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.migrate(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after migration failure: %v", closeErr)
		}
		return nil, err
	}

	logging.Info("Database ready at %s (schema v%d)", dbPath, SchemaVersion)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for statement helpers that must run
// outside any transaction, such as status writes after a rollback.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads the schema version and applies forward migrations. It
// refuses to run against a database newer than this build.
func (s *Store) migrate(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("migrate", start, err) }()

	var version int
	if err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version > SchemaVersion:
		err = fmt.Errorf("%w: found v%d, supported v%d", ErrSchemaTooNew, version, SchemaVersion)
		return err
	case version == SchemaVersion:
		return nil
	case version == 0:
		if err = s.createSchema(ctx); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	default:
		logging.Info("Migrating database schema v%d -> v%d", version, SchemaVersion)
		if version < 2 {
			if err = s.migrateV1toV2(ctx); err != nil {
				return fmt.Errorf("migration v1->v2 failed: %w", err)
			}
		}
		if version < 3 {
			if err = s.migrateV2toV3(ctx); err != nil {
				return fmt.Errorf("migration v2->v3 failed: %w", err)
			}
		}
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion))
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS roots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		added_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		last_scan_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS directories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_id INTEGER NOT NULL,
		parent_id INTEGER,
		path TEXT NOT NULL UNIQUE,
		rel_path TEXT NOT NULL,
		depth INTEGER NOT NULL,
		added_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		last_scan_at INTEGER,
		scan_status TEXT NOT NULL DEFAULT 'pending',
		FOREIGN KEY (root_id) REFERENCES roots(id) ON DELETE CASCADE,
		FOREIGN KEY (parent_id) REFERENCES directories(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_dirs_root ON directories(root_id);
	CREATE INDEX IF NOT EXISTS idx_dirs_parent ON directories(parent_id);

	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		directory_id INTEGER NOT NULL,
		path TEXT NOT NULL UNIQUE,
		rel_path TEXT NOT NULL,
		name TEXT NOT NULL,
		ext TEXT NOT NULL,
		size INTEGER NOT NULL,
		mtime INTEGER NOT NULL,
		ctime INTEGER NOT NULL,
		taken_ts INTEGER,
		taken_src TEXT NOT NULL DEFAULT 'none',
		kind TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		lat REAL,
		lon REAL,
		make TEXT,
		model TEXT,
		hash TEXT,
		mime TEXT,
		raw_metadata TEXT,
		scan_id TEXT NOT NULL DEFAULT '',
		indexed_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (directory_id) REFERENCES directories(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_files_directory ON files(directory_id);
	CREATE INDEX IF NOT EXISTS idx_files_kind ON files(kind);
	CREATE INDEX IF NOT EXISTS idx_files_mtime ON files(mtime);
	CREATE INDEX IF NOT EXISTS idx_files_taken_ts ON files(taken_ts);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		UNIQUE(key, value)
	);

	CREATE INDEX IF NOT EXISTS idx_tags_key ON tags(key);

	CREATE TABLE IF NOT EXISTS file_tags (
		file_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		PRIMARY KEY (file_id, tag_id),
		FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_file_tags_tag_file ON file_tags(tag_id, file_id);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE TABLE IF NOT EXISTS errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		scope TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT
	);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// migrateV1toV2 adds the directories.scan_status column.
func (s *Store) migrateV1toV2(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('directories')
		WHERE name='scan_status'
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for scan_status column: %w", err)
	}
	if exists {
		return nil
	}

	logging.Info("Migrating database: adding scan_status column to directories table")
	_, err = s.db.ExecContext(ctx, `
		ALTER TABLE directories ADD COLUMN scan_status TEXT NOT NULL DEFAULT 'pending'
	`)
	return err
}

// migrateV2toV3 adds the files.taken_src provenance column, backfilling
// mtime_fallback for rows that already carry a taken_ts.
func (s *Store) migrateV2toV3(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('files')
		WHERE name='taken_src'
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for taken_src column: %w", err)
	}
	if exists {
		return nil
	}

	logging.Info("Migrating database: adding taken_src column to files table")
	if _, err = s.db.ExecContext(ctx, `
		ALTER TABLE files ADD COLUMN taken_src TEXT NOT NULL DEFAULT 'none'
	`); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE files SET taken_src = 'mtime_fallback' WHERE taken_ts IS NOT NULL
	`)
	return err
}

// Begin starts a directory-scoped transaction. The caller must finish it
// with End.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	s.mu.Lock()
	txStart := time.Now()

	// Background context: the transaction's lifetime is managed by End, not
	// a timeout. Cancellation mid-directory is handled by the orchestrator
	// rolling back.
	tx, err := s.db.BeginTx(context.Background(), nil)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.txStart = txStart
	return tx, nil
}

// End commits the transaction when err is nil, otherwise rolls it back.
func (s *Store) End(tx *sql.Tx, err error) error {
	duration := time.Since(s.txStart).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		rbErr := tx.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// recordQuery records database query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics.
func (s *Store) UpdateDBMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// GetStats returns catalog counts for the metrics collector.
func (s *Store) GetStats() metrics.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	stats := metrics.Stats{FilesByKind: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM files GROUP BY kind")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var kind string
			var count int
			if rows.Scan(&kind, &count) == nil {
				stats.FilesByKind[kind] = count
			}
		}
	}

	_ = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM directories").Scan(&stats.Directories)
	_ = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&stats.Tags)

	return stats
}
