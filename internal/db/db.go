package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JesseBremer/flow-lyfe/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/flowlyfe.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.flowlyfe.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory for vCard/iCalendar artifacts
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "flowlyfe.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS items (
		  id             TEXT PRIMARY KEY,
		  content        TEXT NOT NULL,
		  type           TEXT NOT NULL,
		  category       TEXT NOT NULL,
		  status         TEXT NOT NULL,
		  created_at     INTEGER NOT NULL,
		  updated_at     INTEGER NOT NULL,
		  energy         TEXT NOT NULL,
		  temperature    INTEGER NOT NULL DEFAULT 0,
		  cluster_id     TEXT,
		  due_date       INTEGER,
		  tags_json      TEXT,
		  contact_name   TEXT,
		  contact_phone  TEXT,
		  contact_email  TEXT,
		  event_date     INTEGER,
		  event_end_date INTEGER,
		  event_location TEXT,
		  awaiting_from  TEXT,
		  awaiting_note  TEXT,
		  bill_amount    REAL,
		  bill_due_date  INTEGER,
		  surface_count  INTEGER NOT NULL DEFAULT 0,
		  last_surfaced  INTEGER,
		  is_anchor      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
		CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
		CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
		CREATE INDEX IF NOT EXISTS idx_items_cluster_id ON items(cluster_id)
		WHERE cluster_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_items_is_anchor ON items(is_anchor)
		WHERE is_anchor = 1;

		CREATE TABLE IF NOT EXISTS clusters (
		  id            TEXT PRIMARY KEY,
		  items_json    TEXT NOT NULL,
		  created_at    INTEGER NOT NULL,
		  context       TEXT,
		  keywords_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_clusters_created_at ON clusters(created_at);

		CREATE TABLE IF NOT EXISTS focus_sessions (
		  id           TEXT PRIMARY KEY,
		  item_id      TEXT,
		  duration     INTEGER NOT NULL,
		  type         TEXT NOT NULL,
		  started_at   INTEGER NOT NULL,
		  completed_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_focus_sessions_started_at ON focus_sessions(started_at);
		CREATE INDEX IF NOT EXISTS idx_focus_sessions_item_id ON focus_sessions(item_id)
		WHERE item_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS reflections (
		  id              TEXT PRIMARY KEY,
		  date            INTEGER NOT NULL,
		  content         TEXT NOT NULL,
		  items_processed INTEGER NOT NULL DEFAULT 0,
		  items_completed INTEGER NOT NULL DEFAULT 0,
		  anchors_json    TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reflections_date ON reflections(date);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
