// Package audit keeps a local SQLite log of the channel writes pubctl has
// issued, so operators can see who pointed a channel where from this machine.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// Default database file name inside the data directory
	defaultDBName = ".pubctl.db"

	createTableSQL = `
	CREATE TABLE IF NOT EXISTS channel_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL,
		operation TEXT NOT NULL,
		channel TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		publication_id TEXT NOT NULL DEFAULT '',
		success INTEGER DEFAULT 0,
		failure_reason TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_project ON channel_actions(project);
	CREATE INDEX IF NOT EXISTS idx_created_at ON channel_actions(created_at);
	`
)

// Database provides access to the audit SQLite database
type Database struct {
	db   *sql.DB
	path string
}

// DefaultPath is the database file used when none is configured:
// $PUBCTL_DATA_DIR/.pubctl.db, or the current directory.
func DefaultPath() (string, error) {
	dataDir := os.Getenv("PUBCTL_DATA_DIR")
	if dataDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dataDir = dir
	}
	return filepath.Join(dataDir, defaultDBName), nil
}

// NewDatabase opens (creating if needed) the database at dbPath
func NewDatabase(dbPath string) (*Database, error) {
	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer at a time
	db.SetMaxOpenConns(1)

	database := &Database{
		db:   db,
		path: dbPath,
	}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return database, nil
}

// Path returns the database file path
func (d *Database) Path() string {
	return d.path
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initSchema() error {
	if _, err := d.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
