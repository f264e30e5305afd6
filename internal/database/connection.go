package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the local database and ensures the schema exists.
// dbType selects the driver: "sqlite" (default) keeps everything in a local
// file so the store works with no connectivity at all; "postgres" is used
// when the device shares a database with other tooling.
func Connect(dbType, dsn string) (*sqlx.DB, error) {
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "sqlite":
		if dsn == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
			dsn = filepath.Join(dataDir, "lexsync.db")
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %v", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist.
// The progress entities are stored whole as JSON so every write replaces the
// full record and a reader can never observe a torn state.
func initializeSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS user_state (
			user_id TEXT PRIMARY KEY,
			learning_progress TEXT NOT NULL,
			vocabulary_progress TEXT NOT NULL,
			exercise_results TEXT NOT NULL,
			learning_stats TEXT NOT NULL,
			last_sync_time TIMESTAMP,
			pending_sync BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_state table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS session_log (
			user_id TEXT PRIMARY KEY,
			sessions TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create session_log table: %v", err)
	}

	return nil
}
