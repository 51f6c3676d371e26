package metastore

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

type migration struct {
	version     int
	description string
	sql         string
}

var migrations = []migration{
	{
		version:     1,
		description: "create schema_version table",
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		version:     2,
		description: "create repositories table",
		sql: `
			CREATE TABLE IF NOT EXISTS repositories (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				path TEXT NOT NULL,
				collection_name TEXT NOT NULL,
				ingested_at TEXT
			);
		`,
	},
	{
		version:     3,
		description: "create files table",
		sql: `
			CREATE TABLE IF NOT EXISTS files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				repository_id TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
				file_path TEXT NOT NULL,
				content_hash TEXT NOT NULL,
				size_bytes INTEGER NOT NULL,
				language TEXT,
				chunk_count INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				last_modified TEXT,
				UNIQUE(repository_id, file_path)
			);
			CREATE INDEX IF NOT EXISTS idx_files_repo ON files(repository_id);
			CREATE INDEX IF NOT EXISTS idx_files_path ON files(repository_id, file_path);
		`,
	},
	{
		version:     4,
		description: "create merkle_nodes table",
		sql: `
			CREATE TABLE IF NOT EXISTS merkle_nodes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				repository_id TEXT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
				node_path TEXT NOT NULL,
				node_hash TEXT NOT NULL,
				is_directory INTEGER NOT NULL DEFAULT 0,
				updated_at TEXT NOT NULL DEFAULT (datetime('now')),
				UNIQUE(repository_id, node_path)
			);
			CREATE INDEX IF NOT EXISTS idx_merkle_repo ON merkle_nodes(repository_id);
			CREATE INDEX IF NOT EXISTS idx_merkle_path ON merkle_nodes(repository_id, node_path);
		`,
	},
}

func currentVersion(db *sql.DB) int {
	var version sql.NullInt64
	row := db.QueryRow(`SELECT MAX(version) FROM schema_version`)
	if err := row.Scan(&version); err != nil {
		return 0
	}
	return int(version.Int64)
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current := currentVersion(db)
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		log.Debug("applying metastore migration", "version", m.version, "description", m.description)
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}
