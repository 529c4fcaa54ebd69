package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application. Times are stored
// as Unix nanoseconds; 0 means unset.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id                  TEXT    PRIMARY KEY,
		chat_id             INTEGER NOT NULL DEFAULT 0,
		path                TEXT    NOT NULL DEFAULT '',
		status              TEXT    NOT NULL,
		progress_message_id INTEGER NOT NULL DEFAULT 0,
		started_at          INTEGER NOT NULL DEFAULT 0,
		finished_at         INTEGER NOT NULL DEFAULT 0,
		discovered          INTEGER NOT NULL DEFAULT 0,
		uploaded            INTEGER NOT NULL DEFAULT 0,
		skipped             INTEGER NOT NULL DEFAULT 0,
		failed              INTEGER NOT NULL DEFAULT 0,
		bytes               INTEGER NOT NULL DEFAULT 0,
		error               TEXT    NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_started ON jobs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status, finished_at)`,

	`CREATE TABLE IF NOT EXISTS files (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id     TEXT    NOT NULL,
		name       TEXT    NOT NULL,
		path       TEXT    NOT NULL,
		size       INTEGER NOT NULL DEFAULT 0,
		outcome    TEXT    NOT NULL,
		message_id INTEGER NOT NULL DEFAULT 0,
		link       TEXT    NOT NULL DEFAULT '',
		at         INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_files_job ON files(job_id, seq)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}
