package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(100) NOT NULL CHECK (title <> ''),
		description VARCHAR(500) NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'pending'
		            CHECK (status IN ('pending','in-progress','completed')),
		priority    TEXT NOT NULL DEFAULT 'medium'
		            CHECK (priority IN ('low','medium','high')),
		due_date    TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS password_resets (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		used_at    TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_created ON tasks(owner_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_status ON tasks(owner_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_priority ON tasks(owner_id, priority)`,
}

// MigratePostgres creates tables and indexes if they are missing.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
