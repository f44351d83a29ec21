package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migration holds a single schema migration with its target version and statements.
type migration struct {
	version    int
	statements []string
}

// migrations is the ordered list of schema migrations. The DDL sticks to the
// subset understood by both PostgreSQL and SQLite.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				display_name  TEXT NOT NULL,
				email         TEXT NOT NULL DEFAULT '',
				role          TEXT NOT NULL,
				status        TEXT NOT NULL,
				lecturer_id   TEXT,
				supervisor_id TEXT,
				term_ends_at  TIMESTAMP,
				created_at    TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				type       TEXT NOT NULL,
				title      TEXT NOT NULL,
				message    TEXT NOT NULL,
				href       TEXT NOT NULL DEFAULT '',
				is_read    BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at)`,
			`CREATE TABLE IF NOT EXISTS system_settings (
				id         TEXT PRIMARY KEY,
				updated_at TIMESTAMP NOT NULL,
				updated_by TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS notification_toggles (
				toggle_key TEXT PRIMARY KEY,
				enabled    BOOLEAN NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS audit_logs (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				user_name  TEXT NOT NULL DEFAULT '',
				user_email TEXT NOT NULL DEFAULT '',
				action     TEXT NOT NULL,
				details    TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at)`,
			`CREATE TABLE IF NOT EXISTS reports (
				id          TEXT PRIMARY KEY,
				student_id  TEXT NOT NULL,
				lecturer_id TEXT NOT NULL,
				title       TEXT NOT NULL,
				content     TEXT NOT NULL,
				summary     TEXT NOT NULL DEFAULT '',
				status      TEXT NOT NULL,
				comment     TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMP NOT NULL,
				reviewed_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS daily_tasks (
				id            TEXT PRIMARY KEY,
				student_id    TEXT NOT NULL,
				supervisor_id TEXT NOT NULL,
				description   TEXT NOT NULL,
				task_date     TEXT NOT NULL,
				status        TEXT NOT NULL,
				comment       TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMP NOT NULL,
				reviewed_at   TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS invites (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				email      TEXT NOT NULL,
				role       TEXT NOT NULL,
				invited_by TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS evaluations (
				id           TEXT PRIMARY KEY,
				student_id   TEXT NOT NULL,
				evaluator_id TEXT NOT NULL,
				score        INTEGER NOT NULL,
				remarks      TEXT NOT NULL DEFAULT '',
				created_at   TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS abuse_reports (
				id          TEXT PRIMARY KEY,
				reporter_id TEXT NOT NULL,
				subject     TEXT NOT NULL,
				details     TEXT NOT NULL,
				created_at  TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`ALTER TABLE invites ADD COLUMN accepted_at TIMESTAMP`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user_type ON notifications(user_id, type)`,
		},
	},
}

// Migrate checks the current schema version and applies any outstanding
// migrations in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
	); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`,
	); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("applying migration v%d: %w", m.version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			db.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}
