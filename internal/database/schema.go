package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 TEXT PRIMARY KEY,
		email              TEXT NOT NULL,
		password_hash      BYTEA NOT NULL,
		first_name         TEXT NOT NULL DEFAULT '',
		last_name          TEXT NOT NULL DEFAULT '',
		phone              TEXT,
		department         TEXT NOT NULL DEFAULT '',
		position           TEXT NOT NULL DEFAULT '',
		role               TEXT NOT NULL DEFAULT 'general',
		status             TEXT NOT NULL DEFAULT 'pending',
		email_verified     BOOLEAN NOT NULL DEFAULT FALSE,
		verification_token TEXT,
		reset_token        TEXT,
		reset_token_expiry TIMESTAMPTZ,
		last_login_at      TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (email)`,
	`CREATE INDEX IF NOT EXISTS users_status_idx ON users (status)`,

	`CREATE TABLE IF NOT EXISTS production_lines (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'stopped',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS equipment (
		id         TEXT PRIMARY KEY,
		line_id    TEXT NOT NULL REFERENCES production_lines(id),
		name       TEXT NOT NULL,
		model      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'idle',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS equipment_line_idx ON equipment (line_id)`,

	`CREATE TABLE IF NOT EXISTS work_orders (
		id           TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		line_id      TEXT REFERENCES production_lines(id),
		product      TEXT NOT NULL,
		qty_planned  INTEGER NOT NULL DEFAULT 0,
		qty_produced INTEGER NOT NULL DEFAULT 0,
		status       TEXT NOT NULL DEFAULT 'draft',
		due_date     TIMESTAMPTZ,
		created_by   TEXT NOT NULL REFERENCES users(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS work_orders_created_by_idx ON work_orders (created_by)`,

	`CREATE TABLE IF NOT EXISTS work_order_attachments (
		id            TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		file_name     TEXT NOT NULL,
		object_key    TEXT NOT NULL,
		content_type  TEXT NOT NULL DEFAULT 'application/octet-stream',
		size_bytes    BIGINT NOT NULL DEFAULT 0,
		uploaded_by   TEXT NOT NULL REFERENCES users(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS quality_checks (
		id            TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		checked_by    TEXT NOT NULL REFERENCES users(id),
		result        TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS quality_checks_wo_idx ON quality_checks (work_order_id)`,

	`CREATE TABLE IF NOT EXISTS inventory_items (
		id         TEXT PRIMARY KEY,
		sku        TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		unit       TEXT NOT NULL DEFAULT 'ea',
		quantity   INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS inventory_adjustments (
		id          TEXT PRIMARY KEY,
		item_id     TEXT NOT NULL REFERENCES inventory_items(id) ON DELETE CASCADE,
		delta       INTEGER NOT NULL,
		reason      TEXT NOT NULL DEFAULT '',
		adjusted_by TEXT NOT NULL REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema. Every statement is idempotent so the apply
// can run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
