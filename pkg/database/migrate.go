package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations run in order and must stay idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id                     UUID PRIMARY KEY,
		number                 TEXT NOT NULL,
		owner_id               TEXT NOT NULL,
		service_type           TEXT NOT NULL,
		priority_class         TEXT NOT NULL,
		status                 TEXT NOT NULL,
		serving_counter        TEXT,
		served_by              TEXT,
		issued_at              TIMESTAMPTZ NOT NULL,
		called_at              TIMESTAMPTZ,
		completed_at           TIMESTAMPTZ,
		estimated_wait_minutes INT NOT NULL DEFAULT 0,
		notes                  TEXT,
		issued_on              DATE NOT NULL,
		seq                    INT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tickets_number_idx ON tickets (number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS tickets_daily_seq_idx ON tickets (issued_on, seq)`,
	`CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets (status)`,
	`CREATE INDEX IF NOT EXISTS tickets_owner_idx ON tickets (owner_id, issued_at DESC)`,
}

// Migrate applies the schema. Statements are idempotent so re-running on an
// up-to-date database is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
