package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrationStep is one versioned schema change shipped with the binary.
type migrationStep struct {
	Version     string
	Description string
	SQL         string
}

// migrations holds the bootstrap schema in apply order. Versions already
// recorded in schema_migrations are skipped, so new steps append here.
var migrations = []migrationStep{
	{
		Version:     "001",
		Description: "resources and slots",
		SQL: `
CREATE TABLE resources (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL,
	capacity   INTEGER NOT NULL CHECK (capacity >= 0),
	site_id    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE slots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT NOT NULL,
	sort_order INTEGER NOT NULL DEFAULT 0
);
`,
	},
	{
		Version:     "002",
		Description: "staff accounts",
		SQL: `
CREATE TABLE staff (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	role         TEXT NOT NULL,
	site_id      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX idx_staff_role_site ON staff (role, site_id);
`,
	},
	{
		Version:     "003",
		Description: "bookings with active-cell uniqueness",
		SQL: `
CREATE TABLE bookings (
	id                  TEXT PRIMARY KEY,
	resource_id         TEXT NOT NULL REFERENCES resources (id),
	date                TEXT NOT NULL,
	slot_id             TEXT NOT NULL REFERENCES slots (id),
	purpose             TEXT NOT NULL,
	status              TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'cancelled')),
	requester_id        TEXT NOT NULL,
	requester_name      TEXT NOT NULL,
	requester_role      TEXT NOT NULL,
	recurrence_group_id TEXT,
	recurrence_pattern  TEXT,
	approver_id         TEXT,
	rejection_reason    TEXT,
	cancel_reason       TEXT,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

-- Authoritative conflict guard: at most one non-cancelled booking per
-- resource/date/slot cell, regardless of what clients checked beforehand.
CREATE UNIQUE INDEX idx_bookings_active_cell
	ON bookings (resource_id, date, slot_id)
	WHERE status != 'cancelled';

CREATE INDEX idx_bookings_group ON bookings (recurrence_group_id);
CREATE INDEX idx_bookings_requester ON bookings (requester_id);
`,
	},
	{
		Version:     "004",
		Description: "security tasks",
		SQL: `
CREATE TABLE security_tasks (
	id                  TEXT PRIMARY KEY,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	status              TEXT NOT NULL CHECK (status IN ('pending', 'completed')),
	priority            TEXT NOT NULL CHECK (priority IN ('low', 'normal', 'high')),
	assigned_to_user_id TEXT NOT NULL REFERENCES staff (id),
	created_by          TEXT NOT NULL,
	booking_id          TEXT REFERENCES bookings (id),
	report_note         TEXT,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL,
	completed_at        TEXT
);

CREATE INDEX idx_tasks_assignee_status ON security_tasks (assigned_to_user_id, status);
`,
	},
}

// Migrate applies pending schema steps inside individual transactions,
// recording each applied version in schema_migrations.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("sqlite: initialize schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	for _, step := range migrations {
		if _, ok := applied[step.Version]; ok {
			continue
		}
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(step.SQL); err != nil {
				return fmt.Errorf("sqlite: migration %s (%s): %w", step.Version, step.Description, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
				step.Version,
			); err != nil {
				return fmt.Errorf("sqlite: record migration %s: %w", step.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, pool *ConnectionPool) (map[string]struct{}, error) {
	rows, err := pool.DB().QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("sqlite: scan schema_migrations: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}
