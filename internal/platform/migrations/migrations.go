// Package migrations creates and evolves the database schema. Statements are
// idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS capabilities (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS bands (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS statuses (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS job_roles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		closing_date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		responsibilities TEXT NOT NULL DEFAULT '',
		info_url TEXT NOT NULL DEFAULT '',
		open_positions INTEGER NOT NULL DEFAULT 1 CHECK (open_positions >= 0),
		capability_id BIGINT NOT NULL REFERENCES capabilities(id),
		band_id BIGINT NOT NULL REFERENCES bands(id),
		status_id BIGINT NOT NULL REFERENCES statuses(id),
		UNIQUE (name, location)
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		job_role_id BIGINT NOT NULL REFERENCES job_roles(id),
		cv_key TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'InProgress',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, job_role_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_role ON applications (job_role_id)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
