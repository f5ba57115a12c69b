package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTables creates the schema if it does not exist. The cube and
// earthdistance extensions back the nearest-helper proximity index.
func CreateTables(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS cube`,
		`CREATE EXTENSION IF NOT EXISTS earthdistance`,
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar_url    TEXT,
			longitude     DOUBLE PRECISION NOT NULL,
			latitude      DOUBLE PRECISION NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS users_location_idx
			ON users USING gist (ll_to_earth(latitude, longitude))`,
		`CREATE TABLE IF NOT EXISTS emergency_contacts (
			user_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			position INT NOT NULL,
			email    TEXT NOT NULL,
			phone    TEXT,
			PRIMARY KEY (user_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id              UUID PRIMARY KEY,
			user_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title           TEXT NOT NULL DEFAULT '',
			message         TEXT NOT NULL DEFAULT '',
			from_user_id    UUID,
			from_user_name  TEXT,
			from_user_email TEXT,
			latitude        DOUBLE PRECISION,
			longitude       DOUBLE PRECISION,
			read            BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS notifications_user_idx
			ON notifications (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS incidents (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location          TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			latitude          DOUBLE PRECISION,
			longitude         DOUBLE PRECISION,
			type              TEXT NOT NULL CHECK (type IN ('incident', 'sos')),
			latest_latitude   DOUBLE PRECISION,
			latest_longitude  DOUBLE PRECISION,
			latest_updated_at TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS incidents_user_idx
			ON incidents (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id          UUID PRIMARY KEY,
			title       TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('article', 'video', 'contact')),
			content     TEXT NOT NULL,
			description TEXT,
			date_added  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
