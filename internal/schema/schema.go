// Package schema owns the DDL. Both binaries apply it on startup; every
// statement is a no-op when its object already exists, so repeated runs and
// rolling restarts are safe.
package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL
	)`,
	// Email arrived after launch; additive evolution keeps seeded rows.
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS email TEXT`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		type TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		location POINT NOT NULL DEFAULT point(0, 0),
		max_spots INT NOT NULL DEFAULT 0,
		available_spots INT NOT NULL DEFAULT 0,
		CHECK (available_spots >= 0 AND available_spots <= max_spots)
	)`,
	`CREATE TABLE IF NOT EXISTS bikes (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'parked',
		station_id BIGINT REFERENCES stations (id),
		CHECK ((status = 'parked') = (station_id IS NOT NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		bike_id BIGINT NOT NULL REFERENCES bikes (id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		start_station_id BIGINT NOT NULL REFERENCES stations (id),
		end_station_id BIGINT REFERENCES stations (id)
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_reports (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		bike_id BIGINT NOT NULL REFERENCES bikes (id),
		reported_at TIMESTAMPTZ NOT NULL,
		complaint TEXT NOT NULL
	)`,
}

func Apply(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
