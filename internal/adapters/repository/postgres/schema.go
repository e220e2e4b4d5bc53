package postgres

import (
	"context"
	"fmt"
)

// schema creates the tables the store reads. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS competitions (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS competition_groups (
		id             TEXT PRIMARY KEY,
		competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
		name           TEXT NOT NULL DEFAULT '',
		position       INT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		group_id    TEXT NOT NULL REFERENCES competition_groups(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		event_order INT  NOT NULL DEFAULT 0,
		position    INT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS athletes (
		id         TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		country    TEXT NOT NULL DEFAULT '',
		seq        BIGSERIAL
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		event_id    TEXT NOT NULL,
		athlete_id  TEXT NOT NULL,
		rank        INT  NOT NULL,
		performance TEXT NOT NULL DEFAULT '',
		seq         BIGSERIAL,
		PRIMARY KEY (event_id, athlete_id)
	)`,
	`CREATE TABLE IF NOT EXISTS personal_records (
		id          BIGSERIAL PRIMARY KEY,
		athlete_id  TEXT NOT NULL,
		event_name  TEXT NOT NULL,
		performance TEXT NOT NULL DEFAULT '',
		recorded_on TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS official_records (
		scope       TEXT NOT NULL,
		event_name  TEXT NOT NULL,
		performance TEXT NOT NULL DEFAULT '',
		seq         BIGSERIAL,
		PRIMARY KEY (scope, event_name)
	)`,
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}
