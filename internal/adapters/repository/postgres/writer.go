package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
)

// PutCompetition upserts c and replaces its groups and events in one
// transaction.
func (s *Store) PutCompetition(ctx context.Context, c model.Competition) error {
	if c.ID == "" {
		return fmt.Errorf("competition: %w: missing id", repository.ErrInvalidData)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO competitions (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, c.ID, c.Name); err != nil {
			return fmt.Errorf("postgres: upsert competition: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM competition_groups WHERE competition_id = $1`, c.ID); err != nil {
			return fmt.Errorf("postgres: clear groups: %w", err)
		}

		batch := &pgx.Batch{}
		for gi, g := range c.Groups {
			if g.ID == "" {
				return fmt.Errorf("competition %s group %d: %w: missing id", c.ID, gi, repository.ErrInvalidData)
			}
			batch.Queue(`INSERT INTO competition_groups (id, competition_id, name, position) VALUES ($1, $2, $3, $4)`,
				g.ID, c.ID, g.Name, gi)
			for ei, e := range g.Events {
				if e.ID == "" {
					return fmt.Errorf("group %s event %d: %w: missing id", g.ID, ei, repository.ErrInvalidData)
				}
				batch.Queue(`INSERT INTO events (id, group_id, name, event_order, position) VALUES ($1, $2, $3, $4, $5)`,
					e.ID, g.ID, e.Name, e.Order, ei)
			}
		}
		return sendBatch(ctx, tx, batch, "insert structure")
	})
}

// PutAthletes upserts athletes by id.
func (s *Store) PutAthletes(ctx context.Context, athletes ...model.Athlete) error {
	batch := &pgx.Batch{}
	for _, a := range athletes {
		if a.ID == "" {
			return fmt.Errorf("athlete: %w: missing id", repository.ErrInvalidData)
		}
		batch.Queue(`
			INSERT INTO athletes (id, first_name, last_name, country) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name, country = EXCLUDED.country
		`, a.ID, a.FirstName, a.LastName, a.Country)
	}
	return s.inTx(ctx, batch, "upsert athletes")
}

// PutResults upserts results by (event, athlete).
func (s *Store) PutResults(ctx context.Context, results ...model.Result) error {
	batch := &pgx.Batch{}
	for _, r := range results {
		if r.EventID == "" || r.AthleteID == "" {
			return fmt.Errorf("result: %w: missing event or athlete id", repository.ErrInvalidData)
		}
		batch.Queue(`
			INSERT INTO results (event_id, athlete_id, rank, performance) VALUES ($1, $2, $3, $4)
			ON CONFLICT (event_id, athlete_id) DO UPDATE SET rank = EXCLUDED.rank, performance = EXCLUDED.performance
		`, r.EventID, r.AthleteID, r.Rank, r.Performance)
	}
	return s.inTx(ctx, batch, "upsert results")
}

// PutPersonalRecords appends personal records.
func (s *Store) PutPersonalRecords(ctx context.Context, records ...model.PersonalRecord) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		if r.AthleteID == "" || r.EventName == "" {
			return fmt.Errorf("personal record: %w: missing athlete id or event name", repository.ErrInvalidData)
		}
		batch.Queue(`
			INSERT INTO personal_records (athlete_id, event_name, performance, recorded_on) VALUES ($1, $2, $3, $4)
		`, r.AthleteID, r.EventName, r.Performance, r.Date)
	}
	return s.inTx(ctx, batch, "insert personal records")
}

// PutOfficialRecords upserts official records by (scope, event).
func (s *Store) PutOfficialRecords(ctx context.Context, records ...model.OfficialRecord) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		if r.Scope == "" || r.EventName == "" {
			return fmt.Errorf("official record: %w: missing scope or event name", repository.ErrInvalidData)
		}
		batch.Queue(`
			INSERT INTO official_records (scope, event_name, performance) VALUES ($1, $2, $3)
			ON CONFLICT (scope, event_name) DO UPDATE SET performance = EXCLUDED.performance
		`, r.Scope, r.EventName, r.Performance)
	}
	return s.inTx(ctx, batch, "upsert official records")
}

func (s *Store) inTx(ctx context.Context, batch *pgx.Batch, op string) error {
	if batch.Len() == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return sendBatch(ctx, tx, batch, op)
	})
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, op string) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("postgres: %s: %w", op, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: %s: %w", op, err)
	}
	return nil
}
