package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Store reads and writes competition records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ repository.Store  = (*Store)(nil)
	_ repository.Writer = (*Store)(nil)
)

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Competition returns the competition with its groups and events.
func (s *Store) Competition(ctx context.Context, id string) (model.Competition, error) {
	var c model.Competition
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM competitions WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if IsNoRows(err) {
		return model.Competition{}, fmt.Errorf("competition %q: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.Competition{}, fmt.Errorf("postgres: get competition: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT g.id, g.name, e.id, e.name, e.event_order
		FROM competition_groups g
		LEFT JOIN events e ON e.group_id = g.id
		WHERE g.competition_id = $1
		ORDER BY g.position, e.position
	`, id)
	if err != nil {
		return model.Competition{}, fmt.Errorf("postgres: list groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			groupID, groupName string
			eventID, eventName *string
			eventOrder         *int
		)
		if err := rows.Scan(&groupID, &groupName, &eventID, &eventName, &eventOrder); err != nil {
			return model.Competition{}, fmt.Errorf("postgres: scan group: %w", err)
		}
		if n := len(c.Groups); n == 0 || c.Groups[n-1].ID != groupID {
			c.Groups = append(c.Groups, model.Group{ID: groupID, CompetitionID: id, Name: groupName})
		}
		if eventID != nil {
			g := &c.Groups[len(c.Groups)-1]
			g.Events = append(g.Events, model.Event{ID: *eventID, GroupID: groupID, Name: *eventName, Order: *eventOrder})
		}
	}
	if err := rows.Err(); err != nil {
		return model.Competition{}, fmt.Errorf("postgres: list groups: %w", err)
	}
	return c, nil
}

// Group returns the group with its ordered events.
func (s *Store) Group(ctx context.Context, id string) (model.Group, error) {
	var g model.Group
	err := s.pool.QueryRow(ctx, `SELECT id, competition_id, name FROM competition_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.CompetitionID, &g.Name)
	if IsNoRows(err) {
		return model.Group{}, fmt.Errorf("group %q: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return model.Group{}, fmt.Errorf("postgres: get group: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, name, event_order FROM events WHERE group_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return model.Group{}, fmt.Errorf("postgres: list events: %w", err)
	}
	g.Events, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		err := row.Scan(&e.ID, &e.GroupID, &e.Name, &e.Order)
		return e, err
	})
	if err != nil {
		return model.Group{}, fmt.Errorf("postgres: list events: %w", err)
	}
	return g, nil
}

// Results returns results of eventIDs grouped in that order.
func (s *Store) Results(ctx context.Context, eventIDs []string) ([]model.Result, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, athlete_id, rank, performance
		FROM results
		WHERE event_id = ANY($1)
		ORDER BY array_position($1, event_id), seq
	`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres: list results: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Result, error) {
		var r model.Result
		err := row.Scan(&r.EventID, &r.AthleteID, &r.Rank, &r.Performance)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list results: %w", err)
	}
	metrics.RecordStoreQueryLatency("results", float64(time.Since(start).Microseconds())/1000)
	return out, nil
}

// PersonalRecords returns every personal record in insertion order.
func (s *Store) PersonalRecords(ctx context.Context) ([]model.PersonalRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT athlete_id, event_name, performance, recorded_on FROM personal_records ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list personal records: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PersonalRecord, error) {
		var r model.PersonalRecord
		err := row.Scan(&r.AthleteID, &r.EventName, &r.Performance, &r.Date)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list personal records: %w", err)
	}
	return out, nil
}

// OfficialRecords returns every official record in insertion order.
func (s *Store) OfficialRecords(ctx context.Context) ([]model.OfficialRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT scope, event_name, performance FROM official_records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list official records: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OfficialRecord, error) {
		var r model.OfficialRecord
		err := row.Scan(&r.Scope, &r.EventName, &r.Performance)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list official records: %w", err)
	}
	return out, nil
}

// Athletes returns every athlete in insertion order.
func (s *Store) Athletes(ctx context.Context) ([]model.Athlete, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, first_name, last_name, country FROM athletes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list athletes: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Athlete, error) {
		var a model.Athlete
		err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Country)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: list athletes: %w", err)
	}
	return out, nil
}

// Counts returns record counts.
func (s *Store) Counts(ctx context.Context) (repository.Counts, error) {
	var c repository.Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM competitions),
			(SELECT count(*) FROM competition_groups),
			(SELECT count(*) FROM events),
			(SELECT count(*) FROM athletes),
			(SELECT count(*) FROM results),
			(SELECT count(*) FROM personal_records),
			(SELECT count(*) FROM official_records)
	`).Scan(&c.Competitions, &c.Groups, &c.Events, &c.Athletes, &c.Results, &c.PersonalRecords, &c.OfficialRecords)
	if err != nil {
		return repository.Counts{}, fmt.Errorf("postgres: counts: %w", err)
	}
	return c, nil
}
