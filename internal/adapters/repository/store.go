// Package repository defines the record store contract the engine reads
// snapshots from, with an in-memory implementation and a YAML seed loader.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
)

// Store provides read access to competition records. Implementations return
// copies; callers own what they receive.
type Store interface {
	// Competition returns a competition with its groups and events.
	// Returns ErrNotFound if the id is unknown.
	Competition(ctx context.Context, id string) (model.Competition, error)

	// Group returns a group with its ordered events.
	// Returns ErrNotFound if the id is unknown.
	Group(ctx context.Context, id string) (model.Group, error)

	// Results returns the results of the given events, grouped in the order
	// of eventIDs. Unknown event ids contribute nothing.
	Results(ctx context.Context, eventIDs []string) ([]model.Result, error)

	PersonalRecords(ctx context.Context) ([]model.PersonalRecord, error)
	OfficialRecords(ctx context.Context) ([]model.OfficialRecord, error)
	Athletes(ctx context.Context) ([]model.Athlete, error)

	// Counts returns the number of stored records per kind.
	Counts(ctx context.Context) (Counts, error)
}

// Writer loads records into a store. Used by seeding and fixtures; the
// engine itself never writes.
type Writer interface {
	// PutCompetition inserts or replaces a competition and its groups and events.
	PutCompetition(ctx context.Context, c model.Competition) error
	// PutAthletes inserts or replaces athletes by id.
	PutAthletes(ctx context.Context, athletes ...model.Athlete) error
	// PutResults inserts or replaces results by (event, athlete).
	PutResults(ctx context.Context, results ...model.Result) error
	// PutPersonalRecords appends personal records. Duplicates are kept.
	PutPersonalRecords(ctx context.Context, records ...model.PersonalRecord) error
	// PutOfficialRecords inserts or replaces official records by (scope, event).
	PutOfficialRecords(ctx context.Context, records ...model.OfficialRecord) error
}

// Counts summarises store contents.
type Counts = types.RecordCounts
