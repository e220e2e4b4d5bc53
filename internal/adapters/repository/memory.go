package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

type resultKey struct {
	eventID   string
	athleteID string
}

type officialKey struct {
	scope     string
	eventName string
}

// MemoryStore is a Store and Writer backed by maps under a RWMutex.
type MemoryStore struct {
	mu sync.RWMutex

	competitions map[string]model.Competition
	groups       map[string]model.Group
	events       map[string]model.Event

	athletes     map[string]model.Athlete
	athleteOrder []string

	// results per event, in insertion order
	results map[string][]model.Result
	byKey   map[resultKey]int

	personal []model.PersonalRecord

	official     []model.OfficialRecord
	officialByID map[officialKey]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		competitions: make(map[string]model.Competition),
		groups:       make(map[string]model.Group),
		events:       make(map[string]model.Event),
		athletes:     make(map[string]model.Athlete),
		results:      make(map[string][]model.Result),
		byKey:        make(map[resultKey]int),
		officialByID: make(map[officialKey]int),
	}
}

// PutCompetition stores c and indexes its groups and events. Group and
// event parent ids are filled in from their containers.
func (s *MemoryStore) PutCompetition(ctx context.Context, c model.Competition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.ID == "" {
		return fmt.Errorf("competition: %w: missing id", ErrInvalidData)
	}
	c = cloneCompetition(c)
	for gi := range c.Groups {
		g := &c.Groups[gi]
		if g.ID == "" {
			return fmt.Errorf("competition %s group %d: %w: missing id", c.ID, gi, ErrInvalidData)
		}
		g.CompetitionID = c.ID
		for ei := range g.Events {
			if g.Events[ei].ID == "" {
				return fmt.Errorf("group %s event %d: %w: missing id", g.ID, ei, ErrInvalidData)
			}
			g.Events[ei].GroupID = g.ID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.competitions[c.ID]; ok {
		for _, g := range old.Groups {
			delete(s.groups, g.ID)
			for _, e := range g.Events {
				delete(s.events, e.ID)
			}
		}
	}
	s.competitions[c.ID] = c
	for _, g := range c.Groups {
		s.groups[g.ID] = g
		for _, e := range g.Events {
			s.events[e.ID] = e
		}
	}
	s.updateGauges()
	return nil
}

// PutAthletes inserts or replaces athletes by id.
func (s *MemoryStore) PutAthletes(ctx context.Context, athletes ...model.Athlete) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, a := range athletes {
		if a.ID == "" {
			return fmt.Errorf("athlete: %w: missing id", ErrInvalidData)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range athletes {
		if _, ok := s.athletes[a.ID]; !ok {
			s.athleteOrder = append(s.athleteOrder, a.ID)
		}
		s.athletes[a.ID] = a
	}
	s.updateGauges()
	return nil
}

// PutResults inserts or replaces results by (event, athlete). Ranks are
// stored as given; validation happens on read.
func (s *MemoryStore) PutResults(ctx context.Context, results ...model.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range results {
		if r.EventID == "" || r.AthleteID == "" {
			return fmt.Errorf("result: %w: missing event or athlete id", ErrInvalidData)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		k := resultKey{eventID: r.EventID, athleteID: r.AthleteID}
		if i, ok := s.byKey[k]; ok {
			s.results[r.EventID][i] = r
			continue
		}
		s.byKey[k] = len(s.results[r.EventID])
		s.results[r.EventID] = append(s.results[r.EventID], r)
	}
	s.updateGauges()
	return nil
}

// PutPersonalRecords appends records.
func (s *MemoryStore) PutPersonalRecords(ctx context.Context, records ...model.PersonalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if r.AthleteID == "" || r.EventName == "" {
			return fmt.Errorf("personal record: %w: missing athlete id or event name", ErrInvalidData)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personal = append(s.personal, records...)
	s.updateGauges()
	return nil
}

// PutOfficialRecords inserts or replaces records by (scope, event).
func (s *MemoryStore) PutOfficialRecords(ctx context.Context, records ...model.OfficialRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if r.Scope == "" || r.EventName == "" {
			return fmt.Errorf("official record: %w: missing scope or event name", ErrInvalidData)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		k := officialKey{scope: r.Scope, eventName: r.EventName}
		if i, ok := s.officialByID[k]; ok {
			s.official[i] = r
			continue
		}
		s.officialByID[k] = len(s.official)
		s.official = append(s.official, r)
	}
	s.updateGauges()
	return nil
}

// Competition returns a copy of the competition with id.
func (s *MemoryStore) Competition(ctx context.Context, id string) (model.Competition, error) {
	if err := ctx.Err(); err != nil {
		return model.Competition{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.competitions[id]
	if !ok {
		return model.Competition{}, fmt.Errorf("competition %q: %w", id, ErrNotFound)
	}
	return cloneCompetition(c), nil
}

// Group returns a copy of the group with id.
func (s *MemoryStore) Group(ctx context.Context, id string) (model.Group, error) {
	if err := ctx.Err(); err != nil {
		return model.Group{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return model.Group{}, fmt.Errorf("group %q: %w", id, ErrNotFound)
	}
	g.Events = slices.Clone(g.Events)
	return g, nil
}

// Results returns the results of eventIDs in that order.
func (s *MemoryStore) Results(ctx context.Context, eventIDs []string) ([]model.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Result, 0)
	for _, id := range eventIDs {
		out = append(out, s.results[id]...)
	}
	metrics.RecordStoreQueryLatency("results", float64(time.Since(start).Microseconds())/1000)
	return out, nil
}

// PersonalRecords returns every personal record in insertion order.
func (s *MemoryStore) PersonalRecords(ctx context.Context) ([]model.PersonalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PersonalRecord, len(s.personal))
	copy(out, s.personal)
	return out, nil
}

// OfficialRecords returns every official record in insertion order.
func (s *MemoryStore) OfficialRecords(ctx context.Context) ([]model.OfficialRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.official), nil
}

// Athletes returns every athlete in insertion order.
func (s *MemoryStore) Athletes(ctx context.Context) ([]model.Athlete, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Athlete, 0, len(s.athleteOrder))
	for _, id := range s.athleteOrder {
		out = append(out, s.athletes[id])
	}
	return out, nil
}

// Counts returns record counts.
func (s *MemoryStore) Counts(ctx context.Context) (Counts, error) {
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts(), nil
}

func (s *MemoryStore) counts() Counts {
	return Counts{
		Competitions:    len(s.competitions),
		Groups:          len(s.groups),
		Events:          len(s.events),
		Athletes:        len(s.athletes),
		Results:         len(s.byKey),
		PersonalRecords: len(s.personal),
		OfficialRecords: len(s.official),
	}
}

// updateGauges must be called with s.mu held.
func (s *MemoryStore) updateGauges() {
	c := s.counts()
	metrics.UpdateRecordsTotal(metrics.KindCompetitions, c.Competitions)
	metrics.UpdateRecordsTotal(metrics.KindGroups, c.Groups)
	metrics.UpdateRecordsTotal(metrics.KindEvents, c.Events)
	metrics.UpdateRecordsTotal(metrics.KindAthletes, c.Athletes)
	metrics.UpdateRecordsTotal(metrics.KindResults, c.Results)
	metrics.UpdateRecordsTotal(metrics.KindPersonalRecords, c.PersonalRecords)
	metrics.UpdateRecordsTotal(metrics.KindOfficialRecords, c.OfficialRecords)
}

func cloneCompetition(c model.Competition) model.Competition {
	groups := make([]model.Group, len(c.Groups))
	for i, g := range c.Groups {
		g.Events = slices.Clone(g.Events)
		groups[i] = g
	}
	c.Groups = groups
	return c
}
