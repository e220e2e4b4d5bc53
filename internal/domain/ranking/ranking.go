// Package ranking computes the cross-competition ranking: each athlete's
// personal bests scored against the official records of one scope.
// Highest total wins.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/performance"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithReduction collapses duplicate personal records per athlete and event
// before scoring.
func WithReduction(rule dedupe.Rule) Option {
	return func(a *Aggregator) {
		if rule != "" {
			a.reduction = rule
		}
	}
}

// Aggregator computes rankings. It holds configuration only.
type Aggregator struct {
	reduction dedupe.Rule
}

// New creates an Aggregator that scores personal records as supplied.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{reduction: dedupe.RuleNone}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type athleteTotal struct {
	athleteID string
	points    float64
	scored    int
	breakdown []types.EventScore
}

// Ranking scores personal against the official records whose Scope equals
// scope exactly; other scopes are ignored. Events without a usable
// reference stay in the breakdown but add nothing. Athletes with no scored
// event are left out, so an unknown scope yields an empty ranking.
func (a *Aggregator) Ranking(scope string, personal []model.PersonalRecord, official []model.OfficialRecord) types.Ranking {
	refs := References(scope, official)
	records := dedupe.Reduce(personal, a.reduction)

	byAthlete := make(map[string]*athleteTotal)
	order := make([]*athleteTotal, 0)
	for _, rec := range records {
		t, ok := byAthlete[rec.AthleteID]
		if !ok {
			t = &athleteTotal{athleteID: rec.AthleteID}
			byAthlete[rec.AthleteID] = t
			order = append(order, t)
		}
		t.breakdown = append(t.breakdown, score(rec, refs))
		if last := t.breakdown[len(t.breakdown)-1]; last.Status == types.StatusScored {
			t.points += last.Points
			t.scored++
		}
	}

	ranked := make([]*athleteTotal, 0, len(order))
	for _, t := range order {
		if t.scored > 0 {
			ranked = append(ranked, t)
		}
	}
	slices.SortStableFunc(ranked, func(x, y *athleteTotal) int {
		if c := types.Descending.Compare(x.points, y.points); c != 0 {
			return c
		}
		return cmp.Compare(x.athleteID, y.athleteID)
	})

	entries := make([]types.RankingEntry, len(ranked))
	for i, t := range ranked {
		entries[i] = types.RankingEntry{
			Position:  i + 1,
			AthleteID: t.athleteID,
			Points:    t.points,
			Breakdown: t.breakdown,
		}
	}
	return types.Ranking{Scope: scope, Direction: types.Descending, Entries: entries}
}

// References maps event name to the raw reference performance for scope.
// A later record for the same event replaces an earlier one.
func References(scope string, official []model.OfficialRecord) map[string]string {
	refs := make(map[string]string)
	for _, rec := range official {
		if rec.Scope == scope {
			refs[rec.EventName] = rec.Performance
		}
	}
	return refs
}

func score(rec model.PersonalRecord, refs map[string]string) types.EventScore {
	_, parsed := performance.ParseValue(rec.Performance)
	es := types.EventScore{
		EventName:   rec.EventName,
		Performance: rec.Performance,
		Unparseable: !parsed,
	}
	ref, ok := refs[rec.EventName]
	if !ok {
		es.Status = types.StatusNoReference
		return es
	}
	es.Reference = ref
	points, ok := scoring.PointsRelativeToRecord(rec.Performance, ref)
	if !ok {
		es.Status = types.StatusUnusableReference
		return es
	}
	es.Points = points
	es.Status = types.StatusScored
	return es
}
