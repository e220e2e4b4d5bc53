// Package leaderboard aggregates per-event rank points into a group or
// competition leaderboard. Lowest cumulative score wins.
package leaderboard

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
)

// TieBreak orders athletes with equal totals.
type TieBreak int

// Supported tie-breaks.
const (
	// TieBreakAthleteID orders ties by athlete id ascending.
	TieBreakAthleteID TieBreak = iota
	// TieBreakEntryOrder orders ties by first appearance in the input.
	TieBreakEntryOrder
)

// Config names of the tie-breaks.
const (
	TieBreakNameAthleteID  = "athlete_id"
	TieBreakNameEntryOrder = "entry_order"
)

// ParseTieBreak maps a config value onto a TieBreak. Empty selects
// TieBreakAthleteID.
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", TieBreakNameAthleteID:
		return TieBreakAthleteID, nil
	case TieBreakNameEntryOrder:
		return TieBreakEntryOrder, nil
	default:
		return 0, fmt.Errorf("unknown tie-break %q", s)
	}
}

func (tb TieBreak) String() string {
	if tb == TieBreakEntryOrder {
		return TieBreakNameEntryOrder
	}
	return TieBreakNameAthleteID
}

// Aggregator computes leaderboards. It holds configuration only; every
// call recomputes from its input.
type Aggregator struct {
	points   scoring.RankPoints
	tieBreak TieBreak
	onSkip   func(model.Result, error)
}

// New creates an Aggregator using the active rank formula and athlete-id
// tie-break unless overridden.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		points:   scoring.RankPoints{Formula: scoring.FormulaRank},
		tieBreak: TieBreakAthleteID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type tally struct {
	athleteID string
	points    int
	events    int
	first     int
}

// Leaderboard sums rank points per athlete over results and orders the
// totals ascending. An invalid rank aborts with a *RankError unless the
// aggregator was built WithSkipInvalid.
func (a *Aggregator) Leaderboard(results []model.Result) (types.Leaderboard, error) {
	byAthlete := make(map[string]*tally)
	order := make([]*tally, 0)

	for i, r := range results {
		p, err := a.points.PointsForRank(r.Rank)
		if err != nil {
			rerr := &RankError{EventID: r.EventID, AthleteID: r.AthleteID, Rank: r.Rank, Err: err}
			if a.onSkip == nil {
				return types.Leaderboard{}, rerr
			}
			a.onSkip(r, rerr)
			continue
		}
		t, ok := byAthlete[r.AthleteID]
		if !ok {
			t = &tally{athleteID: r.AthleteID, first: i}
			byAthlete[r.AthleteID] = t
			order = append(order, t)
		}
		t.points += p
		t.events++
	}

	slices.SortStableFunc(order, func(x, y *tally) int {
		if c := types.Ascending.Compare(float64(x.points), float64(y.points)); c != 0 {
			return c
		}
		if a.tieBreak == TieBreakEntryOrder {
			return cmp.Compare(x.first, y.first)
		}
		return cmp.Compare(x.athleteID, y.athleteID)
	})

	entries := make([]types.LeaderboardEntry, len(order))
	for i, t := range order {
		entries[i] = types.LeaderboardEntry{
			Position:  i + 1,
			AthleteID: t.athleteID,
			Points:    t.points,
			Events:    t.events,
		}
	}
	return types.Leaderboard{Direction: types.Ascending, Entries: entries}, nil
}
