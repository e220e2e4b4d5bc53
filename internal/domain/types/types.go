// Package types contains common types used across the application
package types

import "cmp"

// Direction states how a ranked list is ordered by points.
type Direction string

// Leaderboards sort ascending (lowest total wins); record-relative
// rankings sort descending (highest total wins).
const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Compare orders totals under d: negative when a ranks ahead of b.
func (d Direction) Compare(a, b float64) int {
	if d == Descending {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}

// LeaderboardEntry is one athlete's rank-point total.
type LeaderboardEntry struct {
	Position  int    `json:"position"`
	AthleteID string `json:"athlete_id"`
	Name      string `json:"name,omitempty"`
	Points    int    `json:"points"`
	Events    int    `json:"events"`
}

// Leaderboard is an ordered rank-point aggregate. Direction is always
// Ascending.
type Leaderboard struct {
	Direction Direction          `json:"direction"`
	Entries   []LeaderboardEntry `json:"entries"`
}

// BreakdownStatus says how a personal record fared against the references.
type BreakdownStatus string

// Breakdown statuses.
const (
	StatusScored            BreakdownStatus = "scored"
	StatusNoReference       BreakdownStatus = "no_reference"
	StatusUnusableReference BreakdownStatus = "unusable_reference"
)

// EventScore is one line of a ranking breakdown.
type EventScore struct {
	EventName   string          `json:"event_name"`
	Performance string          `json:"performance"`
	Reference   string          `json:"reference,omitempty"`
	Points      float64         `json:"points"`
	Status      BreakdownStatus `json:"status"`
	// Unparseable marks a personal performance that degraded to zero.
	Unparseable bool `json:"unparseable,omitempty"`
}

// RankingEntry is one athlete's record-relative total.
type RankingEntry struct {
	Position  int          `json:"position"`
	AthleteID string       `json:"athlete_id"`
	Name      string       `json:"name,omitempty"`
	Points    float64      `json:"points"`
	Breakdown []EventScore `json:"breakdown"`
}

// Ranking is an ordered record-relative aggregate for one scope.
// Direction is always Descending.
type Ranking struct {
	Scope     string         `json:"scope"`
	Direction Direction      `json:"direction"`
	Entries   []RankingEntry `json:"entries"`
}

// RecordCounts summarises record store contents.
type RecordCounts struct {
	Competitions    int `json:"competitions"`
	Groups          int `json:"groups"`
	Events          int `json:"events"`
	Athletes        int `json:"athletes"`
	Results         int `json:"results"`
	PersonalRecords int `json:"personal_records"`
	OfficialRecords int `json:"official_records"`
}

// Stats reports record counts and the scoring settings in effect.
type Stats struct {
	Records           RecordCounts `json:"records"`
	RankFormula       string       `json:"rank_formula"`
	TieBreak          string       `json:"tie_break"`
	Reduction         string       `json:"personal_record_reduction"`
	InvalidRankPolicy string       `json:"invalid_rank_policy"`
	DefaultScope      string       `json:"default_scope"`
}
