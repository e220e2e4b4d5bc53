package leaderboard

import (
	"cmp"
	"slices"

	"github.com/okian/podium/internal/domain/model"
)

// ViolationKind classifies a broken rank invariant.
type ViolationKind string

// Violation kinds.
const (
	ViolationOutOfRange ViolationKind = "out_of_range"
	ViolationDuplicate  ViolationKind = "duplicate"
	ViolationGap        ViolationKind = "gap"
)

// Violation is a rank invariant broken within one event.
type Violation struct {
	EventID string
	Rank    int
	Kind    ViolationKind
}

// Validate checks that ranks within each event form 1..n without
// duplicates. It only reports; Leaderboard does not depend on it.
// Violations are ordered by event first appearance, then rank.
func Validate(results []model.Result) []Violation {
	var eventOrder []string
	ranks := make(map[string][]int)
	for _, r := range results {
		if _, ok := ranks[r.EventID]; !ok {
			eventOrder = append(eventOrder, r.EventID)
		}
		ranks[r.EventID] = append(ranks[r.EventID], r.Rank)
	}

	var out []Violation
	for _, eventID := range eventOrder {
		rs := ranks[eventID]
		seen := make(map[int]int, len(rs))
		var found []Violation
		for _, rank := range rs {
			seen[rank]++
			switch {
			case rank < 1:
				found = append(found, Violation{EventID: eventID, Rank: rank, Kind: ViolationOutOfRange})
			case seen[rank] == 2:
				found = append(found, Violation{EventID: eventID, Rank: rank, Kind: ViolationDuplicate})
			}
		}
		for k := 1; k <= len(rs); k++ {
			if seen[k] == 0 {
				found = append(found, Violation{EventID: eventID, Rank: k, Kind: ViolationGap})
			}
		}
		slices.SortStableFunc(found, func(x, y Violation) int {
			return cmp.Compare(x.Rank, y.Rank)
		})
		out = append(out, found...)
	}
	return out
}
