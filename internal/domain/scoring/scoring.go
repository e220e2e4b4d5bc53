// Package scoring converts placings and performances into points.
//
// Two conventions live here and must not be mixed:
//   - rank points: lower is better, one event at a time
//   - record-relative points: higher is better, ratio against a reference
package scoring

import (
	"fmt"

	"github.com/okian/podium/internal/domain/performance"
)

// RecordPoints is awarded for a performance equal to the reference record.
const RecordPoints = 1000

// Formula names a rank-to-points rule.
type Formula string

// Supported formulas. FormulaRank is the active rule; FormulaOddRank
// (2*rank-1) is opt-in only.
const (
	FormulaRank    Formula = "rank"
	FormulaOddRank Formula = "odd"
)

// ParseFormula maps a config value onto a Formula. Empty selects FormulaRank.
func ParseFormula(s string) (Formula, error) {
	switch Formula(s) {
	case "", FormulaRank:
		return FormulaRank, nil
	case FormulaOddRank:
		return FormulaOddRank, nil
	default:
		return "", fmt.Errorf("unknown rank formula %q", s)
	}
}

// RankPoints maps a finishing rank to points under a Formula.
// The zero value uses FormulaRank.
type RankPoints struct {
	Formula Formula
}

// PointsForRank returns the points for rank. Ranks below 1 are a contract
// violation from result entry and fail with ErrInvalidRank.
func (p RankPoints) PointsForRank(rank int) (int, error) {
	if rank < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	if p.Formula == FormulaOddRank {
		return 2*rank - 1, nil
	}
	return rank, nil
}

// PointsForRank applies the active formula (points equal rank).
func PointsForRank(rank int) (int, error) {
	return RankPoints{}.PointsForRank(rank)
}

// PointsRelativeToRecord scores personal against reference as
// personal/reference*RecordPoints. ok is false when the reference parses to
// zero: the event then contributes nothing and must be left out of totals.
// The result is unbounded; beating the record scores above RecordPoints and
// a zero or negative personal mark is scored as computed.
func PointsRelativeToRecord(personal, reference string) (points float64, ok bool) {
	ref := performance.Parse(reference)
	if ref == 0 {
		return 0, false
	}
	return performance.Parse(personal) / ref * RecordPoints, true
}
