package leaderboard

import "fmt"

// RankError identifies the result carrying an invalid rank. It unwraps to
// scoring.ErrInvalidRank.
type RankError struct {
	EventID   string
	AthleteID string
	Rank      int
	Err       error
}

func (e *RankError) Error() string {
	return fmt.Sprintf("event %s athlete %s: %v", e.EventID, e.AthleteID, e.Err)
}

func (e *RankError) Unwrap() error { return e.Err }
