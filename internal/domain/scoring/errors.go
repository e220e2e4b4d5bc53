package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidRank = errors.New("invalid rank")
)
