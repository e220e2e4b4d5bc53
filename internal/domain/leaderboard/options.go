package leaderboard

import (
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithFormula selects the rank-to-points formula.
func WithFormula(f scoring.Formula) Option {
	return func(a *Aggregator) {
		if f != "" {
			a.points = scoring.RankPoints{Formula: f}
		}
	}
}

// WithTieBreak selects how equal totals are ordered.
func WithTieBreak(tb TieBreak) Option {
	return func(a *Aggregator) {
		a.tieBreak = tb
	}
}

// WithSkipInvalid drops results with an invalid rank instead of aborting.
// fn receives each dropped result and its *RankError.
func WithSkipInvalid(fn func(model.Result, error)) Option {
	return func(a *Aggregator) {
		if fn != nil {
			a.onSkip = fn
		}
	}
}
