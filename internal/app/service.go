// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/performance"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Leaderboard kinds used as metric labels.
const (
	kindGroup       = "group"
	kindCompetition = "competition"
)

// Service computes leaderboards and rankings from fresh store snapshots.
// It holds no computed state.
type Service struct {
	store  repository.Store
	logger logger.Logger

	formula      scoring.Formula
	reduction    dedupe.Rule
	skipInvalid  bool
	tieBreak     leaderboard.TieBreak
	defaultScope string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRankFormula selects the rank-points formula.
func WithRankFormula(f scoring.Formula) Option {
	return func(s *Service) {
		if f != "" {
			s.formula = f
		}
	}
}

// WithReduction selects how duplicate personal records are collapsed.
func WithReduction(rule dedupe.Rule) Option {
	return func(s *Service) {
		if rule != "" {
			s.reduction = rule
		}
	}
}

// WithSkipInvalidRanks drops results with invalid ranks instead of failing
// the leaderboard.
func WithSkipInvalidRanks(skip bool) Option {
	return func(s *Service) {
		s.skipInvalid = skip
	}
}

// WithTieBreak selects how equal leaderboard totals are ordered.
func WithTieBreak(tb leaderboard.TieBreak) Option {
	return func(s *Service) {
		s.tieBreak = tb
	}
}

// WithDefaultScope sets the scope used when a ranking request names none.
func WithDefaultScope(scope string) Option {
	return func(s *Service) {
		if scope != "" {
			s.defaultScope = scope
		}
	}
}

// New constructs a Service. Without WithStore it reads an empty in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		formula:   scoring.FormulaRank,
		reduction: dedupe.RuleNone,
		tieBreak:  leaderboard.TieBreakAthleteID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// GroupLeaderboard ranks athletes by rank points over the events of one group.
func (s *Service) GroupLeaderboard(ctx context.Context, groupID string) (types.Leaderboard, error) {
	start := time.Now()
	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		metrics.RecordLeaderboardComputed(kindGroup, "error", msSince(start))
		return types.Leaderboard{}, fmt.Errorf("group leaderboard: %w", err)
	}
	lb, err := s.leaderboard(ctx, kindGroup, groupID, g.EventIDs())
	metrics.RecordLeaderboardComputed(kindGroup, outcome(err), msSince(start))
	if err != nil {
		return types.Leaderboard{}, fmt.Errorf("group leaderboard %s: %w", groupID, err)
	}
	return lb, nil
}

// CompetitionLeaderboard ranks athletes over every event of every group of
// one competition.
func (s *Service) CompetitionLeaderboard(ctx context.Context, competitionID string) (types.Leaderboard, error) {
	start := time.Now()
	c, err := s.store.Competition(ctx, competitionID)
	if err != nil {
		metrics.RecordLeaderboardComputed(kindCompetition, "error", msSince(start))
		return types.Leaderboard{}, fmt.Errorf("competition leaderboard: %w", err)
	}
	lb, err := s.leaderboard(ctx, kindCompetition, competitionID, c.EventIDs())
	metrics.RecordLeaderboardComputed(kindCompetition, outcome(err), msSince(start))
	if err != nil {
		return types.Leaderboard{}, fmt.Errorf("competition leaderboard %s: %w", competitionID, err)
	}
	return lb, nil
}

func (s *Service) leaderboard(ctx context.Context, kind, id string, eventIDs []string) (types.Leaderboard, error) {
	results, err := s.store.Results(ctx, eventIDs)
	if err != nil {
		return types.Leaderboard{}, err
	}

	for _, v := range leaderboard.Validate(results) {
		s.logger.Warn(ctx, "rank invariant violated",
			logger.String(kind, id),
			logger.String("event", v.EventID),
			logger.Int("rank", v.Rank),
			logger.String("kind", string(v.Kind)),
		)
	}

	opts := []leaderboard.Option{
		leaderboard.WithFormula(s.formula),
		leaderboard.WithTieBreak(s.tieBreak),
	}
	if s.skipInvalid {
		opts = append(opts, leaderboard.WithSkipInvalid(func(r model.Result, err error) {
			metrics.RecordInvalidRank()
			s.logger.Warn(ctx, "skipping result with invalid rank",
				logger.String("event", r.EventID),
				logger.String("athlete", r.AthleteID),
				logger.Int("rank", r.Rank),
			)
		}))
	}

	lb, err := leaderboard.New(opts...).Leaderboard(results)
	if err != nil {
		metrics.RecordInvalidRank()
		return types.Leaderboard{}, err
	}
	names, err := s.athleteNames(ctx)
	if err != nil {
		return types.Leaderboard{}, err
	}
	for i := range lb.Entries {
		lb.Entries[i].Name = names[lb.Entries[i].AthleteID]
	}
	s.logger.Debug(ctx, "leaderboard computed",
		logger.String(kind, id),
		logger.Int("events", len(eventIDs)),
		logger.Int("results", len(results)),
		logger.Int("entries", len(lb.Entries)),
	)
	return lb, nil
}

// ContinentalRanking scores every athlete's personal records against the
// official records of scope. An empty scope means the default scope.
func (s *Service) ContinentalRanking(ctx context.Context, scope string) (types.Ranking, error) {
	start := time.Now()
	if scope == "" {
		scope = s.defaultScope
	}
	if scope == "" {
		return types.Ranking{}, fmt.Errorf("continental ranking: %w", ranking.ErrMissingScope)
	}

	personal, err := s.store.PersonalRecords(ctx)
	if err != nil {
		return types.Ranking{}, fmt.Errorf("continental ranking: %w", err)
	}
	official, err := s.store.OfficialRecords(ctx)
	if err != nil {
		return types.Ranking{}, fmt.Errorf("continental ranking: %w", err)
	}

	s.recordDataQuality(ctx, scope, personal, official)

	r := ranking.New(ranking.WithReduction(s.reduction)).Ranking(scope, personal, official)
	names, err := s.athleteNames(ctx)
	if err != nil {
		return types.Ranking{}, fmt.Errorf("continental ranking: %w", err)
	}
	for i := range r.Entries {
		r.Entries[i].Name = names[r.Entries[i].AthleteID]
	}
	metrics.RecordRankingComputed(scope, msSince(start))
	s.logger.Debug(ctx, "ranking computed",
		logger.String("scope", scope),
		logger.Int("personal_records", len(personal)),
		logger.Int("entries", len(r.Entries)),
	)
	return r, nil
}

// athleteNames maps athlete ids to display names. Unknown athletes are
// absent and keep an empty name.
func (s *Service) athleteNames(ctx context.Context) (map[string]string, error) {
	athletes, err := s.store.Athletes(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(athletes))
	for _, a := range athletes {
		names[a.ID] = a.Name()
	}
	return names, nil
}

// recordDataQuality counts unparseable texts and personal records without
// an in-scope reference.
func (s *Service) recordDataQuality(ctx context.Context, scope string, personal []model.PersonalRecord, official []model.OfficialRecord) {
	refs := ranking.References(scope, official)
	var unparseable, missing int
	for _, rec := range personal {
		if _, ok := performance.ParseValue(rec.Performance); !ok {
			unparseable++
		}
		if _, ok := refs[rec.EventName]; !ok {
			missing++
		}
	}
	var badRefs int
	for _, ref := range refs {
		if _, ok := performance.ParseValue(ref); !ok {
			badRefs++
		}
	}
	metrics.RecordUnparseablePerformance("personal_record", unparseable)
	metrics.RecordUnparseablePerformance("official_record", badRefs)
	metrics.RecordMissingReference(scope, missing)
	if unparseable > 0 || badRefs > 0 {
		s.logger.Warn(ctx, "unparseable performances scored as zero",
			logger.String("scope", scope),
			logger.Int("personal_records", unparseable),
			logger.Int("official_records", badRefs),
		)
	}
}

// GetStats returns record counts and configuration for monitoring.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("stats: %w", err)
	}
	policy := "abort"
	if s.skipInvalid {
		policy = "skip"
	}
	return types.Stats{
		Records:           counts,
		RankFormula:       string(s.formula),
		TieBreak:          s.tieBreak.String(),
		Reduction:         string(s.reduction),
		InvalidRankPolicy: policy,
		DefaultScope:      s.defaultScope,
	}, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
