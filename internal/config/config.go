// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Errors wrap this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/scoring"
)

// Record store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Invalid rank policies.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the record store backend: memory or postgres.
	Store string `koanf:"store"`

	// DatabaseURL is the PostgreSQL connection string for the postgres store.
	DatabaseURL string `koanf:"database_url"`

	// DatabaseMaxConns caps the PostgreSQL pool.
	DatabaseMaxConns int `koanf:"database_max_conns"`

	// SeedFile is an optional YAML file loaded into the store at startup.
	SeedFile string `koanf:"seed_file"`

	// DefaultScope is used by GET /rankings when no scope is given.
	DefaultScope string `koanf:"default_scope"`

	// RankFormula selects rank-points: rank or odd.
	RankFormula string `koanf:"rank_formula"`

	// TieBreak orders equal leaderboard totals: athlete_id or entry_order.
	TieBreak string `koanf:"tie_break"`

	// InvalidRankPolicy is abort (fail the leaderboard) or skip (drop the result).
	InvalidRankPolicy string `koanf:"invalid_rank_policy"`

	// PersonalRecordReduction picks which duplicate personal records count:
	// none, best or latest.
	PersonalRecordReduction string `koanf:"personal_record_reduction"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		Store:                   StoreMemory,
		DatabaseMaxConns:        10,
		DefaultScope:            "Europe",
		RankFormula:             string(scoring.FormulaRank),
		TieBreak:                leaderboard.TieBreakNameAthleteID,
		InvalidRankPolicy:       PolicyAbort,
		PersonalRecordReduction: string(dedupe.RuleNone),
		MaxRankingLimit:         1000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: store %q (want memory or postgres)", ErrInvalidConfig, c.Store)
	}
	if _, err := scoring.ParseFormula(c.RankFormula); err != nil {
		return fmt.Errorf("%w: rank_formula: %v", ErrInvalidConfig, err)
	}
	if _, err := leaderboard.ParseTieBreak(c.TieBreak); err != nil {
		return fmt.Errorf("%w: tie_break: %v", ErrInvalidConfig, err)
	}
	if _, err := dedupe.ParseRule(c.PersonalRecordReduction); err != nil {
		return fmt.Errorf("%w: personal_record_reduction: %v", ErrInvalidConfig, err)
	}
	switch c.InvalidRankPolicy {
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("%w: invalid_rank_policy %q (want abort or skip)", ErrInvalidConfig, c.InvalidRankPolicy)
	}
	if c.MaxRankingLimit <= 0 {
		return fmt.Errorf("%w: max_ranking_limit must be positive", ErrInvalidConfig)
	}
	if c.DatabaseMaxConns < 0 {
		return fmt.Errorf("%w: database_max_conns must not be negative", ErrInvalidConfig)
	}
	return nil
}
