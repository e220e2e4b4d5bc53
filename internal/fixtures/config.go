// Package fixtures generates deterministic record snapshots and verifies a
// running server's leaderboards and rankings against them.
package fixtures

import "time"

// Config holds generator and verifier settings.
type Config struct {
	Seed           uint64        // PRNG seed; equal seeds give equal snapshots
	Athletes       int           // number of athletes
	Groups         int           // groups in the generated competition
	EventsPerGroup int           // events per group
	Scopes         []string      // official record scopes
	BaseURL        string        // server to verify against
	Timeout        time.Duration // HTTP request timeout
	Workers        int           // concurrent verification requests
}

// Default generator settings.
const (
	DefaultAthletes       = 24
	DefaultGroups         = 2
	DefaultEventsPerGroup = 3
	DefaultWorkers        = 4
	DefaultTimeout        = 10 * time.Second
)

// DefaultScopes are the scopes official records are generated for.
var DefaultScopes = []string{"Europe", "Asia", "Africa", "Americas", "Oceania"} //nolint:gochecknoglobals // fixed catalogue

func (c *Config) withDefaults() Config {
	out := *c
	if out.Athletes <= 0 {
		out.Athletes = DefaultAthletes
	}
	if out.Groups <= 0 {
		out.Groups = DefaultGroups
	}
	if out.EventsPerGroup <= 0 {
		out.EventsPerGroup = DefaultEventsPerGroup
	}
	if len(out.Scopes) == 0 {
		out.Scopes = DefaultScopes
	}
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}
