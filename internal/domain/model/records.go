// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// OfficialRecord is a reference performance for one event within a scope
// (a continent, a nation). Curated outside this service and read-only here.
type OfficialRecord struct {
	Scope       string `json:"scope" koanf:"scope"`
	EventName   string `json:"event_name" koanf:"event_name"`
	Performance string `json:"performance" koanf:"performance"`
}

// Athlete is a competitor, referenced everywhere else by ID.
type Athlete struct {
	ID        string `json:"id" koanf:"id"`
	FirstName string `json:"first_name" koanf:"first_name"`
	LastName  string `json:"last_name" koanf:"last_name"`
	Country   string `json:"country,omitempty" koanf:"country"`
}

// Name is the display name, first name first.
func (a Athlete) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// PersonalRecord is an athlete's best known performance in an event.
type PersonalRecord struct {
	AthleteID   string     `json:"athlete_id" koanf:"athlete_id"`
	EventName   string     `json:"event_name" koanf:"event_name"`
	Performance string     `json:"performance" koanf:"performance"`
	Date        *time.Time `json:"date,omitempty" koanf:"date"`
}

// Result is one athlete's placing in one event. Rank is the authoritative
// ordering; Performance is informational only.
type Result struct {
	EventID     string `json:"event_id" koanf:"event_id"`
	AthleteID   string `json:"athlete_id" koanf:"athlete_id"`
	Rank        int    `json:"rank" koanf:"rank"`
	Performance string `json:"performance,omitempty" koanf:"performance"`
}
