// Package dedupe reduces duplicate personal records so each athlete has at
// most one record per event.
package dedupe

import (
	"fmt"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/performance"
)

// Rule selects which record survives among duplicates.
type Rule string

// Supported rules.
const (
	// RuleNone keeps every record; the caller is trusted to have
	// pre-selected one per event.
	RuleNone Rule = "none"
	// RuleBest keeps the highest parsed magnitude.
	RuleBest Rule = "best"
	// RuleLatest keeps the most recent dated record.
	RuleLatest Rule = "latest"
)

// ParseRule maps a config value onto a Rule. Empty selects RuleNone.
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case "", RuleNone:
		return RuleNone, nil
	case RuleBest, RuleLatest:
		return Rule(s), nil
	default:
		return "", fmt.Errorf("unknown reduction rule %q", s)
	}
}

type key struct {
	athleteID string
	eventName string
}

// Reduce returns records with duplicates per (athlete, event) collapsed
// under rule. Survivors keep the position of the first record of their key.
// Ties keep the earlier record. The input is not modified.
func Reduce(records []model.PersonalRecord, rule Rule) []model.PersonalRecord {
	if rule == RuleNone || rule == "" {
		out := make([]model.PersonalRecord, len(records))
		copy(out, records)
		return out
	}

	index := make(map[key]int, len(records))
	out := make([]model.PersonalRecord, 0, len(records))
	for _, rec := range records {
		k := key{athleteID: rec.AthleteID, eventName: rec.EventName}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, rec)
			continue
		}
		if replaces(rule, rec, out[i]) {
			out[i] = rec
		}
	}
	return out
}

// replaces reports whether candidate should win over current.
func replaces(rule Rule, candidate, current model.PersonalRecord) bool {
	switch rule {
	case RuleBest:
		return performance.Parse(candidate.Performance) > performance.Parse(current.Performance)
	case RuleLatest:
		if candidate.Date == nil {
			return false
		}
		if current.Date == nil {
			return true
		}
		return candidate.Date.After(*current.Date)
	default:
		return false
	}
}
