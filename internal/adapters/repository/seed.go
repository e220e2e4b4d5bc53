package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/podium/internal/domain/model"
)

// Seed is the on-disk shape of a record snapshot (YAML). Field names match
// the JSON names of the model types.
type Seed struct {
	Competitions    []model.Competition    `json:"competitions" koanf:"competitions"`
	Athletes        []model.Athlete        `json:"athletes" koanf:"athletes"`
	Results         []model.Result         `json:"results" koanf:"results"`
	PersonalRecords []model.PersonalRecord `json:"personal_records" koanf:"personal_records"`
	OfficialRecords []model.OfficialRecord `json:"official_records" koanf:"official_records"`
}

// LoadSeed reads a YAML seed file. Dates must be RFC 3339.
func LoadSeed(_ context.Context, path string) (Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Seed{}, fmt.Errorf("%w: %s: %w", ErrLoadSeed, path, err)
	}
	var s Seed
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Seed{}, fmt.Errorf("%w: %s: %w", ErrLoadSeed, path, err)
	}
	return s, nil
}

// Apply writes every record of s into w.
func (s Seed) Apply(ctx context.Context, w Writer) error {
	for _, c := range s.Competitions {
		if err := w.PutCompetition(ctx, c); err != nil {
			return err
		}
	}
	if err := w.PutAthletes(ctx, s.Athletes...); err != nil {
		return err
	}
	if err := w.PutResults(ctx, s.Results...); err != nil {
		return err
	}
	if err := w.PutPersonalRecords(ctx, s.PersonalRecords...); err != nil {
		return err
	}
	return w.PutOfficialRecords(ctx, s.OfficialRecords...)
}

// EncodeSeed renders s as YAML readable by LoadSeed.
func EncodeSeed(s Seed) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	out, err := yaml.Parser().Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	return out, nil
}
