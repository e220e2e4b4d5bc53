package fixtures

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
)

// discipline is a throwing event: longer is better, measured in metres.
type discipline struct {
	name string
	base float64 // typical personal best in metres
}

var disciplines = []discipline{ //nolint:gochecknoglobals // fixed catalogue
	{"Caber", 5.5},
	{"Hammer", 30},
	{"Shot put", 12},
	{"Stone put", 11},
	{"Weight for distance", 20},
	{"Weight over bar", 4.5},
	{"Sheaf toss", 9},
	{"Discus", 40},
	{"Javelin", 55},
}

var (
	firstNames = []string{"Ailsa", "Bruno", "Chidi", "Dana", "Emeka", "Freya", "Goran", "Hana", "Ivo", "Jun"} //nolint:gochecknoglobals // fixed catalogue
	lastNames  = []string{"Campbell", "Silva", "Okafor", "Novak", "Sato", "Fraser", "Kowalski", "Mensah"}     //nolint:gochecknoglobals // fixed catalogue
	countries  = []string{"SCO", "BRA", "NGA", "CZE", "JPN", "NOR", "POL", "GHA", "AUS", "CAN"}                //nolint:gochecknoglobals // fixed catalogue
)

// athleteNamespace scopes generated athlete uuids.
var athleteNamespace = uuid.MustParse("6f1c2a8e-4b1d-5e0a-9d3c-7a2b8c4d5e6f") //nolint:gochecknoglobals // fixed namespace

// Generate builds a snapshot from cfg. The same cfg always yields the same
// snapshot. Ranks are contiguous per event; some personal records are
// duplicated, dated, written with decimal commas or left unparseable.
func Generate(cfg Config) repository.Seed {
	cfg = cfg.withDefaults()
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	athletes := make([]model.Athlete, cfg.Athletes)
	for i := range athletes {
		athletes[i] = model.Athlete{
			ID:        uuid.NewSHA1(athleteNamespace, []byte(fmt.Sprintf("%d/%d", cfg.Seed, i))).String(),
			FirstName: firstNames[r.IntN(len(firstNames))],
			LastName:  lastNames[r.IntN(len(lastNames))],
			Country:   countries[r.IntN(len(countries))],
		}
	}

	// ability per athlete and discipline, used for results and personal records
	ability := make([][]float64, len(athletes))
	for i := range ability {
		ability[i] = make([]float64, len(disciplines))
		for d := range disciplines {
			ability[i][d] = disciplines[d].base * (0.7 + 0.6*r.Float64())
		}
	}

	comp := model.Competition{
		ID:   fmt.Sprintf("games-%d", cfg.Seed),
		Name: fmt.Sprintf("Highland Games %d", 2000+cfg.Seed%100),
	}
	var results []model.Result
	for g := 0; g < cfg.Groups; g++ {
		group := model.Group{
			ID:            fmt.Sprintf("%s-g%d", comp.ID, g+1),
			CompetitionID: comp.ID,
			Name:          fmt.Sprintf("Group %c", 'A'+rune(g%26)),
		}
		for e := 0; e < cfg.EventsPerGroup; e++ {
			d := (g*cfg.EventsPerGroup + e) % len(disciplines)
			ev := model.Event{
				ID:      fmt.Sprintf("%s-e%d", group.ID, e+1),
				GroupID: group.ID,
				Name:    disciplines[d].name,
				Order:   e + 1,
			}
			group.Events = append(group.Events, ev)
			results = append(results, eventResults(r, ev, d, athletes, ability)...)
		}
		comp.Groups = append(comp.Groups, group)
	}

	return repository.Seed{
		Competitions:    []model.Competition{comp},
		Athletes:        athletes,
		Results:         results,
		PersonalRecords: personalRecords(r, athletes, ability),
		OfficialRecords: officialRecords(r, cfg.Scopes, ability),
	}
}

type attempt struct {
	athlete int
	mark    float64
}

// eventResults lets roughly four in five athletes compete and ranks them by
// mark, best first.
func eventResults(r *rand.Rand, ev model.Event, d int, athletes []model.Athlete, ability [][]float64) []model.Result {
	var field []attempt
	for i := range ability {
		if r.IntN(5) == 0 {
			continue
		}
		field = append(field, attempt{athlete: i, mark: ability[i][d] * (0.9 + 0.15*r.Float64())})
	}
	slices.SortStableFunc(field, func(a, b attempt) int { return cmp.Compare(b.mark, a.mark) })
	out := make([]model.Result, len(field))
	for pos, a := range field {
		out[pos] = model.Result{
			EventID:     ev.ID,
			AthleteID:   athletes[a.athlete].ID,
			Rank:        pos + 1,
			Performance: formatMark(r, a.mark),
		}
	}
	return out
}

var base = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // fixed epoch

func personalRecords(r *rand.Rand, athletes []model.Athlete, ability [][]float64) []model.PersonalRecord {
	var out []model.PersonalRecord
	for i, a := range athletes {
		for d, disc := range disciplines {
			if r.IntN(3) == 0 {
				continue
			}
			rec := model.PersonalRecord{
				AthleteID:   a.ID,
				EventName:   disc.name,
				Performance: formatMark(r, ability[i][d]),
			}
			switch r.IntN(10) {
			case 0:
				rec.Performance = "DNF"
			case 1:
				// an older, weaker record for the same event
				older := base.AddDate(0, 0, r.IntN(180))
				out = append(out, model.PersonalRecord{
					AthleteID:   a.ID,
					EventName:   disc.name,
					Performance: formatMark(r, ability[i][d]*0.9),
					Date:        &older,
				})
				newer := older.AddDate(1, 0, 0)
				rec.Date = &newer
			}
			out = append(out, rec)
		}
	}
	return out
}

// officialRecords gives every scope a record per discipline a little above
// the best ability; one scope in five misses a random discipline.
func officialRecords(r *rand.Rand, scopes []string, ability [][]float64) []model.OfficialRecord {
	var out []model.OfficialRecord
	for _, scope := range scopes {
		skip := -1
		if r.IntN(5) == 0 {
			skip = r.IntN(len(disciplines))
		}
		for d, disc := range disciplines {
			if d == skip {
				continue
			}
			best := 0.0
			for i := range ability {
				best = max(best, ability[i][d])
			}
			out = append(out, model.OfficialRecord{
				Scope:       scope,
				EventName:   disc.name,
				Performance: formatMark(r, best*(1.02+0.1*r.Float64())),
			})
		}
	}
	return out
}

// formatMark renders metres in one of the spellings the parser accepts.
func formatMark(r *rand.Rand, m float64) string {
	s := strconv.FormatFloat(m, 'f', 2, 64)
	switch r.IntN(4) {
	case 0:
		return s + "m"
	case 1:
		return strings.Replace(s, ".", ",", 1) + " m"
	case 2:
		return s + " metres"
	default:
		return s
	}
}
