package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

// pointsTolerance absorbs float formatting differences over JSON.
const pointsTolerance = 1e-6

// Report summarises a verification run.
type Report struct {
	Checked    int
	Mismatches []string
}

// OK reports whether every check matched.
func (r Report) OK() bool { return len(r.Mismatches) == 0 }

type check struct {
	name string
	path string
	want func(body []byte) []string
}

// Verify fetches every group leaderboard, the competition leaderboard and
// each scope's ranking from cfg.BaseURL, and compares them with values
// computed locally from seed using the default engine settings.
func Verify(ctx context.Context, cfg Config, seed repository.Seed) (Report, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("fixtures")
	client := &http.Client{Timeout: cfg.Timeout}

	checks, err := buildChecks(cfg, seed)
	if err != nil {
		return Report{}, err
	}

	var (
		mu     sync.Mutex
		report Report
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, c := range checks {
		g.Go(func() error {
			body, err := get(gctx, client, cfg.BaseURL+c.path)
			if err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			problems := c.want(body)
			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			for _, p := range problems {
				report.Mismatches = append(report.Mismatches, c.name+": "+p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	log.Info(ctx, "verification finished",
		logger.Int("checked", report.Checked),
		logger.Int("mismatches", len(report.Mismatches)),
	)
	return report, nil
}

func buildChecks(cfg Config, seed repository.Seed) ([]check, error) {
	byEvent := make(map[string][]model.Result)
	for _, r := range seed.Results {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}

	names := make(map[string]string, len(seed.Athletes))
	for _, a := range seed.Athletes {
		names[a.ID] = a.Name()
	}

	agg := leaderboard.New()
	var checks []check
	addLeaderboard := func(name, path string, eventIDs []string) error {
		var results []model.Result
		for _, id := range eventIDs {
			results = append(results, byEvent[id]...)
		}
		want, err := agg.Leaderboard(results)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for i := range want.Entries {
			want.Entries[i].Name = names[want.Entries[i].AthleteID]
		}
		checks = append(checks, check{name: name, path: path, want: leaderboardMatcher(want)})
		return nil
	}

	for _, c := range seed.Competitions {
		for _, g := range c.Groups {
			if err := addLeaderboard("group "+g.ID, "/groups/"+url.PathEscape(g.ID)+"/leaderboard", g.EventIDs()); err != nil {
				return nil, err
			}
		}
		if err := addLeaderboard("competition "+c.ID, "/competitions/"+url.PathEscape(c.ID)+"/leaderboard", c.EventIDs()); err != nil {
			return nil, err
		}
	}

	ranker := ranking.New()
	for _, scope := range cfg.Scopes {
		want := ranker.Ranking(scope, seed.PersonalRecords, seed.OfficialRecords)
		for i := range want.Entries {
			want.Entries[i].Name = names[want.Entries[i].AthleteID]
		}
		checks = append(checks, check{
			name: "ranking " + scope,
			path: fmt.Sprintf("/rankings?scope=%s&limit=%d", url.QueryEscape(scope), max(1, len(want.Entries))),
			want: rankingMatcher(want),
		})
	}
	return checks, nil
}

func leaderboardMatcher(want types.Leaderboard) func([]byte) []string {
	return func(body []byte) []string {
		var got types.Leaderboard
		if err := json.Unmarshal(body, &got); err != nil {
			return []string{"decode: " + err.Error()}
		}
		var problems []string
		if got.Direction != want.Direction {
			problems = append(problems, fmt.Sprintf("direction %q, want %q", got.Direction, want.Direction))
		}
		if len(got.Entries) != len(want.Entries) {
			return append(problems, fmt.Sprintf("%d entries, want %d", len(got.Entries), len(want.Entries)))
		}
		for i, w := range want.Entries {
			if g := got.Entries[i]; g != w {
				problems = append(problems, fmt.Sprintf("entry %d is %+v, want %+v", i+1, g, w))
			}
		}
		return problems
	}
}

type rankingPage struct {
	types.Ranking
	Total int `json:"total"`
}

// rankingMatcher compares the returned prefix of the ranking; the server
// may cap the page below the full length.
func rankingMatcher(want types.Ranking) func([]byte) []string {
	return func(body []byte) []string {
		var got rankingPage
		if err := json.Unmarshal(body, &got); err != nil {
			return []string{"decode: " + err.Error()}
		}
		var problems []string
		if got.Total != len(want.Entries) {
			problems = append(problems, fmt.Sprintf("total %d, want %d", got.Total, len(want.Entries)))
		}
		if len(got.Entries) > len(want.Entries) {
			return append(problems, fmt.Sprintf("%d entries, want at most %d", len(got.Entries), len(want.Entries)))
		}
		for i, g := range got.Entries {
			w := want.Entries[i]
			if g.AthleteID != w.AthleteID || g.Name != w.Name || g.Position != w.Position || math.Abs(g.Points-w.Points) > pointsTolerance {
				problems = append(problems, fmt.Sprintf("entry %d is %s with %.3f, want %s with %.3f",
					i+1, g.AthleteID, g.Points, w.AthleteID, w.Points))
			}
		}
		return problems
	}
}

func get(ctx context.Context, client *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d: %s", target, resp.StatusCode, body)
	}
	return body, nil
}
