package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockDeps struct {
	groups       map[string]types.Leaderboard
	competitions map[string]types.Leaderboard
	ranking      types.Ranking
	rankingErr   error
	lastScope    string
	statsErr     error
}

func (m *mockDeps) GroupLeaderboard(_ context.Context, id string) (types.Leaderboard, error) {
	if id == "broken" {
		return types.Leaderboard{}, fmt.Errorf("group leaderboard %s: %w", id,
			&leaderboard.RankError{EventID: "caber", AthleteID: "ath-z", Rank: 0, Err: scoring.ErrInvalidRank})
	}
	lb, ok := m.groups[id]
	if !ok {
		return types.Leaderboard{}, fmt.Errorf("group %q: %w", id, repository.ErrNotFound)
	}
	return lb, nil
}

func (m *mockDeps) CompetitionLeaderboard(_ context.Context, id string) (types.Leaderboard, error) {
	lb, ok := m.competitions[id]
	if !ok {
		return types.Leaderboard{}, fmt.Errorf("competition %q: %w", id, repository.ErrNotFound)
	}
	return lb, nil
}

func (m *mockDeps) ContinentalRanking(_ context.Context, scope string) (types.Ranking, error) {
	m.lastScope = scope
	if m.rankingErr != nil {
		return types.Ranking{}, m.rankingErr
	}
	r := m.ranking
	r.Scope = scope
	return r, nil
}

func (m *mockDeps) GetStats(_ context.Context) (types.Stats, error) {
	if m.statsErr != nil {
		return types.Stats{}, m.statsErr
	}
	return types.Stats{Records: types.RecordCounts{Results: 6}, RankFormula: "rank"}, nil
}

func newDeps() *mockDeps {
	heavy := types.Leaderboard{Direction: types.Ascending, Entries: []types.LeaderboardEntry{
		{Position: 1, AthleteID: "ath-a", Points: 3, Events: 2},
		{Position: 2, AthleteID: "ath-b", Points: 3, Events: 2},
	}}
	entries := make([]types.RankingEntry, 5)
	for i := range entries {
		entries[i] = types.RankingEntry{Position: i + 1, AthleteID: fmt.Sprintf("ath-%d", i), Points: float64(1000 - i*100)}
	}
	return &mockDeps{
		groups:       map[string]types.Leaderboard{"heavy": heavy},
		competitions: map[string]types.Leaderboard{"games": heavy},
		ranking:      types.Ranking{Direction: types.Descending, Entries: entries},
	}
}

func serve(mux *http.ServeMux, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given a registered server", t, func() {
		mux := newMux(newDeps())

		Convey("When GET /healthz", func() {
			w := serve(mux, http.MethodGet, "/healthz", nil)

			Convey("Then it reports ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
				So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})
		})

		Convey("When GET /metrics after a request", func() {
			serve(mux, http.MethodGet, "/healthz", nil)
			w := serve(mux, http.MethodGet, "/metrics", nil)

			Convey("Then HTTP metrics are exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "podium_scoring_http_requests_total")
			})
		})

		Convey("When POST /healthz", func() {
			w := serve(mux, http.MethodPost, "/healthz", nil)

			Convey("Then the method is not allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given a request carrying X-Request-ID", t, func() {
		mux := newMux(newDeps())
		w := serve(mux, http.MethodGet, "/healthz", http.Header{api.HeaderRequestID: {"abc-123"}})

		Convey("Then the same id is echoed", func() {
			So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
		})
	})

	Convey("Given a request with a lower-case request id header", t, func() {
		mux := newMux(newDeps())
		w := serve(mux, http.MethodGet, "/healthz", http.Header{"x-request-id": {"def-456"}})

		Convey("Then the header name is matched case-insensitively", func() {
			So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "def-456")
		})
	})

	Convey("Given a request without a request id", t, func() {
		mux := newMux(newDeps())
		w := serve(mux, http.MethodGet, "/healthz", nil)

		Convey("Then one is generated", func() {
			So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			So(w.Header().Get(api.HeaderRequestID), ShouldNotEqual, "abc-123")
		})
	})
}

func TestLeaderboardRoutes(t *testing.T) {
	Convey("Given a registered server", t, func() {
		mux := newMux(newDeps())

		Convey("When GET /groups/heavy/leaderboard", func() {
			w := serve(mux, http.MethodGet, "/groups/heavy/leaderboard", nil)

			Convey("Then the leaderboard is returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var lb types.Leaderboard
				So(json.Unmarshal(w.Body.Bytes(), &lb), ShouldBeNil)
				So(lb.Direction, ShouldEqual, types.Ascending)
				So(lb.Entries, ShouldHaveLength, 2)
				So(lb.Entries[0].AthleteID, ShouldEqual, "ath-a")
			})
		})

		Convey("When the group is unknown", func() {
			w := serve(mux, http.MethodGet, "/groups/nope/leaderboard", nil)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			})
		})

		Convey("When the group holds an invalid rank", func() {
			w := serve(mux, http.MethodGet, "/groups/broken/leaderboard", nil)

			Convey("Then 422 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, `"code":"invalid_rank"`)
			})
		})

		Convey("When GET /competitions/games/leaderboard", func() {
			w := serve(mux, http.MethodGet, "/competitions/games/leaderboard", nil)

			Convey("Then it succeeds", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the competition is unknown", func() {
			w := serve(mux, http.MethodGet, "/competitions/nope/leaderboard", nil)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRankingRoute(t *testing.T) {
	Convey("Given a server capping rankings at 3", t, func() {
		deps := newDeps()
		mux := newMux(deps, api.WithMaxRankingLimit(3))

		Convey("When no limit is given", func() {
			w := serve(mux, http.MethodGet, "/rankings?scope=Europe", nil)

			Convey("Then the cap applies and the total is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Scope   string               `json:"scope"`
					Entries []types.RankingEntry `json:"entries"`
					Total   int                  `json:"total"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Scope, ShouldEqual, "Europe")
				So(body.Entries, ShouldHaveLength, 3)
				So(body.Total, ShouldEqual, 5)
			})
		})

		Convey("When a smaller limit is given", func() {
			w := serve(mux, http.MethodGet, "/rankings?scope=Asia&limit=2", nil)

			Convey("Then it is honoured", func() {
				var body struct {
					Entries []types.RankingEntry `json:"entries"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Entries, ShouldHaveLength, 2)
				So(body.Entries[1].Position, ShouldEqual, 2)
				So(deps.lastScope, ShouldEqual, "Asia")
			})
		})

		Convey("When the limit exceeds the cap", func() {
			w := serve(mux, http.MethodGet, "/rankings?limit=50", nil)

			Convey("Then it is clamped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastScope, ShouldEqual, "")
			})
		})

		Convey("When the limit is not a positive integer", func() {
			for _, bad := range []string{"0", "-1", "ten"} {
				w := serve(mux, http.MethodGet, "/rankings?limit="+bad, nil)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When no scope resolves", func() {
			deps.rankingErr = fmt.Errorf("continental ranking: %w", ranking.ErrMissingScope)
			w := serve(mux, http.MethodGet, "/rankings", nil)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the store fails", func() {
			deps.rankingErr = errors.New("connection refused")
			w := serve(mux, http.MethodGet, "/rankings", nil)

			Convey("Then 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "internal_error")
			})
		})
	})
}

func TestStatsRoute(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newDeps()
		mux := newMux(deps)

		Convey("When GET /stats", func() {
			w := serve(mux, http.MethodGet, "/stats", nil)

			Convey("Then counts are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"results":6`)
				So(w.Body.String(), ShouldContainSubstring, `"rank_formula":"rank"`)
			})
		})

		Convey("When stats fail", func() {
			deps.statsErr = context.DeadlineExceeded
			w := serve(mux, http.MethodGet, "/stats", nil)

			Convey("Then 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}
