package fixtures_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/performance"
	"github.com/okian/podium/internal/fixtures"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		cfg := fixtures.Config{Seed: 7, Athletes: 12, Groups: 2, EventsPerGroup: 3}

		Convey("When generating twice with the same seed", func() {
			a := fixtures.Generate(cfg)
			b := fixtures.Generate(cfg)

			Convey("Then the snapshots are identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When generating with another seed", func() {
			a := fixtures.Generate(cfg)
			cfg.Seed = 8
			b := fixtures.Generate(cfg)

			Convey("Then athlete ids differ", func() {
				So(a.Athletes[0].ID, ShouldNotEqual, b.Athletes[0].ID)
			})
		})

		Convey("When inspecting a snapshot", func() {
			s := fixtures.Generate(cfg)

			Convey("Then its shape follows the config", func() {
				So(s.Athletes, ShouldHaveLength, 12)
				So(s.Competitions, ShouldHaveLength, 1)
				So(s.Competitions[0].Groups, ShouldHaveLength, 2)
				So(s.Competitions[0].EventIDs(), ShouldHaveLength, 6)
				So(len(s.OfficialRecords), ShouldBeGreaterThan, 0)
			})

			Convey("Then ranks are contiguous in every event", func() {
				So(leaderboard.Validate(s.Results), ShouldBeEmpty)
			})

			Convey("Then every official record parses", func() {
				for _, rec := range s.OfficialRecords {
					_, ok := performance.ParseValue(rec.Performance)
					So(ok, ShouldBeTrue)
				}
			})
		})
	})
}

func TestSeedFile(t *testing.T) {
	Convey("Given a generated snapshot written as YAML", t, func() {
		s := fixtures.Generate(fixtures.Config{Seed: 3})
		out, err := repository.EncodeSeed(s)
		So(err, ShouldBeNil)
		path := filepath.Join(t.TempDir(), "seed.yaml")
		So(os.WriteFile(path, out, 0o600), ShouldBeNil)

		Convey("When loading it back", func() {
			loaded, err := repository.LoadSeed(context.Background(), path)

			Convey("Then the records survive", func() {
				So(err, ShouldBeNil)
				So(loaded.Athletes, ShouldResemble, s.Athletes)
				So(loaded.Results, ShouldResemble, s.Results)
				So(loaded.OfficialRecords, ShouldResemble, s.OfficialRecords)
				So(loaded.PersonalRecords, ShouldHaveLength, len(s.PersonalRecords))
			})
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a server loaded with a generated snapshot", t, func() {
		ctx := context.Background()
		cfg := fixtures.Config{Seed: 11, Athletes: 16}
		seed := fixtures.Generate(cfg)

		store := repository.NewMemoryStore()
		So(seed.Apply(ctx, store), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(service.New(service.WithStore(store))).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()
		cfg.BaseURL = srv.URL

		Convey("When verifying against the same snapshot", func() {
			report, err := fixtures.Verify(ctx, cfg, seed)

			Convey("Then every check matches", func() {
				So(err, ShouldBeNil)
				So(report.Mismatches, ShouldBeEmpty)
				So(report.OK(), ShouldBeTrue)
				So(report.Checked, ShouldEqual, 2+1+len(fixtures.DefaultScopes))
			})
		})

		Convey("When verifying against a different snapshot", func() {
			other := fixtures.Generate(fixtures.Config{Seed: 12, Athletes: 16})
			other.Competitions = seed.Competitions
			report, err := fixtures.Verify(ctx, cfg, other)

			Convey("Then mismatches are reported", func() {
				So(err, ShouldBeNil)
				So(report.OK(), ShouldBeFalse)
			})
		})

		Convey("When the server is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := fixtures.Verify(ctx, cfg, seed)

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
