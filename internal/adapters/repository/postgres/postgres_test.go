package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/repository/postgres"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// envDatabaseURL points the store tests at a disposable database.
const envDatabaseURL = "PODIUM_TEST_DATABASE_URL"

func TestIsNoRows(t *testing.T) {
	Convey("Given query errors", t, func() {
		So(postgres.IsNoRows(pgx.ErrNoRows), ShouldBeTrue)
		So(postgres.IsNoRows(fmt.Errorf("group g1: %w", pgx.ErrNoRows)), ShouldBeTrue)
		So(postgres.IsNoRows(errors.New("boom")), ShouldBeFalse)
		So(postgres.IsNoRows(nil), ShouldBeFalse)
	})
}

func TestWithMaxConns(t *testing.T) {
	Convey("Given a pool config", t, func() {
		cfg := &pgxpool.Config{MaxConns: 10}

		Convey("When a positive cap is applied", func() {
			postgres.WithMaxConns(3)(cfg)
			So(cfg.MaxConns, ShouldEqual, 3)
		})

		Convey("When zero is applied", func() {
			postgres.WithMaxConns(0)(cfg)
			So(cfg.MaxConns, ShouldEqual, 10)
		})
	})
}

func TestConnectRejectsBadURL(t *testing.T) {
	Convey("Given a malformed database url", t, func() {
		_, err := postgres.Connect(context.Background(), "postgres://%zz")

		Convey("Then Connect fails before dialing", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "parse database url")
		})
	})
}

func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv(envDatabaseURL)
	if url == "" {
		t.Skipf("%s not set", envDatabaseURL)
	}

	Convey("Given a store on a fresh schema", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := postgres.Connect(ctx, url, postgres.WithMaxConns(2))
		So(err, ShouldBeNil)
		store := postgres.New(pool)
		defer func() { _ = store.Close() }()

		for _, table := range []string{"results", "personal_records", "official_records", "athletes", "events", "competition_groups", "competitions"} {
			_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table)
			So(err, ShouldBeNil)
		}
		So(store.EnsureSchema(ctx), ShouldBeNil)

		date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		seed := repository.Seed{
			Competitions: []model.Competition{{
				ID: "c1", Name: "Open",
				Groups: []model.Group{
					{ID: "g1", Name: "Sprints", Events: []model.Event{{ID: "e1", Name: "100m", Order: 1}, {ID: "e2", Name: "200m", Order: 2}}},
					{ID: "g2", Name: "Throws", Events: []model.Event{{ID: "e3", Name: "Shot put"}}},
				},
			}},
			Athletes: []model.Athlete{{ID: "b", FirstName: "Bo"}, {ID: "a", FirstName: "Ada", Country: "SWE"}},
			Results: []model.Result{
				{EventID: "e1", AthleteID: "a", Rank: 1, Performance: "10.10"},
				{EventID: "e1", AthleteID: "b", Rank: 2, Performance: "10.20"},
				{EventID: "e3", AthleteID: "a", Rank: 1, Performance: "20,50 m"},
			},
			PersonalRecords: []model.PersonalRecord{
				{AthleteID: "a", EventName: "100m", Performance: "10.05", Date: &date},
				{AthleteID: "a", EventName: "100m", Performance: "10.30"},
			},
			OfficialRecords: []model.OfficialRecord{
				{Scope: "Europe", EventName: "100m", Performance: "9.86"},
				{Scope: "Europe", EventName: "100m", Performance: "9.80"},
			},
		}
		So(seed.Apply(ctx, store), ShouldBeNil)

		Convey("Then the competition keeps group and event order", func() {
			c, err := store.Competition(ctx, "c1")
			So(err, ShouldBeNil)
			So(c.Groups, ShouldHaveLength, 2)
			So(c.Groups[0].ID, ShouldEqual, "g1")
			So(c.Groups[0].Events, ShouldHaveLength, 2)
			So(c.Groups[0].Events[1].Order, ShouldEqual, 2)
			So(c.Groups[0].Events[0].GroupID, ShouldEqual, "g1")
			So(c.Groups[1].CompetitionID, ShouldEqual, "c1")
		})

		Convey("Then unknown ids are not found", func() {
			_, err := store.Group(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = store.Competition(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then results are filtered by event", func() {
			rs, err := store.Results(ctx, []string{"e1"})
			So(err, ShouldBeNil)
			So(rs, ShouldHaveLength, 2)
			empty, err := store.Results(ctx, nil)
			So(err, ShouldBeNil)
			So(empty, ShouldBeEmpty)
		})

		Convey("Then duplicate personal records are kept and official records are replaced", func() {
			prs, err := store.PersonalRecords(ctx)
			So(err, ShouldBeNil)
			So(prs, ShouldHaveLength, 2)
			So(prs[0].Date, ShouldNotBeNil)
			So(prs[0].Date.Equal(date), ShouldBeTrue)

			ors, err := store.OfficialRecords(ctx)
			So(err, ShouldBeNil)
			So(ors, ShouldHaveLength, 1)
			So(ors[0].Performance, ShouldEqual, "9.80")
		})

		Convey("Then counts cover every kind", func() {
			c, err := store.Counts(ctx)
			So(err, ShouldBeNil)
			So(c, ShouldResemble, repository.Counts{
				Competitions: 1, Groups: 2, Events: 3, Athletes: 2,
				Results: 3, PersonalRecords: 2, OfficialRecords: 1,
			})
		})
	})
}
