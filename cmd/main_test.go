package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(os.Stderr))
}

const seedYAML = `
competitions:
  - id: c1
    name: Indoor Open
    groups:
      - id: g1
        name: Sprints
        events:
          - id: e1
            name: 60m
athletes:
  - id: a
    first_name: Ada
    last_name: Lind
    country: SWE
  - id: b
    first_name: Bo
    last_name: Kim
    country: KOR
results:
  - athlete_id: a
    event_id: e1
    rank: 1
    performance: "6.80"
  - athlete_id: b
    event_id: e1
    rank: 2
    performance: "6.91"
`

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given PODIUM_ environment variables", t, func() {
		t.Setenv("PODIUM_ADDR", ":8181")
		t.Setenv("PODIUM_RANK_FORMULA", "odd")
		t.Setenv("PODIUM_INVALID_RANK_POLICY", "skip")
		t.Setenv("PODIUM_TIE_BREAK", "entry_order")

		convey.Convey("When configuration is loaded", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then env values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
				convey.So(cfg.RankFormula, convey.ShouldEqual, "odd")
				convey.So(cfg.InvalidRankPolicy, convey.ShouldEqual, config.PolicySkip)
				convey.So(cfg.TieBreak, convey.ShouldEqual, "entry_order")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			})
		})
	})
}

func TestServiceWiring(t *testing.T) {
	convey.Convey("Given a seeded memory store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "seed.yaml")
		convey.So(os.WriteFile(path, []byte(seedYAML), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		store, closeStore, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer closeStore()
		convey.So(loadSeed(ctx, store, path), convey.ShouldBeNil)

		convey.Convey("When the service is built from config", func() {
			svc, err := newService(cfg, store, logger.Get())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the group leaderboard uses rank points", func() {
				lb, err := svc.GroupLeaderboard(ctx, "g1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(lb.Entries, convey.ShouldHaveLength, 2)
				convey.So(lb.Entries[0].AthleteID, convey.ShouldEqual, "a")
				convey.So(lb.Entries[0].Name, convey.ShouldEqual, "Ada Lind")
				convey.So(lb.Entries[0].Points, convey.ShouldEqual, 1)
				convey.So(lb.Entries[1].Points, convey.ShouldEqual, 2)
			})

			convey.Convey("Then the records gauge follows store counts", func() {
				updateRecordsMetric(ctx, svc)
				convey.So(recordsGauge(t, metrics.KindAthletes), convey.ShouldEqual, 2)
				convey.So(recordsGauge(t, metrics.KindResults), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the odd formula is configured", func() {
			cfg.RankFormula = "odd"
			svc, err := newService(cfg, store, logger.Get())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then leaderboard points follow it", func() {
				lb, err := svc.GroupLeaderboard(ctx, "g1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(lb.Entries[0].Points, convey.ShouldEqual, 1)
				convey.So(lb.Entries[1].Points, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When entry-order tie-breaks are configured", func() {
			cfg.TieBreak = "entry_order"
			svc, err := newService(cfg, store, logger.Get())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service reports and uses them", func() {
				stats, err := svc.GetStats(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stats.TieBreak, convey.ShouldEqual, "entry_order")
			})
		})

		convey.Convey("When the tie-break is unknown", func() {
			cfg.TieBreak = "coin_flip"
			_, err := newService(cfg, store, logger.Get())

			convey.Convey("Then construction fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the formula is unknown", func() {
			cfg.RankFormula = "linear"
			_, err := newService(cfg, store, logger.Get())

			convey.Convey("Then construction fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestLoadSeedErrors(t *testing.T) {
	convey.Convey("Given a missing seed file", t, func() {
		err := loadSeed(context.Background(), repository.NewMemoryStore(), filepath.Join(t.TempDir(), "nope.yaml"))

		convey.Convey("Then loading fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("Then run shuts down cleanly", func() {
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})

		convey.Convey("Then registering runtime collectors twice is harmless", func() {
			convey.So(registerRuntimeCollectors, convey.ShouldNotPanic)
			convey.So(registerRuntimeCollectors, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given an unreadable seed file", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

		convey.Convey("Then run fails before serving", func() {
			convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
		})
	})
}

// recordsGauge reads the records gauge for kind from the service registry.
func recordsGauge(t *testing.T, kind string) float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "podium_scoring_records" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "kind" && l.GetValue() == kind {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no records gauge for %s", kind)
	return 0
}
