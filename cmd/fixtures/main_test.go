package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/fixtures"
	"github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given the fixtures command", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ctx := context.Background()
		out := filepath.Join(t.TempDir(), "seed.yaml")

		convey.Convey("When writing a seed file", func() {
			err := run(ctx, fixtures.Config{Seed: 5, Athletes: 6}, out)

			convey.Convey("Then the server can load it", func() {
				convey.So(err, convey.ShouldBeNil)
				s, err := repository.LoadSeed(ctx, out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Athletes, convey.ShouldHaveLength, 6)
			})
		})

		convey.Convey("When the output directory does not exist", func() {
			err := run(ctx, fixtures.Config{Seed: 5}, filepath.Join(t.TempDir(), "missing", "seed.yaml"))

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
