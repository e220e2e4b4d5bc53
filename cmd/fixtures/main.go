// Command fixtures writes a deterministic seed YAML for the server and can
// verify a running server against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/fixtures"
	"github.com/okian/podium/pkg/logger"
)

func main() {
	var (
		seed      = flag.Uint64("seed", 1, "PRNG seed; equal seeds give equal files")
		athletes  = flag.Int("athletes", fixtures.DefaultAthletes, "Number of athletes")
		groups    = flag.Int("groups", fixtures.DefaultGroups, "Number of groups in the competition")
		events    = flag.Int("events", fixtures.DefaultEventsPerGroup, "Events per group")
		out       = flag.String("out", "seed.yaml", "Output file, - for stdout")
		verifyURL = flag.String("verify", "", "Base URL of a server loaded with this seed to verify against")
		workers   = flag.Int("workers", fixtures.DefaultWorkers, "Concurrent verification requests")
		timeout   = flag.Duration("timeout", fixtures.DefaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := fixtures.Config{
		Seed:           *seed,
		Athletes:       *athletes,
		Groups:         *groups,
		EventsPerGroup: *events,
		BaseURL:        *verifyURL,
		Workers:        *workers,
		Timeout:        *timeout,
	}
	if err := run(ctx, cfg, *out); err != nil {
		logger.Get().Error(ctx, "fixtures failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg fixtures.Config, out string) error {
	log := logger.Get()
	s := fixtures.Generate(cfg)

	if cfg.BaseURL != "" {
		report, err := fixtures.Verify(ctx, cfg, s)
		if err != nil {
			return err
		}
		for _, m := range report.Mismatches {
			log.Warn(ctx, "mismatch", logger.String("detail", m))
		}
		if !report.OK() {
			return fmt.Errorf("%d of %d checks mismatched", len(report.Mismatches), report.Checked)
		}
		return nil
	}

	data, err := repository.EncodeSeed(s)
	if err != nil {
		return err
	}
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil { //nolint:gosec // seed files are not secret
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info(ctx, "seed written",
		logger.String("file", out),
		logger.Int("athletes", len(s.Athletes)),
		logger.Int("results", len(s.Results)),
		logger.Int("personal_records", len(s.PersonalRecords)),
		logger.Int("official_records", len(s.OfficialRecords)),
	)
	return nil
}
