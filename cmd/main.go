package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/http/swagger"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/repository/postgres"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	recordsMetricInterval = 15 * time.Second
)

// recordStore is a store the service reads and the seed loader writes.
type recordStore interface {
	repository.Store
	repository.Writer
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // exit code matters more than the remaining defers
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	registerRuntimeCollectors()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedFile != "" {
		if err := loadSeed(ctx, store, cfg.SeedFile); err != nil {
			return err
		}
		log.Info(ctx, "seed loaded", logger.String("file", cfg.SeedFile))
	}

	svc, err := newService(cfg, store, log)
	if err != nil {
		return err
	}

	go startRecordsMetricUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithMaxRankingLimit(cfg.MaxRankingLimit),
		api.WithLogger(log.Named("http")),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.Store),
			logger.String("rank_formula", cfg.RankFormula),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

// openStore returns the configured record store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (recordStore, func(), error) {
	if cfg.Store != config.StorePostgres {
		return repository.NewMemoryStore(), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.WithMaxConns(int32(cfg.DatabaseMaxConns))) //nolint:gosec // validated non-negative
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Get().Warn(ctx, "closing record store", logger.Error(err))
		}
	}, nil
}

func loadSeed(ctx context.Context, w repository.Writer, path string) error {
	seed, err := repository.LoadSeed(ctx, path)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, w)
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) (*service.Service, error) {
	formula, err := scoring.ParseFormula(cfg.RankFormula)
	if err != nil {
		return nil, err
	}
	rule, err := dedupe.ParseRule(cfg.PersonalRecordReduction)
	if err != nil {
		return nil, err
	}
	tieBreak, err := leaderboard.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithStore(store),
		service.WithLogger(log.Named("service")),
		service.WithRankFormula(formula),
		service.WithReduction(rule),
		service.WithTieBreak(tieBreak),
		service.WithSkipInvalidRanks(cfg.InvalidRankPolicy == config.PolicySkip),
		service.WithDefaultScope(cfg.DefaultScope),
	), nil
}

// registerRuntimeCollectors exposes Go runtime and process metrics on the
// service registry. Repeated calls are ignored.
func registerRuntimeCollectors() {
	reg := metrics.GetRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// startRecordsMetricUpdater refreshes the records gauge from store counts.
// Stores that are written outside this process only show up here.
func startRecordsMetricUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(recordsMetricInterval)
	defer ticker.Stop()

	updateRecordsMetric(ctx, svc)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateRecordsMetric(ctx, svc)
		}
	}
}

func updateRecordsMetric(ctx context.Context, svc *service.Service) {
	stats, err := svc.GetStats(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Get().Warn(ctx, "records metric update failed", logger.Error(err))
		}
		return
	}
	c := stats.Records
	metrics.UpdateRecordsTotal(metrics.KindCompetitions, c.Competitions)
	metrics.UpdateRecordsTotal(metrics.KindGroups, c.Groups)
	metrics.UpdateRecordsTotal(metrics.KindEvents, c.Events)
	metrics.UpdateRecordsTotal(metrics.KindAthletes, c.Athletes)
	metrics.UpdateRecordsTotal(metrics.KindResults, c.Results)
	metrics.UpdateRecordsTotal(metrics.KindPersonalRecords, c.PersonalRecords)
	metrics.UpdateRecordsTotal(metrics.KindOfficialRecords, c.OfficialRecords)
}
