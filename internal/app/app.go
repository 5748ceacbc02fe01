package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/BigB742/bigb-analyzer/external/sheets"
	"github.com/BigB742/bigb-analyzer/external/sleeper"
	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/infrastructure/repository/memory"
	"github.com/BigB742/bigb-analyzer/internal/infrastructure/repository/postgres"
	"github.com/BigB742/bigb-analyzer/internal/infrastructure/repository/rediscache"
	"github.com/BigB742/bigb-analyzer/internal/interfaces/httpapi"
	"github.com/BigB742/bigb-analyzer/internal/platform/cache"
	"github.com/BigB742/bigb-analyzer/internal/platform/id"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/platform/resilience"
	"github.com/BigB742/bigb-analyzer/internal/scheduler"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

// App owns every long-lived dependency shared by the API server, the
// scheduler and the sync CLI.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	db         *sqlx.DB
	redis      *redis.Client
	staleCache *cache.StaleCache

	Players    *usecase.PlayerService
	Upserts    *usecase.PlayerUpsertService
	Dedupe     *usecase.PlayerDedupeService
	PlayerSync *usecase.PlayerSyncService
	Reconciler *usecase.StatsReconciliationService
	StatsQuery *usecase.StatsQueryService
	Sheets     *usecase.SheetService
}

// New wires repositories, external clients and services from cfg.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	var (
		playerRepo player.Repository
		statsRepo  weekstat.Repository
	)
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		players := memory.NewPlayerRepository(memory.SeedPlayers()...)
		playerRepo = players
		statsRepo = memory.NewWeekStatRepository(players)
		logger.Warn("using in-memory store", "store_backend", cfg.StoreBackend)
	default:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		playerRepo = postgres.NewPlayerRepository(db)
		statsRepo = postgres.NewWeekStatRepository(db)
	}

	snapshots, err := a.snapshotStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:           cfg.SleeperBaseURL,
		Timeout:           cfg.SleeperTimeout,
		MaxRetries:        cfg.SleeperMaxRetries,
		RequestsPerSecond: cfg.SleeperRPS,
		Logger:            logger.Named("sleeper"),
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			Cooldown:         cfg.SleeperCircuitOpenTimeout,
			Probes:           cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})
	sheetsClient := sheets.NewClient(sheets.ClientConfig{
		BaseURL:              cfg.SheetsBaseURL,
		APIKey:               cfg.SheetsAPIKey,
		DefaultSpreadsheetID: cfg.SheetsSpreadsheetID,
		Timeout:              cfg.SheetsTimeout,
		Logger:               logger.Named("sheets"),
	})

	a.staleCache = cache.NewStaleCache(cache.StaleConfig{
		DefaultTTL: cfg.StatsCacheTTL,
		MaxEntries: cfg.StatsCacheMaxEntries,
		Logger:     logger,
	})

	a.Players = usecase.NewPlayerService(playerRepo)
	a.Upserts = usecase.NewPlayerUpsertService(playerRepo, logger)
	a.Dedupe = usecase.NewPlayerDedupeService(playerRepo, logger)
	a.PlayerSync = usecase.NewPlayerSyncService(sleeperClient, a.Upserts, a.Dedupe, playerRepo, cfg.SyncWorkers, logger)
	a.Reconciler = usecase.NewStatsReconciliationService(
		usecase.NewStatsProviderRegistry(cfg.StatsProvider, sleeperClient),
		playerRepo,
		statsRepo,
		id.NewUUIDGenerator("reconcile"),
		logger,
	)
	a.StatsQuery = usecase.NewStatsQueryService(statsRepo, a.staleCache, usecase.StatsQueryConfig{
		CacheTTL:      cfg.StatsCacheTTL,
		DefaultSeason: cfg.Season,
	}, logger)

	fetcher := usecase.NewRangeFetcher(sheetsClient, cache.NewStore[usecase.RangeSnapshot](cfg.SheetsRangeTTL), usecase.RangeFetcherConfig{
		DefaultSpreadsheetID: cfg.SheetsSpreadsheetID,
		DefaultTTL:           cfg.SheetsRangeTTL,
		Retry: resilience.RetryPolicy{
			Attempts: cfg.SheetsMaxAttempts,
			Delay:    cfg.SheetsRetryDelay,
		},
	}, logger)
	a.Sheets = usecase.NewSheetService(fetcher, snapshots, logger)

	return a, nil
}

// snapshotStore prefers redis so last-known-good ranges survive restarts.
// Without REDIS_URL, or when redis is unreachable outside prod, snapshots
// stay in process memory.
func (a *App) snapshotStore(ctx context.Context) (usecase.SnapshotStore, error) {
	if a.cfg.RedisURL == "" {
		return memory.NewSnapshotStore(), nil
	}

	client, err := rediscache.NewClient(ctx, a.cfg.RedisURL)
	if err != nil {
		if a.cfg.AppEnv == config.EnvProd {
			return nil, err
		}
		a.logger.Warn("redis unavailable, keeping range snapshots in memory", "error", err)
		return memory.NewSnapshotStore(), nil
	}
	a.redis = client
	return rediscache.NewSnapshotStore(client, a.cfg.SheetsSnapshotTTL), nil
}

// NewHTTPServer builds the API server around the wired services.
func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(
		a.Players,
		a.Upserts,
		a.Dedupe,
		a.PlayerSync,
		a.Reconciler,
		a.StatsQuery,
		a.Sheets,
		a.StatsDefaults(),
		a.logger,
	)
	router := httpapi.NewRouter(handler, a.logger, a.cfg.AppEnv != config.EnvProd, a.cfg.CORSAllowedOrigins, a.cfg.InternalJobToken)

	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

// NewScheduler returns nil when SCHEDULER_ENABLED is false.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	if !a.cfg.SchedulerEnabled {
		return nil, nil
	}
	return scheduler.New(scheduler.Config{
		PlayersCron:   a.cfg.SyncPlayersCron,
		StatsInterval: a.cfg.SyncStatsInterval,
		Season:        a.cfg.Season,
		Week:          a.cfg.CurrentWeek,
		Provider:      a.cfg.StatsProvider,
	}, a.PlayerSync, a.Reconciler, a.StatsQuery, a.logger.Named("scheduler"))
}

// StatsDefaults is the season/week/provider used when a sync names none.
func (a *App) StatsDefaults() usecase.ReconcileInput {
	return usecase.ReconcileInput{
		Season:   a.cfg.Season,
		Week:     a.cfg.CurrentWeek,
		Provider: a.cfg.StatsProvider,
	}
}

// Close waits for background cache refreshes, then releases connections.
func (a *App) Close(_ context.Context) error {
	if a.staleCache != nil {
		a.staleCache.Wait()
	}

	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	return errors.Join(errs...)
}
