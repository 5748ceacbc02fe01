package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

const (
	playerSyncJobName = "sync-players"
	statsSyncJobName  = "sync-stats"
	defaultJobTimeout = 10 * time.Minute
)

type PlayerSyncer interface {
	SyncAll(ctx context.Context) (usecase.PlayerSyncResult, error)
}

type StatsSyncer interface {
	FetchAndUpsert(ctx context.Context, input usecase.ReconcileInput) (usecase.ReconciliationSummary, error)
}

// CacheClearer drops cached stats listings once new rows land.
type CacheClearer interface {
	ClearCache(key string) int
}

type Config struct {
	PlayersCron   string
	StatsInterval time.Duration
	Season        int
	Week          int
	Provider      string
	JobTimeout    time.Duration
	// StartImmediately runs the stats job once on Start.
	StartImmediately bool
}

// Scheduler runs the player catalog sync on a cron expression and the weekly
// stats sync on a fixed interval. A job never overlaps with itself.
type Scheduler struct {
	cron    gocron.Scheduler
	players PlayerSyncer
	stats   StatsSyncer
	cache   CacheClearer
	cfg     Config
	logger  *logging.Logger
}

func New(cfg Config, players PlayerSyncer, stats StatsSyncer, cache CacheClearer, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		cron:    cron,
		players: players,
		stats:   stats,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}

	if expr := strings.TrimSpace(cfg.PlayersCron); expr != "" && players != nil {
		_, err := cron.NewJob(
			gocron.CronJob(expr, false),
			gocron.NewTask(s.runPlayerSync),
			gocron.WithName(playerSyncJobName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = cron.Shutdown()
			return nil, fmt.Errorf("register %s job cron=%q: %w", playerSyncJobName, expr, err)
		}
	}

	if cfg.StatsInterval > 0 && stats != nil {
		if cfg.Season <= 0 || cfg.Week <= 0 {
			_ = cron.Shutdown()
			return nil, fmt.Errorf("%s job requires season and week, got season=%d week=%d", statsSyncJobName, cfg.Season, cfg.Week)
		}
		options := []gocron.JobOption{
			gocron.WithName(statsSyncJobName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if cfg.StartImmediately {
			options = append(options, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
		if _, err := cron.NewJob(gocron.DurationJob(cfg.StatsInterval), gocron.NewTask(s.runStatsSync), options...); err != nil {
			_ = cron.Shutdown()
			return nil, fmt.Errorf("register %s job: %w", statsSyncJobName, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	names := make([]string, 0, 2)
	for _, job := range s.cron.Jobs() {
		names = append(names, job.Name())
	}
	s.logger.Info("scheduler started", "jobs", names)
}

// Shutdown stops new runs and waits for running jobs to return.
func (s *Scheduler) Shutdown() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) runPlayerSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	result, err := s.players.SyncAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled player sync failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled player sync done",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"pruned", result.Pruned,
		"duration_ms", result.DurationMs,
	)
}

func (s *Scheduler) runStatsSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	summary, err := s.stats.FetchAndUpsert(ctx, usecase.ReconcileInput{
		Season:   s.cfg.Season,
		Week:     s.cfg.Week,
		Provider: s.cfg.Provider,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled stats sync failed",
			"season", s.cfg.Season,
			"week", s.cfg.Week,
			"error", err,
		)
		return
	}
	if s.cache != nil && summary.Inserted+summary.Updated > 0 {
		cleared := s.cache.ClearCache("")
		s.logger.InfoContext(ctx, "stats cache cleared after sync", "entries", cleared)
	}
	s.logger.InfoContext(ctx, "scheduled stats sync done",
		"run_id", summary.RunID,
		"provider", summary.Provider,
		"matched", summary.Matched,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
	)
}
