package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

const defaultPlayerSyncWorkers = 8

type PlayerSyncResult struct {
	Fetched     int          `json:"fetched"`
	FilteredOut int          `json:"filteredOut"`
	Inserted    int          `json:"inserted"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	Pruned      int          `json:"pruned"`
	Dedupe      DedupeResult `json:"dedupe"`
	DurationMs  int64        `json:"durationMs"`
}

// PlayerSyncService refreshes the whole player catalog: dedupe, upsert every
// provider player on a bounded worker pool, then prune non-fantasy rows.
type PlayerSyncService struct {
	catalog PlayerCatalogProvider
	upserts *PlayerUpsertService
	dedupe  *PlayerDedupeService
	repo    player.Repository
	workers int
	logger  *logging.Logger
}

func NewPlayerSyncService(
	catalog PlayerCatalogProvider,
	upserts *PlayerUpsertService,
	dedupe *PlayerDedupeService,
	repo player.Repository,
	workers int,
	logger *logging.Logger,
) *PlayerSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultPlayerSyncWorkers
	}
	return &PlayerSyncService{
		catalog: catalog,
		upserts: upserts,
		dedupe:  dedupe,
		repo:    repo,
		workers: workers,
		logger:  logger,
	}
}

func (s *PlayerSyncService) SyncAll(ctx context.Context) (PlayerSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerSyncService.SyncAll")
	defer span.End()

	if s.catalog == nil {
		return PlayerSyncResult{}, fmt.Errorf("%w: player catalog provider is not configured", ErrDependencyUnavailable)
	}
	startedAt := time.Now()

	dedupe, err := s.dedupe.NormalizeAndDedupe(ctx, DedupeInput{})
	if err != nil {
		return PlayerSyncResult{}, errors.Wrap(err, "pre-sync dedupe")
	}

	catalog, err := s.catalog.FetchPlayers(ctx)
	if err != nil {
		return PlayerSyncResult{}, fmt.Errorf("%w: fetch player catalog: %w", ErrDependencyUnavailable, err)
	}
	s.logger.InfoContext(ctx, "player catalog fetched",
		"players", len(catalog.Players),
		"filtered_out", catalog.FilteredOut,
	)

	var inserted, updated, skipped, failed atomic.Int32

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return PlayerSyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, record := range catalog.Players {
		if ctx.Err() != nil {
			break
		}
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			res, err := s.upserts.Upsert(ctx, record)
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.WarnContext(ctx, "player upsert failed",
					"external_id", record.ExternalID,
					"name", record.Name,
					"error", err,
				)
			case res.Skipped:
				skipped.Add(1)
			case res.Inserted:
				inserted.Add(1)
			default:
				updated.Add(1)
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return PlayerSyncResult{}, fmt.Errorf("submit player upsert to worker pool: %w", err)
		}
	}
	workers.Wait()
	if err := ctx.Err(); err != nil {
		return PlayerSyncResult{}, errors.Wrap(err, "player sync interrupted")
	}

	pruned, err := s.Prune(ctx)
	if err != nil {
		return PlayerSyncResult{}, err
	}

	result := PlayerSyncResult{
		Fetched:     len(catalog.Players),
		FilteredOut: catalog.FilteredOut,
		Inserted:    int(inserted.Load()),
		Updated:     int(updated.Load()),
		Skipped:     int(skipped.Load()),
		Failed:      int(failed.Load()),
		Pruned:      pruned,
		Dedupe:      dedupe,
		DurationMs:  time.Since(startedAt).Milliseconds(),
	}
	s.logger.InfoContext(ctx, "player sync finished",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"pruned", result.Pruned,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// Prune deletes players outside the fantasy positions.
func (s *PlayerSyncService) Prune(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerSyncService.Prune")
	defer span.End()

	pruned, err := s.repo.DeleteOutsidePositions(ctx, player.FantasyPositionList())
	if err != nil {
		return 0, errors.Wrap(err, "prune non-fantasy players")
	}
	if pruned > 0 {
		s.logger.InfoContext(ctx, "pruned non-fantasy players", "count", pruned)
	}
	return pruned, nil
}
