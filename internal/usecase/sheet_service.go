package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRangeParallelism = 4

// RangeSnapshot is the last rows successfully read for a range.
type RangeSnapshot struct {
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// SnapshotStore keeps last-known-good range reads across restarts.
type SnapshotStore interface {
	SaveRange(ctx context.Context, key string, snapshot RangeSnapshot) error
	LoadRange(ctx context.Context, key string) (RangeSnapshot, bool, error)
}

type RangeResult struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Range         string     `json:"range"`
	Rows          [][]string `json:"rows"`
	Stale         bool       `json:"stale"`
	FetchedAt     time.Time  `json:"fetchedAt"`
}

// SheetService layers a last-known-good fallback over RangeFetcher: when
// every retry fails it serves the previous successful read flagged stale.
type SheetService struct {
	fetcher     *RangeFetcher
	snapshots   SnapshotStore
	logger      *logging.Logger
	parallelism int
}

func NewSheetService(fetcher *RangeFetcher, snapshots SnapshotStore, logger *logging.Logger) *SheetService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SheetService{
		fetcher:     fetcher,
		snapshots:   snapshots,
		logger:      logger,
		parallelism: defaultRangeParallelism,
	}
}

func (s *SheetService) FetchRange(ctx context.Context, req RangeRequest) (result RangeResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SheetService.FetchRange", attribute.String("sheets.range", req.Range))
	defer func() {
		markSpan(span, err)
		span.End()
	}()

	if s.fetcher == nil {
		return RangeResult{}, fmt.Errorf("%w: range fetcher is not configured", ErrDependencyUnavailable)
	}

	spreadsheetID := s.fetcher.resolveSpreadsheetID(req.SpreadsheetID)
	rangeRef := strings.TrimSpace(req.Range)
	key := RangeCacheKey(spreadsheetID, rangeRef)
	result = RangeResult{SpreadsheetID: spreadsheetLabel(spreadsheetID), Range: rangeRef}

	fresh, remote, err := s.fetcher.FetchSnapshot(ctx, req)
	if err == nil {
		result.Rows = fresh.Rows
		result.FetchedAt = fresh.FetchedAt
		if remote {
			s.saveSnapshot(ctx, key, fresh)
		}
		return result, nil
	}

	var fetchErr *RemoteFetchError
	if !errors.As(err, &fetchErr) || s.snapshots == nil {
		return RangeResult{}, err
	}

	snapshot, ok, loadErr := s.snapshots.LoadRange(ctx, key)
	if loadErr != nil {
		s.logger.WarnContext(ctx, "load range snapshot failed", "key", key, "error", loadErr)
		return RangeResult{}, err
	}
	if !ok {
		return RangeResult{}, errors.Wrapf(err, "no last-known-good snapshot for %s", key)
	}

	s.logger.WarnContext(ctx, "serving last-known-good range snapshot",
		"key", key,
		"fetched_at", snapshot.FetchedAt,
		"error", err,
	)
	result.Rows = snapshot.Rows
	result.FetchedAt = snapshot.FetchedAt
	result.Stale = true
	return result, nil
}

// FetchRanges reads several ranges of one spreadsheet concurrently. Results
// keep the order of ranges; the first failing range fails the call.
func (s *SheetService) FetchRanges(ctx context.Context, spreadsheetID string, ranges []string, forceRefresh bool) (results []RangeResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SheetService.FetchRanges", attribute.Int("sheets.range_count", len(ranges)))
	defer func() {
		markSpan(span, err)
		span.End()
	}()

	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: at least one range is required", ErrInvalidInput)
	}

	results = make([]RangeResult, len(ranges))
	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.parallelism).
		WithCancelOnError().
		WithFirstError()
	for i, rangeRef := range ranges {
		p.Go(func(ctx context.Context) error {
			res, err := s.FetchRange(ctx, RangeRequest{
				SpreadsheetID: spreadsheetID,
				Range:         rangeRef,
				ForceRefresh:  forceRefresh,
			})
			if err != nil {
				return errors.Wrapf(err, "range %s", rangeRef)
			}
			results[i] = res
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ClearRanges drops the cached ranges of one spreadsheet. Snapshots are kept.
func (s *SheetService) ClearRanges(ctx context.Context, spreadsheetID string) int {
	return s.fetcher.ClearSpreadsheet(ctx, spreadsheetID)
}

func (s *SheetService) saveSnapshot(ctx context.Context, key string, snapshot RangeSnapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveRange(ctx, key, snapshot); err != nil {
		s.logger.WarnContext(ctx, "save range snapshot failed", "key", key, "error", err)
	}
}
