package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/cache"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/platform/resilience"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultRangeTTL         = 60 * time.Second
	defaultSpreadsheetLabel = "default"
)

// RangeSource reads one cell range from a spreadsheet. An empty
// spreadsheetID selects the source's own default.
type RangeSource interface {
	FetchRange(ctx context.Context, spreadsheetID, rangeRef string) ([][]string, error)
}

type RangeRequest struct {
	SpreadsheetID string
	Range         string
	TTL           time.Duration
	ForceRefresh  bool
}

type RangeFetcherConfig struct {
	DefaultSpreadsheetID string
	DefaultTTL           time.Duration
	Retry                resilience.RetryPolicy
}

// RangeFetcher caches spreadsheet ranges for a fixed TTL and retries the
// remote read a bounded number of times.
type RangeFetcher struct {
	source               RangeSource
	cache                *cache.Store[RangeSnapshot]
	retry                resilience.RetryPolicy
	defaultTTL           time.Duration
	defaultSpreadsheetID string
	logger               *logging.Logger
	now                  func() time.Time
}

func NewRangeFetcher(source RangeSource, store *cache.Store[RangeSnapshot], cfg RangeFetcherConfig, logger *logging.Logger) *RangeFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore[RangeSnapshot](0)
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultRangeTTL
	}
	if cfg.Retry.Attempts < 1 {
		cfg.Retry = resilience.DefaultRetryPolicy()
	}

	return &RangeFetcher{
		source:               source,
		cache:                store,
		retry:                cfg.Retry,
		defaultTTL:           cfg.DefaultTTL,
		defaultSpreadsheetID: strings.TrimSpace(cfg.DefaultSpreadsheetID),
		logger:               logger,
		now:                  time.Now,
	}
}

// Fetch returns the cached rows for the range unless they expired or the
// request forces a refresh. The returned rows are shared; callers must not
// mutate them.
func (f *RangeFetcher) Fetch(ctx context.Context, req RangeRequest) ([][]string, error) {
	snapshot, _, err := f.FetchSnapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	return snapshot.Rows, nil
}

// FetchSnapshot is Fetch with the time the rows were read remotely. remote is
// true only for the caller whose request performed that read; cache hits and
// callers that joined an in-flight read get false.
func (f *RangeFetcher) FetchSnapshot(ctx context.Context, req RangeRequest) (snapshot RangeSnapshot, remote bool, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RangeFetcher.Fetch",
		attribute.String("sheets.range", req.Range),
		attribute.Bool("sheets.force_refresh", req.ForceRefresh),
	)
	defer func() {
		span.SetAttributes(attribute.Bool("sheets.remote_read", remote))
		markSpan(span, err)
		span.End()
	}()

	rangeRef := strings.TrimSpace(req.Range)
	if rangeRef == "" {
		return RangeSnapshot{}, false, fmt.Errorf("%w: range is required", ErrInvalidInput)
	}
	spreadsheetID := f.resolveSpreadsheetID(req.SpreadsheetID)
	ttl := req.TTL
	if ttl <= 0 {
		ttl = f.defaultTTL
	}
	key := RangeCacheKey(spreadsheetID, rangeRef)

	if req.ForceRefresh {
		snapshot, err = f.fetchRemote(ctx, spreadsheetID, rangeRef)
		if err != nil {
			return RangeSnapshot{}, false, err
		}
		f.cache.SetWithTTL(ctx, key, snapshot, ttl)
		return snapshot, true, nil
	}

	snapshot, err = f.cache.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (RangeSnapshot, error) {
		loaded, err := f.fetchRemote(ctx, spreadsheetID, rangeRef)
		remote = err == nil
		return loaded, err
	})
	if err != nil {
		return RangeSnapshot{}, false, err
	}
	return snapshot, remote, nil
}

// Clear drops one cached range so the next Fetch goes remote.
func (f *RangeFetcher) Clear(ctx context.Context, spreadsheetID, rangeRef string) {
	rangeRef = strings.TrimSpace(rangeRef)
	if rangeRef == "" {
		return
	}
	f.cache.Delete(ctx, RangeCacheKey(f.resolveSpreadsheetID(spreadsheetID), rangeRef))
}

// ClearSpreadsheet drops every cached range of one spreadsheet.
func (f *RangeFetcher) ClearSpreadsheet(ctx context.Context, spreadsheetID string) int {
	return f.cache.DeletePrefix(ctx, RangeCacheKey(f.resolveSpreadsheetID(spreadsheetID), ""))
}

func (f *RangeFetcher) fetchRemote(ctx context.Context, spreadsheetID, rangeRef string) (RangeSnapshot, error) {
	if f.source == nil {
		return RangeSnapshot{}, fmt.Errorf("%w: range source is not configured", ErrDependencyUnavailable)
	}

	var rows [][]string
	attempts, err := resilience.Retry(ctx, f.retry, func(ctx context.Context, attempt int) error {
		startedAt := time.Now()
		out, err := f.source.FetchRange(ctx, spreadsheetID, rangeRef)
		durationMs := time.Since(startedAt).Milliseconds()
		if err != nil {
			f.logger.WarnContext(ctx, "range fetch attempt failed",
				"range", rangeRef,
				"spreadsheet_id", spreadsheetLabel(spreadsheetID),
				"attempt", attempt,
				"duration_ms", durationMs,
				"error", err,
			)
			return err
		}
		if out == nil {
			out = [][]string{}
		}
		f.logger.InfoContext(ctx, "range fetch attempt succeeded",
			"range", rangeRef,
			"spreadsheet_id", spreadsheetLabel(spreadsheetID),
			"attempt", attempt,
			"duration_ms", durationMs,
			"rows", len(out),
		)
		rows = out
		return nil
	})
	if err != nil {
		f.logger.ErrorContext(ctx, "range fetch exhausted retries",
			"range", rangeRef,
			"spreadsheet_id", spreadsheetLabel(spreadsheetID),
			"attempts", attempts,
			"error", err,
		)
		return RangeSnapshot{}, &RemoteFetchError{
			SpreadsheetID: spreadsheetLabel(spreadsheetID),
			Range:         rangeRef,
			Attempts:      attempts,
			Err:           err,
		}
	}
	return RangeSnapshot{Rows: rows, FetchedAt: f.now().UTC()}, nil
}

func (f *RangeFetcher) resolveSpreadsheetID(spreadsheetID string) string {
	if id := strings.TrimSpace(spreadsheetID); id != "" {
		return id
	}
	return f.defaultSpreadsheetID
}

// RangeCacheKey keys a range by spreadsheet so equal range strings on
// different spreadsheets never collide.
func RangeCacheKey(spreadsheetID, rangeRef string) string {
	return spreadsheetLabel(spreadsheetID) + ":" + rangeRef
}

func spreadsheetLabel(spreadsheetID string) string {
	if spreadsheetID == "" {
		return defaultSpreadsheetLabel
	}
	return spreadsheetID
}
