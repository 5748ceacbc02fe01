package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/platform/cache"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
)

const (
	DefaultStatsListLimit = 50
	MaxStatsListLimit     = 500
	DefaultStatsCacheTTL  = 15 * time.Minute

	filterAll = "ALL"
)

type StatsListQuery struct {
	Season   int
	Week     int
	Position string
	Team     string
	Search   string
	Limit    int
	Offset   int
}

type WeeklyStatsResult struct {
	Season      int
	Week        int
	Limit       int
	Offset      int
	Page        weekstat.WeeklyPage
	CacheStatus cache.Status
}

type SeasonStatsResult struct {
	Season      int
	Limit       int
	Offset      int
	Page        weekstat.SeasonPage
	CacheStatus cache.Status
}

type StatsQueryConfig struct {
	CacheTTL      time.Duration
	DefaultSeason int
}

// StatsQueryService serves stat listings through the stale-while-revalidate
// cache so slow aggregate queries only block the first caller.
type StatsQueryService struct {
	stats         weekstat.Repository
	cache         *cache.StaleCache
	ttl           time.Duration
	defaultSeason int
	logger        *logging.Logger
}

func NewStatsQueryService(stats weekstat.Repository, staleCache *cache.StaleCache, cfg StatsQueryConfig, logger *logging.Logger) *StatsQueryService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultStatsCacheTTL
	}
	if staleCache == nil {
		staleCache = cache.NewStaleCache(cache.StaleConfig{DefaultTTL: cfg.CacheTTL, Logger: logger})
	}
	return &StatsQueryService{
		stats:         stats,
		cache:         staleCache,
		ttl:           cfg.CacheTTL,
		defaultSeason: cfg.DefaultSeason,
		logger:        logger,
	}
}

func (s *StatsQueryService) ListWeekly(ctx context.Context, q StatsListQuery) (result WeeklyStatsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.ListWeekly", seasonWeekAttrs(q.Season, q.Week)...)
	defer func() {
		markSpan(span, err)
		span.End()
	}()

	query, err := s.normalizeQuery(q, true)
	if err != nil {
		return WeeklyStatsResult{}, err
	}

	key := statsCacheKey("weekly", query)
	res, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		page, err := s.stats.ListWeekly(ctx, query)
		if err != nil {
			return nil, errors.Wrap(err, "list weekly stats")
		}
		return page, nil
	}, cache.StaleOptions{TTL: s.ttl, AllowStale: true})
	if err != nil {
		return WeeklyStatsResult{}, err
	}

	page, ok := res.Value.(weekstat.WeeklyPage)
	if !ok {
		return WeeklyStatsResult{}, fmt.Errorf("unexpected cached value %T for %s", res.Value, key)
	}
	return WeeklyStatsResult{
		Season:      query.Season,
		Week:        query.Week,
		Limit:       query.Limit,
		Offset:      query.Offset,
		Page:        page,
		CacheStatus: res.Status,
	}, nil
}

func (s *StatsQueryService) ListSeason(ctx context.Context, q StatsListQuery) (result SeasonStatsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.ListSeason", seasonWeekAttrs(q.Season, 0)...)
	defer func() {
		markSpan(span, err)
		span.End()
	}()

	query, err := s.normalizeQuery(q, false)
	if err != nil {
		return SeasonStatsResult{}, err
	}

	key := statsCacheKey("season", query)
	res, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		page, err := s.stats.ListSeason(ctx, query)
		if err != nil {
			return nil, errors.Wrap(err, "list season stats")
		}
		return page, nil
	}, cache.StaleOptions{TTL: s.ttl, AllowStale: true})
	if err != nil {
		return SeasonStatsResult{}, err
	}

	page, ok := res.Value.(weekstat.SeasonPage)
	if !ok {
		return SeasonStatsResult{}, fmt.Errorf("unexpected cached value %T for %s", res.Value, key)
	}
	return SeasonStatsResult{
		Season:      query.Season,
		Limit:       query.Limit,
		Offset:      query.Offset,
		Page:        page,
		CacheStatus: res.Status,
	}, nil
}

// LatestUpdate reports the most recently written week stat, if any.
func (s *StatsQueryService) LatestUpdate(ctx context.Context) (weekstat.LatestUpdate, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.LatestUpdate")
	defer span.End()

	latest, ok, err := s.stats.Latest(ctx)
	if err != nil {
		return weekstat.LatestUpdate{}, false, errors.Wrap(err, "load latest week stat")
	}
	return latest, ok, nil
}

func (s *StatsQueryService) CacheSnapshot() []cache.EntrySnapshot {
	return s.cache.Snapshot()
}

// ClearCache drops one key, or every key when key is empty.
func (s *StatsQueryService) ClearCache(key string) int {
	if strings.TrimSpace(key) == "" {
		return s.cache.ClearAll()
	}
	if s.cache.Clear(key) {
		return 1
	}
	return 0
}

func (s *StatsQueryService) normalizeQuery(q StatsListQuery, weekly bool) (weekstat.Query, error) {
	season := q.Season
	if season <= 0 {
		season = s.defaultSeason
	}
	if season <= 0 {
		return weekstat.Query{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if weekly && q.Week <= 0 {
		return weekstat.Query{}, fmt.Errorf("%w: week is required", ErrInvalidInput)
	}

	limit := q.Limit
	if limit < 1 {
		limit = DefaultStatsListLimit
	}
	if limit > MaxStatsListLimit {
		limit = MaxStatsListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	out := weekstat.Query{
		Season:   season,
		Position: normalizePositionFilter(q.Position),
		Team:     normalizeTeamFilter(q.Team),
		Search:   strings.TrimSpace(q.Search),
		Limit:    limit,
		Offset:   offset,
	}
	if weekly {
		out.Week = q.Week
	}
	return out, nil
}

// normalizePositionFilter drops ALL and positions outside the fantasy set.
func normalizePositionFilter(v string) string {
	pos := player.NormalizePosition(v)
	if !pos.IsFantasy() {
		return ""
	}
	return string(pos)
}

func normalizeTeamFilter(v string) string {
	team := player.NormalizeTeam(v)
	if team == filterAll {
		return ""
	}
	return team
}

func statsCacheKey(kind string, q weekstat.Query) string {
	parts := []string{kind, strconv.Itoa(q.Season)}
	if kind == "weekly" {
		parts = append(parts, strconv.Itoa(q.Week))
	}
	parts = append(parts,
		orAll(q.Position),
		orAll(q.Team),
		q.Search,
		"limit:"+strconv.Itoa(q.Limit),
		"offset:"+strconv.Itoa(q.Offset),
	)
	return strings.Join(parts, ":")
}

func orAll(v string) string {
	if v == "" {
		return filterAll
	}
	return v
}
