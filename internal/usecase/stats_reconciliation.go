package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/platform/id"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	reconcileSampleSize       = 10
	reconcileMissingLogSample = 15
)

type ReconcileInput struct {
	Season   int
	Week     int
	Provider string
}

type ReconcileSample struct {
	PlayerID     int64   `json:"playerId"`
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	Position     string  `json:"position"`
	PassAttempts float64 `json:"passAttempts"`
	RushYards    float64 `json:"rushYards"`
	RecYards     float64 `json:"recYards"`
	XPM          float64 `json:"xpm"`
}

type ReconciliationSummary struct {
	RunID              string            `json:"runId"`
	Provider           string            `json:"provider"`
	Season             int               `json:"season"`
	Week               int               `json:"week"`
	Fetched            int               `json:"fetched"`
	Matched            int               `json:"matched"`
	Inserted           int               `json:"inserted"`
	Updated            int               `json:"updated"`
	Unchanged          int               `json:"unchanged"`
	Skipped            int               `json:"skipped"`
	Failed             int               `json:"failed"`
	MissingExternalIDs []string          `json:"missingExternalIds"`
	FetchDurationMs    int64             `json:"fetchDurationMs"`
	TotalDurationMs    int64             `json:"totalDurationMs"`
	Sample             []ReconcileSample `json:"sample"`
}

// StatsReconciliationService pulls one provider week and writes a WeekStat
// for every row whose external id maps to a known player.
type StatsReconciliationService struct {
	providers *StatsProviderRegistry
	players   player.Repository
	stats     weekstat.Repository
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewStatsReconciliationService(
	providers *StatsProviderRegistry,
	players player.Repository,
	stats weekstat.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *StatsReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator("reconcile")
	}
	return &StatsReconciliationService{
		providers: providers,
		players:   players,
		stats:     stats,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *StatsReconciliationService) FetchAndUpsert(ctx context.Context, input ReconcileInput) (summary ReconciliationSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsReconciliationService.FetchAndUpsert",
		append(seasonWeekAttrs(input.Season, input.Week), attribute.String("stats.provider", input.Provider))...,
	)
	defer func() {
		markSpan(span, err)
		span.End()
	}()

	if input.Season <= 0 {
		return ReconciliationSummary{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	if input.Week <= 0 {
		return ReconciliationSummary{}, fmt.Errorf("%w: week must be greater than zero", ErrInvalidInput)
	}
	if s.providers == nil {
		return ReconciliationSummary{}, fmt.Errorf("%w: stats providers are not configured", ErrDependencyUnavailable)
	}
	provider, err := s.providers.Get(input.Provider)
	if err != nil {
		return ReconciliationSummary{}, err
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return ReconciliationSummary{}, errors.Wrap(err, "generate reconcile run id")
	}
	logger := s.logger.With("run_id", runID, "provider", provider.Name(), "season", input.Season, "week", input.Week)

	startedAt := s.now()
	rows, err := provider.FetchWeeklyStats(ctx, input.Season, input.Week)
	fetchDuration := s.now().Sub(startedAt)
	if err != nil {
		logger.ErrorContext(ctx, "fetch weekly stats failed", "duration_ms", fetchDuration.Milliseconds(), "error", err)
		return ReconciliationSummary{}, &ProviderError{
			Provider: provider.Name(),
			Season:   input.Season,
			Week:     input.Week,
			Err:      err,
		}
	}

	summary = ReconciliationSummary{
		RunID:              runID,
		Provider:           provider.Name(),
		Season:             input.Season,
		Week:               input.Week,
		Fetched:            len(rows),
		MissingExternalIDs: []string{},
		FetchDurationMs:    fetchDuration.Milliseconds(),
		Sample:             []ReconcileSample{},
	}

	playersByExternalID, err := s.loadPlayers(ctx, rows)
	if err != nil {
		return ReconciliationSummary{}, err
	}
	summary.Matched = len(playersByExternalID)

	missing := make(map[string]struct{})
	writeTime := s.now().UTC()
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			summary.TotalDurationMs = s.now().Sub(startedAt).Milliseconds()
			return summary, errors.Wrap(err, "reconcile interrupted")
		}

		externalID := strings.TrimSpace(row.ProviderPlayerID)
		if externalID == "" {
			summary.Skipped++
			continue
		}
		owner, ok := playersByExternalID[externalID]
		if !ok {
			missing[externalID] = struct{}{}
			summary.Skipped++
			continue
		}

		stat := buildWeekStat(owner, externalID, input.Season, input.Week, row)
		outcome, err := s.stats.Upsert(ctx, stat, writeTime)
		if err != nil {
			if ctx.Err() != nil {
				summary.TotalDurationMs = s.now().Sub(startedAt).Milliseconds()
				return summary, errors.Wrap(err, "reconcile interrupted")
			}
			summary.Failed++
			logger.WarnContext(ctx, "upsert week stat failed",
				"external_id", externalID,
				"player_id", owner.ID,
				"error", err,
			)
			continue
		}

		switch outcome {
		case weekstat.OutcomeInserted:
			summary.Inserted++
		case weekstat.OutcomeUpdated:
			summary.Updated++
		default:
			summary.Unchanged++
		}

		if len(summary.Sample) < reconcileSampleSize {
			summary.Sample = append(summary.Sample, ReconcileSample{
				PlayerID:     owner.ID,
				Name:         owner.Name,
				Team:         stat.Team,
				Position:     stat.Position,
				PassAttempts: stat.Counters.PassAtt,
				RushYards:    stat.Counters.RushYds,
				RecYards:     stat.Counters.RecYds,
				XPM:          stat.Counters.XPM,
			})
		}
	}

	for externalID := range missing {
		summary.MissingExternalIDs = append(summary.MissingExternalIDs, externalID)
	}
	sort.Strings(summary.MissingExternalIDs)
	summary.TotalDurationMs = s.now().Sub(startedAt).Milliseconds()

	logger.InfoContext(ctx, "stats reconcile finished",
		"fetched", summary.Fetched,
		"matched", summary.Matched,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"missing", len(summary.MissingExternalIDs),
		"fetch_ms", summary.FetchDurationMs,
		"total_ms", summary.TotalDurationMs,
	)
	if n := len(summary.MissingExternalIDs); n > 0 {
		logger.WarnContext(ctx, "stats rows without a known player",
			"external_ids", summary.MissingExternalIDs[:min(n, reconcileMissingLogSample)],
		)
	}

	return summary, nil
}

func (s *StatsReconciliationService) loadPlayers(ctx context.Context, rows []ProviderStatRow) (map[string]player.Player, error) {
	seen := make(map[string]struct{}, len(rows))
	externalIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		externalID := strings.TrimSpace(row.ProviderPlayerID)
		if externalID == "" {
			continue
		}
		if _, ok := seen[externalID]; ok {
			continue
		}
		seen[externalID] = struct{}{}
		externalIDs = append(externalIDs, externalID)
	}

	out := make(map[string]player.Player, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	players, err := s.players.ListByExternalIDs(ctx, externalIDs)
	if err != nil {
		return nil, errors.Wrap(err, "list players by external ids")
	}
	for _, p := range players {
		out[p.ExternalID] = p
	}
	return out, nil
}

func buildWeekStat(owner player.Player, externalID string, season, week int, row ProviderStatRow) weekstat.WeekStat {
	team := strings.TrimSpace(row.Team)
	if team == "" {
		team = owner.Team
	}
	position := strings.TrimSpace(row.Position)
	if position == "" {
		position = string(owner.Position)
	}

	stats := row.Stats
	return weekstat.WeekStat{
		PlayerID:   owner.ID,
		ExternalID: externalID,
		Season:     season,
		Week:       week,
		Team:       team,
		Position:   position,
		Counters: weekstat.Counters{
			PassAtt:       finite(stats.PassAttempts),
			PassCmp:       finite(stats.PassCompletions),
			PassYds:       finite(stats.PassYards),
			PassTD:        finite(stats.PassTDs),
			Interceptions: finite(stats.Interceptions),
			RushAtt:       finite(stats.RushAttempts),
			RushYds:       finite(stats.RushYards),
			RushTD:        finite(stats.RushTDs),
			Rec:           finite(stats.RecReceptions),
			RecYds:        finite(stats.RecYards),
			RecTD:         finite(stats.RecTDs),
			TwoPt:         finite(stats.TwoPt),
			FGM0To19:      finite(stats.FGM0To19),
			FGM20To29:     finite(stats.FGM20To29),
			FGM30To39:     finite(stats.FGM30To39),
			FGM40To49:     finite(stats.FGM40To49),
			FGM50To59:     finite(stats.FGM50To59),
			FGM60Plus:     finite(stats.FGM60Plus),
			XPM:           finite(stats.XPM),
			FGMiss:        finite(stats.FGMiss),
			XPMiss:        finite(stats.XPMiss),
		},
	}
}
