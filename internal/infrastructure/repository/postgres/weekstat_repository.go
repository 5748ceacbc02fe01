package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	qb "github.com/BigB742/bigb-analyzer/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

const (
	weekStatsJoinPlayers = "week_stats ws JOIN players p ON p.id = ws.player_id"
	listingTeamExpr      = "COALESCE(NULLIF(p.team, ''), ws.team)"
	listingPositionExpr  = "COALESCE(NULLIF(p.position, ''), ws.position)"
)

var (
	weekStatUpsertSuffix = buildWeekStatUpsertSuffix()
	weeklySelectColumns  = buildWeeklySelectColumns()
	seasonSelectColumns  = buildSeasonSelectColumns()
)

type WeekStatRepository struct {
	db *sqlx.DB
}

func NewWeekStatRepository(db *sqlx.DB) *WeekStatRepository {
	return &WeekStatRepository{db: db}
}

// Upsert only rewrites a row when its payload differs, so an unchanged row
// keeps its updated_at and RETURNING yields nothing.
func (r *WeekStatRepository) Upsert(ctx context.Context, stat weekstat.WeekStat, now time.Time) (weekstat.Outcome, error) {
	if err := stat.Validate(); err != nil {
		return "", err
	}

	columns := append([]string{"player_id", "external_id", "season", "week", "team", "position"}, weekStatCounterColumns...)
	columns = append(columns, "created_at", "updated_at")
	values := append([]any{stat.PlayerID, stat.ExternalID, stat.Season, stat.Week, stat.Team, stat.Position}, counterValues(stat.Counters)...)
	values = append(values, now, now)

	query, args, err := qb.InsertInto("week_stats").
		Columns(columns...).
		Values(values...).
		Suffix(weekStatUpsertSuffix).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build upsert week stat query: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		if isNotFound(err) {
			return weekstat.OutcomeUnchanged, nil
		}
		return "", fmt.Errorf("upsert week stat player=%d season=%d week=%d: %w", stat.PlayerID, stat.Season, stat.Week, err)
	}
	if inserted {
		return weekstat.OutcomeInserted, nil
	}
	return weekstat.OutcomeUpdated, nil
}

func (r *WeekStatRepository) ListWeekly(ctx context.Context, query weekstat.Query) (weekstat.WeeklyPage, error) {
	where := append([]qb.Condition{
		qb.Eq("ws.season", query.Season),
		qb.Eq("ws.week", query.Week),
	}, listingConditions("p.name", listingTeamExpr, listingPositionExpr, query.Position, query.Team, query.Search)...)

	page := weekstat.WeeklyPage{Items: []weekstat.Row{}}
	total, err := r.pageTotal(ctx, "weekly", "COUNT(*)", where)
	if err != nil {
		return weekstat.WeeklyPage{}, err
	}
	page.Total = total.Total
	if total.LastUpdated.Valid {
		page.LastUpdated = total.LastUpdated.Time
	}
	if page.Total == 0 {
		return page, nil
	}

	sqlQuery, args, err := qb.Select(weeklySelectColumns...).
		From(weekStatsJoinPlayers).
		Where(where...).
		OrderBy("p.name", "p.id").
		Limit(query.Limit).
		Offset(query.Offset).
		ToSQL()
	if err != nil {
		return weekstat.WeeklyPage{}, fmt.Errorf("build list weekly stats query: %w", err)
	}

	var rows []weekStatRowModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return weekstat.WeeklyPage{}, fmt.Errorf("list weekly stats: %w", err)
	}
	for _, row := range rows {
		page.Items = append(page.Items, weekstat.Row{
			WeekStat: weekstat.WeekStat{
				ID:         row.ID,
				PlayerID:   row.PlayerID,
				ExternalID: row.ExternalID,
				Season:     row.Season,
				Week:       row.Week,
				Team:       row.Team,
				Position:   row.Position,
				Counters:   row.toDomain(),
				CreatedAt:  row.CreatedAt,
				UpdatedAt:  row.UpdatedAt,
			},
			Name: row.Name,
		})
	}
	return page, nil
}

func (r *WeekStatRepository) ListSeason(ctx context.Context, query weekstat.Query) (weekstat.SeasonPage, error) {
	where := append([]qb.Condition{
		qb.Eq("ws.season", query.Season),
	}, listingConditions("p.name", listingTeamExpr, listingPositionExpr, query.Position, query.Team, query.Search)...)

	page := weekstat.SeasonPage{Items: []weekstat.SeasonRow{}}
	total, err := r.pageTotal(ctx, "season", "COUNT(DISTINCT ws.player_id)", where)
	if err != nil {
		return weekstat.SeasonPage{}, err
	}
	page.Total = total.Total
	if total.LastUpdated.Valid {
		page.LastUpdated = total.LastUpdated.Time
	}
	if page.Total == 0 {
		return page, nil
	}

	sqlQuery, args, err := qb.Select(seasonSelectColumns...).
		From(weekStatsJoinPlayers).
		Where(where...).
		GroupBy("p.id").
		OrderBy("p.name", "p.id").
		Limit(query.Limit).
		Offset(query.Offset).
		ToSQL()
	if err != nil {
		return weekstat.SeasonPage{}, fmt.Errorf("build list season stats query: %w", err)
	}

	var rows []seasonStatRowModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return weekstat.SeasonPage{}, fmt.Errorf("list season stats: %w", err)
	}
	for _, row := range rows {
		page.Items = append(page.Items, weekstat.SeasonRow{
			PlayerID:   row.PlayerID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
			Team:       row.Team,
			Position:   row.Position,
			Season:     query.Season,
			Weeks:      row.Weeks,
			Counters:   row.toDomain(),
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return page, nil
}

func (r *WeekStatRepository) pageTotal(ctx context.Context, kind, countExpr string, where []qb.Condition) (statsPageTotalModel, error) {
	query, args, err := qb.Select(countExpr+" AS total", "MAX(ws.updated_at) AS last_updated").
		From(weekStatsJoinPlayers).
		Where(where...).
		ToSQL()
	if err != nil {
		return statsPageTotalModel{}, fmt.Errorf("build count %s stats query: %w", kind, err)
	}

	var total statsPageTotalModel
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return statsPageTotalModel{}, fmt.Errorf("count %s stats: %w", kind, err)
	}
	return total, nil
}

func (r *WeekStatRepository) Latest(ctx context.Context) (weekstat.LatestUpdate, bool, error) {
	query, args, err := qb.Select("season", "week", "updated_at").
		From("week_stats").
		OrderBy("updated_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return weekstat.LatestUpdate{}, false, fmt.Errorf("build latest week stat query: %w", err)
	}

	var row latestWeekStatModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return weekstat.LatestUpdate{}, false, nil
		}
		return weekstat.LatestUpdate{}, false, fmt.Errorf("get latest week stat: %w", err)
	}
	return weekstat.LatestUpdate{Season: row.Season, Week: row.Week, UpdatedAt: row.UpdatedAt}, true, nil
}

func buildWeekStatUpsertSuffix() string {
	payload := append([]string{"external_id", "team", "position"}, weekStatCounterColumns...)

	sets := make([]string, 0, len(payload)+1)
	current := make([]string, 0, len(payload))
	incoming := make([]string, 0, len(payload))
	for _, col := range payload {
		sets = append(sets, col+" = EXCLUDED."+col)
		current = append(current, "week_stats."+col)
		incoming = append(incoming, "EXCLUDED."+col)
	}
	sets = append(sets, "updated_at = EXCLUDED.updated_at")

	return "ON CONFLICT (player_id, season, week)\nDO UPDATE SET\n    " +
		strings.Join(sets, ",\n    ") +
		"\nWHERE (" + strings.Join(current, ", ") + ") IS DISTINCT FROM (" + strings.Join(incoming, ", ") + ")" +
		"\nRETURNING (xmax = 0) AS inserted"
}

func buildWeeklySelectColumns() []string {
	cols := []string{
		"ws.id",
		"ws.player_id",
		"ws.external_id",
		"ws.season",
		"ws.week",
		"ws.team",
		"ws.position",
		"p.name",
		"ws.created_at",
		"ws.updated_at",
	}
	for _, col := range weekStatCounterColumns {
		cols = append(cols, "ws."+col)
	}
	return cols
}

func buildSeasonSelectColumns() []string {
	cols := []string{
		"p.id AS player_id",
		"COALESCE(p.external_id, MAX(ws.external_id), '') AS external_id",
		"p.name",
		"COALESCE(NULLIF(p.team, ''), (ARRAY_AGG(ws.team ORDER BY ws.week DESC))[1], '') AS team",
		"COALESCE(NULLIF(p.position, ''), (ARRAY_AGG(ws.position ORDER BY ws.week DESC))[1], '') AS position",
		"COUNT(*) AS weeks",
		"MAX(ws.updated_at) AS updated_at",
	}
	for _, col := range weekStatCounterColumns {
		cols = append(cols, "COALESCE(SUM(ws."+col+"), 0) AS "+col)
	}
	return cols
}
