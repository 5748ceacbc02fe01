package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	qb "github.com/BigB742/bigb-analyzer/internal/platform/querybuilder"
	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"COALESCE(external_id, '') AS external_id",
	"name",
	"team",
	"position",
	"stats",
	"season",
	"last_week",
	"created_at",
	"updated_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) UpdateByExternalID(ctx context.Context, record player.Record, now time.Time) (bool, error) {
	if record.ExternalID == "" {
		return false, nil
	}
	return r.update(ctx, record, now, "update player by external id", qb.Eq("external_id", record.ExternalID))
}

func (r *PlayerRepository) UpdateByIdentity(ctx context.Context, record player.Record, now time.Time) (bool, error) {
	identity := record.Identity()
	return r.update(ctx, record, now, "update player by identity",
		qb.Eq("name", identity.Name),
		qb.Eq("team", identity.Team),
		qb.Eq("position", string(identity.Position)),
	)
}

func (r *PlayerRepository) update(ctx context.Context, record player.Record, now time.Time, op string, where ...qb.Condition) (bool, error) {
	identity := record.Identity()
	stats, err := sonic.MarshalString(record.Stats)
	if err != nil {
		return false, fmt.Errorf("encode player stats: %w", err)
	}

	query, args, err := qb.Update("players").
		Set("name", identity.Name).
		Set("team", identity.Team).
		Set("position", string(identity.Position)).
		SetExpr("external_id", "COALESCE(?, external_id)", nullableString(record.ExternalID)).
		Set("stats", stats).
		Set("season", record.Season).
		Set("last_week", record.LastWeek).
		Set("updated_at", now).
		Where(where...).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s query: %w", op, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%s: %w", op, player.ErrDuplicateKey)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return affected > 0, nil
}

func (r *PlayerRepository) UpsertByIdentity(ctx context.Context, record player.Record, now time.Time) (bool, error) {
	identity := record.Identity()
	stats, err := sonic.MarshalString(record.Stats)
	if err != nil {
		return false, fmt.Errorf("encode player stats: %w", err)
	}

	insertModel := playerInsertModel{
		ExternalID: nullableString(record.ExternalID),
		Name:       identity.Name,
		Team:       identity.Team,
		Position:   string(identity.Position),
		Stats:      stats,
		Season:     record.Season,
		LastWeek:   record.LastWeek,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (name, team, position)
DO UPDATE SET
    external_id = COALESCE(EXCLUDED.external_id, players.external_id),
    stats = EXCLUDED.stats,
    season = EXCLUDED.season,
    last_week = EXCLUDED.last_week,
    updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted`)
	if err != nil {
		return false, fmt.Errorf("build upsert player query: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("upsert player: %w", player.ErrDuplicateKey)
		}
		return false, fmt.Errorf("upsert player: %w", err)
	}
	return inserted, nil
}

func (r *PlayerRepository) ListIdentities(ctx context.Context) ([]player.IdentityRow, error) {
	query, args, err := qb.Select("id", "name", "team", "position", "updated_at").
		From("players").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player identities query: %w", err)
	}

	var rows []playerIdentityTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player identities: %w", err)
	}

	out := make([]player.IdentityRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.IdentityRow{
			ID:        row.ID,
			Name:      row.Name,
			Team:      row.Team,
			Position:  row.Position,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *PlayerRepository) ApplyIdentityFixes(ctx context.Context, fixes []player.IdentityFix) error {
	if len(fixes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx apply identity fixes: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, fix := range fixes {
		query, args, err := qb.Update("players").
			Set("name", fix.Identity.Name).
			Set("team", fix.Identity.Team).
			Set("position", string(fix.Identity.Position)).
			Where(qb.Eq("id", fix.ID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build identity fix query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("apply identity fix id=%d: %w", fix.ID, player.ErrDuplicateKey)
			}
			return fmt.Errorf("apply identity fix id=%d: %w", fix.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identity fixes tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) DeleteByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := qb.DeleteFrom("players").Where(qb.In("id", int64SliceToAny(ids))).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete players query: %w", err)
	}
	return r.execCount(ctx, "delete players", query, args)
}

func (r *PlayerRepository) DeleteOutsidePositions(ctx context.Context, keep []player.Position) (int, error) {
	if len(keep) == 0 {
		return 0, fmt.Errorf("keep positions are required")
	}
	query, args, err := qb.DeleteFrom("players").Where(qb.NotIn("position", positionsToAny(keep))).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build prune players query: %w", err)
	}
	return r.execCount(ctx, "prune players", query, args)
}

func (r *PlayerRepository) execCount(ctx context.Context, op, query string, args []any) (int, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return int(affected), nil
}

func (r *PlayerRepository) ListByExternalIDs(ctx context.Context, externalIDs []string) ([]player.Player, error) {
	if len(externalIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.In("external_id", stringSliceToAny(externalIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by external ids query: %w", err)
	}
	return r.selectPlayers(ctx, "select players by external ids", query, args)
}

func (r *PlayerRepository) List(ctx context.Context, filter player.ListFilter) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(listingConditions("name", "team", "position", string(filter.Position), filter.Team, filter.Search)...).
		OrderBy("name", "id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}
	return r.selectPlayers(ctx, "list players", query, args)
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, op, query string, args []any) ([]player.Player, error) {
	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		item, err := playerFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func playerFromRow(row playerTableModel) (player.Player, error) {
	var stats player.StatLine
	if len(row.Stats) > 0 {
		if err := sonic.Unmarshal(row.Stats, &stats); err != nil {
			return player.Player{}, fmt.Errorf("decode stats for player id=%d: %w", row.ID, err)
		}
	}
	return player.Player{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		Team:       row.Team,
		Position:   player.Position(row.Position),
		Stats:      stats,
		Season:     row.Season,
		LastWeek:   row.LastWeek,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
