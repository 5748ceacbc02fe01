package postgres

import (
	"database/sql"
	"errors"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	qb "github.com/BigB742/bigb-analyzer/internal/platform/querybuilder"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

// listingConditions mirrors the in-memory listing filters. teamExpr and
// positionExpr may be SQL expressions rather than bare columns.
func listingConditions(nameColumn, teamExpr, positionExpr, positionFilter, teamFilter, search string) []qb.Condition {
	conds := make([]qb.Condition, 0, 3)
	if positionFilter != "" {
		conds = append(conds, qb.Eq(positionExpr, positionFilter))
	} else {
		conds = append(conds, qb.In(positionExpr, positionsToAny(player.FantasyPositionList())))
	}
	switch teamFilter {
	case "":
	case weekstat.FreeAgentTeam:
		conds = append(conds, qb.Expr(teamExpr+" IN ('', ?)", weekstat.FreeAgentTeam))
	default:
		conds = append(conds, qb.Eq(teamExpr, teamFilter))
	}
	if search != "" {
		conds = append(conds, qb.ILike(nameColumn, search))
	}
	return conds
}

func positionsToAny(items []player.Position) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	return out
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func int64SliceToAny(items []int64) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
