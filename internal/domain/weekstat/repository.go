package weekstat

import (
	"context"
	"time"
)

// Repository describes week stat persistence needs from use cases.
type Repository interface {
	// Upsert writes stat keyed by (PlayerID, Season, Week). CreatedAt is set
	// only on insert.
	Upsert(ctx context.Context, stat WeekStat, now time.Time) (Outcome, error)
	ListWeekly(ctx context.Context, query Query) (WeeklyPage, error)
	ListSeason(ctx context.Context, query Query) (SeasonPage, error)
	// Latest returns false when no week stat exists.
	Latest(ctx context.Context) (LatestUpdate, bool, error)
}
