package player

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateKey is returned when a write collides with the identity or
// external id unique index.
var ErrDuplicateKey = errors.New("player duplicate key")

// Repository describes player persistence needs from use cases.
type Repository interface {
	// UpdateByExternalID overwrites the row owning externalID. It never inserts.
	UpdateByExternalID(ctx context.Context, record Record, now time.Time) (bool, error)
	// UpsertByIdentity inserts the record unless a row with the same identity
	// exists, in which case that row is overwritten.
	UpsertByIdentity(ctx context.Context, record Record, now time.Time) (bool, error)
	// UpdateByIdentity overwrites the row with the record's identity. It never inserts.
	// For all three writes an empty ExternalID leaves the stored one untouched.
	UpdateByIdentity(ctx context.Context, record Record, now time.Time) (bool, error)
	ListIdentities(ctx context.Context) ([]IdentityRow, error)
	// ApplyIdentityFixes rewrites identity columns only. UpdatedAt is kept.
	ApplyIdentityFixes(ctx context.Context, fixes []IdentityFix) error
	DeleteByIDs(ctx context.Context, ids []int64) (int, error)
	ListByExternalIDs(ctx context.Context, externalIDs []string) ([]Player, error)
	List(ctx context.Context, filter ListFilter) ([]Player, error)
	// DeleteOutsidePositions refuses an empty keep list.
	DeleteOutsidePositions(ctx context.Context, keep []Position) (int, error)
}
