package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
)

const (
	upsertReasonMissingName   = "Missing name"
	upsertReasonExternalOwned = "external id owned by another player"
	upsertReasonNoIdentityRow = "duplicate key but no player matched the identity"
)

type UpsertResult struct {
	Inserted bool            `json:"inserted"`
	Skipped  bool            `json:"skipped"`
	Reason   string          `json:"reason,omitempty"`
	Record   player.Record   `json:"-"`
	Identity player.Identity `json:"-"`
}

// PlayerUpsertService writes one player record, matching first on external
// id and then on the canonical identity.
type PlayerUpsertService struct {
	repo   player.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewPlayerUpsertService(repo player.Repository, logger *logging.Logger) *PlayerUpsertService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerUpsertService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *PlayerUpsertService) Upsert(ctx context.Context, raw player.Record) (UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerUpsertService.Upsert")
	defer span.End()

	record := raw.Normalized()
	result := UpsertResult{Record: record, Identity: record.Identity()}
	if record.Name == "" {
		result.Skipped = true
		result.Reason = upsertReasonMissingName
		return result, nil
	}
	if err := record.Validate(); err != nil {
		return UpsertResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	if record.ExternalID != "" {
		matched, err := s.repo.UpdateByExternalID(ctx, record, now)
		switch {
		case errors.Is(err, player.ErrDuplicateKey):
			return s.retryByIdentity(ctx, result, now)
		case err != nil:
			return UpsertResult{}, errors.Wrapf(err, "update player by external id %s", record.ExternalID)
		case matched:
			return result, nil
		}
	}

	inserted, err := s.repo.UpsertByIdentity(ctx, record, now)
	if errors.Is(err, player.ErrDuplicateKey) {
		return s.retryByIdentity(ctx, result, now)
	}
	if err != nil {
		return UpsertResult{}, errors.Wrapf(err, "upsert player %s", result.Identity.Key())
	}
	result.Inserted = inserted
	return result, nil
}

// retryByIdentity is the single fallback after a unique-key collision. If the
// external id still collides, the row already holding it keeps it and the
// identity row is written without it.
func (s *PlayerUpsertService) retryByIdentity(ctx context.Context, result UpsertResult, now time.Time) (UpsertResult, error) {
	record := result.Record
	matched, err := s.repo.UpdateByIdentity(ctx, record, now)
	if errors.Is(err, player.ErrDuplicateKey) && record.ExternalID != "" {
		s.logger.WarnContext(ctx, "external id already owned by another player, keeping identity row without it",
			"external_id", record.ExternalID,
			"identity", result.Identity.Key(),
		)
		record.ExternalID = ""
		result.Reason = upsertReasonExternalOwned
		matched, err = s.repo.UpdateByIdentity(ctx, record, now)
	}
	if err != nil {
		return UpsertResult{}, errors.Wrapf(err, "update player by identity %s", result.Identity.Key())
	}
	if !matched {
		s.logger.WarnContext(ctx, "player upsert collided but identity row is missing",
			"external_id", record.ExternalID,
			"identity", result.Identity.Key(),
		)
		result.Reason = upsertReasonNoIdentityRow
	}
	result.Inserted = false
	return result, nil
}
