package usecase

import (
	"context"
	"sort"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/cockroachdb/errors"
)

type DedupeInput struct {
	// Target limits the sweep to one identity. Nil sweeps every player.
	Target *player.Identity
}

type DedupeResult struct {
	NormalizedCount int `json:"normalizedCount"`
	DuplicateGroups int `json:"duplicateGroups"`
	RemovedCount    int `json:"removedCount"`
}

// PlayerDedupeService collapses players sharing a canonical identity down to
// the most recently updated row.
type PlayerDedupeService struct {
	repo   player.Repository
	logger *logging.Logger
}

func NewPlayerDedupeService(repo player.Repository, logger *logging.Logger) *PlayerDedupeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerDedupeService{repo: repo, logger: logger}
}

// NormalizeAndDedupe canonicalizes stored identities and deletes every
// duplicate but the survivor of each group. Losers are deleted before the
// survivors are rewritten so the identity index never sees two canonical rows.
func (s *PlayerDedupeService) NormalizeAndDedupe(ctx context.Context, input DedupeInput) (DedupeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerDedupeService.NormalizeAndDedupe")
	defer span.End()

	rows, err := s.repo.ListIdentities(ctx)
	if err != nil {
		return DedupeResult{}, errors.Wrap(err, "list player identities")
	}

	targetKey := ""
	if input.Target != nil {
		targetKey = input.Target.Normalized().Key()
	}

	groups := make(map[string][]player.IdentityRow)
	fixes := make(map[int64]player.IdentityFix)
	for _, row := range rows {
		raw := player.Identity{Name: row.Name, Team: row.Team, Position: player.Position(row.Position)}
		canonical := raw.Normalized()
		key := canonical.Key()
		if targetKey != "" && key != targetKey {
			continue
		}
		if raw != canonical {
			fixes[row.ID] = player.IdentityFix{ID: row.ID, Identity: canonical}
		}
		groups[key] = append(groups[key], row)
	}

	result := DedupeResult{NormalizedCount: len(fixes)}
	if len(groups) == 0 {
		return result, nil
	}

	var losers []int64
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		result.DuplicateGroups++
		sortSurvivorFirst(members)
		for _, dup := range members[1:] {
			losers = append(losers, dup.ID)
			delete(fixes, dup.ID)
		}
	}
	sort.Slice(losers, func(i, j int) bool { return losers[i] < losers[j] })

	if len(losers) > 0 {
		removed, err := s.repo.DeleteByIDs(ctx, losers)
		if err != nil {
			return DedupeResult{}, errors.Wrapf(err, "delete %d duplicate players", len(losers))
		}
		result.RemovedCount = removed
	}

	if len(fixes) > 0 {
		batch := make([]player.IdentityFix, 0, len(fixes))
		for _, fix := range fixes {
			batch = append(batch, fix)
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].ID < batch[j].ID })
		if err := s.repo.ApplyIdentityFixes(ctx, batch); err != nil {
			return DedupeResult{}, errors.Wrapf(err, "normalize %d player identities", len(batch))
		}
	}

	s.logger.InfoContext(ctx, "player dedupe finished",
		"target", targetKey,
		"normalized", result.NormalizedCount,
		"duplicate_groups", result.DuplicateGroups,
		"removed", result.RemovedCount,
	)
	return result, nil
}

// sortSurvivorFirst orders by UpdatedAt desc then ID desc.
func sortSurvivorFirst(rows []player.IdentityRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
}
