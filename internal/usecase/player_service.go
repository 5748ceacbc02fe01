package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
)

const (
	defaultPlayerListLimit = 100
	maxPlayerListLimit     = 1000
)

type PlayerService struct {
	playerRepo player.Repository
}

func NewPlayerService(playerRepo player.Repository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

func (s *PlayerService) ListPlayers(ctx context.Context, filter player.ListFilter) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	filter.Position = player.Position(normalizePositionFilter(string(filter.Position)))
	filter.Team = normalizeTeamFilter(filter.Team)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit < 1 {
		filter.Limit = defaultPlayerListLimit
	}
	if filter.Limit > maxPlayerListLimit {
		filter.Limit = maxPlayerListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	return players, nil
}

func (s *PlayerService) GetPlayerByExternalID(ctx context.Context, externalID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayerByExternalID")
	defer span.End()

	externalID = player.NormalizeExternalID(externalID)
	if externalID == "" {
		return player.Player{}, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}

	items, err := s.playerRepo.ListByExternalIDs(ctx, []string{externalID})
	if err != nil {
		return player.Player{}, fmt.Errorf("get player by external id: %w", err)
	}
	if len(items) == 0 {
		return player.Player{}, fmt.Errorf("%w: player external_id=%s", ErrNotFound, externalID)
	}

	return items[0], nil
}
