package sleeper

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

const playersPath = "/players/nfl"

type playerMeta struct {
	FullName         string   `json:"full_name"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Team             string   `json:"team"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
	Active           *bool    `json:"active"`
}

func (m playerMeta) displayName() string {
	if full := strings.TrimSpace(m.FullName); full != "" {
		return full
	}
	first := strings.TrimSpace(m.FirstName)
	last := strings.TrimSpace(m.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case last != "":
		return last
	default:
		return first
	}
}

// position prefers the primary roster slot and falls back to the first
// fantasy slot.
func (m playerMeta) position() player.Position {
	raw := m.Position
	if strings.TrimSpace(raw) == "" && len(m.FantasyPositions) > 0 {
		raw = m.FantasyPositions[0]
	}
	return player.NormalizePosition(raw)
}

func (m playerMeta) inactive() bool {
	return m.Active != nil && !*m.Active
}

func (c *Client) fetchPlayerMeta(ctx context.Context) (map[string]playerMeta, error) {
	var meta map[string]playerMeta
	if err := c.getJSON(ctx, playersPath, &meta); err != nil {
		return nil, fmt.Errorf("fetch sleeper players: %w", err)
	}
	return meta, nil
}

// FetchPlayers returns active players at fantasy positions, sorted by
// Sleeper id. Other positions are only counted.
func (c *Client) FetchPlayers(ctx context.Context) (usecase.PlayerCatalog, error) {
	meta, err := c.fetchPlayerMeta(ctx)
	if err != nil {
		return usecase.PlayerCatalog{}, err
	}

	ids := make([]string, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	catalog := usecase.PlayerCatalog{Players: make([]player.Record, 0, len(ids)/4)}
	for _, id := range ids {
		item := meta[id]
		position := item.position()
		if !position.IsFantasy() {
			catalog.FilteredOut++
			continue
		}
		if item.inactive() {
			continue
		}
		name := player.NormalizeName(item.displayName())
		if name == "" {
			continue
		}
		catalog.Players = append(catalog.Players, player.Record{
			ExternalID: id,
			Name:       name,
			Team:       player.NormalizeTeam(item.Team),
			Position:   string(position),
		})
	}

	c.logger.InfoContext(ctx, "sleeper player catalog fetched",
		"players", len(catalog.Players),
		"filtered_out", catalog.FilteredOut,
	)
	return catalog, nil
}
