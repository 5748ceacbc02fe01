package httpapi

import (
	"net/http"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
)

type playerDTO struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"externalId,omitempty"`
	Name       string          `json:"name"`
	Team       string          `json:"team"`
	Position   string          `json:"position"`
	Season     int             `json:"season"`
	LastWeek   int             `json:"lastWeek"`
	Stats      player.StatLine `json:"stats"`
	UpdatedAt  string          `json:"updatedAt"`
}

type upsertPlayerRequest struct {
	ExternalID string           `json:"externalId" validate:"omitempty,max=64"`
	Name       string           `json:"name" validate:"max=200"`
	Team       string           `json:"team" validate:"max=8"`
	Position   string           `json:"position" validate:"max=8"`
	Season     int              `json:"season" validate:"gte=0"`
	LastWeek   int              `json:"lastWeek" validate:"gte=0,lte=25"`
	Stats      *player.StatLine `json:"stats"`
}

type upsertPlayerResponse struct {
	Inserted bool   `json:"inserted"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListPlayers")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	values := r.URL.Query()
	filter := player.ListFilter{
		Position: player.Position(strings.TrimSpace(values.Get("position"))),
		Team:     strings.TrimSpace(values.Get("team")),
		Search:   strings.TrimSpace(values.Get("search")),
		Limit:    limit,
		Offset:   offset,
	}

	players, err := h.playerService.ListPlayers(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayerByExternalID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetPlayerByExternalID")
	defer span.End()

	externalID := strings.TrimSpace(r.PathValue("externalID"))
	item, err := h.playerService.GetPlayerByExternalID(ctx, externalID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player by external id failed", "external_id", externalID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

// UpsertPlayer writes one record through the upsert engine. A missing name is
// reported as skipped rather than rejected.
func (h *Handler) UpsertPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpsertPlayer")
	defer span.End()

	var req upsertPlayerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	record := player.Record{
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Team:       req.Team,
		Position:   req.Position,
		Season:     req.Season,
		LastWeek:   req.LastWeek,
	}
	if req.Stats != nil {
		record.Stats = *req.Stats
	}

	result, err := h.upsertService.Upsert(ctx, record)
	if err != nil {
		h.logger.WarnContext(ctx, "upsert player failed", "external_id", req.ExternalID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, upsertPlayerResponse{
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Reason:   result.Reason,
		Name:     result.Identity.Name,
		Team:     result.Identity.Team,
		Position: string(result.Identity.Position),
	})
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Name:       p.Name,
		Team:       p.Team,
		Position:   string(p.Position),
		Season:     p.Season,
		LastWeek:   p.LastWeek,
		Stats:      p.Stats,
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
}
