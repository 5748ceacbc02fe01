package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

type weeklyStatDTO struct {
	PlayerID   int64             `json:"playerId"`
	ExternalID string            `json:"externalId,omitempty"`
	Name       string            `json:"name"`
	Team       string            `json:"team"`
	Position   string            `json:"position"`
	Season     int               `json:"season"`
	Week       int               `json:"week"`
	Stats      weekstat.Counters `json:"stats"`
	UpdatedAt  string            `json:"updatedAt"`
}

type seasonStatDTO struct {
	PlayerID   int64             `json:"playerId"`
	ExternalID string            `json:"externalId,omitempty"`
	Name       string            `json:"name"`
	Team       string            `json:"team"`
	Position   string            `json:"position"`
	Season     int               `json:"season"`
	Weeks      int               `json:"weeks"`
	Stats      weekstat.Counters `json:"stats"`
	UpdatedAt  string            `json:"updatedAt"`
}

type statsPageDTO[T any] struct {
	Season      int     `json:"season"`
	Week        int     `json:"week,omitempty"`
	Total       int     `json:"total"`
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
	LastUpdated *string `json:"lastUpdated"`
	Items       []T     `json:"items"`
}

type statsHealthDTO struct {
	Status          string  `json:"status"`
	LastStatsUpdate *string `json:"lastStatsUpdate"`
	LastStatsSeason *int    `json:"lastStatsSeason"`
	LastStatsWeek   *int    `json:"lastStatsWeek"`
}

func (h *Handler) ListWeeklyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListWeeklyStats")
	defer span.End()

	query, err := parseStatsListQuery(r, true)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.statsQuery.ListWeekly(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list weekly stats failed", "season", query.Season, "week", query.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyStatDTO, 0, len(result.Page.Items))
	for _, row := range result.Page.Items {
		items = append(items, weeklyStatDTO{
			PlayerID:   row.PlayerID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
			Team:       row.Team,
			Position:   row.Position,
			Season:     row.Season,
			Week:       row.Week,
			Stats:      row.Counters,
			UpdatedAt:  formatTime(row.UpdatedAt),
		})
	}

	w.Header().Set(cacheStatusHeader, string(result.CacheStatus))
	writeSuccess(ctx, w, http.StatusOK, statsPageDTO[weeklyStatDTO]{
		Season:      result.Season,
		Week:        result.Week,
		Total:       result.Page.Total,
		Limit:       result.Limit,
		Offset:      result.Offset,
		LastUpdated: formatOptionalTime(result.Page.LastUpdated),
		Items:       items,
	})
}

func (h *Handler) ListSeasonStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListSeasonStats")
	defer span.End()

	query, err := parseStatsListQuery(r, false)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.statsQuery.ListSeason(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list season stats failed", "season", query.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonStatDTO, 0, len(result.Page.Items))
	for _, row := range result.Page.Items {
		items = append(items, seasonStatDTO{
			PlayerID:   row.PlayerID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
			Team:       row.Team,
			Position:   row.Position,
			Season:     row.Season,
			Weeks:      row.Weeks,
			Stats:      row.Counters,
			UpdatedAt:  formatTime(row.UpdatedAt),
		})
	}

	w.Header().Set(cacheStatusHeader, string(result.CacheStatus))
	writeSuccess(ctx, w, http.StatusOK, statsPageDTO[seasonStatDTO]{
		Season:      result.Season,
		Total:       result.Page.Total,
		Limit:       result.Limit,
		Offset:      result.Offset,
		LastUpdated: formatOptionalTime(result.Page.LastUpdated),
		Items:       items,
	})
}

func (h *Handler) GetStatsHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetStatsHealth")
	defer span.End()

	latest, ok, err := h.statsQuery.LatestUpdate(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats health check failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := statsHealthDTO{Status: "healthy"}
	if ok {
		out.LastStatsUpdate = formatOptionalTime(latest.UpdatedAt)
		out.LastStatsSeason = &latest.Season
		out.LastStatsWeek = &latest.Week
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func parseStatsListQuery(r *http.Request, weekly bool) (usecase.StatsListQuery, error) {
	var (
		q   usecase.StatsListQuery
		err error
	)
	if q.Season, err = queryInt(r, "season", 0); err != nil {
		return q, err
	}
	if weekly {
		if q.Week, err = queryInt(r, "week", 0); err != nil {
			return q, err
		}
	}
	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		return q, err
	}

	values := r.URL.Query()
	q.Position = strings.TrimSpace(values.Get("position"))
	q.Team = strings.TrimSpace(values.Get("team"))
	q.Search = strings.TrimSpace(values.Get("search"))
	return q, nil
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(v time.Time) *string {
	if v.IsZero() {
		return nil
	}
	out := formatTime(v)
	return &out
}
