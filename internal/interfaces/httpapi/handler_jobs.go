package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

type statsSyncRequest struct {
	Season   int    `json:"season" validate:"gte=0"`
	Week     int    `json:"week" validate:"gte=0,lte=25"`
	Provider string `json:"provider" validate:"max=32"`
}

type dedupeRequest struct {
	Name     string `json:"name" validate:"required_with=Team Position"`
	Team     string `json:"team"`
	Position string `json:"position"`
}

type cacheEntryDTO struct {
	Key             string `json:"key"`
	CachedAt        string `json:"cachedAt"`
	TTLMs           int64  `json:"ttlMs"`
	AgeMs           int64  `json:"ageMs"`
	Stale           bool   `json:"stale"`
	RefreshInFlight bool   `json:"refreshInFlight"`
}

type cacheClearDTO struct {
	Scope   string `json:"scope"`
	Cleared int    `json:"cleared"`
}

func (h *Handler) RunPlayerSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunPlayerSync")
	defer span.End()

	result, err := h.playerSync.SyncAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run player sync failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunStatsSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunStatsSync")
	defer span.End()

	var req statsSyncRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := h.statsDefaults
	if req.Season > 0 {
		input.Season = req.Season
	}
	if req.Week > 0 {
		input.Week = req.Week
	}
	if provider := strings.TrimSpace(req.Provider); provider != "" {
		input.Provider = provider
	}

	summary, err := h.reconciler.FetchAndUpsert(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run stats sync failed",
			"season", input.Season,
			"week", input.Week,
			"provider", input.Provider,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	if summary.Inserted+summary.Updated > 0 {
		h.statsQuery.ClearCache("")
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) RunPlayerDedupe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunPlayerDedupe")
	defer span.End()

	var req dedupeRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.DedupeInput{}
	if strings.TrimSpace(req.Name) != "" {
		target := player.NormalizeIdentity(req.Name, req.Team, req.Position)
		input.Target = &target
	}

	result, err := h.dedupeService.NormalizeAndDedupe(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run player dedupe failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunPlayerPrune(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunPlayerPrune")
	defer span.End()

	pruned, err := h.playerSync.Prune(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run player prune failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"pruned": pruned})
}

func (h *Handler) ListCacheEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListCacheEntries")
	defer span.End()

	entries := h.statsQuery.CacheSnapshot()
	items := make([]cacheEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, cacheEntryDTO{
			Key:             entry.Key,
			CachedAt:        formatTime(entry.CachedAt),
			TTLMs:           entry.TTL.Milliseconds(),
			AgeMs:           entry.Age.Milliseconds(),
			Stale:           entry.Stale,
			RefreshInFlight: entry.RefreshInFlight,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// ClearCache drops stats listings (one key or all) or, with scope=sheets, the
// cached ranges of one spreadsheet.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ClearCache")
	defer span.End()

	values := r.URL.Query()
	scope := strings.ToLower(strings.TrimSpace(values.Get("scope")))
	switch scope {
	case "", "stats":
		cleared := h.statsQuery.ClearCache(values.Get("key"))
		writeSuccess(ctx, w, http.StatusOK, cacheClearDTO{Scope: "stats", Cleared: cleared})
	case "sheets":
		cleared := h.sheetService.ClearRanges(ctx, values.Get("spreadsheetId"))
		writeSuccess(ctx, w, http.StatusOK, cacheClearDTO{Scope: "sheets", Cleared: cleared})
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown cache scope %q", usecase.ErrInvalidInput, scope))
	}
}
