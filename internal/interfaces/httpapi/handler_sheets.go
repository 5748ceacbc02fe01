package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

type sheetRangeDTO struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Range         string     `json:"range"`
	Rows          [][]string `json:"rows"`
	Stale         bool       `json:"stale"`
	FetchedAt     string     `json:"fetchedAt"`
}

func (h *Handler) GetSheetRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetSheetRange")
	defer span.End()

	values := r.URL.Query()
	req := usecase.RangeRequest{
		SpreadsheetID: strings.TrimSpace(values.Get("spreadsheetId")),
		Range:         strings.TrimSpace(values.Get("range")),
		ForceRefresh:  queryBool(r, "force"),
	}

	result, err := h.sheetService.FetchRange(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "fetch sheet range failed", "range", req.Range, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rangeResultToDTO(result))
}

func (h *Handler) GetSheetRanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetSheetRanges")
	defer span.End()

	values := r.URL.Query()
	ranges := make([]string, 0, len(values["range"]))
	for _, raw := range values["range"] {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			ranges = append(ranges, trimmed)
		}
	}
	if len(ranges) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: at least one range query parameter is required", usecase.ErrInvalidInput))
		return
	}
	spreadsheetID := strings.TrimSpace(values.Get("spreadsheetId"))

	results, err := h.sheetService.FetchRanges(ctx, spreadsheetID, ranges, queryBool(r, "force"))
	if err != nil {
		h.logger.WarnContext(ctx, "fetch sheet ranges failed", "ranges", len(ranges), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]sheetRangeDTO, 0, len(results))
	for _, result := range results {
		items = append(items, rangeResultToDTO(result))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func rangeResultToDTO(v usecase.RangeResult) sheetRangeDTO {
	rows := v.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return sheetRangeDTO{
		SpreadsheetID: v.SpreadsheetID,
		Range:         v.Range,
		Rows:          rows,
		Stale:         v.Stale,
		FetchedAt:     formatTime(v.FetchedAt),
	}
}
