package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/health/stats", handler.GetStatsHealth)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/stats/weekly", handler.ListWeeklyStats)
	mux.HandleFunc("GET /v1/stats/season", handler.ListSeasonStats)
	mux.HandleFunc("GET /v1/sheets/range", handler.GetSheetRange)
	mux.HandleFunc("GET /v1/sheets/ranges", handler.GetSheetRanges)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/players/external/{externalID}", handler.GetPlayerByExternalID)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireInternalJobToken(internalJobToken, fn))
	}

	internal("POST /v1/players", handler.UpsertPlayer)
	internal("POST /v1/internal/sync/players", handler.RunPlayerSync)
	internal("POST /v1/internal/sync/stats", handler.RunStatsSync)
	internal("POST /v1/internal/players/dedupe", handler.RunPlayerDedupe)
	internal("POST /v1/internal/players/prune", handler.RunPlayerPrune)
	internal("GET /v1/internal/cache", handler.ListCacheEntries)
	internal("DELETE /v1/internal/cache", handler.ClearCache)
}
