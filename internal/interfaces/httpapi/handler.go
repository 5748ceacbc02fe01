package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

const (
	cacheStatusHeader   = "X-Cache-Status"
	maxRequestBodyBytes = 1 << 20
)

type Handler struct {
	playerService *usecase.PlayerService
	upsertService *usecase.PlayerUpsertService
	dedupeService *usecase.PlayerDedupeService
	playerSync    *usecase.PlayerSyncService
	reconciler    *usecase.StatsReconciliationService
	statsQuery    *usecase.StatsQueryService
	sheetService  *usecase.SheetService
	statsDefaults usecase.ReconcileInput
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	playerService *usecase.PlayerService,
	upsertService *usecase.PlayerUpsertService,
	dedupeService *usecase.PlayerDedupeService,
	playerSync *usecase.PlayerSyncService,
	reconciler *usecase.StatsReconciliationService,
	statsQuery *usecase.StatsQueryService,
	sheetService *usecase.SheetService,
	statsDefaults usecase.ReconcileInput,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerService: playerService,
		upsertService: upsertService,
		dedupeService: dedupeService,
		playerSync:    playerSync,
		reconciler:    reconciler,
		statsQuery:    statsQuery,
		sheetService:  sheetService,
		statsDefaults: statsDefaults,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a strict JSON body. An empty body leaves target untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, target any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// queryInt parses an optional integer query parameter; absent yields def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && v
}
