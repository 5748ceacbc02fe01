package httpapi

import (
	"net/http"

	"github.com/sourcegraph/conc/panics"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, swaggerEnabled)
	registerPublicRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var catcher panics.Catcher
		catcher.Try(func() { next.ServeHTTP(w, r) })
		if rec := catcher.Recovered(); rec != nil {
			logger.ErrorContext(r.Context(), "panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec.Value,
				"stack", string(rec.Stack),
			)
			writeInternalError(r.Context(), w)
		}
	})
}
