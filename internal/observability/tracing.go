package observability

import (
	"context"

	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

// startTracing installs the global OpenTelemetry providers that otelhttp,
// otelsqlx and the usecase spans export through. The returned stop flushes
// pending spans before shutting the exporters down.
func startTracing(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	if !cfg.UptraceEnabled || cfg.UptraceDSN == "" {
		logger.Info("tracing disabled", "uptrace_enabled", cfg.UptraceEnabled, "dsn_set", cfg.UptraceDSN != "")
		return func(context.Context) error { return nil }
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(
			attribute.String("bigb.store_backend", cfg.StoreBackend),
			attribute.String("bigb.stats_provider", cfg.StatsProvider),
		),
	)
	logger.Info("tracing enabled", "exporter", "uptrace", "environment", cfg.AppEnv)

	return func(ctx context.Context) error {
		if err := uptrace.ForceFlush(ctx); err != nil {
			logger.Warn("flush spans failed", "error", err)
		}
		return uptrace.Shutdown(ctx)
	}
}
