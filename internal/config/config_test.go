package config

import (
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON", "2024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreBackend != StoreBackendPostgres {
		t.Fatalf("unexpected StoreBackend: %q", cfg.StoreBackend)
	}
	if cfg.StatsProvider != "sleeper" {
		t.Fatalf("unexpected StatsProvider: %q", cfg.StatsProvider)
	}
	if cfg.SheetsMaxAttempts != 3 || cfg.SheetsRetryDelay != 400*time.Millisecond {
		t.Fatalf("unexpected sheet retry policy: %d/%s", cfg.SheetsMaxAttempts, cfg.SheetsRetryDelay)
	}
	if cfg.SheetsRangeTTL != 60*time.Second {
		t.Fatalf("unexpected SheetsRangeTTL: %s", cfg.SheetsRangeTTL)
	}
	if cfg.StatsCacheTTL != 15*time.Minute || cfg.StatsCacheMaxEntries != 0 {
		t.Fatalf("unexpected stats cache config: %s/%d", cfg.StatsCacheTTL, cfg.StatsCacheMaxEntries)
	}
	if cfg.Season != 2024 || cfg.CurrentWeek != 1 {
		t.Fatalf("unexpected season/week: %d/%d", cfg.Season, cfg.CurrentWeek)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("expected console logs in dev, got %q", cfg.LogFormat)
	}
}

func TestLoad_ProdRequiresInternalJobToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when INTERNAL_JOB_TOKEN is missing in prod")
	}

	t.Setenv("INTERNAL_JOB_TOKEN", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json logs in prod, got %q", cfg.LogFormat)
	}
}

func TestLoad_StoreBackendValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_BACKEND", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORE_BACKEND")
	}

	t.Setenv("STORE_BACKEND", "Memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Fatalf("unexpected StoreBackend: %q", cfg.StoreBackend)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}

	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/1"`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"SHEETS_MAX_ATTEMPTS":     "0",
		"SHEETS_RETRY_DELAY":      "soon",
		"SLEEPER_RPS":             "-1",
		"STATS_CACHE_TTL":         "0s",
		"STATS_CACHE_MAX_ENTRIES": "-5",
		"CURRENT_WEEK":            "23",
		"SYNC_WORKERS":            "0",
		"APP_LOG_FORMAT":          "xml",
		"PYROSCOPE_ENABLED":       "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	got := splitCSV(" https://a.test, ,https://b.test ,")
	if len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Fatalf("unexpected split: %#v", got)
	}
}
