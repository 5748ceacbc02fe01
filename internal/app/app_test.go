package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                     config.EnvDev,
		ServiceName:                "bigb-analyzer",
		HTTPAddr:                   ":0",
		ReadTimeout:                time.Second,
		WriteTimeout:               time.Second,
		StoreBackend:               config.StoreBackendMemory,
		CORSAllowedOrigins:         []string{"*"},
		InternalJobToken:           "token",
		SheetsBaseURL:              "http://127.0.0.1:1",
		SheetsTimeout:              time.Second,
		SheetsRangeTTL:             time.Minute,
		SheetsMaxAttempts:          1,
		SheetsRetryDelay:           time.Millisecond,
		StatsProvider:              "sleeper",
		SleeperBaseURL:             "http://127.0.0.1:1",
		SleeperTimeout:             time.Second,
		SleeperRPS:                 5,
		SleeperCircuitFailureCount: 3,
		SleeperCircuitOpenTimeout:  time.Second,
		StatsCacheTTL:              time.Minute,
		Season:                     2025,
		CurrentWeek:                4,
		SyncPlayersCron:            "0 3 * * *",
		SyncStatsInterval:          time.Hour,
		SyncWorkers:                2,
	}
}

func TestNew_MemoryBackendServesRoutes(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(ctx); err != nil {
			t.Errorf("close app: %v", err)
		}
	})

	srv, err := a.NewHTTPServer()
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	tests := []struct {
		target string
		status int
	}{
		{target: "/healthz", status: http.StatusOK},
		{target: "/v1/players?position=QB", status: http.StatusOK},
		{target: "/v1/stats/season", status: http.StatusOK},
		{target: "/v1/internal/cache", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tt.target, tt.status, rec.Code, rec.Body.String())
		}
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, err := a.NewHTTPServer(); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewScheduler(t *testing.T) {
	cfg := memoryConfig()
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	s, err := a.NewScheduler()
	if err != nil || s != nil {
		t.Fatalf("expected no scheduler when disabled, got %v err=%v", s, err)
	}

	a.cfg.SchedulerEnabled = true
	s, err = a.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Start()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown scheduler: %v", err)
	}
}

func TestStatsDefaults(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	got := a.StatsDefaults()
	if got.Season != 2025 || got.Week != 4 || got.Provider != "sleeper" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}
