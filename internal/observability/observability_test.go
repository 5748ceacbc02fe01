package observability

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/BigB742/bigb-analyzer/internal/config"
	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
)

func TestStartTracing_WithoutDSNIsNoop(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.Config{
		{UptraceEnabled: false, ServiceName: "bigb-analyzer"},
		{UptraceEnabled: true, ServiceName: "bigb-analyzer"},
	} {
		stop := startTracing(cfg, logging.NewNop())
		if err := stop(context.Background()); err != nil {
			t.Fatalf("stop tracing: %v", err)
		}
	}
}

func TestSetup_AllDisabled(t *testing.T) {
	t.Parallel()

	stack, err := Setup(config.Config{ServiceName: "bigb-analyzer"}, logging.NewNop())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if stack.pprof != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStartPprof_ServesIndex(t *testing.T) {
	t.Parallel()

	srv, err := startPprof(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	t.Cleanup(func() { _ = stopPprof(context.Background(), srv) })

	resp, err := http.Get("http://" + srv.Addr + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStartPprof_PortInUseFailsStartup(t *testing.T) {
	t.Parallel()

	first, err := startPprof(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	t.Cleanup(func() { _ = stopPprof(context.Background(), first) })

	if _, err := startPprof(config.Config{PprofEnabled: true, PprofAddr: first.Addr}, logging.NewNop()); err == nil {
		t.Fatalf("expected bind error for %s", first.Addr)
	}
}
