package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/platform/logging"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

type stubPlayers struct {
	calls int
	err   error
}

func (s *stubPlayers) SyncAll(context.Context) (usecase.PlayerSyncResult, error) {
	s.calls++
	return usecase.PlayerSyncResult{Fetched: 3, Inserted: 1}, s.err
}

type stubStats struct {
	mu      sync.Mutex
	inputs  []usecase.ReconcileInput
	summary usecase.ReconciliationSummary
	err     error
	ran     chan struct{}
}

func (s *stubStats) FetchAndUpsert(_ context.Context, input usecase.ReconcileInput) (usecase.ReconciliationSummary, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	if s.ran != nil {
		select {
		case s.ran <- struct{}{}:
		default:
		}
	}
	return s.summary, s.err
}

type stubCache struct {
	mu      sync.Mutex
	cleared int
}

func (c *stubCache) ClearCache(string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	return 4
}

func TestNew_RejectsInvalidCron(t *testing.T) {
	t.Parallel()

	_, err := New(Config{PlayersCron: "not a cron"}, &stubPlayers{}, nil, nil, nil)
	if err == nil {
		t.Fatalf("expected invalid cron error")
	}
}

func TestNew_StatsJobRequiresSeasonAndWeek(t *testing.T) {
	t.Parallel()

	_, err := New(Config{StatsInterval: time.Minute, Season: 2025}, nil, &stubStats{}, nil, nil)
	if err == nil {
		t.Fatalf("expected missing week error")
	}
}

func TestNew_RegistersConfiguredJobs(t *testing.T) {
	t.Parallel()

	s, err := New(Config{PlayersCron: "0 9 * * *", StatsInterval: time.Hour, Season: 2025, Week: 6}, &stubPlayers{}, &stubStats{}, nil, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })

	jobs := s.cron.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("job count mismatch: got=%d want=2", len(jobs))
	}
}

func TestStatsJob_StartImmediatelyAndClearsCache(t *testing.T) {
	t.Parallel()

	stats := &stubStats{
		summary: usecase.ReconciliationSummary{Inserted: 2},
		ran:     make(chan struct{}, 1),
	}
	clearer := &stubCache{}
	s, err := New(Config{
		StatsInterval:    time.Hour,
		Season:           2025,
		Week:             6,
		Provider:         "sleeper",
		StartImmediately: true,
	}, nil, stats, clearer, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Start()

	select {
	case <-stats.ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("stats job did not run")
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	stats.mu.Lock()
	defer stats.mu.Unlock()
	if len(stats.inputs) != 1 || stats.inputs[0] != (usecase.ReconcileInput{Season: 2025, Week: 6, Provider: "sleeper"}) {
		t.Fatalf("unexpected inputs: %+v", stats.inputs)
	}
	clearer.mu.Lock()
	defer clearer.mu.Unlock()
	if clearer.cleared != 1 {
		t.Fatalf("cache should be cleared once, got %d", clearer.cleared)
	}
}

func TestRunStatsSync_KeepsCacheOnFailureOrNoChanges(t *testing.T) {
	t.Parallel()

	clearer := &stubCache{}
	s := &Scheduler{
		stats:  &stubStats{err: errors.New("provider down")},
		cache:  clearer,
		cfg:    Config{Season: 2025, Week: 1, JobTimeout: time.Second},
		logger: logging.NewNop(),
	}
	s.runStatsSync()

	s.stats = &stubStats{summary: usecase.ReconciliationSummary{Unchanged: 5}}
	s.runStatsSync()

	if clearer.cleared != 0 {
		t.Fatalf("cache should be kept, cleared=%d", clearer.cleared)
	}
}

func TestRunPlayerSync_CallsSyncer(t *testing.T) {
	t.Parallel()

	players := &stubPlayers{}
	s := &Scheduler{players: players, cfg: Config{JobTimeout: time.Second}, logger: logging.NewNop()}
	s.runPlayerSync()

	players.err = errors.New("boom")
	s.runPlayerSync()

	if players.calls != 2 {
		t.Fatalf("calls mismatch: got=%d want=2", players.calls)
	}
}
