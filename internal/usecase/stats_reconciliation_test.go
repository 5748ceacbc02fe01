package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	playermock "github.com/BigB742/bigb-analyzer/internal/mocks/domain/player"
	weekstatmock "github.com/BigB742/bigb-analyzer/internal/mocks/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/platform/id"
	"github.com/stretchr/testify/mock"
)

type stubStatsProvider struct {
	name  string
	rows  []ProviderStatRow
	err   error
	mu    sync.Mutex
	calls int
}

func (p *stubStatsProvider) Name() string { return p.name }

func (p *stubStatsProvider) FetchWeeklyStats(_ context.Context, season, week int) ([]ProviderStatRow, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := make([]ProviderStatRow, len(p.rows))
	for i, row := range p.rows {
		row.Season, row.Week = season, week
		out[i] = row
	}
	return out, nil
}

func newTestReconciler(provider StatsProvider, players player.Repository, stats weekstat.Repository) *StatsReconciliationService {
	svc := NewStatsReconciliationService(NewStatsProviderRegistry("sleeper", provider), players, stats, id.Static("run-1"), nil)
	clock := time.Date(2025, 10, 2, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(25 * time.Millisecond)
		return clock
	}
	return svc
}

func TestStatsReconciliationService_CountsOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &stubStatsProvider{name: "sleeper", rows: []ProviderStatRow{
		{ProviderPlayerID: "4046", Stats: ProviderStats{PassAttempts: 38, PassYards: 291}},
		{ProviderPlayerID: "4195", Team: "KC", Position: "K", Stats: ProviderStats{XPM: 3, FGM40To49: 1}},
		{ProviderPlayerID: "6794", Stats: ProviderStats{RecYards: 110, RecReceptions: 7}},
		{ProviderPlayerID: "zz-unknown"},
		{ProviderPlayerID: "aa-unknown"},
		{ProviderPlayerID: "zz-unknown"},
		{ProviderPlayerID: "  "},
	}}

	players := playermock.NewRepository(t)
	players.
		On("ListByExternalIDs", ctx, []string{"4046", "4195", "6794", "zz-unknown", "aa-unknown"}).
		Return([]player.Player{
			{ID: 1, ExternalID: "4046", Name: "Patrick Mahomes", Team: "KC", Position: player.PositionQuarterback},
			{ID: 2, ExternalID: "4195", Name: "Harrison Butker", Team: "KC", Position: player.PositionKicker},
			{ID: 3, ExternalID: "6794", Name: "Justin Jefferson", Team: "MIN", Position: player.PositionWideReceiver},
		}, nil).
		Once()

	stats := weekstatmock.NewRepository(t)
	byPlayer := func(id int64) any {
		return mock.MatchedBy(func(s weekstat.WeekStat) bool { return s.PlayerID == id })
	}
	stats.On("Upsert", ctx, byPlayer(1), mock.Anything).Return(weekstat.OutcomeInserted, nil).Once()
	stats.On("Upsert", ctx, byPlayer(2), mock.Anything).Return(weekstat.OutcomeUpdated, nil).Once()
	stats.On("Upsert", ctx, byPlayer(3), mock.Anything).Return(weekstat.OutcomeUnchanged, nil).Once()

	summary, err := newTestReconciler(provider, players, stats).FetchAndUpsert(ctx, ReconcileInput{Season: 2025, Week: 4})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if summary.RunID != "run-1" || summary.Provider != "sleeper" || summary.Season != 2025 || summary.Week != 4 {
		t.Fatalf("unexpected summary header: %+v", summary)
	}
	if summary.Fetched != 7 || summary.Matched != 3 {
		t.Fatalf("unexpected fetched/matched: %d/%d", summary.Fetched, summary.Matched)
	}
	if summary.Inserted != 1 || summary.Updated != 1 || summary.Unchanged != 1 || summary.Skipped != 4 || summary.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if len(summary.MissingExternalIDs) != 2 || summary.MissingExternalIDs[0] != "aa-unknown" || summary.MissingExternalIDs[1] != "zz-unknown" {
		t.Fatalf("expected sorted unique missing ids, got %v", summary.MissingExternalIDs)
	}
	if summary.FetchDurationMs != 25 || summary.TotalDurationMs <= summary.FetchDurationMs {
		t.Fatalf("unexpected durations: fetch=%d total=%d", summary.FetchDurationMs, summary.TotalDurationMs)
	}
	if len(summary.Sample) != 3 || summary.Sample[0].PassAttempts != 38 || summary.Sample[1].XPM != 3 || summary.Sample[2].RecYards != 110 {
		t.Fatalf("unexpected sample: %+v", summary.Sample)
	}
}

func TestStatsReconciliationService_BuildsWeekStatFromProviderRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &stubStatsProvider{name: "sleeper", rows: []ProviderStatRow{
		{ProviderPlayerID: "4034", Stats: ProviderStats{RushYards: math.NaN(), RushAttempts: 18, RecYards: math.Inf(1), FGM50To59: 2}},
	}}

	players := playermock.NewRepository(t)
	players.On("ListByExternalIDs", ctx, []string{"4034"}).
		Return([]player.Player{{ID: 11, ExternalID: "4034", Name: "Christian McCaffrey", Team: "SF", Position: player.PositionRunningBack}}, nil).
		Once()

	var written weekstat.WeekStat
	stats := weekstatmock.NewRepository(t)
	stats.On("Upsert", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).(weekstat.WeekStat) }).
		Return(weekstat.OutcomeInserted, nil).
		Once()

	if _, err := newTestReconciler(provider, players, stats).FetchAndUpsert(ctx, ReconcileInput{Season: 2025, Week: 2}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if written.PlayerID != 11 || written.ExternalID != "4034" || written.Season != 2025 || written.Week != 2 {
		t.Fatalf("unexpected key fields: %+v", written)
	}
	if written.Team != "SF" || written.Position != "RB" {
		t.Fatalf("expected player team/position fallback, got team=%q position=%q", written.Team, written.Position)
	}
	if written.Counters.RushYds != 0 || written.Counters.RecYds != 0 {
		t.Fatalf("expected non-finite values to become 0, got %+v", written.Counters)
	}
	if written.Counters.RushAtt != 18 || written.Counters.FGM50To59 != 2 {
		t.Fatalf("unexpected counters: %+v", written.Counters)
	}
}

func TestStatsReconciliationService_SampleIsCapped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var rows []ProviderStatRow
	var known []player.Player
	for i := 1; i <= 12; i++ {
		ext := strconv.Itoa(1000 + i)
		rows = append(rows, ProviderStatRow{ProviderPlayerID: ext})
		known = append(known, player.Player{ID: int64(i), ExternalID: ext, Name: "Player " + ext, Position: player.PositionWideReceiver})
	}
	provider := &stubStatsProvider{name: "sleeper", rows: rows}

	players := playermock.NewRepository(t)
	players.On("ListByExternalIDs", ctx, mock.Anything).Return(known, nil).Once()
	stats := weekstatmock.NewRepository(t)
	stats.On("Upsert", ctx, mock.Anything, mock.Anything).Return(weekstat.OutcomeInserted, nil).Times(12)

	summary, err := newTestReconciler(provider, players, stats).FetchAndUpsert(ctx, ReconcileInput{Season: 2025, Week: 1})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if summary.Inserted != 12 || len(summary.Sample) != 10 {
		t.Fatalf("unexpected inserted=%d sample=%d", summary.Inserted, len(summary.Sample))
	}
}

func TestStatsReconciliationService_CountsFailedRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &stubStatsProvider{name: "sleeper", rows: []ProviderStatRow{
		{ProviderPlayerID: "1"},
		{ProviderPlayerID: "2"},
	}}
	players := playermock.NewRepository(t)
	players.On("ListByExternalIDs", ctx, []string{"1", "2"}).Return([]player.Player{
		{ID: 1, ExternalID: "1", Name: "One"},
		{ID: 2, ExternalID: "2", Name: "Two"},
	}, nil).Once()
	stats := weekstatmock.NewRepository(t)
	stats.On("Upsert", ctx, mock.MatchedBy(func(s weekstat.WeekStat) bool { return s.PlayerID == 1 }), mock.Anything).
		Return(weekstat.Outcome(""), errors.New("deadlock detected")).Once()
	stats.On("Upsert", ctx, mock.MatchedBy(func(s weekstat.WeekStat) bool { return s.PlayerID == 2 }), mock.Anything).
		Return(weekstat.OutcomeUpdated, nil).Once()

	summary, err := newTestReconciler(provider, players, stats).FetchAndUpsert(ctx, ReconcileInput{Season: 2025, Week: 1})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if summary.Failed != 1 || summary.Updated != 1 {
		t.Fatalf("unexpected counts: failed=%d updated=%d", summary.Failed, summary.Updated)
	}
}

func TestStatsReconciliationService_ProviderFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("upstream 503")
	provider := &stubStatsProvider{name: "sleeper", err: cause}
	players := playermock.NewRepository(t)
	stats := weekstatmock.NewRepository(t)

	_, err := newTestReconciler(provider, players, stats).FetchAndUpsert(context.Background(), ReconcileInput{Season: 2025, Week: 1})
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %T %v", err, err)
	}
	if providerErr.Provider != "sleeper" || providerErr.Week != 1 {
		t.Fatalf("unexpected provider error: %+v", providerErr)
	}
	if !errors.Is(err, ErrDependencyUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected dependency error wrapping cause, got %v", err)
	}
}

func TestStatsReconciliationService_ValidatesInput(t *testing.T) {
	t.Parallel()

	provider := &stubStatsProvider{name: "sleeper"}
	svc := newTestReconciler(provider, playermock.NewRepository(t), weekstatmock.NewRepository(t))

	tests := []ReconcileInput{
		{Season: 0, Week: 1},
		{Season: 2025, Week: 0},
		{Season: 2025, Week: 1, Provider: "espn"},
	}
	for _, input := range tests {
		if _, err := svc.FetchAndUpsert(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called for invalid input, got %d calls", provider.calls)
	}
}

func TestStatsReconciliationService_NoRowsSkipsPlayerLookup(t *testing.T) {
	t.Parallel()

	provider := &stubStatsProvider{name: "sleeper"}
	summary, err := newTestReconciler(provider, playermock.NewRepository(t), weekstatmock.NewRepository(t)).
		FetchAndUpsert(context.Background(), ReconcileInput{Season: 2025, Week: 18, Provider: "SLEEPER"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if summary.Fetched != 0 || summary.MissingExternalIDs == nil || summary.Sample == nil {
		t.Fatalf("expected empty non-nil collections, got %+v", summary)
	}
}

func TestStatsProviderRegistry(t *testing.T) {
	t.Parallel()

	sleeper := &stubStatsProvider{name: "Sleeper"}
	other := &stubStatsProvider{name: "mock"}
	registry := NewStatsProviderRegistry("", sleeper, other, nil)

	got, err := registry.Get("")
	if err != nil || got != sleeper {
		t.Fatalf("expected default provider, got %v err=%v", got, err)
	}
	got, err = registry.Get(" MOCK ")
	if err != nil || got != other {
		t.Fatalf("expected case-insensitive lookup, got %v err=%v", got, err)
	}
	if _, err := registry.Get("espn"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != "mock" || names[1] != "sleeper" {
		t.Fatalf("unexpected names: %v", names)
	}
}
