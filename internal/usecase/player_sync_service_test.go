package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
	"github.com/BigB742/bigb-analyzer/internal/infrastructure/repository/memory"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

type stubCatalog struct {
	catalog usecase.PlayerCatalog
	err     error
}

func (c stubCatalog) FetchPlayers(context.Context) (usecase.PlayerCatalog, error) {
	return c.catalog, c.err
}

func newSyncService(repo player.Repository, catalog usecase.PlayerCatalogProvider) *usecase.PlayerSyncService {
	return usecase.NewPlayerSyncService(
		catalog,
		usecase.NewPlayerUpsertService(repo, nil),
		usecase.NewPlayerDedupeService(repo, nil),
		repo,
		4,
		nil,
	)
}

func TestPlayerSyncService_SyncAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	old := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewPlayerRepository(
		player.Player{ExternalID: "4046", Name: "Patrick Mahomes", Team: "KC", Position: player.PositionQuarterback, UpdatedAt: old},
		player.Player{Name: "Patrick Mahomes", Team: "kc", Position: "qb", UpdatedAt: old.Add(-time.Hour)},
		player.Player{Name: "Nick Bosa", Team: "SF", Position: "DL", UpdatedAt: old},
	)

	catalog := stubCatalog{catalog: usecase.PlayerCatalog{
		Players: []player.Record{
			{ExternalID: "4046", Name: "Patrick Mahomes", Team: "KC", Position: "QB", Season: 2025},
			{ExternalID: "9509", Name: "Bijan Robinson", Team: "ATL", Position: "RB", Season: 2025},
			{ExternalID: "4195", Name: "Harrison Butker", Team: "KC", Position: "K", Season: 2025},
			{ExternalID: "0000", Name: "", Team: "KC", Position: "WR"},
		},
		FilteredOut: 42,
	}}

	res, err := newSyncService(repo, catalog).SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Dedupe.DuplicateGroups != 1 || res.Dedupe.RemovedCount != 1 {
		t.Fatalf("expected pre-sync dedupe to merge mahomes rows, got %+v", res.Dedupe)
	}
	if res.Fetched != 4 || res.FilteredOut != 42 {
		t.Fatalf("unexpected fetched counts: %+v", res)
	}
	if res.Inserted != 2 || res.Updated != 1 || res.Skipped != 1 || res.Failed != 0 {
		t.Fatalf("unexpected upsert counts: %+v", res)
	}
	if res.Pruned != 1 {
		t.Fatalf("expected the DL row to be pruned, got %d", res.Pruned)
	}

	rows, err := repo.List(ctx, player.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("unexpected player count: %d", len(rows))
	}
}

func TestPlayerSyncService_CatalogFailureIsDependencyError(t *testing.T) {
	t.Parallel()

	repo := memory.NewPlayerRepository()
	_, err := newSyncService(repo, stubCatalog{err: errors.New("sleeper timeout")}).SyncAll(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestPlayerDedupeService_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	t0 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewPlayerRepository(
		player.Player{Name: "Travis Kelce", Team: "KC", Position: "TE", UpdatedAt: t0},
		player.Player{Name: "Travis Kelce ", Team: "kc", Position: "te", UpdatedAt: t0.Add(time.Hour)},
		player.Player{Name: "Puka Nacua", Team: "lar", Position: "wr", UpdatedAt: t0},
	)
	svc := usecase.NewPlayerDedupeService(repo, nil)

	first, err := svc.NormalizeAndDedupe(ctx, usecase.DedupeInput{})
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.DuplicateGroups != 1 || first.RemovedCount != 1 || first.NormalizedCount != 2 {
		t.Fatalf("unexpected first sweep: %+v", first)
	}

	second, err := svc.NormalizeAndDedupe(ctx, usecase.DedupeInput{})
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second != (usecase.DedupeResult{}) {
		t.Fatalf("expected second sweep to be a no-op, got %+v", second)
	}

	rows, _ := repo.ListIdentities(ctx)
	if len(rows) != 2 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	for _, row := range rows {
		id := player.Identity{Name: row.Name, Team: row.Team, Position: player.Position(row.Position)}
		if !id.IsCanonical() {
			t.Fatalf("expected canonical identity, got %+v", row)
		}
		if row.Name == "Travis Kelce" && !row.UpdatedAt.Equal(t0.Add(time.Hour)) {
			t.Fatalf("expected the most recent kelce row to survive, got %+v", row)
		}
	}
}

func TestPlayerUpsertService_ConvergesOnMemoryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerRepository(
		player.Player{ExternalID: "100", Name: "Josh Allen", Team: "BUF", Position: player.PositionQuarterback},
		player.Player{Name: "Josh Allen", Team: "JAX", Position: player.PositionTightEnd},
	)
	svc := usecase.NewPlayerUpsertService(repo, nil)

	res, err := svc.Upsert(ctx, player.Record{ExternalID: "100", Name: "Josh Allen", Team: "jax", Position: "te", LastWeek: 6})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if res.Reason != "external id owned by another player" {
		t.Fatalf("unexpected result: %+v", res)
	}

	owners, _ := repo.ListByExternalIDs(ctx, []string{"100"})
	if len(owners) != 1 || owners[0].Team != "BUF" {
		t.Fatalf("expected the buffalo row to keep the external id, got %+v", owners)
	}
	tightEnds, _ := repo.List(ctx, player.ListFilter{Position: player.PositionTightEnd})
	if len(tightEnds) != 1 || tightEnds[0].LastWeek != 6 || tightEnds[0].ExternalID != "" {
		t.Fatalf("expected the identity row to be updated without the external id, got %+v", tightEnds)
	}
}

func TestPlayerUpsertService_ConcurrentSameIdentityInsertsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	record := player.Record{Name: "CeeDee Lamb", Team: "dal", Position: "wr", Season: 2025}

	for round := 0; round < 50; round++ {
		repo := memory.NewPlayerRepository()
		svc := usecase.NewPlayerUpsertService(repo, nil)

		var (
			wg       sync.WaitGroup
			start    = make(chan struct{})
			results  [2]usecase.UpsertResult
			failures [2]error
		)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				results[i], failures[i] = svc.Upsert(ctx, record)
			}()
		}
		close(start)
		wg.Wait()

		inserted := 0
		for i := range results {
			if failures[i] != nil {
				t.Fatalf("round %d upsert %d: %v", round, i, failures[i])
			}
			if results[i].Inserted {
				inserted++
			}
		}
		if inserted != 1 {
			t.Fatalf("round %d: expected exactly one insert, got %d", round, inserted)
		}
		rows, err := repo.List(ctx, player.ListFilter{})
		if err != nil {
			t.Fatalf("round %d list: %v", round, err)
		}
		if len(rows) != 1 {
			t.Fatalf("round %d: expected one row, got %d", round, len(rows))
		}
	}
}

func TestPlayerSweeps_KeepWeekStatsOfRemovedPlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	t0 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewPlayerRepository(
		player.Player{ID: 1, Name: "Jane Doe", Team: "SF", Position: "QB", UpdatedAt: t0},
		player.Player{ID: 2, Name: "Jane Doe ", Team: "sf", Position: "qb", UpdatedAt: t0.Add(time.Hour)},
		player.Player{ID: 3, Name: "Nick Bosa", Team: "SF", Position: "DL", UpdatedAt: t0},
	)
	stats := memory.NewWeekStatRepository(repo)

	if _, err := stats.Upsert(ctx, weekstat.WeekStat{PlayerID: 1, Season: 2025, Week: 3, Team: "SF", Position: "QB", Counters: weekstat.Counters{PassYds: 250}}, t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("seed loser stat: %v", err)
	}

	res, err := usecase.NewPlayerDedupeService(repo, nil).NormalizeAndDedupe(ctx, usecase.DedupeInput{})
	if err != nil {
		t.Fatalf("dedupe: %v", err)
	}
	if res.RemovedCount != 1 {
		t.Fatalf("expected one loser row removed, got %+v", res)
	}
	latest, ok, err := stats.Latest(ctx)
	if err != nil || !ok || latest.Season != 2025 || latest.Week != 3 {
		t.Fatalf("expected the loser's week stat to remain, got %+v ok=%v err=%v", latest, ok, err)
	}

	if _, err := stats.Upsert(ctx, weekstat.WeekStat{PlayerID: 3, Season: 2025, Week: 4, Team: "SF", Position: "DL"}, t0.Add(3*time.Hour)); err != nil {
		t.Fatalf("seed pruned stat: %v", err)
	}
	pruned, err := newSyncService(repo, stubCatalog{}).Prune(ctx)
	if err != nil || pruned != 1 {
		t.Fatalf("expected the DL row pruned, got %d err=%v", pruned, err)
	}
	latest, ok, err = stats.Latest(ctx)
	if err != nil || !ok || latest.Week != 4 {
		t.Fatalf("expected the pruned player's week stat to remain, got %+v ok=%v err=%v", latest, ok, err)
	}
}
