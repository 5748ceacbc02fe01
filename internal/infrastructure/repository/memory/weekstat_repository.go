package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
)

type weekStatKey struct {
	playerID int64
	season   int
	week     int
}

// WeekStatRepository joins against a PlayerRepository for names, teams and
// positions in listings.
type WeekStatRepository struct {
	mu      sync.RWMutex
	nextID  int64
	rows    map[weekStatKey]weekstat.WeekStat
	players *PlayerRepository
}

func NewWeekStatRepository(players *PlayerRepository) *WeekStatRepository {
	if players == nil {
		players = NewPlayerRepository()
	}
	return &WeekStatRepository{
		rows:    make(map[weekStatKey]weekstat.WeekStat),
		players: players,
	}
}

func (r *WeekStatRepository) Upsert(_ context.Context, stat weekstat.WeekStat, now time.Time) (weekstat.Outcome, error) {
	if err := stat.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := weekStatKey{playerID: stat.PlayerID, season: stat.Season, week: stat.Week}
	current, ok := r.rows[key]
	if !ok {
		r.nextID++
		stat.ID = r.nextID
		stat.CreatedAt = now
		stat.UpdatedAt = now
		r.rows[key] = stat
		return weekstat.OutcomeInserted, nil
	}
	if current.SameContent(stat) {
		return weekstat.OutcomeUnchanged, nil
	}

	stat.ID = current.ID
	stat.CreatedAt = current.CreatedAt
	stat.UpdatedAt = now
	r.rows[key] = stat
	return weekstat.OutcomeUpdated, nil
}

func (r *WeekStatRepository) ListWeekly(_ context.Context, query weekstat.Query) (weekstat.WeeklyPage, error) {
	players := r.players.byID()

	r.mu.RLock()
	items := make([]weekstat.Row, 0)
	for key, stat := range r.rows {
		if key.season != query.Season || key.week != query.Week {
			continue
		}
		owner, ok := players[key.playerID]
		if !ok {
			continue
		}
		team, position := listingTeamPosition(owner, stat.Team, stat.Position)
		if !matchesListing(owner.Name, team, position, query.Position, query.Team, query.Search) {
			continue
		}
		items = append(items, weekstat.Row{WeekStat: stat, Name: owner.Name})
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].PlayerID < items[j].PlayerID
	})

	page := weekstat.WeeklyPage{Total: len(items)}
	for _, item := range items {
		if item.UpdatedAt.After(page.LastUpdated) {
			page.LastUpdated = item.UpdatedAt
		}
	}
	page.Items = paginate(items, query.Limit, query.Offset)
	return page, nil
}

func (r *WeekStatRepository) ListSeason(_ context.Context, query weekstat.Query) (weekstat.SeasonPage, error) {
	players := r.players.byID()

	r.mu.RLock()
	byPlayer := make(map[int64][]weekstat.WeekStat)
	for key, stat := range r.rows {
		if key.season != query.Season {
			continue
		}
		byPlayer[key.playerID] = append(byPlayer[key.playerID], stat)
	}
	r.mu.RUnlock()

	items := make([]weekstat.SeasonRow, 0, len(byPlayer))
	for playerID, stats := range byPlayer {
		owner, ok := players[playerID]
		if !ok {
			continue
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Week < stats[j].Week })
		last := stats[len(stats)-1]

		row := weekstat.SeasonRow{
			PlayerID:   playerID,
			ExternalID: owner.ExternalID,
			Name:       owner.Name,
			Season:     query.Season,
			Weeks:      len(stats),
		}
		if row.ExternalID == "" {
			row.ExternalID = last.ExternalID
		}
		row.Team, row.Position = listingTeamPosition(owner, last.Team, last.Position)
		for _, stat := range stats {
			row.Counters = row.Counters.Add(stat.Counters)
			if stat.UpdatedAt.After(row.UpdatedAt) {
				row.UpdatedAt = stat.UpdatedAt
			}
		}
		if !matchesListing(row.Name, row.Team, row.Position, query.Position, query.Team, query.Search) {
			continue
		}
		items = append(items, row)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].PlayerID < items[j].PlayerID
	})

	page := weekstat.SeasonPage{Total: len(items)}
	for _, item := range items {
		if item.UpdatedAt.After(page.LastUpdated) {
			page.LastUpdated = item.UpdatedAt
		}
	}
	page.Items = paginate(items, query.Limit, query.Offset)
	return page, nil
}

func (r *WeekStatRepository) Latest(_ context.Context) (weekstat.LatestUpdate, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		latest weekstat.WeekStat
		found  bool
	)
	for _, stat := range r.rows {
		if !found || stat.UpdatedAt.After(latest.UpdatedAt) {
			latest = stat
			found = true
		}
	}
	if !found {
		return weekstat.LatestUpdate{}, false, nil
	}
	return weekstat.LatestUpdate{Season: latest.Season, Week: latest.Week, UpdatedAt: latest.UpdatedAt}, true, nil
}

// listingTeamPosition prefers the player's current team and position and
// falls back to what the stat row recorded.
func listingTeamPosition(owner player.Player, statTeam, statPosition string) (string, string) {
	team := owner.Team
	if team == "" {
		team = statTeam
	}
	position := string(owner.Position)
	if position == "" {
		position = statPosition
	}
	return team, position
}
