package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
)

// PlayerRepository keeps players in memory and enforces the same unique
// identity and external id constraints as the postgres schema.
type PlayerRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]player.Player
}

func NewPlayerRepository(players ...player.Player) *PlayerRepository {
	r := &PlayerRepository{rows: make(map[int64]player.Player, len(players))}
	for _, p := range players {
		if p.ID <= 0 {
			r.nextID++
			p.ID = r.nextID
		}
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
		r.rows[p.ID] = p
	}
	return r
}

func (r *PlayerRepository) UpdateByExternalID(_ context.Context, record player.Record, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.findByExternalIDLocked(record.ExternalID)
	if !ok {
		return false, nil
	}
	return true, r.overwriteLocked(current, record, now)
}

func (r *PlayerRepository) UpsertByIdentity(_ context.Context, record player.Record, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.findByIdentityLocked(record.Identity()); ok {
		return false, r.overwriteLocked(current, record, now)
	}

	next := applyRecord(player.Player{CreatedAt: now}, record, now)
	if r.conflictsLocked(0, next) {
		return false, player.ErrDuplicateKey
	}
	r.nextID++
	next.ID = r.nextID
	r.rows[next.ID] = next
	return true, nil
}

func (r *PlayerRepository) UpdateByIdentity(_ context.Context, record player.Record, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.findByIdentityLocked(record.Identity())
	if !ok {
		return false, nil
	}
	return true, r.overwriteLocked(current, record, now)
}

func (r *PlayerRepository) ListIdentities(_ context.Context) ([]player.IdentityRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.IdentityRow, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, player.IdentityRow{
			ID:        p.ID,
			Name:      p.Name,
			Team:      p.Team,
			Position:  string(p.Position),
			UpdatedAt: p.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ApplyIdentityFixes is all-or-nothing, like the postgres transaction.
func (r *PlayerRepository) ApplyIdentityFixes(_ context.Context, fixes []player.IdentityFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	backup := maps.Clone(r.rows)
	for _, fix := range fixes {
		p, ok := r.rows[fix.ID]
		if !ok {
			continue
		}
		p.Name = fix.Identity.Name
		p.Team = fix.Identity.Team
		p.Position = fix.Identity.Position
		if r.conflictsLocked(p.ID, p) {
			r.rows = backup
			return player.ErrDuplicateKey
		}
		r.rows[p.ID] = p
	}
	return nil
}

func (r *PlayerRepository) DeleteByIDs(_ context.Context, ids []int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (r *PlayerRepository) ListByExternalIDs(_ context.Context, externalIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		if id != "" {
			wanted[id] = struct{}{}
		}
	}
	out := make([]player.Player, 0, len(wanted))
	for _, p := range r.rows {
		if _, ok := wanted[p.ExternalID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) List(_ context.Context, filter player.ListFilter) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.rows))
	for _, p := range r.rows {
		if !matchesListing(p.Name, p.Team, string(p.Position), string(filter.Position), filter.Team, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *PlayerRepository) DeleteOutsidePositions(_ context.Context, keep []player.Position) (int, error) {
	if len(keep) == 0 {
		return 0, fmt.Errorf("keep positions are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	allowed := make(map[player.Position]struct{}, len(keep))
	for _, pos := range keep {
		allowed[pos] = struct{}{}
	}
	removed := 0
	for id, p := range r.rows {
		if _, ok := allowed[p.Position]; !ok {
			delete(r.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (r *PlayerRepository) byID() map[int64]player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.rows)
}

func (r *PlayerRepository) overwriteLocked(current player.Player, record player.Record, now time.Time) error {
	next := applyRecord(current, record, now)
	if r.conflictsLocked(current.ID, next) {
		return player.ErrDuplicateKey
	}
	r.rows[current.ID] = next
	return nil
}

// conflictsLocked reports whether p would break a unique index against any
// row other than selfID.
func (r *PlayerRepository) conflictsLocked(selfID int64, p player.Player) bool {
	for id, other := range r.rows {
		if id == selfID {
			continue
		}
		if other.Name == p.Name && other.Team == p.Team && other.Position == p.Position {
			return true
		}
		if p.ExternalID != "" && other.ExternalID == p.ExternalID {
			return true
		}
	}
	return false
}

func (r *PlayerRepository) findByExternalIDLocked(externalID string) (player.Player, bool) {
	if externalID == "" {
		return player.Player{}, false
	}
	for _, p := range r.rows {
		if p.ExternalID == externalID {
			return p, true
		}
	}
	return player.Player{}, false
}

func (r *PlayerRepository) findByIdentityLocked(identity player.Identity) (player.Player, bool) {
	for _, p := range r.rows {
		if p.Name == identity.Name && p.Team == identity.Team && p.Position == identity.Position {
			return p, true
		}
	}
	return player.Player{}, false
}

func applyRecord(p player.Player, record player.Record, now time.Time) player.Player {
	identity := record.Identity()
	p.Name = identity.Name
	p.Team = identity.Team
	p.Position = identity.Position
	if record.ExternalID != "" {
		p.ExternalID = record.ExternalID
	}
	p.Stats = record.Stats
	p.Season = record.Season
	p.LastWeek = record.LastWeek
	p.UpdatedAt = now
	return p
}

func matchesListing(name, team, position, positionFilter, teamFilter, search string) bool {
	if positionFilter != "" {
		if position != positionFilter {
			return false
		}
	} else if !player.Position(position).IsFantasy() {
		return false
	}
	if teamFilter != "" {
		if teamFilter == weekstat.FreeAgentTeam {
			if team != "" && team != weekstat.FreeAgentTeam {
				return false
			}
		} else if team != teamFilter {
			return false
		}
	}
	if search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
		return false
	}
	return true
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
