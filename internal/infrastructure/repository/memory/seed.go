package memory

import (
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
)

// SeedSeason is the season the demo rows belong to.
const SeedSeason = 2025

// SeedPlayers returns a small roster for the in-memory backend so listings
// are not empty before the first catalog sync.
func SeedPlayers() []player.Player {
	updated := time.Date(SeedSeason, 9, 1, 0, 0, 0, 0, time.UTC)
	return []player.Player{
		{ExternalID: "4046", Name: "Patrick Mahomes", Team: "KC", Position: player.PositionQuarterback, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "4984", Name: "Josh Allen", Team: "BUF", Position: player.PositionQuarterback, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "4034", Name: "Christian McCaffrey", Team: "SF", Position: player.PositionRunningBack, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "9509", Name: "Bijan Robinson", Team: "ATL", Position: player.PositionRunningBack, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "6794", Name: "Justin Jefferson", Team: "MIN", Position: player.PositionWideReceiver, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "7564", Name: "Ja'Marr Chase", Team: "CIN", Position: player.PositionWideReceiver, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "4217", Name: "George Kittle", Team: "SF", Position: player.PositionTightEnd, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
		{ExternalID: "4195", Name: "Harrison Butker", Team: "KC", Position: player.PositionKicker, Season: SeedSeason, CreatedAt: updated, UpdatedAt: updated},
	}
}
