package weekstat

import (
	"fmt"
	"time"
)

// Outcome classifies a single week stat upsert.
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Counters is the fixed per-week counter schema.
type Counters struct {
	PassAtt       float64 `json:"passAtt"`
	PassCmp       float64 `json:"passCmp"`
	PassYds       float64 `json:"passYds"`
	PassTD        float64 `json:"passTD"`
	Interceptions float64 `json:"interceptions"`
	RushAtt       float64 `json:"rushAtt"`
	RushYds       float64 `json:"rushYds"`
	RushTD        float64 `json:"rushTD"`
	Rec           float64 `json:"rec"`
	RecYds        float64 `json:"recYds"`
	RecTD         float64 `json:"recTD"`
	TwoPt         float64 `json:"twoPt"`
	FGM0To19      float64 `json:"fgm_0_19"`
	FGM20To29     float64 `json:"fgm_20_29"`
	FGM30To39     float64 `json:"fgm_30_39"`
	FGM40To49     float64 `json:"fgm_40_49"`
	FGM50To59     float64 `json:"fgm_50_59"`
	FGM60Plus     float64 `json:"fgm_60_plus"`
	XPM           float64 `json:"xpm"`
	FGMiss        float64 `json:"fgMiss"`
	XPMiss        float64 `json:"xpMiss"`
}

// Add returns the field-wise sum, used for season totals.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		PassAtt:       c.PassAtt + o.PassAtt,
		PassCmp:       c.PassCmp + o.PassCmp,
		PassYds:       c.PassYds + o.PassYds,
		PassTD:        c.PassTD + o.PassTD,
		Interceptions: c.Interceptions + o.Interceptions,
		RushAtt:       c.RushAtt + o.RushAtt,
		RushYds:       c.RushYds + o.RushYds,
		RushTD:        c.RushTD + o.RushTD,
		Rec:           c.Rec + o.Rec,
		RecYds:        c.RecYds + o.RecYds,
		RecTD:         c.RecTD + o.RecTD,
		TwoPt:         c.TwoPt + o.TwoPt,
		FGM0To19:      c.FGM0To19 + o.FGM0To19,
		FGM20To29:     c.FGM20To29 + o.FGM20To29,
		FGM30To39:     c.FGM30To39 + o.FGM30To39,
		FGM40To49:     c.FGM40To49 + o.FGM40To49,
		FGM50To59:     c.FGM50To59 + o.FGM50To59,
		FGM60Plus:     c.FGM60Plus + o.FGM60Plus,
		XPM:           c.XPM + o.XPM,
		FGMiss:        c.FGMiss + o.FGMiss,
		XPMiss:        c.XPMiss + o.XPMiss,
	}
}

// WeekStat is one player's counters for one season week.
type WeekStat struct {
	ID         int64
	PlayerID   int64
	ExternalID string
	Season     int
	Week       int
	Team       string
	Position   string
	Counters   Counters
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s WeekStat) Validate() error {
	if s.PlayerID <= 0 {
		return fmt.Errorf("week stat player id is required")
	}
	if s.Season <= 0 {
		return fmt.Errorf("week stat season must be > 0")
	}
	if s.Week <= 0 {
		return fmt.Errorf("week stat week must be > 0")
	}
	return nil
}

// SameContent reports whether two rows carry identical payloads. Timestamps
// and ids are ignored.
func (s WeekStat) SameContent(o WeekStat) bool {
	return s.Counters == o.Counters &&
		s.Team == o.Team &&
		s.Position == o.Position &&
		s.ExternalID == o.ExternalID
}

// Row is a week stat joined with the owning player's display name.
type Row struct {
	WeekStat
	Name string
}

// SeasonRow aggregates a player's counters over a season.
type SeasonRow struct {
	PlayerID   int64
	ExternalID string
	Name       string
	Team       string
	Position   string
	Season     int
	Weeks      int
	Counters   Counters
	UpdatedAt  time.Time
}

// FreeAgentTeam matches players without a team in listings.
const FreeAgentTeam = "FA"

// Query narrows week stat listings. An empty Position means every fantasy
// position; Team FreeAgentTeam matches rows with an empty team too. Rows are
// ordered by player name.
type Query struct {
	Season   int
	Week     int
	Position string
	Team     string
	Search   string
	Limit    int
	Offset   int
}

type WeeklyPage struct {
	Items       []Row
	Total       int
	LastUpdated time.Time
}

type SeasonPage struct {
	Items       []SeasonRow
	Total       int
	LastUpdated time.Time
}

// LatestUpdate describes the most recently written week stat.
type LatestUpdate struct {
	Season    int
	Week      int
	UpdatedAt time.Time
}
