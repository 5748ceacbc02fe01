package player

import (
	"fmt"
	"time"
)

// Position is the upper-cased roster slot reported by providers.
type Position string

const (
	PositionQuarterback  Position = "QB"
	PositionRunningBack  Position = "RB"
	PositionWideReceiver Position = "WR"
	PositionTightEnd     Position = "TE"
	PositionKicker       Position = "K"
)

// FantasyPositions is the set of positions kept after a catalog sync.
var FantasyPositions = map[Position]struct{}{
	PositionQuarterback:  {},
	PositionRunningBack:  {},
	PositionWideReceiver: {},
	PositionTightEnd:     {},
	PositionKicker:       {},
}

func FantasyPositionList() []Position {
	return []Position{
		PositionQuarterback,
		PositionRunningBack,
		PositionWideReceiver,
		PositionTightEnd,
		PositionKicker,
	}
}

func (p Position) IsFantasy() bool {
	_, ok := FantasyPositions[p]
	return ok
}

// StatLine is the season-to-date counter bag stored on a player row.
// It is replaced wholesale on every upsert.
type StatLine struct {
	PassAttempts  float64 `json:"passAttempts"`
	Completions   float64 `json:"completions"`
	PassYds       float64 `json:"passYds"`
	PassTDs       float64 `json:"passTDs"`
	Interceptions float64 `json:"interceptions"`
	RushAtt       float64 `json:"rushAtt"`
	RushYds       float64 `json:"rushYds"`
	RushTDs       float64 `json:"rushTDs"`
	Fumbles       float64 `json:"fumbles"`
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

// Player is a stored player row.
type Player struct {
	ID         int64
	ExternalID string
	Name       string
	Team       string
	Position   Position
	Stats      StatLine
	Season     int
	LastWeek   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Player) Identity() Identity {
	return Identity{Name: p.Name, Team: p.Team, Position: p.Position}
}

// Record is an incoming write for the upsert engine. Identity fields may be
// raw; Normalized returns the canonical copy.
type Record struct {
	ExternalID string
	Name       string
	Team       string
	Position   string
	Stats      StatLine
	Season     int
	LastWeek   int
}

func (r Record) Normalized() Record {
	id := NormalizeIdentity(r.Name, r.Team, r.Position)
	r.ExternalID = NormalizeExternalID(r.ExternalID)
	r.Name = id.Name
	r.Team = id.Team
	r.Position = string(id.Position)
	return r
}

func (r Record) Identity() Identity {
	return NormalizeIdentity(r.Name, r.Team, r.Position)
}

func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if r.Season < 0 {
		return fmt.Errorf("season must be >= 0")
	}
	if r.LastWeek < 0 {
		return fmt.Errorf("last week must be >= 0")
	}
	return nil
}

// IdentityRow is the projection loaded by the dedupe sweep.
type IdentityRow struct {
	ID        int64
	Name      string
	Team      string
	Position  string
	UpdatedAt time.Time
}

// IdentityFix rewrites one row's identity fields to canonical values.
type IdentityFix struct {
	ID       int64
	Identity Identity
}

// ListFilter narrows player listings.
type ListFilter struct {
	Position Position
	Team     string
	Search   string
	Limit    int
	Offset   int
}
