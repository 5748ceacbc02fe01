package postgres

import (
	"database/sql"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/domain/weekstat"
)

// weekStatCounterColumns is the column order used by inserts, updates and
// season sums. It must match weekStatCountersModel.
var weekStatCounterColumns = []string{
	"pass_att",
	"pass_cmp",
	"pass_yds",
	"pass_td",
	"interceptions",
	"rush_att",
	"rush_yds",
	"rush_td",
	"rec",
	"rec_yds",
	"rec_td",
	"two_pt",
	"fgm_0_19",
	"fgm_20_29",
	"fgm_30_39",
	"fgm_40_49",
	"fgm_50_59",
	"fgm_60_plus",
	"xpm",
	"fg_miss",
	"xp_miss",
}

type weekStatCountersModel struct {
	PassAtt       float64 `db:"pass_att"`
	PassCmp       float64 `db:"pass_cmp"`
	PassYds       float64 `db:"pass_yds"`
	PassTD        float64 `db:"pass_td"`
	Interceptions float64 `db:"interceptions"`
	RushAtt       float64 `db:"rush_att"`
	RushYds       float64 `db:"rush_yds"`
	RushTD        float64 `db:"rush_td"`
	Rec           float64 `db:"rec"`
	RecYds        float64 `db:"rec_yds"`
	RecTD         float64 `db:"rec_td"`
	TwoPt         float64 `db:"two_pt"`
	FGM0To19      float64 `db:"fgm_0_19"`
	FGM20To29     float64 `db:"fgm_20_29"`
	FGM30To39     float64 `db:"fgm_30_39"`
	FGM40To49     float64 `db:"fgm_40_49"`
	FGM50To59     float64 `db:"fgm_50_59"`
	FGM60Plus     float64 `db:"fgm_60_plus"`
	XPM           float64 `db:"xpm"`
	FGMiss        float64 `db:"fg_miss"`
	XPMiss        float64 `db:"xp_miss"`
}

type weekStatRowModel struct {
	ID         int64     `db:"id"`
	PlayerID   int64     `db:"player_id"`
	ExternalID string    `db:"external_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	Team       string    `db:"team"`
	Position   string    `db:"position"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	weekStatCountersModel
}

type seasonStatRowModel struct {
	PlayerID   int64     `db:"player_id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Team       string    `db:"team"`
	Position   string    `db:"position"`
	Weeks      int       `db:"weeks"`
	UpdatedAt  time.Time `db:"updated_at"`
	weekStatCountersModel
}

type statsPageTotalModel struct {
	Total       int          `db:"total"`
	LastUpdated sql.NullTime `db:"last_updated"`
}

type latestWeekStatModel struct {
	Season    int       `db:"season"`
	Week      int       `db:"week"`
	UpdatedAt time.Time `db:"updated_at"`
}

// counterValues returns the counters in weekStatCounterColumns order.
func counterValues(c weekstat.Counters) []any {
	return []any{
		c.PassAtt, c.PassCmp, c.PassYds, c.PassTD, c.Interceptions,
		c.RushAtt, c.RushYds, c.RushTD,
		c.Rec, c.RecYds, c.RecTD, c.TwoPt,
		c.FGM0To19, c.FGM20To29, c.FGM30To39, c.FGM40To49, c.FGM50To59, c.FGM60Plus,
		c.XPM, c.FGMiss, c.XPMiss,
	}
}

func (m weekStatCountersModel) toDomain() weekstat.Counters {
	return weekstat.Counters{
		PassAtt:       m.PassAtt,
		PassCmp:       m.PassCmp,
		PassYds:       m.PassYds,
		PassTD:        m.PassTD,
		Interceptions: m.Interceptions,
		RushAtt:       m.RushAtt,
		RushYds:       m.RushYds,
		RushTD:        m.RushTD,
		Rec:           m.Rec,
		RecYds:        m.RecYds,
		RecTD:         m.RecTD,
		TwoPt:         m.TwoPt,
		FGM0To19:      m.FGM0To19,
		FGM20To29:     m.FGM20To29,
		FGM30To39:     m.FGM30To39,
		FGM40To49:     m.FGM40To49,
		FGM50To59:     m.FGM50To59,
		FGM60Plus:     m.FGM60Plus,
		XPM:           m.XPM,
		FGMiss:        m.FGMiss,
		XPMiss:        m.XPMiss,
	}
}
