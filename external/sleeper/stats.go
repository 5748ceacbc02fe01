package sleeper

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

// statKeys lists the Sleeper keys summed into each counter. Keys not listed
// here are ignored.
var statKeys = struct {
	passAttempts, passCompletions, passYards, passTDs, interceptions []string
	rushAttempts, rushYards, rushTDs                                 []string
	recTargets, recReceptions, recYards, recTDs                      []string
	fumbles, twoPt                                                   []string
	fgm0To19, fgm20To29, fgm30To39, fgm40To49, fgm50To59, fgm60Plus  []string
	xpm, fgMiss, xpMiss                                              []string
}{
	passAttempts:    []string{"pass_att", "passAttempts", "passing_attempts"},
	passCompletions: []string{"pass_cmp", "completions", "passing_completions"},
	passYards:       []string{"pass_yd", "pass_yds", "passing_yards"},
	passTDs:         []string{"pass_td", "passing_tds"},
	interceptions:   []string{"pass_int", "interceptions"},
	rushAttempts:    []string{"rush_att", "rushing_att"},
	rushYards:       []string{"rush_yd", "rush_yds", "rushing_yards"},
	rushTDs:         []string{"rush_td", "rushing_tds"},
	recTargets:      []string{"rec_tgt", "targets"},
	recReceptions:   []string{"rec", "receiving_receptions"},
	recYards:        []string{"rec_yd", "receiving_yards"},
	recTDs:          []string{"rec_td", "receiving_tds"},
	fumbles:         []string{"fum_lost", "fumbles_lost", "fumbles"},
	twoPt: []string{
		"two_pt", "twopt", "rush_2pt", "rec_2pt", "pass_2pt", "two_pt_conv",
		"two_ptm", "two_pt_conv_rush", "two_pt_conv_rec", "two_pt_conv_pass",
	},
	fgm0To19:  []string{"fgm_0_19", "field_goals_made_0_19", "fgm_19"},
	fgm20To29: []string{"fgm_20_29", "field_goals_made_20_29"},
	fgm30To39: []string{"fgm_30_39", "field_goals_made_30_39"},
	fgm40To49: []string{"fgm_40_49", "field_goals_made_40_49"},
	fgm50To59: []string{"fgm_50_59", "field_goals_made_50_59"},
	fgm60Plus: []string{"fgm_60_", "fgm_60_99", "field_goals_made_60_plus"},
	xpm:       []string{"xpm", "xp", "xp_made", "extra_points_made"},
	fgMiss:    []string{"fgmiss", "fg_miss", "field_goals_missed"},
	xpMiss:    []string{"xpmiss", "xp_miss", "extra_points_missed"},
}

type weeklyStatRow struct {
	PlayerID string
	Team     string
	Stats    map[string]any
}

// FetchWeeklyStats joins the week's stat lines with the player map and keeps
// rows for known players at fantasy positions.
func (c *Client) FetchWeeklyStats(ctx context.Context, season, week int) ([]usecase.ProviderStatRow, error) {
	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("season and week must be greater than zero")
	}

	meta, err := c.fetchPlayerMeta(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.fetchWeeklyRaw(ctx, season, week)
	if err != nil {
		return nil, err
	}

	rows := make([]usecase.ProviderStatRow, 0, len(raw))
	for _, item := range decodeWeeklyRows(raw) {
		info, ok := meta[item.PlayerID]
		if !ok {
			continue
		}
		position := info.position()
		if !position.IsFantasy() {
			continue
		}
		name := player.NormalizeName(info.displayName())
		if name == "" {
			name = "Unknown"
		}
		team := info.Team
		if strings.TrimSpace(team) == "" {
			team = item.Team
		}
		rows = append(rows, usecase.ProviderStatRow{
			ProviderPlayerID: item.PlayerID,
			Season:           season,
			Week:             week,
			Name:             name,
			Team:             player.NormalizeTeam(team),
			Position:         string(position),
			Stats:            mapStats(item.Stats),
		})
	}
	return rows, nil
}

// fetchWeeklyRaw tries the query-string URL first and the path URL second;
// Sleeper has served the week under both shapes.
func (c *Client) fetchWeeklyRaw(ctx context.Context, season, week int) (any, error) {
	primary := fmt.Sprintf("/stats/nfl/%d/%d?type=regular", season, week)
	fallback := fmt.Sprintf("/stats/nfl/regular/%d/%d", season, week)

	var raw any
	err := c.getJSON(ctx, primary, &raw)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil || crerr.Is(err, usecase.ErrDependencyUnavailable) {
		return nil, err
	}
	c.logger.WarnContext(ctx, "sleeper weekly stats primary url failed, trying fallback",
		"season", season,
		"week", week,
		"error", err,
	)

	raw = nil
	if fallbackErr := c.getJSON(ctx, fallback, &raw); fallbackErr != nil {
		return nil, crerr.Wrapf(fallbackErr, "fetch sleeper weekly stats season=%d week=%d", season, week)
	}
	return raw, nil
}

// decodeWeeklyRows accepts either a list of rows carrying player_id or an
// object keyed by player id. Output is sorted by player id.
func decodeWeeklyRows(raw any) []weeklyStatRow {
	var out []weeklyStatRow
	switch payload := raw.(type) {
	case []any:
		out = make([]weeklyStatRow, 0, len(payload))
		for _, entry := range payload {
			row, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			pid := firstString(row, "player_id", "playerId", "id")
			if pid == "" {
				continue
			}
			out = append(out, weeklyStatRow{
				PlayerID: pid,
				Team:     firstString(row, "team"),
				Stats:    statsObject(row),
			})
		}
	case map[string]any:
		out = make([]weeklyStatRow, 0, len(payload))
		for pid, entry := range payload {
			row, ok := entry.(map[string]any)
			if !ok || strings.TrimSpace(pid) == "" {
				continue
			}
			out = append(out, weeklyStatRow{
				PlayerID: strings.TrimSpace(pid),
				Team:     firstString(row, "team"),
				Stats:    statsObject(row),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// statsObject returns the nested stat bag when present, else the row itself.
func statsObject(row map[string]any) map[string]any {
	for _, key := range []string{"stats", "stat", "player_stats", "playerStats"} {
		if nested, ok := row[key].(map[string]any); ok {
			return nested
		}
	}
	return row
}

func mapStats(stats map[string]any) usecase.ProviderStats {
	sum := func(keys []string) float64 {
		total := 0.0
		for _, key := range keys {
			total += number(stats[key])
		}
		return total
	}
	k := statKeys
	return usecase.ProviderStats{
		PassAttempts:    sum(k.passAttempts),
		PassCompletions: sum(k.passCompletions),
		PassYards:       sum(k.passYards),
		PassTDs:         sum(k.passTDs),
		Interceptions:   sum(k.interceptions),
		RushAttempts:    sum(k.rushAttempts),
		RushYards:       sum(k.rushYards),
		RushTDs:         sum(k.rushTDs),
		RecTargets:      sum(k.recTargets),
		RecReceptions:   sum(k.recReceptions),
		RecYards:        sum(k.recYards),
		RecTDs:          sum(k.recTDs),
		Fumbles:         sum(k.fumbles),
		TwoPt:           sum(k.twoPt),
		FGM0To19:        sum(k.fgm0To19),
		FGM20To29:       sum(k.fgm20To29),
		FGM30To39:       sum(k.fgm30To39),
		FGM40To49:       sum(k.fgm40To49),
		FGM50To59:       sum(k.fgm50To59),
		FGM60Plus:       sum(k.fgm60Plus),
		XPM:             sum(k.xpm),
		FGMiss:          sum(k.fgMiss),
		XPMiss:          sum(k.xpMiss),
	}
}

func number(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func firstString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := row[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}
