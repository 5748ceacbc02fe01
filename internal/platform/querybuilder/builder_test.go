package querybuilder

import (
	"testing"
	"time"
)

func TestBuilders_RenderStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		build     func() (string, []any, error)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "weekly listing",
			build: func() (string, []any, error) {
				return Select("ws.player_id", "p.name").
					From("week_stats ws JOIN players p ON p.id = ws.player_id").
					Where(Eq("ws.season", 2025), Eq("ws.week", 5), In("p.position", []any{"QB", "RB"})).
					OrderBy("p.name", "p.id").
					Limit(50).
					ToSQL()
			},
			wantQuery: "SELECT ws.player_id, p.name FROM week_stats ws JOIN players p ON p.id = ws.player_id " +
				"WHERE ws.season = $1 AND ws.week = $2 AND p.position IN ($3, $4) ORDER BY p.name, p.id LIMIT 50",
			wantArgs: []any{2025, 5, "QB", "RB"},
		},
		{
			name: "season totals with search",
			build: func() (string, []any, error) {
				return Select("p.id", "SUM(ws.pass_yds) AS pass_yds").
					From("week_stats ws JOIN players p ON p.id = ws.player_id").
					Where(Eq("ws.season", 2024), ILike("p.name", " o'dell_50% "), ILike("p.team", "")).
					GroupBy("p.id").
					OrderBy("pass_yds DESC").
					Limit(50).
					Offset(100).
					ToSQL()
			},
			wantQuery: "SELECT p.id, SUM(ws.pass_yds) AS pass_yds FROM week_stats ws JOIN players p ON p.id = ws.player_id " +
				"WHERE ws.season = $1 AND p.name ILIKE $2 AND 1=1 GROUP BY p.id ORDER BY pass_yds DESC LIMIT 50 OFFSET 100",
			wantArgs: []any{2024, `%o'dell\_50\%%`},
		},
		{
			name: "free agent expression",
			build: func() (string, []any, error) {
				return Select("id").From("players").
					Where(Expr("team IN ('', ?)", "FA"), In("id", nil)).
					ToSQL()
			},
			wantQuery: "SELECT id FROM players WHERE team IN ('', $1) AND 1=0",
			wantArgs:  []any{"FA"},
		},
		{
			name: "multi row insert",
			build: func() (string, []any, error) {
				return InsertInto("players").
					Columns("external_id", "name").
					Values("4046", "Patrick Mahomes").
					Values("4984", "Josh Allen").
					Suffix("RETURNING id").
					ToSQL()
			},
			wantQuery: "INSERT INTO players (external_id, name) VALUES ($1, $2), ($3, $4) RETURNING id",
			wantArgs:  []any{"4046", "Patrick Mahomes", "4984", "Josh Allen"},
		},
		{
			name: "update with expression",
			build: func() (string, []any, error) {
				return Update("players").
					Set("name", "Josh Allen").
					SetExpr("external_id", "COALESCE(?, external_id)", "4984").
					Where(Eq("id", int64(7))).
					ToSQL()
			},
			wantQuery: "UPDATE players SET name = $1, external_id = COALESCE($2, external_id) WHERE id = $3",
			wantArgs:  []any{"Josh Allen", "4984", int64(7)},
		},
		{
			name: "prune non fantasy positions",
			build: func() (string, []any, error) {
				return DeleteFrom("players").Where(NotIn("position", []any{"QB", "K"})).ToSQL()
			},
			wantQuery: "DELETE FROM players WHERE position NOT IN ($1, $2)",
			wantArgs:  []any{"QB", "K"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args, err := tt.build()
			if err != nil {
				t.Fatalf("build query: %v", err)
			}
			if query != tt.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tt.wantQuery, query)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args mismatch: want %#v got %#v", tt.wantArgs, args)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Fatalf("arg %d mismatch: want %#v got %#v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestBuilders_RejectIncompleteStatements(t *testing.T) {
	t.Parallel()

	if _, _, err := DeleteFrom("players").ToSQL(); err == nil {
		t.Fatalf("expected unfiltered delete to be rejected")
	}
	if _, _, err := Select().From("players").ToSQL(); err == nil {
		t.Fatalf("expected select without columns to be rejected")
	}
	if _, _, err := Update("players").ToSQL(); err == nil {
		t.Fatalf("expected update without sets to be rejected")
	}
	if _, _, err := InsertInto("players").Columns("name").Values("A", "B").ToSQL(); err == nil {
		t.Fatalf("expected mismatched row to be rejected")
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		ID        int64  `db:"-"`
		Name      string `db:"name"`
		Team      string `db:"team,omitempty"`
		Note      string
		UpdatedAt time.Time `db:"updated_at"`
		hidden    string    `db:"hidden"`
	}
	now := time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)

	query, args, err := InsertModel("players", &row{ID: 1, Name: "A", Team: "KC", Note: "x", UpdatedAt: now, hidden: "y"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	wantQuery := "INSERT INTO players (name, team, updated_at) VALUES ($1, $2, $3) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "A" || args[2] != now {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("players", (*row)(nil), ""); err == nil {
		t.Fatalf("expected nil model to be rejected")
	}
}
