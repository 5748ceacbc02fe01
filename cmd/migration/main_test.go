package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "default", args: nil, want: 1},
		{name: "explicit", args: []string{" 3 "}, want: 3},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "garbage", args: []string{"two"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSteps(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tt.args)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("parseSteps(%v)=%d,%v want %d", tt.args, got, err, tt.want)
			}
		})
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	t.Parallel()

	if v, err := parseVersion("1760000100"); err != nil || v != 1760000100 {
		t.Fatalf("unexpected version: %d %v", v, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if v, err := parseTarget("1760000000"); err != nil || v != 1760000000 {
		t.Fatalf("unexpected target: %d %v", v, err)
	}
	if _, err := parseTarget("-5"); err == nil {
		t.Fatalf("expected error for negative target")
	}
}

func TestWeekStatsMigration_PlayerIDIsPlainColumn(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("..", "..", "db", "migrations", "*week_stats.up.sql"))
	if err != nil || len(files) == 0 {
		t.Fatalf("week_stats migration not found: %v", err)
	}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read %s: %v", file, err)
		}
		ddl := strings.ToUpper(string(raw))
		// Player sweeps delete rows; week stats must survive them.
		if strings.Contains(ddl, "REFERENCES") || strings.Contains(ddl, "ON DELETE") {
			t.Fatalf("%s ties week_stats rows to players rows", file)
		}
		if !strings.Contains(ddl, "PLAYER_ID BIGINT NOT NULL,") {
			t.Fatalf("%s lost the player_id column", file)
		}
	}
}
