package rediscache

import (
	"testing"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

func TestSnapshotEncoding(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2025, 10, 3, 14, 30, 0, 0, time.UTC)
	payload, err := encodeSnapshot(usecase.RangeSnapshot{
		Rows:      [][]string{{"Player", "Team"}, {"Ja'Marr Chase", "CIN"}},
		FetchedAt: fetchedAt,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Rows) != 2 || got.Rows[1][0] != "Ja'Marr Chase" {
		t.Fatalf("unexpected rows: %v", got.Rows)
	}
	if !got.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("unexpected fetched at: %s", got.FetchedAt)
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := decodeSnapshot([]byte("not-json")); err == nil {
		t.Fatalf("expected decode error")
	}
	got, err := decodeSnapshot([]byte(`{"fetchedAt":"2025-10-03T14:30:00Z"}`))
	if err != nil {
		t.Fatalf("decode empty rows: %v", err)
	}
	if got.Rows == nil {
		t.Fatalf("expected empty rows slice, got nil")
	}
}

func TestRedisKeyIsPrefixed(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(nil, time.Hour)
	if got := store.redisKey("main:Sheet1!A1:B2"); got != "bigb:sheets:snapshot:main:Sheet1!A1:B2" {
		t.Fatalf("unexpected redis key: %s", got)
	}
}
