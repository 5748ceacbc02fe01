package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
)

func TestStartUsecaseSpan_WithoutParentIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.ListWeekly", seasonWeekAttrs(2025, 5)...)
	defer span.End()

	if got != ctx || span.IsRecording() {
		t.Fatalf("expected untouched context and non-recording span")
	}
	markSpan(span, fmt.Errorf("boom"))
}

func TestIsClientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid input", err: fmt.Errorf("%w: week", ErrInvalidInput), want: true},
		{name: "not found", err: fmt.Errorf("%w: player", ErrNotFound), want: true},
		{name: "unauthorized", err: ErrUnauthorized, want: true},
		{name: "remote fetch", err: &RemoteFetchError{Range: "A1:B2", Attempts: 3, Err: fmt.Errorf("503")}, want: false},
		{name: "duplicate", err: player.ErrDuplicateKey, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isClientError(tt.err); got != tt.want {
				t.Fatalf("isClientError(%v)=%v want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSeasonWeekAttrs(t *testing.T) {
	t.Parallel()

	if got := len(seasonWeekAttrs(2025, 0)); got != 1 {
		t.Fatalf("season-only attrs should have one entry, got %d", got)
	}
	if got := len(seasonWeekAttrs(2025, 5)); got != 2 {
		t.Fatalf("weekly attrs should have two entries, got %d", got)
	}
}
