package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator("run")
	a, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	b, _ := gen.NewID()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if !strings.HasPrefix(a, "run_") {
		t.Fatalf("expected prefix, got %s", a)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(a, "run_")); err != nil {
		t.Fatalf("expected uuid suffix: %v", err)
	}

	plain, _ := NewUUIDGenerator("").NewID()
	if _, err := uuid.Parse(plain); err != nil {
		t.Fatalf("expected bare uuid: %v", err)
	}
}
