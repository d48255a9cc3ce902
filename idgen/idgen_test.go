package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
	if id[14] != '7' {
		t.Fatalf("UUIDv7: version nibble = %q, want '7'", id[14])
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("cyc_", UUIDv7())()
	if !strings.HasPrefix(id, "cyc_") {
		t.Fatalf("Prefixed: expected prefix 'cyc_', got %q", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "cyc_")); err != nil {
		t.Fatalf("Prefixed: inner id is not a UUID: %v", err)
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("c")
	for _, want := range []string{"c1", "c2", "c3"} {
		if got := gen(); got != want {
			t.Fatalf("Sequence: got %q, want %q", got, want)
		}
	}
}
