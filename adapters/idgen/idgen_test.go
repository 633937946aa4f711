package idgen_test

import (
	"testing"

	"github.com/artpar/modhost/adapters/idgen"
	"github.com/google/uuid"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.New()
		parsed, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("ID %q is not a UUID: %v", id, err)
		}
		if parsed.Version() != 4 {
			t.Errorf("version = %d, want 4", parsed.Version())
		}
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("evt_")

	for _, want := range []string{"evt_1", "evt_2", "evt_3"} {
		if got := g.New(); got != want {
			t.Errorf("New() = %s, want %s", got, want)
		}
	}
}
