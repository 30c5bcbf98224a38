package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	seeds := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		seeds[NewSeed()] = true
	}
	if len(seeds) < 2 {
		t.Fatalf("expected varied seeds, got %d distinct values", len(seeds))
	}
}
