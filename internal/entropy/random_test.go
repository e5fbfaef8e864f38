package entropy

import "testing"

func TestSeed_NonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		if s := Seed(); s <= 0 {
			t.Fatalf("seed = %d, want positive", s)
		}
	}
}

func TestSeedOr(t *testing.T) {
	if got := SeedOr(42); got != 42 {
		t.Errorf("SeedOr(42) = %d", got)
	}
	if got := SeedOr(0); got == 0 {
		t.Error("SeedOr(0) returned zero")
	}
}
