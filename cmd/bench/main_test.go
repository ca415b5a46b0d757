package main

import (
	"math/rand"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := validate(1_000, 1.1, 1, 80); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	bad := map[string]struct {
		keys  int
		s, v  float64
		reads int
	}{
		"zero keys":     {0, 1.1, 1, 80},
		"negative keys": {-5, 1.1, 1, 80},
		"flat zipf":     {1_000, 1, 1, 80},
		"small v":       {1_000, 1.1, 0.5, 80},
		"reads > 100":   {1_000, 1.1, 1, 101},
	}
	for name, tc := range bad {
		if err := validate(tc.keys, tc.s, tc.v, tc.reads); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}

// Every accepted combination must yield a usable Zipf generator.
func TestValidate_AcceptedFlagsBuildZipf(t *testing.T) {
	t.Parallel()

	for _, keys := range []int{1, 2, 1_000} {
		if err := validate(keys, 1.01, 1, 50); err != nil {
			t.Fatal(err)
		}
		z := rand.NewZipf(rand.New(rand.NewSource(1)), 1.01, 1, uint64(keys-1))
		if z == nil {
			t.Fatalf("keys=%d: nil Zipf", keys)
		}
		if got := z.Uint64(); got > uint64(keys-1) {
			t.Fatalf("keys=%d: draw %d out of range", keys, got)
		}
	}
}
