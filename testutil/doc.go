// Package testutil provides testing utilities for multikey.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG and generators for random operation sequences
// used by the randomized invariant tests.
//
// # Random Operations
//
//	rng := testutil.NewRNG(seed)
//	for _, op := range rng.Ops(1000, []string{"name", "ssn"}, 50) {
//	    // apply op to a store, then check invariants
//	}
package testutil
