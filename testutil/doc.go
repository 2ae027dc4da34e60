// Package testutil provides testing utilities for paircount.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded point generators and an all-pairs reference counter.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.Uniform(1000, 0, 10)          // uniform in [0, 10)^3
//	pts := rng.Clustered(1000, 5, 0.2, 0, 10) // Gaussian blobs
//
// # Reference Counts
//
//	counts, sums := testutil.BruteForce(a, b, edges)
package testutil
