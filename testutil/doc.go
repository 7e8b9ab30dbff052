// Package testutil provides testing utilities for spatialgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets, computing exact
// neighbor sets by brute force, and measuring recall of approximate backends.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.Points(1000, geom.NewBox(0, 0, 1000, 1000))
//	hot := rng.ClusteredPoints(1000, world, 8, 15)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceWithin(pts, center, radius)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, got)
package testutil
