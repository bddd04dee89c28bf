// Package testutil provides deterministic data generators and a reference
// nearest-neighbor scan for tests and benchmarks.
//
//	rng := testutil.NewRNG(4711)
//	data := rng.UniformVectors(1000, 64)
//	want := testutil.ExactNearest(query, data)
package testutil
