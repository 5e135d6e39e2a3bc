// Package testutil provides testing utilities for isodata.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG and generators for clustered datasets
// with known ground truth.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	v := rng.UniformVector(8, -1, 1)
//
// # Clustered Datasets
//
//	centers := [][]float64{{0, 0}, {10, 10}}
//	data, labels := rng.GaussianBlobs(centers, 50, 0.5)
package testutil
