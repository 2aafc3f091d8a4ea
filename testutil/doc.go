// Package testutil provides testing utilities for kclust.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG and generators for labelled, clustered
// feature vectors with values in [0, 1].
//
//	rng := testutil.NewRNG(seed)
//	vecs, labels := rng.LabelledBlobs(200, 16, 4, 0.05)
//	m := testutil.Matrix(t, vecs)
package testutil
