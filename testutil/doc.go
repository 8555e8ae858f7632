// Package testutil provides testing utilities for mixgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, lockable random source and generators for
// partially-observed rows in every sparsity mode.
//
// # Random Rows
//
//	rng := testutil.NewRNG(seed)
//	row := rng.Row(schema, value.Sparse, 0.5, 4)
package testutil
