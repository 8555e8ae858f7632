// Package mixture implements the product mixture: one Pitman-Yor clustering
// advanced in lock-step with one classifier per feature column.
//
// Cluster slots are indexed densely. Exactly one slot is the designated
// empty slot; adding a value to it seeds a new cluster and a fresh empty
// slot is appended. A slot whose occupancy drops to zero is removed, and
// the last slot moves into its index.
//
// Group lifecycle operations touch every column. Value operations touch
// only the columns a row observes, driven by value.Codec.
//
// A ProductMixture is not safe for concurrent use.
package mixture
