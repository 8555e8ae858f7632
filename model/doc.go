// Package model defines the closed set of feature kinds used throughout mixgo.
//
// # Kinds
//
// Every feature column is modeled by exactly one kind:
//
//   - BetaBernoulli (bb): boolean columns
//   - DirichletDiscrete (dd): bounded categorical counts
//   - DirichletProcessDiscrete (dpd): unbounded categorical counts
//   - GammaPoisson (gp): unbounded integer counts
//   - NormalInverseChiSq (nich): real-valued columns
//
// # Ordering
//
// Rows, dense bitmasks, splitters and group dumps all agree on one column
// order: boolean kinds first, then count kinds by variant, then real kinds.
// The order is an explicit value (DefaultOrder) carried by every Schema
// rather than a convention baked into each traversal.
package model
