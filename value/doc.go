// Package value implements the partially-observed heterogeneous row format
// consumed by product mixtures.
//
// A Row packs only its observed values, one slice per physical type
// (booleans, counts, reals). Which columns are present is described by an
// Observed descriptor in one of four sparsity modes:
//
//   - All: every column is present; no index data is stored
//   - Dense: a bitmask with one entry per column
//   - Sparse: a strictly increasing list of column indices
//   - None: no column is present
//
// Schema (the value schema) bounds the number of columns per physical type.
// Codec walks a row column by column in the global kind order of a
// model.Schema, handing each observed value to a Reader, or asking a Writer
// for each value to store. Splitter partitions a row's columns across
// several part rows and joins them back.
//
// Validation is controlled by CheckLevel. CheckStrict performs the full
// consistency check on every read, write, split and join. Lower levels skip
// the expensive parts; validation is an internal consistency check, not
// input sanitization.
package value
