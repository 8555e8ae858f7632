package value

import (
	"github.com/hupe1980/mixgo/model"
)

// Reader consumes the observed values of a row.
//
// The codec asks for one handler per kind block, so implementations resolve
// the kind once per block rather than once per value. A nil handler skips
// the block's values.
type Reader interface {
	ReadBooleans(k model.Kind) func(col int, v bool)
	ReadCounts(k model.Kind) func(col int, v uint32)
	ReadReals(k model.Kind) func(col int, v float32)
}

// Writer produces the values of a row's observed columns.
//
// A nil handler stores zero values for the block.
type Writer interface {
	WriteBooleans(k model.Kind) func(col int) bool
	WriteCounts(k model.Kind) func(col int) uint32
	WriteReals(k model.Kind) func(col int) float32
}

// Funcs adapts plain callbacks to Reader. Nil callbacks are skipped.
type Funcs struct {
	Bool  func(k model.Kind, col int, v bool)
	Count func(k model.Kind, col int, v uint32)
	Real  func(k model.Kind, col int, v float32)
}

func (f Funcs) ReadBooleans(k model.Kind) func(int, bool) {
	if f.Bool == nil {
		return nil
	}
	return func(col int, v bool) { f.Bool(k, col, v) }
}

func (f Funcs) ReadCounts(k model.Kind) func(int, uint32) {
	if f.Count == nil {
		return nil
	}
	return func(col int, v uint32) { f.Count(k, col, v) }
}

func (f Funcs) ReadReals(k model.Kind) func(int, float32) {
	if f.Real == nil {
		return nil
	}
	return func(col int, v float32) { f.Real(k, col, v) }
}

// WriteFuncs adapts plain callbacks to Writer. Nil callbacks produce zeros.
type WriteFuncs struct {
	Bool  func(k model.Kind, col int) bool
	Count func(k model.Kind, col int) uint32
	Real  func(k model.Kind, col int) float32
}

func (f WriteFuncs) WriteBooleans(k model.Kind) func(int) bool {
	if f.Bool == nil {
		return nil
	}
	return func(col int) bool { return f.Bool(k, col) }
}

func (f WriteFuncs) WriteCounts(k model.Kind) func(int) uint32 {
	if f.Count == nil {
		return nil
	}
	return func(col int) uint32 { return f.Count(k, col) }
}

func (f WriteFuncs) WriteReals(k model.Kind) func(int) float32 {
	if f.Real == nil {
		return nil
	}
	return func(col int) float32 { return f.Real(k, col) }
}

// Codec walks rows column by column in the kind order of a model schema.
//
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	ms     model.Schema
	schema Schema
	level  CheckLevel
}

// NewCodec creates a codec for rows laid out by ms.
func NewCodec(ms model.Schema, level CheckLevel) *Codec {
	return &Codec{ms: ms, schema: SchemaOf(ms), level: level}
}

// Schema returns the value schema derived from the model schema.
func (c *Codec) Schema() Schema { return c.schema }

// ModelSchema returns the model schema.
func (c *Codec) ModelSchema() model.Schema { return c.ms }

// Level returns the check level.
func (c *Codec) Level() CheckLevel { return c.level }

// Read invokes r once per observed column, in kind order.
func (c *Codec) Read(r Reader, row *Row) error {
	if err := c.schema.check(row, c.level); err != nil {
		return err
	}
	switch row.Observed.Sparsity {
	case All:
		return c.readAll(r, row)
	case Dense:
		return c.readDense(r, row)
	case Sparse:
		return c.readSparse(r, row)
	case None:
		return nil
	default:
		return violation("unknown sparsity %d", uint8(row.Observed.Sparsity))
	}
}

func (c *Codec) readAll(r Reader, row *Row) error {
	var pos [3]int
	var err error
	for _, k := range c.ms.Order() {
		n := c.ms.Size(k)
		if n == 0 {
			continue
		}
		switch k.DataType() {
		case model.Boolean:
			err = readAll(r.ReadBooleans(k), row.Booleans, &pos[model.Boolean], n)
		case model.Count:
			err = readAll(r.ReadCounts(k), row.Counts, &pos[model.Count], n)
		case model.Real:
			err = readAll(r.ReadReals(k), row.Reals, &pos[model.Real], n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) readDense(r Reader, row *Row) error {
	var pos [3]int
	var err error
	dense := row.Observed.Dense
	cursor := 0
	for _, k := range c.ms.Order() {
		n := c.ms.Size(k)
		if n == 0 {
			continue
		}
		if cursor+n > len(dense) {
			return violation("dense bitmask too short: %d < %d", len(dense), cursor+n)
		}
		mask := dense[cursor : cursor+n]
		cursor += n
		switch k.DataType() {
		case model.Boolean:
			err = readDense(r.ReadBooleans(k), row.Booleans, &pos[model.Boolean], mask)
		case model.Count:
			err = readDense(r.ReadCounts(k), row.Counts, &pos[model.Count], mask)
		case model.Real:
			err = readDense(r.ReadReals(k), row.Reals, &pos[model.Real], mask)
		}
		if err != nil {
			return err
		}
	}
	if cursor != len(dense) {
		return violation("dense cursor stopped at %d of %d", cursor, len(dense))
	}
	return nil
}

func (c *Codec) readSparse(r Reader, row *Row) error {
	var pos [3]int
	var err error
	var block BlockIterator
	sparse := row.Observed.Sparse
	i := 0
	for _, k := range c.ms.Order() {
		block.Next(c.ms.Size(k))
		if i == len(sparse) || !block.Ok(sparse[i]) {
			continue
		}
		switch k.DataType() {
		case model.Boolean:
			err = readSparse(r.ReadBooleans(k), row.Booleans, &pos[model.Boolean], sparse, &i, &block)
		case model.Count:
			err = readSparse(r.ReadCounts(k), row.Counts, &pos[model.Count], sparse, &i, &block)
		case model.Real:
			err = readSparse(r.ReadReals(k), row.Reals, &pos[model.Real], sparse, &i, &block)
		}
		if err != nil {
			return err
		}
	}
	if i != len(sparse) {
		return violation("sparse index %d beyond %d columns", sparse[i], block.End())
	}
	return nil
}

func readAll[T any](fn func(int, T), packed []T, pos *int, n int) error {
	if *pos+n > len(packed) {
		return violation("packed values exhausted at %d", len(packed))
	}
	if fn != nil {
		for i, v := range packed[*pos : *pos+n] {
			fn(i, v)
		}
	}
	*pos += n
	return nil
}

func readDense[T any](fn func(int, T), packed []T, pos *int, mask []bool) error {
	for i, observed := range mask {
		if !observed {
			continue
		}
		if *pos >= len(packed) {
			return violation("packed values exhausted at %d", len(packed))
		}
		if fn != nil {
			fn(i, packed[*pos])
		}
		*pos++
	}
	return nil
}

func readSparse[T any](fn func(int, T), packed []T, pos *int, sparse []uint32, i *int, block *BlockIterator) error {
	for ; *i < len(sparse) && block.Ok(sparse[*i]); *i++ {
		if *pos >= len(packed) {
			return violation("packed values exhausted at %d", len(packed))
		}
		if fn != nil {
			fn(block.Get(sparse[*i]), packed[*pos])
		}
		*pos++
	}
	return nil
}

// Write fills row's packed values for its observed columns from w.
//
// The row's Observed descriptor selects the columns and is left unchanged.
func (c *Codec) Write(w Writer, row *Row) error {
	row.Booleans = row.Booleans[:0]
	row.Counts = row.Counts[:0]
	row.Reals = row.Reals[:0]

	switch row.Observed.Sparsity {
	case All:
		for _, k := range c.ms.Order() {
			n := c.ms.Size(k)
			if n == 0 {
				continue
			}
			c.writeBlock(w, k, row, func(yield func(int)) {
				for i := range n {
					yield(i)
				}
			})
		}
	case Dense:
		dense := row.Observed.Dense
		cursor := 0
		for _, k := range c.ms.Order() {
			n := c.ms.Size(k)
			if n == 0 {
				continue
			}
			if cursor+n > len(dense) {
				return violation("dense bitmask too short: %d < %d", len(dense), cursor+n)
			}
			mask := dense[cursor : cursor+n]
			cursor += n
			c.writeBlock(w, k, row, func(yield func(int)) {
				for i, observed := range mask {
					if observed {
						yield(i)
					}
				}
			})
		}
		if cursor != len(dense) {
			return violation("dense cursor stopped at %d of %d", cursor, len(dense))
		}
	case Sparse:
		sparse := row.Observed.Sparse
		var block BlockIterator
		i := 0
		for _, k := range c.ms.Order() {
			block.Next(c.ms.Size(k))
			c.writeBlock(w, k, row, func(yield func(int)) {
				for ; i < len(sparse) && block.Ok(sparse[i]); i++ {
					yield(block.Get(sparse[i]))
				}
			})
		}
		if i != len(sparse) {
			return violation("sparse index %d beyond %d columns", sparse[i], block.End())
		}
	case None:
	default:
		return violation("unknown sparsity %d", uint8(row.Observed.Sparsity))
	}

	if c.level >= CheckStrict {
		return c.schema.Validate(row)
	}
	return nil
}

// writeBlock appends one value per column yielded by cols.
func (c *Codec) writeBlock(w Writer, k model.Kind, row *Row, cols func(yield func(int))) {
	switch k.DataType() {
	case model.Boolean:
		row.Booleans = writeValues(w.WriteBooleans(k), row.Booleans, cols)
	case model.Count:
		row.Counts = writeValues(w.WriteCounts(k), row.Counts, cols)
	case model.Real:
		row.Reals = writeValues(w.WriteReals(k), row.Reals, cols)
	}
}

func writeValues[T any](fn func(int) T, dst []T, cols func(yield func(int))) []T {
	cols(func(col int) {
		var v T
		if fn != nil {
			v = fn(col)
		}
		dst = append(dst, v)
	})
	return dst
}
