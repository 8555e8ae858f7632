package value

import (
	"fmt"

	"github.com/hupe1980/mixgo/model"
)

// DefaultSparseThreshold is the observed fraction below which
// NormalizeSmall prefers the Sparse encoding.
const DefaultSparseThreshold = 0.1

// Schema bounds the number of columns of each physical type.
//
// A Schema is built once (from a model definition or an exemplar row) and
// is read-only afterwards.
type Schema struct {
	BooleansSize int
	CountsSize   int
	RealsSize    int
}

// SchemaOf derives the value schema of a model schema.
func SchemaOf(ms model.Schema) Schema {
	return Schema{
		BooleansSize: ms.DataTypeSize(model.Boolean),
		CountsSize:   ms.DataTypeSize(model.Count),
		RealsSize:    ms.DataTypeSize(model.Real),
	}
}

// Load sets the sizes from the packed lengths of an exemplar row.
func (s *Schema) Load(row *Row) {
	s.BooleansSize = len(row.Booleans)
	s.CountsSize = len(row.Counts)
	s.RealsSize = len(row.Reals)
}

// Dump returns an exemplar All-mode row of zero values.
func (s Schema) Dump() Row {
	return Row{
		Observed: Observed{Sparsity: All},
		Booleans: make([]bool, s.BooleansSize),
		Counts:   make([]uint32, s.CountsSize),
		Reals:    make([]float32, s.RealsSize),
	}
}

// TotalSize returns the total number of columns.
func (s Schema) TotalSize() int {
	return s.BooleansSize + s.CountsSize + s.RealsSize
}

// Size returns the number of columns of a physical type.
func (s Schema) Size(dt model.DataType) int {
	switch dt {
	case model.Boolean:
		return s.BooleansSize
	case model.Count:
		return s.CountsSize
	case model.Real:
		return s.RealsSize
	default:
		return 0
	}
}

// Base returns the global index of the first column of a physical type.
func (s Schema) Base(dt model.DataType) int {
	switch dt {
	case model.Boolean:
		return 0
	case model.Count:
		return s.BooleansSize
	default:
		return s.BooleansSize + s.CountsSize
	}
}

// DataTypeOf returns the physical type of global column i.
func (s Schema) DataTypeOf(i int) model.DataType {
	switch {
	case i < s.BooleansSize:
		return model.Boolean
	case i < s.BooleansSize+s.CountsSize:
		return model.Count
	default:
		return model.Real
	}
}

func (s *Schema) grow(dt model.DataType) {
	switch dt {
	case model.Boolean:
		s.BooleansSize++
	case model.Count:
		s.CountsSize++
	case model.Real:
		s.RealsSize++
	}
}

// Add accumulates the sizes of other into s.
func (s *Schema) Add(other Schema) {
	s.BooleansSize += other.BooleansSize
	s.CountsSize += other.CountsSize
	s.RealsSize += other.RealsSize
}

// Clear zeroes all sizes.
func (s *Schema) Clear() { *s = Schema{} }

// Equal reports whether two schemas have identical sizes.
func (s Schema) Equal(other Schema) bool { return s == other }

// String returns "{booleans, counts, reals}".
func (s Schema) String() string {
	return fmt.Sprintf("{%d, %d, %d}", s.BooleansSize, s.CountsSize, s.RealsSize)
}

// ForEachDataType invokes fn once per physical type with its column count.
func (s Schema) ForEachDataType(fn func(dt model.DataType, size int)) {
	for _, dt := range model.DataTypes {
		fn(dt, s.Size(dt))
	}
}

// ObservedCount returns the number of observed columns.
func (s Schema) ObservedCount(o *Observed) int {
	switch o.Sparsity {
	case All:
		return s.TotalSize()
	case Dense:
		n := 0
		for _, b := range o.Dense {
			if b {
				n++
			}
		}
		return n
	case Sparse:
		return len(o.Sparse)
	default:
		return 0
	}
}

// SparseIsValid reports whether the sparse index list is strictly
// increasing and below TotalSize.
func (s Schema) SparseIsValid(o *Observed) bool {
	sparse := o.Sparse
	if len(sparse) == 0 {
		return true
	}
	for i := 1; i < len(sparse); i++ {
		if sparse[i-1] >= sparse[i] {
			return false
		}
	}
	return int(sparse[len(sparse)-1]) < s.TotalSize()
}

// ValidateObserved checks the mode-specific shape of an Observed descriptor.
func (s Schema) ValidateObserved(o *Observed) error {
	switch o.Sparsity {
	case All, None:
		if len(o.Dense) != 0 {
			return &ErrShapeMismatch{Field: "observed.dense", Want: 0, Got: len(o.Dense)}
		}
		if len(o.Sparse) != 0 {
			return &ErrShapeMismatch{Field: "observed.sparse", Want: 0, Got: len(o.Sparse)}
		}
	case Dense:
		if len(o.Dense) != s.TotalSize() {
			return &ErrShapeMismatch{Field: "observed.dense", Want: s.TotalSize(), Got: len(o.Dense)}
		}
		if len(o.Sparse) != 0 {
			return &ErrShapeMismatch{Field: "observed.sparse", Want: 0, Got: len(o.Sparse)}
		}
	case Sparse:
		if len(o.Dense) != 0 {
			return &ErrShapeMismatch{Field: "observed.dense", Want: 0, Got: len(o.Dense)}
		}
		if !s.SparseIsValid(o) {
			return violation("invalid sparse: %v, total_size = %d", o.Sparse, s.TotalSize())
		}
	default:
		return violation("unknown sparsity %d", uint8(o.Sparsity))
	}
	return nil
}

// IsValidObserved is the boolean form of ValidateObserved.
func (s Schema) IsValidObserved(o *Observed) bool {
	return s.ValidateObserved(o) == nil
}

// Validate checks a row against the schema: the observed shape, the packed
// sizes, and that each physical type packs exactly as many values as it has
// observed columns.
func (s Schema) Validate(row *Row) error {
	if err := s.ValidateObserved(&row.Observed); err != nil {
		return err
	}
	if err := s.validatePacked(row); err != nil {
		return err
	}
	switch row.Observed.Sparsity {
	case Dense, Sparse:
		counts := s.observedPerType(&row.Observed)
		for _, dt := range model.DataTypes {
			if got := packedLen(row, dt); got != counts[dt] {
				return &ErrShapeMismatch{Field: dt.String() + "s", Want: counts[dt], Got: got}
			}
		}
	}
	return nil
}

// IsValid is the boolean form of Validate.
func (s Schema) IsValid(row *Row) bool {
	return s.Validate(row) == nil
}

// validateShape performs the subset of Validate that is linear in the
// observed descriptor: lengths, sparse ordering and the total packed count.
func (s Schema) validateShape(row *Row) error {
	o := &row.Observed
	switch o.Sparsity {
	case All, None:
		if len(o.Dense) != 0 || len(o.Sparse) != 0 {
			return violation("%s row carries index data", o.Sparsity)
		}
	case Dense:
		if len(o.Dense) != s.TotalSize() {
			return &ErrShapeMismatch{Field: "observed.dense", Want: s.TotalSize(), Got: len(o.Dense)}
		}
	case Sparse:
		if !s.SparseIsValid(o) {
			return violation("invalid sparse: %v, total_size = %d", o.Sparse, s.TotalSize())
		}
	default:
		return violation("unknown sparsity %d", uint8(o.Sparsity))
	}
	if err := s.validatePacked(row); err != nil {
		return err
	}
	switch o.Sparsity {
	case Dense, Sparse:
		if want, got := s.ObservedCount(o), row.PackedSize(); got != want {
			return &ErrShapeMismatch{Field: "packed values", Want: want, Got: got}
		}
	}
	return nil
}

func (s Schema) validatePacked(row *Row) error {
	switch row.Observed.Sparsity {
	case All:
		for _, dt := range model.DataTypes {
			if got := packedLen(row, dt); got != s.Size(dt) {
				return &ErrShapeMismatch{Field: dt.String() + "s", Want: s.Size(dt), Got: got}
			}
		}
	case None:
		for _, dt := range model.DataTypes {
			if got := packedLen(row, dt); got != 0 {
				return &ErrShapeMismatch{Field: dt.String() + "s", Want: 0, Got: got}
			}
		}
	default:
		for _, dt := range model.DataTypes {
			if got := packedLen(row, dt); got > s.Size(dt) {
				return &ErrShapeMismatch{Field: dt.String() + "s", Want: s.Size(dt), Got: got, AtMost: true}
			}
		}
	}
	return nil
}

// check validates row at the given level.
func (s Schema) check(row *Row, level CheckLevel) error {
	switch {
	case level >= CheckStrict:
		return s.Validate(row)
	case level == CheckBasic:
		return s.validateShape(row)
	default:
		return nil
	}
}

func (s Schema) observedPerType(o *Observed) [3]int {
	var counts [3]int
	switch o.Sparsity {
	case All:
		for _, dt := range model.DataTypes {
			counts[dt] = s.Size(dt)
		}
	case Dense:
		for i, b := range o.Dense {
			if b {
				counts[s.DataTypeOf(i)]++
			}
		}
	case Sparse:
		for _, i := range o.Sparse {
			counts[s.DataTypeOf(int(i))]++
		}
	}
	return counts
}

// NormalizeSmall rewrites o into its most compact equivalent encoding.
//
// Empty sets become None. Sets observed below threshold (as a fraction of
// TotalSize) become Sparse; a threshold of 1 or more selects Sparse for
// every non-empty set. Otherwise full sets become All and the rest Dense.
// The set of observed columns is unchanged, so packed values stay valid.
func (s Schema) NormalizeSmall(o *Observed, threshold float32) {
	size := s.TotalSize()
	count := s.ObservedCount(o)

	target := Dense
	switch {
	case count == 0:
		target = None
	case threshold >= 1 || float32(count) < threshold*float32(size):
		target = Sparse
	case count == size:
		target = All
	}
	s.convert(o, target)
}

// NormalizeDense rewrites o into the Dense encoding.
func (s Schema) NormalizeDense(o *Observed) {
	s.convert(o, Dense)
}

func (s Schema) convert(o *Observed, target Sparsity) {
	if o.Sparsity == target {
		return
	}
	size := s.TotalSize()
	switch target {
	case All, None:
		o.Reset(target)
	case Dense:
		dense := resizeBools(o.Dense, size)
		switch o.Sparsity {
		case All:
			for i := range dense {
				dense[i] = true
			}
		case Sparse:
			for _, i := range o.Sparse {
				dense[i] = true
			}
		}
		o.Sparse = o.Sparse[:0]
		o.Dense = dense
		o.Sparsity = Dense
	case Sparse:
		sparse := o.Sparse[:0]
		switch o.Sparsity {
		case All:
			for i := range size {
				sparse = append(sparse, uint32(i))
			}
		case Dense:
			for i, b := range o.Dense {
				if b {
					sparse = append(sparse, uint32(i))
				}
			}
		}
		o.Dense = o.Dense[:0]
		o.Sparse = sparse
		o.Sparsity = Sparse
	}
}

func packedLen(row *Row, dt model.DataType) int {
	switch dt {
	case model.Boolean:
		return len(row.Booleans)
	case model.Count:
		return len(row.Counts)
	default:
		return len(row.Reals)
	}
}
