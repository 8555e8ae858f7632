package value

import (
	"fmt"
	"slices"
	"strings"
)

// Sparsity is the encoding mode of an Observed descriptor.
type Sparsity uint8

const (
	All Sparsity = iota
	Dense
	Sparse
	None
)

// String returns the mode name.
func (s Sparsity) String() string {
	switch s {
	case All:
		return "ALL"
	case Dense:
		return "DENSE"
	case Sparse:
		return "SPARSE"
	case None:
		return "NONE"
	default:
		return fmt.Sprintf("Sparsity(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sparsity) MarshalText() ([]byte, error) {
	if s > None {
		return nil, fmt.Errorf("invalid sparsity %d", uint8(s))
	}
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sparsity) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "ALL", "":
		*s = All
	case "DENSE":
		*s = Dense
	case "SPARSE":
		*s = Sparse
	case "NONE":
		*s = None
	default:
		return fmt.Errorf("unknown sparsity %q", string(b))
	}
	return nil
}

// Observed describes which columns of a row are present.
//
// Dense is only populated in Dense mode and Sparse only in Sparse mode.
type Observed struct {
	Sparsity Sparsity `json:"sparsity"`
	Dense    []bool   `json:"dense,omitempty"`
	Sparse   []uint32 `json:"sparse,omitempty"`
}

// Reset sets the mode and clears index data, keeping capacity.
func (o *Observed) Reset(s Sparsity) {
	o.Sparsity = s
	o.Dense = o.Dense[:0]
	o.Sparse = o.Sparse[:0]
}

// Equal reports whether both descriptors have the same mode and index data.
func (o *Observed) Equal(other *Observed) bool {
	return o.Sparsity == other.Sparsity &&
		slices.Equal(o.Dense, other.Dense) &&
		slices.Equal(o.Sparse, other.Sparse)
}

// Clone returns a deep copy.
func (o *Observed) Clone() Observed {
	return Observed{
		Sparsity: o.Sparsity,
		Dense:    slices.Clone(o.Dense),
		Sparse:   slices.Clone(o.Sparse),
	}
}

// Row is one heterogeneous, partially-observed record.
//
// Booleans, Counts and Reals hold only the observed values, in column order.
type Row struct {
	Observed Observed  `json:"observed"`
	Booleans []bool    `json:"booleans,omitempty"`
	Counts   []uint32  `json:"counts,omitempty"`
	Reals    []float32 `json:"reals,omitempty"`
}

// Reset sets the observed mode and clears all data, keeping capacity.
func (r *Row) Reset(s Sparsity) {
	r.Observed.Reset(s)
	r.Booleans = r.Booleans[:0]
	r.Counts = r.Counts[:0]
	r.Reals = r.Reals[:0]
}

// Equal reports whether two rows are identical, including their encoding.
func (r *Row) Equal(other *Row) bool {
	return r.Observed.Equal(&other.Observed) &&
		slices.Equal(r.Booleans, other.Booleans) &&
		slices.Equal(r.Counts, other.Counts) &&
		slices.Equal(r.Reals, other.Reals)
}

// Clone returns a deep copy.
func (r *Row) Clone() Row {
	return Row{
		Observed: r.Observed.Clone(),
		Booleans: slices.Clone(r.Booleans),
		Counts:   slices.Clone(r.Counts),
		Reals:    slices.Clone(r.Reals),
	}
}

// PackedSize returns the number of packed values across all types.
func (r *Row) PackedSize() int {
	return len(r.Booleans) + len(r.Counts) + len(r.Reals)
}

func resizeBools(b []bool, n int) []bool {
	if cap(b) < n {
		return make([]bool, n)
	}
	b = b[:n]
	clear(b)
	return b
}
