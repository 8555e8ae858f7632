package model

import (
	"fmt"
	"slices"
)

// Schema describes how many feature columns belong to each kind and the
// order in which kind blocks are laid out.
//
// Schema is immutable after construction and safe to share.
type Schema struct {
	order []Kind
	sizes [kindCount]int
}

// NewSchema creates a schema with DefaultOrder.
// Kinds missing from sizes have zero columns.
func NewSchema(sizes map[Kind]int) (Schema, error) {
	s := Schema{order: DefaultOrder}
	for k, n := range sizes {
		if !k.Valid() {
			return Schema{}, fmt.Errorf("invalid kind %d", uint8(k))
		}
		if n < 0 {
			return Schema{}, fmt.Errorf("negative column count for %s: %d", k, n)
		}
		s.sizes[k] = n
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// It is intended for tests and static initialization.
func MustSchema(sizes map[Kind]int) Schema {
	s, err := NewSchema(sizes)
	if err != nil {
		panic(err)
	}
	return s
}

// WithOrder returns a copy of s using the given kind order.
func (s Schema) WithOrder(order []Kind) (Schema, error) {
	if err := ValidateOrder(order); err != nil {
		return Schema{}, err
	}
	s.order = slices.Clone(order)
	return s, nil
}

// Order returns the kind order. The returned slice must not be modified.
func (s Schema) Order() []Kind {
	if s.order == nil {
		return DefaultOrder
	}
	return s.order
}

// Size returns the number of columns of kind k.
func (s Schema) Size(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return s.sizes[k]
}

// DataTypeSize returns the number of columns packed as dt.
func (s Schema) DataTypeSize(dt DataType) int {
	n := 0
	for _, k := range s.Order() {
		if k.DataType() == dt {
			n += s.sizes[k]
		}
	}
	return n
}

// Total returns the total number of columns.
func (s Schema) Total() int {
	n := 0
	for _, size := range s.sizes {
		n += size
	}
	return n
}

// Offset returns the global index of the first column of kind k.
func (s Schema) Offset(k Kind) int {
	n := 0
	for _, o := range s.Order() {
		if o == k {
			return n
		}
		n += s.sizes[o]
	}
	return n
}

// Equal reports whether two schemas have the same sizes and order.
func (s Schema) Equal(other Schema) bool {
	return s.sizes == other.sizes && slices.Equal(s.Order(), other.Order())
}

// String returns a compact representation such as "{bb:0 dd:2 ...}".
func (s Schema) String() string {
	b := make([]byte, 0, 48)
	b = append(b, '{')
	for i, k := range s.Order() {
		if i > 0 {
			b = append(b, ' ')
		}
		b = fmt.Appendf(b, "%s:%d", k, s.sizes[k])
	}
	return string(append(b, '}'))
}
