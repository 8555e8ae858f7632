package model

import (
	"fmt"
	"strings"
)

// DataType is the physical value type a column is packed as.
type DataType uint8

const (
	// Boolean columns are packed into Row.Booleans.
	Boolean DataType = iota
	// Count columns are packed into Row.Counts.
	Count
	// Real columns are packed into Row.Reals.
	Real
)

// DataTypes lists the physical types in packing order.
var DataTypes = [...]DataType{Boolean, Count, Real}

// String returns the data type name.
func (dt DataType) String() string {
	switch dt {
	case Boolean:
		return "boolean"
	case Count:
		return "count"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(dt))
	}
}

// Kind identifies a feature model variant.
type Kind uint8

const (
	BetaBernoulli Kind = iota
	DirichletDiscrete
	DirichletProcessDiscrete
	GammaPoisson
	NormalInverseChiSq

	kindCount
)

// KindCount is the number of kinds in the closed enumeration.
const KindCount = int(kindCount)

// DefaultOrder is the global column ordering used by rows, codecs,
// splitters and dumps.
var DefaultOrder = []Kind{
	BetaBernoulli,
	DirichletDiscrete,
	DirichletProcessDiscrete,
	GammaPoisson,
	NormalInverseChiSq,
}

var kindNames = [kindCount]string{"bb", "dd", "dpd", "gp", "nich"}

// String returns the short kind name (e.g. "gp").
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a member of the closed enumeration.
func (k Kind) Valid() bool { return k < kindCount }

// DataType returns the physical type values of this kind are packed as.
func (k Kind) DataType() DataType {
	switch k {
	case BetaBernoulli:
		return Boolean
	case NormalInverseChiSq:
		return Real
	default:
		return Count
	}
}

// ParseKind parses a short kind name.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// ValidateOrder checks that order names every kind exactly once and is
// data-type-major (all boolean kinds, then count kinds, then real kinds).
func ValidateOrder(order []Kind) error {
	if len(order) != KindCount {
		return fmt.Errorf("kind order must list %d kinds, got %d", KindCount, len(order))
	}
	var seen [kindCount]bool
	last := Boolean
	for i, k := range order {
		if !k.Valid() {
			return fmt.Errorf("kind order[%d]: invalid kind %d", i, uint8(k))
		}
		if seen[k] {
			return fmt.Errorf("kind order[%d]: duplicate kind %s", i, k)
		}
		seen[k] = true
		dt := k.DataType()
		if dt < last {
			return fmt.Errorf("kind order[%d]: %s (%s) after %s kinds", i, k, dt, last)
		}
		last = dt
	}
	return nil
}
