package testutil

import (
	"math/rand/v2"
	"sync"

	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/value"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Rand returns a new unsynchronized generator seeded from r.
// Use it where an operation takes an explicit *rand.Rand.
func (r *RNG) Rand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewPCG(r.rand.Uint64(), r.rand.Uint64()))
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Mask returns a random presence mask of length n where each entry is
// missing with probability missingRate.
func (r *RNG) Mask(n int, missingRate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maskLocked(n, missingRate)
}

func (r *RNG) maskLocked(n int, missingRate float64) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = r.rand.Float64() >= missingRate
	}
	return mask
}

// Row generates a random row of schema s encoded with the given sparsity.
//
// Each column is missing with probability missingRate (ignored for All and
// None). Count values are drawn from [0, maxCount).
func (r *RNG) Row(s value.Schema, sparsity value.Sparsity, missingRate float64, maxCount int) value.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mask []bool
	switch sparsity {
	case value.All:
		mask = r.maskLocked(s.TotalSize(), 0)
	case value.None:
		mask = make([]bool, s.TotalSize())
	default:
		mask = r.maskLocked(s.TotalSize(), missingRate)
	}

	row := value.Row{Observed: value.Observed{Sparsity: sparsity}}
	for i, observed := range mask {
		if !observed {
			continue
		}
		switch s.DataTypeOf(i) {
		case model.Boolean:
			row.Booleans = append(row.Booleans, r.rand.IntN(2) == 1)
		case model.Count:
			row.Counts = append(row.Counts, uint32(r.rand.IntN(maxCount)))
		case model.Real:
			row.Reals = append(row.Reals, float32(r.rand.NormFloat64()))
		}
		if sparsity == value.Sparse {
			row.Observed.Sparse = append(row.Observed.Sparse, uint32(i))
		}
	}
	if sparsity == value.Dense {
		row.Observed.Dense = mask
	}
	return row
}

// Rows generates n random rows; see Row.
func (r *RNG) Rows(n int, s value.Schema, sparsity value.Sparsity, missingRate float64, maxCount int) []value.Row {
	rows := make([]value.Row, n)
	for i := range rows {
		rows[i] = r.Row(s, sparsity, missingRate, maxCount)
	}
	return rows
}

// PartIDs returns a random assignment of total columns to partCount parts.
func (r *RNG) PartIDs(total, partCount int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint32, total)
	for i := range ids {
		ids[i] = uint32(r.rand.IntN(partCount))
	}
	return ids
}

// Sparsities lists every sparsity mode, for table-driven tests.
var Sparsities = []value.Sparsity{value.All, value.Dense, value.Sparse, value.None}
