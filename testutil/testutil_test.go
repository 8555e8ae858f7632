package testutil

import (
	"testing"

	"github.com/hupe1980/mixgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowIsValid(t *testing.T) {
	rng := NewRNG(4711)
	s := value.Schema{BooleansSize: 3, CountsSize: 4, RealsSize: 5}

	for _, sparsity := range Sparsities {
		t.Run(sparsity.String(), func(t *testing.T) {
			for range 20 {
				row := rng.Row(s, sparsity, 0.5, 8)
				require.NoError(t, s.Validate(&row))
				assert.Equal(t, sparsity, row.Observed.Sparsity)
			}
		})
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(7)
	a := rng.Intn(1 << 30)
	rng.Reset()
	assert.Equal(t, a, rng.Intn(1<<30))
	assert.Equal(t, uint64(7), rng.Seed())
}

func TestPartIDs(t *testing.T) {
	rng := NewRNG(1)
	ids := rng.PartIDs(100, 3)
	assert.Len(t, ids, 100)
	for _, id := range ids {
		assert.Less(t, id, uint32(3))
	}
}
