package value_test

import (
	"testing"

	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/testutil"
	"github.com/hupe1980/mixgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaScenario(t *testing.T) {
	s := value.Schema{CountsSize: 2, RealsSize: 1}
	row := value.Row{
		Observed: value.Observed{Sparsity: value.All},
		Counts:   []uint32{3, 0},
		Reals:    []float32{1.5},
	}
	require.NoError(t, s.Validate(&row))
	assert.Equal(t, 3, s.ObservedCount(&row.Observed))

	s.NormalizeSmall(&row.Observed, 1.0)
	assert.Equal(t, value.Sparse, row.Observed.Sparsity)
	assert.Equal(t, []uint32{0, 1, 2}, row.Observed.Sparse)
	require.NoError(t, s.Validate(&row))

	s.NormalizeDense(&row.Observed)
	assert.Equal(t, value.Dense, row.Observed.Sparsity)
	assert.Equal(t, []bool{true, true, true}, row.Observed.Dense)
	assert.Empty(t, row.Observed.Sparse)
	require.NoError(t, s.Validate(&row))
}

func TestSchemaLoadDump(t *testing.T) {
	s := value.Schema{BooleansSize: 1, CountsSize: 2, RealsSize: 3}
	row := s.Dump()
	assert.Equal(t, value.All, row.Observed.Sparsity)
	require.NoError(t, s.Validate(&row))

	var loaded value.Schema
	loaded.Load(&row)
	assert.True(t, s.Equal(loaded))
	assert.Equal(t, "{1, 2, 3}", loaded.String())

	loaded.Add(s)
	assert.Equal(t, 12, loaded.TotalSize())
	loaded.Clear()
	assert.Equal(t, 0, loaded.TotalSize())
}

func TestSchemaOf(t *testing.T) {
	ms := model.MustSchema(map[model.Kind]int{
		model.BetaBernoulli:            1,
		model.DirichletDiscrete:        2,
		model.DirichletProcessDiscrete: 3,
		model.GammaPoisson:             4,
		model.NormalInverseChiSq:       5,
	})
	s := value.SchemaOf(ms)
	assert.Equal(t, value.Schema{BooleansSize: 1, CountsSize: 9, RealsSize: 5}, s)

	var seen []model.DataType
	total := 0
	s.ForEachDataType(func(dt model.DataType, size int) {
		seen = append(seen, dt)
		total += size
	})
	assert.Equal(t, []model.DataType{model.Boolean, model.Count, model.Real}, seen)
	assert.Equal(t, s.TotalSize(), total)
}

func TestSchemaValidate(t *testing.T) {
	s := value.Schema{BooleansSize: 1, CountsSize: 2, RealsSize: 1}

	tests := []struct {
		name string
		row  value.Row
		ok   bool
	}{
		{"all", value.Row{Booleans: []bool{true}, Counts: []uint32{1, 2}, Reals: []float32{1}}, true},
		{"all short", value.Row{Booleans: []bool{true}, Counts: []uint32{1}, Reals: []float32{1}}, false},
		{"all with dense", value.Row{Observed: value.Observed{Dense: []bool{true}}, Booleans: []bool{true}, Counts: []uint32{1, 2}, Reals: []float32{1}}, false},
		{"none", value.Row{Observed: value.Observed{Sparsity: value.None}}, true},
		{"none with values", value.Row{Observed: value.Observed{Sparsity: value.None}, Counts: []uint32{1}}, false},
		{"dense", value.Row{Observed: value.Observed{Sparsity: value.Dense, Dense: []bool{false, true, false, true}}, Counts: []uint32{5}, Reals: []float32{2}}, true},
		{"dense wrong length", value.Row{Observed: value.Observed{Sparsity: value.Dense, Dense: []bool{false, true}}, Counts: []uint32{5}}, false},
		{"dense wrong type", value.Row{Observed: value.Observed{Sparsity: value.Dense, Dense: []bool{false, true, false, false}}, Reals: []float32{2}}, false},
		{"sparse", value.Row{Observed: value.Observed{Sparsity: value.Sparse, Sparse: []uint32{0, 3}}, Booleans: []bool{false}, Reals: []float32{2}}, true},
		{"sparse unordered", value.Row{Observed: value.Observed{Sparsity: value.Sparse, Sparse: []uint32{3, 0}}, Booleans: []bool{false}, Reals: []float32{2}}, false},
		{"sparse duplicate", value.Row{Observed: value.Observed{Sparsity: value.Sparse, Sparse: []uint32{1, 1}}, Counts: []uint32{1, 1}}, false},
		{"sparse out of range", value.Row{Observed: value.Observed{Sparsity: value.Sparse, Sparse: []uint32{4}}, Reals: []float32{2}}, false},
		{"sparse count mismatch", value.Row{Observed: value.Observed{Sparsity: value.Sparse, Sparse: []uint32{1}}, Counts: []uint32{1, 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(&tt.row)
			assert.Equal(t, tt.ok, err == nil, "err = %v", err)
			assert.Equal(t, tt.ok, s.IsValid(&tt.row))
			if err != nil {
				assert.ErrorIs(t, err, value.ErrSchemaViolation)
			}
		})
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(42)
	s := value.Schema{BooleansSize: 4, CountsSize: 7, RealsSize: 5}

	for _, sparsity := range testutil.Sparsities {
		for _, missing := range []float64{0, 0.3, 0.9, 1} {
			row := rng.Row(s, sparsity, missing, 5)
			s.NormalizeDense(&row.Observed)
			require.NoError(t, s.Validate(&row))
			want := row.Observed.Clone()

			for _, threshold := range []float32{0, value.DefaultSparseThreshold, 0.5, 1} {
				o := want.Clone()
				s.NormalizeSmall(&o, threshold)
				require.True(t, s.IsValidObserved(&o))
				assert.Equal(t, s.ObservedCount(&want), s.ObservedCount(&o))

				if threshold >= 1 && s.ObservedCount(&o) > 0 {
					assert.Equal(t, value.Sparse, o.Sparsity)
				}
				if threshold == 0 {
					assert.NotEqual(t, value.Sparse, o.Sparsity)
				}

				s.NormalizeDense(&o)
				assert.True(t, want.Equal(&o), "threshold %v from %s", threshold, sparsity)
			}
		}
	}
}

func TestNormalizeSmallModes(t *testing.T) {
	s := value.Schema{CountsSize: 20}

	o := value.Observed{Sparsity: value.Dense, Dense: make([]bool, 20)}
	s.NormalizeSmall(&o, value.DefaultSparseThreshold)
	assert.Equal(t, value.None, o.Sparsity)

	o = value.Observed{Sparsity: value.Dense, Dense: make([]bool, 20)}
	o.Dense[7] = true
	s.NormalizeSmall(&o, value.DefaultSparseThreshold)
	assert.Equal(t, value.Sparse, o.Sparsity)
	assert.Equal(t, []uint32{7}, o.Sparse)

	o = value.Observed{Sparsity: value.Sparse, Sparse: []uint32{1, 2, 3, 4, 5}}
	s.NormalizeSmall(&o, value.DefaultSparseThreshold)
	assert.Equal(t, value.Dense, o.Sparsity)
	assert.Equal(t, 5, s.ObservedCount(&o))

	o = value.Observed{Sparsity: value.Dense, Dense: make([]bool, 20)}
	for i := range o.Dense {
		o.Dense[i] = true
	}
	s.NormalizeSmall(&o, value.DefaultSparseThreshold)
	assert.Equal(t, value.All, o.Sparsity)
	assert.Empty(t, o.Dense)
}

func TestSparsityText(t *testing.T) {
	for _, sparsity := range testutil.Sparsities {
		b, err := sparsity.MarshalText()
		require.NoError(t, err)
		var got value.Sparsity
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, sparsity, got)
	}
	var s value.Sparsity
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
}

func TestParseCheckLevel(t *testing.T) {
	for _, l := range []value.CheckLevel{value.CheckOff, value.CheckBasic, value.CheckStrict} {
		got, err := value.ParseCheckLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := value.ParseCheckLevel("loud")
	assert.Error(t, err)
}
