package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindDataType(t *testing.T) {
	assert.Equal(t, Boolean, BetaBernoulli.DataType())
	assert.Equal(t, Count, DirichletDiscrete.DataType())
	assert.Equal(t, Count, DirichletProcessDiscrete.DataType())
	assert.Equal(t, Count, GammaPoisson.DataType())
	assert.Equal(t, Real, NormalInverseChiSq.DataType())
}

func TestParseKind(t *testing.T) {
	for _, k := range DefaultOrder {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("nope")
	assert.Error(t, err)
}

func TestValidateOrder(t *testing.T) {
	require.NoError(t, ValidateOrder(DefaultOrder))

	tests := []struct {
		name  string
		order []Kind
	}{
		{"short", []Kind{BetaBernoulli}},
		{"duplicate", []Kind{BetaBernoulli, GammaPoisson, GammaPoisson, DirichletDiscrete, NormalInverseChiSq}},
		{"real before count", []Kind{BetaBernoulli, NormalInverseChiSq, DirichletDiscrete, DirichletProcessDiscrete, GammaPoisson}},
		{"invalid", []Kind{BetaBernoulli, DirichletDiscrete, DirichletProcessDiscrete, GammaPoisson, Kind(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateOrder(tt.order))
		})
	}

	// Count kinds may be reordered among themselves.
	assert.NoError(t, ValidateOrder([]Kind{BetaBernoulli, GammaPoisson, DirichletDiscrete, DirichletProcessDiscrete, NormalInverseChiSq}))
}

func TestSchema(t *testing.T) {
	s := MustSchema(map[Kind]int{
		BetaBernoulli:      1,
		DirichletDiscrete:  2,
		GammaPoisson:       3,
		NormalInverseChiSq: 4,
	})

	assert.Equal(t, 10, s.Total())
	assert.Equal(t, 1, s.DataTypeSize(Boolean))
	assert.Equal(t, 5, s.DataTypeSize(Count))
	assert.Equal(t, 4, s.DataTypeSize(Real))
	assert.Equal(t, 0, s.Offset(BetaBernoulli))
	assert.Equal(t, 1, s.Offset(DirichletDiscrete))
	assert.Equal(t, 3, s.Offset(DirichletProcessDiscrete))
	assert.Equal(t, 3, s.Offset(GammaPoisson))
	assert.Equal(t, 6, s.Offset(NormalInverseChiSq))
	assert.Equal(t, "{bb:1 dd:2 dpd:0 gp:3 nich:4}", s.String())

	reordered, err := s.WithOrder([]Kind{BetaBernoulli, GammaPoisson, DirichletProcessDiscrete, DirichletDiscrete, NormalInverseChiSq})
	require.NoError(t, err)
	assert.Equal(t, 1, reordered.Offset(GammaPoisson))
	assert.Equal(t, 4, reordered.Offset(DirichletDiscrete))
	assert.False(t, s.Equal(reordered))

	_, err = NewSchema(map[Kind]int{GammaPoisson: -1})
	assert.Error(t, err)
}
