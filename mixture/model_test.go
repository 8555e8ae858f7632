package mixture_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/mixture"
	"github.com/hupe1980/mixgo/model"
)

const jsonModel = `{
	"clustering": {"alpha": 1.5, "d": 0.2},
	"dd": [{"alphas": [1, 1, 1]}],
	"dpd": [{"gamma": 1, "alpha": 2, "beta0": 0.5, "betas": {"3": 0.25}}],
	"gp": [{"alpha": 1, "inv_beta": 2}],
	"nich": [{"mu": 0, "kappa": 1, "sigmasq": 1, "nu": 2}]
}`

const yamlModel = `
clustering:
  alpha: 1.5
  d: 0.2
bb:
  - alpha: 1
    beta: 2
gp:
  - alpha: 1
    inv_beta: 2
  - alpha: 3
    inv_beta: 1
order: [bb, gp, dd, dpd, nich]
`

func TestLoadModelJSON(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, err := codec.ByName(name)
			require.NoError(t, err)

			m, err := mixture.LoadModel(strings.NewReader(jsonModel), mixture.FormatJSON, c)
			require.NoError(t, err)
			assert.InDelta(t, 1.5, m.Clustering.Alpha, 1e-6)
			assert.Equal(t, float32(0.25), m.DPD[0].Betas[3])

			s, err := m.Schema()
			require.NoError(t, err)
			assert.Equal(t, 0, s.Size(model.BetaBernoulli))
			assert.Equal(t, 1, s.Size(model.DirichletDiscrete))
			assert.Equal(t, 4, s.Total())
		})
	}
}

func TestLoadModelYAML(t *testing.T) {
	m, err := mixture.LoadModel(strings.NewReader(yamlModel), mixture.FormatYAML, nil)
	require.NoError(t, err)
	require.Len(t, m.BB, 1)
	require.Len(t, m.GP, 2)

	s, err := m.Schema()
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{
		model.BetaBernoulli,
		model.GammaPoisson,
		model.DirichletDiscrete,
		model.DirichletProcessDiscrete,
		model.NormalInverseChiSq,
	}, s.Order())
}

func TestLoadModelInvalid(t *testing.T) {
	tests := []struct {
		name   string
		format mixture.Format
		input  string
	}{
		{"malformed json", mixture.FormatJSON, `{"clustering":`},
		{"unknown field", mixture.FormatJSON, `{"clustering": {"alpha": 1}, "bogus": 1}`},
		{"negative discount", mixture.FormatJSON, `{"clustering": {"alpha": 1, "d": -0.5}}`},
		{"zero concentration", mixture.FormatJSON, `{"clustering": {"alpha": 0, "d": 0}}`},
		{"empty dd", mixture.FormatJSON, `{"clustering": {"alpha": 1}, "dd": [{"alphas": []}]}`},
		{"bb beta", mixture.FormatYAML, "clustering: {alpha: 1}\nbb: [{alpha: 1, beta: 0}]\n"},
		{"bad order", mixture.FormatYAML, "clustering: {alpha: 1}\norder: [nich, bb, dd, dpd, gp]\n"},
		{"unknown yaml field", mixture.FormatYAML, "clustering: {alpha: 1}\nfoo: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mixture.LoadModel(strings.NewReader(tt.input), tt.format, nil)
			assert.ErrorIs(t, err, mixture.ErrInvalidModel)
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, mixture.FormatYAML, mixture.FormatOf("model.yaml"))
	assert.Equal(t, mixture.FormatYAML, mixture.FormatOf("dir/Model.YML"))
	assert.Equal(t, mixture.FormatJSON, mixture.FormatOf("model.json"))
	assert.Equal(t, mixture.FormatJSON, mixture.FormatOf("model"))
	assert.Equal(t, mixture.FormatYAML, mixture.FormatOf("model.yaml.zst"))
	assert.Equal(t, mixture.FormatJSON, mixture.FormatOf("model.json.lz4"))
}
