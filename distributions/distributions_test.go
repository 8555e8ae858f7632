package distributions_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo/distributions"
)

func newRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func logSumExp(scores []float32) float64 {
	m := math.Inf(-1)
	for _, s := range scores {
		m = math.Max(m, float64(s))
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(float64(s) - m)
	}
	return m + math.Log(sum)
}

func TestClusteringLifecycle(t *testing.T) {
	c := distributions.NewClustering(distributions.PitmanYor{Alpha: 1, D: 0.2})
	require.NoError(t, c.Model().Validate())

	c.Init()
	assert.Equal(t, []uint32{0}, c.Counts())

	c.AddValue(0)
	c.AddGroup()
	c.AddValue(0)
	c.AddValue(1)
	assert.Equal(t, []uint32{2, 1}, c.Counts())
	assert.EqualValues(t, 3, c.SampleSize())

	c.AddGroup()
	c.AddValue(2)
	c.RemoveValue(1)
	c.RemoveGroup(1)
	// last slot moved into slot 1
	assert.Equal(t, []uint32{2, 1}, c.Counts())
	assert.EqualValues(t, 3, c.SampleSize())
}

func TestClusteringScoreNormalized(t *testing.T) {
	c := distributions.NewClustering(distributions.PitmanYor{Alpha: 2, D: 0.3})
	c.Init()
	c.AddValue(0)
	c.AddValue(0)
	c.AddGroup()
	c.AddValue(1)
	c.AddGroup()

	scores := c.Score(nil)
	require.Len(t, scores, 3)
	// one empty slot: the distribution over slots sums to one
	assert.InDelta(t, 0, logSumExp(scores), 1e-5)
	assert.Greater(t, scores[0], scores[1])
}

func TestClusteringScoreZeroAlpha(t *testing.T) {
	m := distributions.PitmanYor{Alpha: 0, D: 0.5}
	require.NoError(t, m.Validate())
	c := distributions.NewClustering(m)
	c.Init()

	scores := c.Score(nil)
	require.Len(t, scores, 1)
	assert.False(t, math.IsNaN(float64(scores[0])))
	assert.False(t, math.IsInf(float64(scores[0]), 0))
	assert.InDelta(t, 0, logSumExp(scores), 1e-6)

	g, _ := distributions.SampleDiscrete(newRand(), scores, nil)
	assert.Equal(t, 0, g)

	c.AddValue(0)
	c.AddGroup()
	scores = c.Score(scores)
	require.Len(t, scores, 2)
	// 1 value at discount 0.5 leaves the new cluster half the mass
	assert.InDelta(t, math.Log(0.5), scores[0], 1e-6)
	assert.InDelta(t, math.Log(0.5), scores[1], 1e-6)
}

func TestClusteringScoreSharesNewClusterMass(t *testing.T) {
	c := distributions.NewClustering(distributions.PitmanYor{Alpha: 1, D: 0.2})
	c.Init()
	c.AddValue(0)
	c.AddValue(0)
	c.AddGroup()
	c.AddGroup()
	c.AddGroup()

	scores := c.Score(nil)
	require.Len(t, scores, 4)
	assert.InDelta(t, 0, logSumExp(scores), 1e-5)
	assert.Equal(t, scores[1], scores[2])
	assert.Equal(t, scores[2], scores[3])

	fresh := distributions.NewClustering(distributions.PitmanYor{Alpha: 1, D: 0.2})
	fresh.Init()
	fresh.AddGroup()
	scores = fresh.Score(scores)
	require.Len(t, scores, 2)
	assert.InDelta(t, math.Log(0.5), scores[0], 1e-6)
	assert.InDelta(t, math.Log(0.5), scores[1], 1e-6)
}

func TestClusteringSetCounts(t *testing.T) {
	c := distributions.NewClustering(distributions.PitmanYor{Alpha: 1})
	c.SetCounts([]uint32{3, 0, 2})
	assert.EqualValues(t, 5, c.SampleSize())
	assert.Equal(t, 3, c.Len())
}

func TestPitmanYorValidate(t *testing.T) {
	assert.NoError(t, distributions.PitmanYor{Alpha: 1, D: 0.5}.Validate())
	assert.ErrorIs(t, distributions.PitmanYor{Alpha: 1, D: 1}.Validate(), distributions.ErrInvalidHyperparameter)
	assert.ErrorIs(t, distributions.PitmanYor{Alpha: 0, D: 0}.Validate(), distributions.ErrInvalidHyperparameter)
}

func TestClassifierSwapRemove(t *testing.T) {
	rng := newRand()
	c := distributions.NewClassifier[uint32, distributions.GammaPoissonGroup](distributions.GammaPoisson{Alpha: 1, InvBeta: 1})
	c.Init(rng)
	c.AddGroup(rng)
	c.AddGroup(rng)
	c.AddValue(0, 1, rng)
	c.AddValue(2, 5, rng)
	c.AddValue(2, 7, rng)

	c.RemoveGroup(0)
	require.Equal(t, 2, c.Len())
	assert.EqualValues(t, 2, c.Group(0).Count)
	assert.EqualValues(t, 12, c.Group(0).Sum)
	assert.EqualValues(t, 0, c.Group(1).Count)

	c.RemoveGroup(1)
	assert.Equal(t, 1, c.Len())
}

func TestClassifierScoreAccumulates(t *testing.T) {
	rng := newRand()
	m := distributions.BetaBernoulli{Alpha: 1, Beta: 1}
	c := distributions.NewClassifier[bool, distributions.BetaBernoulliGroup](m)
	c.Init(rng)
	c.AddGroup(rng)
	c.AddValue(0, true, rng)

	scores := []float32{1, 1}
	c.Score(true, scores, rng)
	assert.InDelta(t, 1+math.Log(2.0/3.0), scores[0], 1e-6)
	assert.InDelta(t, 1+math.Log(0.5), scores[1], 1e-6)
}

// predictive returns the scores of values 0..n-1 under g.
func predictive[G any](m distributions.Model[uint32, G], g *G, n int) []float32 {
	out := make([]float32, n)
	for v := range out {
		out[v] = m.GroupScore(g, uint32(v), nil)
	}
	return out
}

func TestBetaBernoulli(t *testing.T) {
	m := distributions.BetaBernoulli{Alpha: 2, Beta: 1}
	var g distributions.BetaBernoulliGroup
	m.GroupInit(&g, nil)
	assert.InDelta(t, math.Log(2.0/3.0), m.GroupScore(&g, true, nil), 1e-6)

	m.GroupAddValue(&g, false, nil)
	m.GroupAddValue(&g, false, nil)
	assert.InDelta(t, math.Log(0.6), m.GroupScore(&g, false, nil), 1e-6)

	m.GroupRemoveValue(&g, false, nil)
	assert.Equal(t, distributions.BetaBernoulliGroup{Tails: 1}, g)
	assert.ErrorIs(t, distributions.BetaBernoulli{}.Validate(), distributions.ErrInvalidHyperparameter)
}

func TestDirichletDiscrete(t *testing.T) {
	m := distributions.DirichletDiscrete{Alphas: []float32{1, 1, 2}}
	require.NoError(t, m.Validate())

	var g distributions.DirichletDiscreteGroup
	m.GroupInit(&g, nil)
	m.GroupAddValue(&g, 0, nil)
	m.GroupAddValue(&g, 0, nil)

	scores := predictive[distributions.DirichletDiscreteGroup](m, &g, 3)
	assert.InDelta(t, 0, logSumExp(scores), 1e-5)
	assert.InDelta(t, math.Log(3.0/6.0), scores[0], 1e-6)

	assert.True(t, math.IsInf(float64(m.GroupScore(&g, 3, nil)), -1))
	assert.ErrorIs(t, m.CheckValue(3), distributions.ErrValueOutOfRange)
	assert.NoError(t, m.CheckValue(2))

	m.GroupRemoveValue(&g, 0, nil)
	assert.Equal(t, []uint32{1, 0, 0}, g.Counts)
	assert.EqualValues(t, 1, g.Total)
}

func TestDirichletProcessDiscrete(t *testing.T) {
	m := distributions.DirichletProcessDiscrete{
		Gamma:    1,
		Alpha:    2,
		BetaZero: 0.5,
		Betas:    map[uint32]float32{7: 0.5},
	}
	require.NoError(t, m.Validate())

	var g distributions.DirichletProcessDiscreteGroup
	m.GroupInit(&g, nil)
	assert.InDelta(t, math.Log(0.5), m.GroupScore(&g, 7, nil), 1e-6)

	m.GroupAddValue(&g, 7, nil)
	m.GroupAddValue(&g, 9, nil)
	assert.InDelta(t, math.Log(2.0/4.0), m.GroupScore(&g, 7, nil), 1e-6)

	m.GroupRemoveValue(&g, 9, nil)
	assert.Equal(t, map[uint32]uint32{7: 1}, g.Counts)
	assert.EqualValues(t, 1, g.Total)
}

func TestGammaPoissonPredictiveSumsToOne(t *testing.T) {
	m := distributions.GammaPoisson{Alpha: 2, InvBeta: 1.5}
	require.NoError(t, m.Validate())

	var g distributions.GammaPoissonGroup
	m.GroupInit(&g, nil)
	for _, v := range []uint32{1, 3, 2, 4} {
		m.GroupAddValue(&g, v, nil)
	}
	scores := predictive[distributions.GammaPoissonGroup](m, &g, 200)
	assert.InDelta(t, 0, logSumExp(scores), 1e-4)

	for _, v := range []uint32{1, 3, 2, 4} {
		m.GroupRemoveValue(&g, v, nil)
	}
	assert.Equal(t, distributions.GammaPoissonGroup{}, g)
}

func TestNormalInverseChiSq(t *testing.T) {
	m := distributions.NormalInverseChiSq{Mu: 0, Kappa: 1, Sigmasq: 1, Nu: 1}
	require.NoError(t, m.Validate())

	var g distributions.NormalInverseChiSqGroup
	m.GroupInit(&g, nil)
	values := []float32{1, 2, 3, 4}
	for _, v := range values {
		m.GroupAddValue(&g, v, nil)
	}
	assert.EqualValues(t, 4, g.Count)
	assert.InDelta(t, 2.5, g.Mean, 1e-9)
	assert.InDelta(t, 5.0, g.CountTimesVariance, 1e-9)

	near := m.GroupScore(&g, 2.5, nil)
	far := m.GroupScore(&g, 50, nil)
	assert.Greater(t, near, far)

	m.GroupRemoveValue(&g, 4, nil)
	assert.InDelta(t, 2.0, g.Mean, 1e-9)
	assert.InDelta(t, 2.0, g.CountTimesVariance, 1e-9)

	assert.ErrorIs(t, m.CheckValue(float32(math.NaN())), distributions.ErrValueOutOfRange)
	assert.ErrorIs(t, m.CheckValue(float32(math.Inf(1))), distributions.ErrValueOutOfRange)
}

func TestSampleDiscrete(t *testing.T) {
	rng := newRand()

	idx, _ := distributions.SampleDiscrete(rng, nil, nil)
	assert.Equal(t, -1, idx)

	inf := float32(math.Inf(-1))
	var scratch []float64
	for range 100 {
		idx, scratch = distributions.SampleDiscrete(rng, []float32{inf, 0, inf}, scratch)
		require.Equal(t, 1, idx)
	}

	hits := make([]int, 2)
	scores := []float32{float32(math.Log(0.9)), float32(math.Log(0.1))}
	for range 2000 {
		idx, scratch = distributions.SampleDiscrete(rng, scores, scratch)
		hits[idx]++
	}
	assert.Greater(t, hits[0], hits[1]*4)
}
