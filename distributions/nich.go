package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalInverseChiSq models real columns with a conjugate
// normal-inverse-chi-squared prior. The predictive is Student's t.
type NormalInverseChiSq struct {
	Mu      float32 `json:"mu" yaml:"mu"`
	Kappa   float32 `json:"kappa" yaml:"kappa" validate:"gt=0"`
	Sigmasq float32 `json:"sigmasq" yaml:"sigmasq" validate:"gt=0"`
	Nu      float32 `json:"nu" yaml:"nu" validate:"gt=0"`
}

// NormalInverseChiSqGroup holds running moments of a cluster.
type NormalInverseChiSqGroup struct {
	Count              uint32  `json:"count"`
	Mean               float64 `json:"mean"`
	CountTimesVariance float64 `json:"count_times_variance"`
}

var _ Model[float32, NormalInverseChiSqGroup] = NormalInverseChiSq{}

// GroupInit implements Model.
func (NormalInverseChiSq) GroupInit(g *NormalInverseChiSqGroup, _ *rand.Rand) {
	*g = NormalInverseChiSqGroup{}
}

// GroupAddValue implements Model.
func (NormalInverseChiSq) GroupAddValue(g *NormalInverseChiSqGroup, v float32, _ *rand.Rand) {
	x := float64(v)
	g.Count++
	delta := x - g.Mean
	g.Mean += delta / float64(g.Count)
	g.CountTimesVariance += delta * (x - g.Mean)
}

// GroupRemoveValue implements Model.
func (NormalInverseChiSq) GroupRemoveValue(g *NormalInverseChiSqGroup, v float32, _ *rand.Rand) {
	if g.Count <= 1 {
		*g = NormalInverseChiSqGroup{}
		return
	}
	x := float64(v)
	total := g.Mean * float64(g.Count)
	g.Count--
	delta := x - g.Mean
	g.Mean = (total - x) / float64(g.Count)
	g.CountTimesVariance -= delta * (x - g.Mean)
	if g.CountTimesVariance < 0 {
		g.CountTimesVariance = 0
	}
}

// posterior returns the updated (mu, kappa, sigmasq, nu).
func (m NormalInverseChiSq) posterior(g *NormalInverseChiSqGroup) (mu, kappa, sigmasq, nu float64) {
	n := float64(g.Count)
	kappa0 := float64(m.Kappa)
	nu0 := float64(m.Nu)
	mu0 := float64(m.Mu)

	kappa = kappa0 + n
	nu = nu0 + n
	mu = (kappa0*mu0 + n*g.Mean) / kappa
	diff := mu0 - g.Mean
	sigmasq = (nu0*float64(m.Sigmasq) + g.CountTimesVariance + n*kappa0/kappa*diff*diff) / nu
	return mu, kappa, sigmasq, nu
}

// GroupScore implements Model.
func (m NormalInverseChiSq) GroupScore(g *NormalInverseChiSqGroup, v float32, _ *rand.Rand) float32 {
	mu, kappa, sigmasq, nu := m.posterior(g)
	t := distuv.StudentsT{
		Mu:    mu,
		Sigma: math.Sqrt((1 + kappa) / kappa * sigmasq),
		Nu:    nu,
	}
	return float32(t.LogProb(float64(v)))
}

// CheckValue implements Model. NaN and infinities are rejected.
func (NormalInverseChiSq) CheckValue(v float32) error {
	x := float64(v)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: normal-inverse-chi-sq value %v", ErrValueOutOfRange, v)
	}
	return nil
}

// Validate implements Model.
func (m NormalInverseChiSq) Validate() error {
	if !(m.Kappa > 0) || !(m.Sigmasq > 0) || !(m.Nu > 0) {
		return invalid("normal-inverse-chi-sq kappa %v, sigmasq %v and nu %v must be positive", m.Kappa, m.Sigmasq, m.Nu)
	}
	return nil
}
