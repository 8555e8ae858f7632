package distributions

import (
	"math"
	"math/rand/v2"
)

// GammaPoisson models count columns with a Gamma(Alpha, rate 1/InvBeta)
// prior on the Poisson rate. The predictive is negative binomial.
type GammaPoisson struct {
	Alpha   float32 `json:"alpha" yaml:"alpha" validate:"gt=0"`
	InvBeta float32 `json:"inv_beta" yaml:"inv_beta" validate:"gt=0"`
}

// GammaPoissonGroup holds the sufficient statistics of a cluster.
type GammaPoissonGroup struct {
	Count   uint32  `json:"count"`
	Sum     uint64  `json:"sum"`
	LogProd float64 `json:"log_prod"`
}

var _ Model[uint32, GammaPoissonGroup] = GammaPoisson{}

// GroupInit implements Model.
func (GammaPoisson) GroupInit(g *GammaPoissonGroup, _ *rand.Rand) {
	*g = GammaPoissonGroup{}
}

// GroupAddValue implements Model.
func (GammaPoisson) GroupAddValue(g *GammaPoissonGroup, v uint32, _ *rand.Rand) {
	g.Count++
	g.Sum += uint64(v)
	g.LogProd += logFactorial(v)
}

// GroupRemoveValue implements Model.
func (GammaPoisson) GroupRemoveValue(g *GammaPoissonGroup, v uint32, _ *rand.Rand) {
	g.Count--
	g.Sum -= uint64(v)
	g.LogProd -= logFactorial(v)
	if g.Count == 0 {
		g.LogProd = 0
	}
}

// GroupScore implements Model.
func (m GammaPoisson) GroupScore(g *GammaPoissonGroup, v uint32, _ *rand.Rand) float32 {
	alpha := float64(m.Alpha) + float64(g.Sum)
	beta := 1/float64(m.InvBeta) + float64(g.Count)
	x := float64(v)

	lgA, _ := math.Lgamma(alpha + x)
	lgB, _ := math.Lgamma(alpha)
	score := lgA - lgB - logFactorial(v) +
		alpha*math.Log(beta/(beta+1)) -
		x*math.Log(beta+1)
	return float32(score)
}

// CheckValue implements Model. Every count is in the support.
func (GammaPoisson) CheckValue(uint32) error { return nil }

// Validate implements Model.
func (m GammaPoisson) Validate() error {
	if !(m.Alpha > 0) || !(m.InvBeta > 0) {
		return invalid("gamma-poisson alpha %v and inv_beta %v must be positive", m.Alpha, m.InvBeta)
	}
	return nil
}

func logFactorial(v uint32) float64 {
	lg, _ := math.Lgamma(float64(v) + 1)
	return lg
}
