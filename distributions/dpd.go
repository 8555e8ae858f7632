package distributions

import (
	"math"
	"math/rand/v2"
)

// DirichletProcessDiscrete models count columns over an unbounded
// category set. Betas gives the base-measure weight of known categories;
// every other category shares BetaZero.
type DirichletProcessDiscrete struct {
	Gamma    float32            `json:"gamma" yaml:"gamma" validate:"gt=0"`
	Alpha    float32            `json:"alpha" yaml:"alpha" validate:"gt=0"`
	BetaZero float32            `json:"beta0" yaml:"beta0" validate:"gte=0"`
	Betas    map[uint32]float32 `json:"betas,omitempty" yaml:"betas,omitempty"`
}

// DirichletProcessDiscreteGroup holds sparse per-category counts.
type DirichletProcessDiscreteGroup struct {
	Counts map[uint32]uint32 `json:"counts"`
	Total  uint32            `json:"total"`
}

var _ Model[uint32, DirichletProcessDiscreteGroup] = DirichletProcessDiscrete{}

func (m DirichletProcessDiscrete) beta(v uint32) float64 {
	if b, ok := m.Betas[v]; ok {
		return float64(b)
	}
	return float64(m.BetaZero)
}

// GroupInit implements Model.
func (DirichletProcessDiscrete) GroupInit(g *DirichletProcessDiscreteGroup, _ *rand.Rand) {
	g.Counts = make(map[uint32]uint32)
	g.Total = 0
}

// GroupAddValue implements Model.
func (DirichletProcessDiscrete) GroupAddValue(g *DirichletProcessDiscreteGroup, v uint32, _ *rand.Rand) {
	if g.Counts == nil {
		g.Counts = make(map[uint32]uint32)
	}
	g.Counts[v]++
	g.Total++
}

// GroupRemoveValue implements Model.
func (DirichletProcessDiscrete) GroupRemoveValue(g *DirichletProcessDiscreteGroup, v uint32, _ *rand.Rand) {
	if n := g.Counts[v]; n > 1 {
		g.Counts[v] = n - 1
	} else {
		delete(g.Counts, v)
	}
	g.Total--
}

// GroupScore implements Model.
func (m DirichletProcessDiscrete) GroupScore(g *DirichletProcessDiscreteGroup, v uint32, _ *rand.Rand) float32 {
	alpha := float64(m.Alpha)
	num := alpha*m.beta(v) + float64(g.Counts[v])
	return float32(math.Log(num / (alpha + float64(g.Total))))
}

// CheckValue implements Model. Every category is in the support.
func (DirichletProcessDiscrete) CheckValue(uint32) error { return nil }

// Validate implements Model.
func (m DirichletProcessDiscrete) Validate() error {
	if !(m.Gamma > 0) || !(m.Alpha > 0) {
		return invalid("dirichlet-process-discrete gamma %v and alpha %v must be positive", m.Gamma, m.Alpha)
	}
	if m.BetaZero < 0 {
		return invalid("dirichlet-process-discrete beta0 %v is negative", m.BetaZero)
	}
	for v, b := range m.Betas {
		if b < 0 {
			return invalid("dirichlet-process-discrete betas[%d] = %v is negative", v, b)
		}
	}
	return nil
}
