package distributions

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DirichletDiscrete models categorical count columns with a fixed number
// of categories, one Dirichlet pseudo-count per category.
type DirichletDiscrete struct {
	Alphas []float32 `json:"alphas" yaml:"alphas" validate:"min=1,dive,gt=0"`
}

// DirichletDiscreteGroup holds per-category counts.
type DirichletDiscreteGroup struct {
	Counts []uint32 `json:"counts"`
	Total  uint32   `json:"total"`
}

var _ Model[uint32, DirichletDiscreteGroup] = DirichletDiscrete{}

// Dim returns the number of categories.
func (m DirichletDiscrete) Dim() int { return len(m.Alphas) }

// GroupInit implements Model.
func (m DirichletDiscrete) GroupInit(g *DirichletDiscreteGroup, _ *rand.Rand) {
	g.Counts = make([]uint32, len(m.Alphas))
	g.Total = 0
}

// GroupAddValue implements Model.
func (DirichletDiscrete) GroupAddValue(g *DirichletDiscreteGroup, v uint32, _ *rand.Rand) {
	g.Counts[v]++
	g.Total++
}

// GroupRemoveValue implements Model.
func (DirichletDiscrete) GroupRemoveValue(g *DirichletDiscreteGroup, v uint32, _ *rand.Rand) {
	g.Counts[v]--
	g.Total--
}

// GroupScore implements Model.
func (m DirichletDiscrete) GroupScore(g *DirichletDiscreteGroup, v uint32, _ *rand.Rand) float32 {
	if int(v) >= len(m.Alphas) {
		return float32(math.Inf(-1))
	}
	var alphaSum float64
	for _, a := range m.Alphas {
		alphaSum += float64(a)
	}
	num := float64(m.Alphas[v]) + float64(g.Counts[v])
	return float32(math.Log(num / (alphaSum + float64(g.Total))))
}

// CheckValue implements Model.
func (m DirichletDiscrete) CheckValue(v uint32) error {
	if int(v) >= len(m.Alphas) {
		return fmt.Errorf("%w: dirichlet-discrete category %d, dim %d", ErrValueOutOfRange, v, len(m.Alphas))
	}
	return nil
}

// Validate implements Model.
func (m DirichletDiscrete) Validate() error {
	if len(m.Alphas) == 0 {
		return invalid("dirichlet-discrete needs at least one category")
	}
	for i, a := range m.Alphas {
		if !(a > 0) {
			return invalid("dirichlet-discrete alphas[%d] = %v must be positive", i, a)
		}
	}
	return nil
}
