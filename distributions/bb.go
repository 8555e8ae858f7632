package distributions

import (
	"math"
	"math/rand/v2"
)

// BetaBernoulli models boolean columns with a Beta(Alpha, Beta) prior.
type BetaBernoulli struct {
	Alpha float32 `json:"alpha" yaml:"alpha" validate:"gt=0"`
	Beta  float32 `json:"beta" yaml:"beta" validate:"gt=0"`
}

// BetaBernoulliGroup counts the true and false values seen by a cluster.
type BetaBernoulliGroup struct {
	Heads uint32 `json:"heads"`
	Tails uint32 `json:"tails"`
}

var _ Model[bool, BetaBernoulliGroup] = BetaBernoulli{}

// GroupInit implements Model.
func (BetaBernoulli) GroupInit(g *BetaBernoulliGroup, _ *rand.Rand) {
	*g = BetaBernoulliGroup{}
}

// GroupAddValue implements Model.
func (BetaBernoulli) GroupAddValue(g *BetaBernoulliGroup, v bool, _ *rand.Rand) {
	if v {
		g.Heads++
	} else {
		g.Tails++
	}
}

// GroupRemoveValue implements Model.
func (BetaBernoulli) GroupRemoveValue(g *BetaBernoulliGroup, v bool, _ *rand.Rand) {
	if v {
		g.Heads--
	} else {
		g.Tails--
	}
}

// GroupScore implements Model.
func (m BetaBernoulli) GroupScore(g *BetaBernoulliGroup, v bool, _ *rand.Rand) float32 {
	heads := float64(m.Alpha) + float64(g.Heads)
	tails := float64(m.Beta) + float64(g.Tails)
	if v {
		return float32(math.Log(heads / (heads + tails)))
	}
	return float32(math.Log(tails / (heads + tails)))
}

// CheckValue implements Model. Every boolean is in the support.
func (BetaBernoulli) CheckValue(bool) error { return nil }

// Validate implements Model.
func (m BetaBernoulli) Validate() error {
	if !(m.Alpha > 0) || !(m.Beta > 0) {
		return invalid("beta-bernoulli alpha %v and beta %v must be positive", m.Alpha, m.Beta)
	}
	return nil
}
