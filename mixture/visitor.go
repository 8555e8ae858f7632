package mixture

import (
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/value"
)

type op uint8

const (
	opCheck op = iota
	opAdd
	opRemove
	opScore
)

// visitor applies one operation to every observed column of a row. It
// implements value.Reader; handlers are resolved once per kind block.
type visitor struct {
	pm     *ProductMixture
	op     op
	group  int
	scores []float32
	rng    *rand.Rand
	check  bool
	err    error
}

func (v *visitor) ReadBooleans(k model.Kind) func(int, bool) {
	if k == model.BetaBernoulli {
		return visit(v, k, v.pm.bb)
	}
	v.unwired(k)
	return nil
}

func (v *visitor) ReadCounts(k model.Kind) func(int, uint32) {
	switch k {
	case model.DirichletDiscrete:
		return visit(v, k, v.pm.dd)
	case model.DirichletProcessDiscrete:
		return visit(v, k, v.pm.dpd)
	case model.GammaPoisson:
		return visit(v, k, v.pm.gp)
	}
	v.unwired(k)
	return nil
}

func (v *visitor) ReadReals(k model.Kind) func(int, float32) {
	if k == model.NormalInverseChiSq {
		return visit(v, k, v.pm.nich)
	}
	v.unwired(k)
	return nil
}

func (v *visitor) unwired(k model.Kind) {
	if v.err == nil {
		v.err = fmt.Errorf("%w: %s columns", ErrNotImplemented, k)
	}
}

func visit[V any, G any](v *visitor, k model.Kind, cs []*distributions.Classifier[V, G]) func(int, V) {
	g, rng := v.group, v.rng
	switch v.op {
	case opCheck:
		return func(col int, x V) { checkValue(v, k, col, cs[col].Model(), x) }
	case opAdd:
		return func(col int, x V) { cs[col].AddValue(g, x, rng) }
	case opRemove:
		return func(col int, x V) { cs[col].RemoveValue(g, x, rng) }
	case opScore:
		scores := v.scores
		if !v.check {
			return func(col int, x V) { cs[col].Score(x, scores, rng) }
		}
		return func(col int, x V) {
			if checkValue(v, k, col, cs[col].Model(), x) {
				cs[col].Score(x, scores, rng)
			}
		}
	default:
		return nil
	}
}

// checkValue records the first value outside its model's support.
func checkValue[V any, G any](v *visitor, k model.Kind, col int, m distributions.Model[V, G], x V) bool {
	if v.err != nil {
		return false
	}
	if err := m.CheckValue(x); err != nil {
		v.err = fmt.Errorf("%w: %s column %d: %w", value.ErrSchemaViolation, k, col, err)
		return false
	}
	return true
}
