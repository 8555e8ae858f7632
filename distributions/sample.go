package distributions

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// SampleDiscrete draws an index with probability proportional to
// exp(scores[i]). scratch is reused when large enough. It returns -1 for an
// empty or all -Inf score vector.
func SampleDiscrete(rng *rand.Rand, scores []float32, scratch []float64) (int, []float64) {
	if len(scores) == 0 {
		return -1, scratch
	}
	if cap(scratch) < len(scores) {
		scratch = make([]float64, len(scores))
	}
	scratch = scratch[:len(scores)]
	for i, s := range scores {
		scratch[i] = float64(s)
	}

	lse := floats.LogSumExp(scratch)
	if math.IsInf(lse, -1) || math.IsNaN(lse) {
		return -1, scratch
	}

	u := rng.Float64()
	last := -1
	var acc float64
	for i, s := range scratch {
		if math.IsInf(s, -1) {
			continue
		}
		acc += math.Exp(s - lse)
		last = i
		if u < acc {
			return i, scratch
		}
	}
	// rounding left u just above the cumulative mass
	return last, scratch
}
