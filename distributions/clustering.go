package distributions

import (
	"math"
)

// PitmanYor is the two-parameter Chinese-restaurant-process prior.
//
// Alpha is the concentration and D the discount, 0 <= D < 1, Alpha > -D.
type PitmanYor struct {
	Alpha float32 `json:"alpha" yaml:"alpha" validate:"gte=0"`
	D     float32 `json:"d" yaml:"d" validate:"gte=0,lt=1"`
}

// Validate checks the hyperparameters.
func (m PitmanYor) Validate() error {
	if m.D < 0 || m.D >= 1 {
		return invalid("pitman-yor discount %v not in [0, 1)", m.D)
	}
	if m.Alpha+m.D <= 0 {
		return invalid("pitman-yor alpha %v must exceed -d", m.Alpha)
	}
	return nil
}

// Clustering tracks slot occupancy under a PitmanYor prior.
type Clustering struct {
	model      PitmanYor
	counts     []uint32
	sampleSize uint64
	nonempty   int
}

// NewClustering creates a clustering with no slots. Call Init before use.
func NewClustering(m PitmanYor) *Clustering {
	return &Clustering{model: m}
}

// Model returns the prior.
func (c *Clustering) Model() PitmanYor { return c.model }

// Init resets to a single empty slot.
func (c *Clustering) Init() {
	c.counts = append(c.counts[:0], 0)
	c.sampleSize = 0
	c.nonempty = 0
}

// Counts returns the occupancy per slot. The slice must not be modified.
func (c *Clustering) Counts() []uint32 { return c.counts }

// Len returns the number of slots.
func (c *Clustering) Len() int { return len(c.counts) }

// SampleSize returns the total number of assigned values.
func (c *Clustering) SampleSize() uint64 { return c.sampleSize }

// SetCounts replaces the occupancy counts, e.g. when loading a dump.
func (c *Clustering) SetCounts(counts []uint32) {
	c.counts = append(c.counts[:0], counts...)
	c.sampleSize = 0
	c.nonempty = 0
	for _, n := range c.counts {
		c.sampleSize += uint64(n)
		if n > 0 {
			c.nonempty++
		}
	}
}

// AddGroup appends an empty slot.
func (c *Clustering) AddGroup() {
	c.counts = append(c.counts, 0)
}

// RemoveGroup removes slot i, moving the last slot into its place.
func (c *Clustering) RemoveGroup(i int) {
	if n := c.counts[i]; n > 0 {
		c.sampleSize -= uint64(n)
		c.nonempty--
	}
	last := len(c.counts) - 1
	c.counts[i] = c.counts[last]
	c.counts = c.counts[:last]
}

// AddValue increments the occupancy of slot i.
func (c *Clustering) AddValue(i int) {
	if c.counts[i] == 0 {
		c.nonempty++
	}
	c.counts[i]++
	c.sampleSize++
}

// RemoveValue decrements the occupancy of slot i, which must be occupied.
func (c *Clustering) RemoveValue(i int) {
	c.counts[i]--
	c.sampleSize--
	if c.counts[i] == 0 {
		c.nonempty--
	}
}

// Score resizes scores to Len and fills it with the log prior of joining
// each slot. The mass of opening a new cluster is shared evenly by the
// empty slots.
func (c *Clustering) Score(scores []float32) []float32 {
	if cap(scores) < len(c.counts) {
		scores = make([]float32, len(c.counts))
	}
	scores = scores[:len(c.counts)]

	alpha := float64(c.model.Alpha)
	d := float64(c.model.D)
	empties := len(c.counts) - c.nonempty

	// With no values yet a new cluster is certain, even when alpha is 0.
	var empty float32
	norm := 0.0
	if c.sampleSize > 0 {
		norm = math.Log(float64(c.sampleSize) + alpha)
		empty = float32(math.Log(alpha+d*float64(c.nonempty)) - norm)
	}
	if empties > 1 {
		empty -= float32(math.Log(float64(empties)))
	}
	for i, n := range c.counts {
		if n == 0 {
			scores[i] = empty
		} else {
			scores[i] = float32(math.Log(float64(n)-d) - norm)
		}
	}
	return scores
}
