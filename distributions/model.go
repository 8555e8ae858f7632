package distributions

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrValueOutOfRange is returned by CheckValue for values a model cannot
	// represent.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrNotImplemented marks contract calls that are not wired up.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidHyperparameter is returned by Validate.
	ErrInvalidHyperparameter = errors.New("invalid hyperparameter")
)

// Model is the contract every feature kind satisfies.
//
// G is a plain value type; Classifier stores groups contiguously by slot.
// rng is the caller-owned randomness source for models with non-conjugate
// updates; conjugate models ignore it.
type Model[V any, G any] interface {
	// GroupInit resets g to the empty statistic.
	GroupInit(g *G, rng *rand.Rand)
	// GroupAddValue adds v to g.
	GroupAddValue(g *G, v V, rng *rand.Rand)
	// GroupRemoveValue removes a previously added v from g.
	GroupRemoveValue(g *G, v V, rng *rand.Rand)
	// GroupScore returns the log predictive probability of v given g.
	GroupScore(g *G, v V, rng *rand.Rand) float32
	// CheckValue reports whether v is in the model's support.
	CheckValue(v V) error
	// Validate checks the hyperparameters.
	Validate() error
}

// Classifier is the array of groups for one feature column, indexed by
// cluster slot.
type Classifier[V any, G any] struct {
	model  Model[V, G]
	groups []G
}

// NewClassifier creates a classifier with no slots. Call Init before use.
func NewClassifier[V any, G any](m Model[V, G]) *Classifier[V, G] {
	return &Classifier[V, G]{model: m}
}

// Model returns the feature model.
func (c *Classifier[V, G]) Model() Model[V, G] { return c.model }

// Init resets the classifier to a single empty slot.
func (c *Classifier[V, G]) Init(rng *rand.Rand) {
	clear(c.groups)
	c.groups = c.groups[:0]
	c.AddGroup(rng)
}

// Len returns the number of slots.
func (c *Classifier[V, G]) Len() int { return len(c.groups) }

// Groups returns the groups by slot. The slice must not be retained across
// slot lifecycle changes.
func (c *Classifier[V, G]) Groups() []G { return c.groups }

// Group returns the group at slot i.
func (c *Classifier[V, G]) Group(i int) *G { return &c.groups[i] }

// SetGroups replaces all groups, e.g. when loading a dump.
func (c *Classifier[V, G]) SetGroups(groups []G) {
	c.groups = append(c.groups[:0], groups...)
}

// AddGroup appends an empty slot.
func (c *Classifier[V, G]) AddGroup(rng *rand.Rand) {
	var g G
	c.model.GroupInit(&g, rng)
	c.groups = append(c.groups, g)
}

// RemoveGroup removes slot i, moving the last slot into its place.
func (c *Classifier[V, G]) RemoveGroup(i int) {
	last := len(c.groups) - 1
	if i != last {
		c.groups[i] = c.groups[last]
	}
	var zero G
	c.groups[last] = zero
	c.groups = c.groups[:last]
}

// AddValue adds v to slot i.
func (c *Classifier[V, G]) AddValue(i int, v V, rng *rand.Rand) {
	c.model.GroupAddValue(&c.groups[i], v, rng)
}

// RemoveValue removes v from slot i.
func (c *Classifier[V, G]) RemoveValue(i int, v V, rng *rand.Rand) {
	c.model.GroupRemoveValue(&c.groups[i], v, rng)
}

// Score adds the log predictive probability of v under each slot to
// scores, which must have Len entries.
func (c *Classifier[V, G]) Score(v V, scores []float32, rng *rand.Rand) {
	for i := range c.groups {
		scores[i] += c.model.GroupScore(&c.groups[i], v, rng)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidHyperparameter, fmt.Sprintf(format, args...))
}
