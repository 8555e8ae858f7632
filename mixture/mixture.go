package mixture

import (
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/value"
)

type (
	bbClassifier   = distributions.Classifier[bool, distributions.BetaBernoulliGroup]
	ddClassifier   = distributions.Classifier[uint32, distributions.DirichletDiscreteGroup]
	dpdClassifier  = distributions.Classifier[uint32, distributions.DirichletProcessDiscreteGroup]
	gpClassifier   = distributions.Classifier[uint32, distributions.GammaPoissonGroup]
	nichClassifier = distributions.Classifier[float32, distributions.NormalInverseChiSqGroup]
)

// lifecycle is the slot surface shared by every classifier.
type lifecycle interface {
	Init(rng *rand.Rand)
	AddGroup(rng *rand.Rand)
	RemoveGroup(i int)
	Len() int
}

// Option configures a ProductMixture.
type Option func(*ProductMixture)

// WithCheckLevel sets how thoroughly rows are validated.
func WithCheckLevel(level value.CheckLevel) Option {
	return func(pm *ProductMixture) { pm.level = level }
}

// WithCodec sets the codec for Dump and Load.
func WithCodec(c codec.Codec) Option {
	return func(pm *ProductMixture) {
		if c != nil {
			pm.dumpCodec = c
		}
	}
}

// ProductMixture is a clustering plus one classifier per feature column.
type ProductMixture struct {
	model  *ProductModel
	schema model.Schema
	level  value.CheckLevel

	// checked validates rows at level; unchecked replays a row that
	// already passed.
	checked   *value.Codec
	unchecked *value.Codec
	dumpCodec codec.Codec

	clustering *distributions.Clustering
	bb         []*bbClassifier
	dd         []*ddClassifier
	dpd        []*dpdClassifier
	gp         []*gpClassifier
	nich       []*nichClassifier
	columns    []lifecycle

	emptyGroupID int
	visitor      visitor
}

// New creates a product mixture for m. Call Init before use.
func New(m *ProductModel, opts ...Option) (*ProductMixture, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	schema, err := m.Schema()
	if err != nil {
		return nil, err
	}

	pm := &ProductMixture{
		model:      m,
		schema:     schema,
		level:      value.CheckBasic,
		dumpCodec:  codec.Default,
		clustering: distributions.NewClustering(m.Clustering),
	}
	for _, opt := range opts {
		opt(pm)
	}
	pm.checked = value.NewCodec(schema, pm.level)
	pm.unchecked = value.NewCodec(schema, value.CheckOff)
	pm.visitor.pm = pm

	pm.bb = classifiers[bool, distributions.BetaBernoulliGroup](m.BB, &pm.columns)
	pm.dd = classifiers[uint32, distributions.DirichletDiscreteGroup](m.DD, &pm.columns)
	pm.dpd = classifiers[uint32, distributions.DirichletProcessDiscreteGroup](m.DPD, &pm.columns)
	pm.gp = classifiers[uint32, distributions.GammaPoissonGroup](m.GP, &pm.columns)
	pm.nich = classifiers[float32, distributions.NormalInverseChiSqGroup](m.NICH, &pm.columns)

	return pm, nil
}

func classifiers[V any, G any, M distributions.Model[V, G]](models []M, columns *[]lifecycle) []*distributions.Classifier[V, G] {
	out := make([]*distributions.Classifier[V, G], len(models))
	for i, m := range models {
		out[i] = distributions.NewClassifier[V, G](m)
		*columns = append(*columns, out[i])
	}
	return out
}

// Model returns the hyperparameters.
func (pm *ProductMixture) Model() *ProductModel { return pm.model }

// Schema returns the column layout rows must follow.
func (pm *ProductMixture) Schema() model.Schema { return pm.schema }

// ValueSchema returns the per-data-type column counts.
func (pm *ProductMixture) ValueSchema() value.Schema { return pm.checked.Schema() }

// CheckLevel returns the row validation level.
func (pm *ProductMixture) CheckLevel() value.CheckLevel { return pm.level }

// GroupCount returns the number of slots, including the empty slot.
func (pm *ProductMixture) GroupCount() int { return pm.clustering.Len() }

// EmptyGroupID returns the designated empty slot.
func (pm *ProductMixture) EmptyGroupID() int { return pm.emptyGroupID }

// Counts returns the occupancy per slot. The slice must not be modified.
func (pm *ProductMixture) Counts() []uint32 { return pm.clustering.Counts() }

// SampleSize returns the number of values across all slots.
func (pm *ProductMixture) SampleSize() uint64 { return pm.clustering.SampleSize() }

// Init resets the mixture to a single empty slot.
func (pm *ProductMixture) Init(rng *rand.Rand) {
	pm.clustering.Init()
	for _, c := range pm.columns {
		c.Init(rng)
	}
	pm.emptyGroupID = 0
}

// AddGroup appends an empty slot. The designated empty slot is unchanged.
func (pm *ProductMixture) AddGroup(rng *rand.Rand) {
	pm.clustering.AddGroup()
	for _, c := range pm.columns {
		c.AddGroup(rng)
	}
}

// RemoveGroup removes slot g. The last slot moves into index g.
func (pm *ProductMixture) RemoveGroup(g int) error {
	if err := pm.checkGroup(g); err != nil {
		return err
	}
	if g == pm.emptyGroupID {
		return fmt.Errorf("%w: cannot remove designated empty slot %d", ErrEmptyGroup, g)
	}
	pm.removeGroup(g)
	return nil
}

func (pm *ProductMixture) removeGroup(g int) {
	if pm.emptyGroupID == pm.clustering.Len()-1 {
		pm.emptyGroupID = g
	}
	pm.clustering.RemoveGroup(g)
	for _, c := range pm.columns {
		c.RemoveGroup(g)
	}
}

// AddValue commits row to slot g. Adding to the designated empty slot
// appends a new empty slot and designates it.
//
// At value.CheckBasic and above the row is validated before anything is
// modified. At value.CheckOff a malformed row may be partially applied.
func (pm *ProductMixture) AddValue(g int, row *value.Row, rng *rand.Rand) error {
	if err := pm.checkGroup(g); err != nil {
		return err
	}
	if err := pm.precheck(row); err != nil {
		return err
	}
	if g == pm.emptyGroupID {
		pm.emptyGroupID = pm.clustering.Len()
		pm.AddGroup(rng)
	}
	pm.clustering.AddValue(g)
	return pm.apply(opAdd, g, row, nil, rng)
}

// RemoveValue removes row from slot g. A slot left unoccupied is removed.
func (pm *ProductMixture) RemoveValue(g int, row *value.Row, rng *rand.Rand) error {
	if err := pm.checkGroup(g); err != nil {
		return err
	}
	if g == pm.emptyGroupID {
		return fmt.Errorf("%w: cannot remove a value from designated empty slot %d", ErrEmptyGroup, g)
	}
	if pm.clustering.Counts()[g] == 0 {
		return fmt.Errorf("%w: slot %d holds no values", ErrEmptyGroup, g)
	}
	if err := pm.precheck(row); err != nil {
		return err
	}
	pm.clustering.RemoveValue(g)
	if err := pm.apply(opRemove, g, row, nil, rng); err != nil {
		return err
	}
	if pm.clustering.Counts()[g] == 0 {
		pm.removeGroup(g)
	}
	return nil
}

// Score fills scores with the unnormalized log predictive probability of
// row joining each slot, reusing its capacity. The result has GroupCount
// entries; the designated empty slot scores opening a new cluster.
func (pm *ProductMixture) Score(row *value.Row, scores []float32, rng *rand.Rand) ([]float32, error) {
	scores = pm.clustering.Score(scores)
	if err := pm.apply(opScore, 0, row, scores, rng); err != nil {
		return scores, err
	}
	return scores, nil
}

// Validate checks the slot invariants: every classifier has one group per
// slot and the designated empty slot exists and is unoccupied.
func (pm *ProductMixture) Validate() error {
	n := pm.clustering.Len()
	for i, c := range pm.columns {
		if c.Len() != n {
			return fmt.Errorf("column %d has %d groups, clustering has %d slots", i, c.Len(), n)
		}
	}
	if pm.emptyGroupID < 0 || pm.emptyGroupID >= n {
		return fmt.Errorf("%w: designated empty slot %d of %d", ErrGroupOutOfRange, pm.emptyGroupID, n)
	}
	if count := pm.clustering.Counts()[pm.emptyGroupID]; count != 0 {
		return fmt.Errorf("designated empty slot %d holds %d values", pm.emptyGroupID, count)
	}
	return nil
}

func (pm *ProductMixture) checkGroup(g int) error {
	if g < 0 || g >= pm.clustering.Len() {
		return fmt.Errorf("%w: slot %d of %d", ErrGroupOutOfRange, g, pm.clustering.Len())
	}
	return nil
}

// precheck walks row without modifying state so that a mutation pass
// cannot fail halfway.
func (pm *ProductMixture) precheck(row *value.Row) error {
	if pm.level == value.CheckOff {
		return nil
	}
	return pm.walk(pm.checked, opCheck, 0, row, nil, nil)
}

func (pm *ProductMixture) apply(op op, g int, row *value.Row, scores []float32, rng *rand.Rand) error {
	c := pm.checked
	if op != opScore {
		c = pm.unchecked
	}
	return pm.walk(c, op, g, row, scores, rng)
}

func (pm *ProductMixture) walk(c *value.Codec, op op, g int, row *value.Row, scores []float32, rng *rand.Rand) error {
	v := &pm.visitor
	v.op, v.group, v.scores, v.rng, v.err = op, g, scores, rng, nil
	v.check = op == opCheck || (op == opScore && pm.level != value.CheckOff)
	err := c.Read(v, row)
	if err == nil {
		err = v.err
	}
	v.scores, v.rng, v.err = nil, nil, nil
	return err
}
