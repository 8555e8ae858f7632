package mixture

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/internal/stream"
	"github.com/hupe1980/mixgo/model"
)

// GroupRecord is the dumped state of one slot: its occupancy and one group
// per column, listed per kind in the default kind order.
type GroupRecord struct {
	Count uint32                                        `json:"count"`
	BB    []distributions.BetaBernoulliGroup            `json:"bb,omitempty"`
	DD    []distributions.DirichletDiscreteGroup        `json:"dd,omitempty"`
	DPD   []distributions.DirichletProcessDiscreteGroup `json:"dpd,omitempty"`
	GP    []distributions.GammaPoissonGroup             `json:"gp,omitempty"`
	NICH  []distributions.NormalInverseChiSqGroup       `json:"nich,omitempty"`
}

// Record assembles the record of slot g.
func (pm *ProductMixture) Record(g int) (GroupRecord, error) {
	if err := pm.checkGroup(g); err != nil {
		return GroupRecord{}, err
	}
	return GroupRecord{
		Count: pm.clustering.Counts()[g],
		BB:    collect(pm.bb, g),
		DD:    collect(pm.dd, g),
		DPD:   collect(pm.dpd, g),
		GP:    collect(pm.gp, g),
		NICH:  collect(pm.nich, g),
	}, nil
}

func collect[V any, G any](cs []*distributions.Classifier[V, G], g int) []G {
	if len(cs) == 0 {
		return nil
	}
	out := make([]G, len(cs))
	for i, c := range cs {
		out[i] = *c.Group(g)
	}
	return out
}

// Dump writes one framed record per slot, the empty slot included, in slot
// order. It returns the number of records written.
func (pm *ProductMixture) Dump(w io.Writer) (int, error) {
	sw := stream.NewWriter(w)
	for g := range pm.clustering.Len() {
		rec, err := pm.Record(g)
		if err != nil {
			return sw.Count(), err
		}
		data, err := pm.dumpCodec.Marshal(&rec)
		if err != nil {
			return sw.Count(), fmt.Errorf("encode slot %d: %w", g, err)
		}
		if err := sw.Write(data); err != nil {
			return sw.Count(), err
		}
	}
	return sw.Count(), sw.Flush()
}

// Load replaces the mixture state with a dump written by Dump. The first
// unoccupied slot becomes the designated empty slot; if there is none, one
// is appended. On error the mixture is left unchanged.
func (pm *ProductMixture) Load(r io.Reader, rng *rand.Rand) error {
	sr := stream.NewReader(r)
	var records []GroupRecord
	for {
		data, err := sr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptDump, err)
		}
		var rec GroupRecord
		if err := pm.dumpCodec.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("%w: slot %d: %v", ErrCorruptDump, len(records), err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no slots", ErrCorruptDump)
	}

	bb, err := transpose(model.BetaBernoulli, len(pm.bb), records,
		func(r *GroupRecord) []distributions.BetaBernoulliGroup { return r.BB },
		func(_ int, _ *distributions.BetaBernoulliGroup) error { return nil })
	if err != nil {
		return err
	}
	dd, err := transpose(model.DirichletDiscrete, len(pm.dd), records,
		func(r *GroupRecord) []distributions.DirichletDiscreteGroup { return r.DD },
		func(col int, g *distributions.DirichletDiscreteGroup) error {
			if dim := pm.model.DD[col].Dim(); len(g.Counts) != dim {
				return fmt.Errorf("%d categories, model has %d", len(g.Counts), dim)
			}
			return nil
		})
	if err != nil {
		return err
	}
	dpd, err := transpose(model.DirichletProcessDiscrete, len(pm.dpd), records,
		func(r *GroupRecord) []distributions.DirichletProcessDiscreteGroup { return r.DPD },
		func(_ int, g *distributions.DirichletProcessDiscreteGroup) error {
			if g.Counts == nil {
				g.Counts = make(map[uint32]uint32)
			}
			return nil
		})
	if err != nil {
		return err
	}
	gp, err := transpose(model.GammaPoisson, len(pm.gp), records,
		func(r *GroupRecord) []distributions.GammaPoissonGroup { return r.GP },
		func(_ int, _ *distributions.GammaPoissonGroup) error { return nil })
	if err != nil {
		return err
	}
	nich, err := transpose(model.NormalInverseChiSq, len(pm.nich), records,
		func(r *GroupRecord) []distributions.NormalInverseChiSqGroup { return r.NICH },
		func(_ int, _ *distributions.NormalInverseChiSqGroup) error { return nil })
	if err != nil {
		return err
	}

	counts := make([]uint32, len(records))
	empty := -1
	for g, rec := range records {
		counts[g] = rec.Count
		if rec.Count == 0 && empty < 0 {
			empty = g
		}
	}

	pm.clustering.SetCounts(counts)
	assign(pm.bb, bb)
	assign(pm.dd, dd)
	assign(pm.dpd, dpd)
	assign(pm.gp, gp)
	assign(pm.nich, nich)
	if empty < 0 {
		empty = pm.clustering.Len()
		pm.AddGroup(rng)
	}
	pm.emptyGroupID = empty
	return nil
}

// transpose turns per-slot group lists into per-column group lists.
func transpose[G any](k model.Kind, columns int, records []GroupRecord, get func(*GroupRecord) []G, check func(col int, g *G) error) ([][]G, error) {
	out := make([][]G, columns)
	for col := range out {
		out[col] = make([]G, len(records))
	}
	for slot := range records {
		groups := get(&records[slot])
		if len(groups) != columns {
			return nil, fmt.Errorf("%w: slot %d has %d %s groups, model has %d", ErrCorruptDump, slot, len(groups), k, columns)
		}
		for col := range groups {
			if err := check(col, &groups[col]); err != nil {
				return nil, fmt.Errorf("%w: slot %d %s column %d: %v", ErrCorruptDump, slot, k, col, err)
			}
			out[col][slot] = groups[col]
		}
	}
	return out, nil
}

func assign[V any, G any](cs []*distributions.Classifier[V, G], groups [][]G) {
	for i, c := range cs {
		c.SetGroups(groups[i])
	}
}
