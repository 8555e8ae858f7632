package mixgo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/distributions"
	"github.com/hupe1980/mixgo/mixture"
	"github.com/hupe1980/mixgo/value"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Engine runs sequential inference: each added row is scored against every
// group, a group is sampled from the posterior, and the row is committed to
// it. Engine is safe for concurrent use; operations are serialized.
type Engine struct {
	mu sync.Mutex

	mixture *mixture.ProductMixture
	assign  *Assignments

	rng             *rand.Rand
	codec           codec.Codec
	logger          *Logger
	metrics         MetricsCollector
	sparseThreshold float32
	progress        *rate.Sometimes
	runID           string

	scores  []float32
	scratch []float64
	norm    value.Row
}

// New creates an engine for m with a single empty group.
func New(m *mixture.ProductModel, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)

	pm, err := mixture.New(m, mixture.WithCheckLevel(o.checkLevel), mixture.WithCodec(o.codec))
	if err != nil {
		return nil, translateError(err)
	}
	pm.Init(o.rng)

	runID := uuid.NewString()
	e := &Engine{
		mixture:         pm,
		assign:          NewAssignments(),
		rng:             o.rng,
		codec:           o.codec,
		logger:          o.logger.WithRunID(runID),
		metrics:         o.metricsCollector,
		sparseThreshold: o.sparseThreshold,
		runID:           runID,
	}
	if o.progressInterval > 0 {
		e.progress = &rate.Sometimes{Interval: o.progressInterval}
	}
	e.assign.grow(pm.GroupCount())
	e.metrics.RecordGroups(pm.GroupCount())
	return e, nil
}

// RunID returns the id tagging this engine's log records.
func (e *Engine) RunID() string { return e.runID }

// Mixture returns the underlying mixture. It must not be used concurrently
// with engine operations.
func (e *Engine) Mixture() *mixture.ProductMixture { return e.mixture }

// Assignments returns the row-to-group table. It must not be used
// concurrently with engine operations.
func (e *Engine) Assignments() *Assignments { return e.assign }

// GroupCount returns the number of groups, including the empty group.
func (e *Engine) GroupCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixture.GroupCount()
}

// Add samples a group for row and adds it there. It returns the group id.
func (e *Engine) Add(ctx context.Context, rowID uint64, row *value.Row) (int, error) {
	start := time.Now()

	e.mu.Lock()
	group, err := e.add(ctx, rowID, row)
	e.mu.Unlock()

	e.metrics.RecordAdd(time.Since(start), err)
	e.logger.LogAdd(ctx, rowID, group, err)
	return group, err
}

func (e *Engine) add(ctx context.Context, rowID uint64, row *value.Row) (int, error) {
	if _, ok := e.assign.Group(rowID); ok {
		return -1, fmt.Errorf("%w: row %d", ErrDuplicateAssignment, rowID)
	}

	scores, err := e.mixture.Score(row, e.scores, e.rng)
	e.scores = scores
	if err != nil {
		return -1, translateError(err)
	}

	group, scratch := distributions.SampleDiscrete(e.rng, scores, e.scratch)
	e.scratch = scratch
	if group < 0 {
		return -1, fmt.Errorf("%w: row %d has zero probability in every group", ErrSchemaViolation, rowID)
	}

	created := group == e.mixture.EmptyGroupID()
	if err := e.mixture.AddValue(group, e.normalize(row), e.rng); err != nil {
		return -1, translateError(err)
	}
	e.assign.assign(rowID, group)

	if created {
		n := e.mixture.GroupCount()
		e.assign.grow(n)
		e.metrics.RecordGroups(n)
		e.logger.LogGroupCreated(ctx, group, n)
	}
	return group, nil
}

func (e *Engine) normalize(row *value.Row) *value.Row {
	if e.sparseThreshold <= 0 {
		return row
	}
	schema := e.mixture.ValueSchema()
	if !schema.IsValidObserved(&row.Observed) {
		return row
	}
	copyRow(&e.norm, row)
	schema.NormalizeSmall(&e.norm.Observed, e.sparseThreshold)
	return &e.norm
}

// Remove takes row out of the group it was added to. row must hold the
// same values it was added with. It returns the group the row left.
func (e *Engine) Remove(ctx context.Context, rowID uint64, row *value.Row) (int, error) {
	start := time.Now()

	e.mu.Lock()
	group, err := e.remove(ctx, rowID, row)
	e.mu.Unlock()

	e.metrics.RecordRemove(time.Since(start), err)
	e.logger.LogRemove(ctx, rowID, group, err)
	return group, err
}

func (e *Engine) remove(ctx context.Context, rowID uint64, row *value.Row) (int, error) {
	group, ok := e.assign.Group(rowID)
	if !ok {
		return -1, fmt.Errorf("%w: row %d", ErrNoAssignment, rowID)
	}

	before := e.mixture.GroupCount()
	if err := e.mixture.RemoveValue(group, row, e.rng); err != nil {
		return -1, translateError(err)
	}
	e.assign.unassign(rowID)

	if n := e.mixture.GroupCount(); n < before {
		e.assign.removeGroup(group)
		moved := before - 1
		if moved == group {
			moved = -1
		}
		e.metrics.RecordGroups(n)
		e.logger.LogGroupRemoved(ctx, group, moved, n)
	}
	return group, nil
}

// Infer adds every row from src in order. It returns the number of rows
// added. On failure the returned error is an *ErrRow; rows before it stay
// added.
func (e *Engine) Infer(ctx context.Context, src RowSource) (int, error) {
	start := time.Now()

	var (
		row  value.Row
		rows int
		err  error
	)
	for {
		if err = ctx.Err(); err != nil {
			break
		}
		var id uint64
		id, err = src.Next(ctx, &row)
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			err = &ErrRow{RowID: id, Offset: rows, cause: translateError(err)}
			break
		}
		if _, err = e.Add(ctx, id, &row); err != nil {
			err = &ErrRow{RowID: id, Offset: rows, cause: err}
			break
		}
		rows++
		if e.progress != nil {
			e.progress.Do(func() {
				e.logger.LogProgress(ctx, rows, e.GroupCount())
			})
		}
	}

	groups := e.GroupCount()
	e.metrics.RecordInfer(rows, time.Since(start), err)
	e.logger.LogInfer(ctx, rows, groups, err)
	return rows, err
}

// Dump writes the groups to groupsName and, if assignName is not empty, the
// row assignments to assignName. Both are written concurrently and
// compressed by file suffix.
func (e *Engine) Dump(ctx context.Context, store blobstore.BlobStore, groupsName, assignName string) error {
	start := time.Now()

	e.mu.Lock()
	groups := e.mixture.GroupCount()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return WriteBlob(gctx, store, groupsName, func(w io.Writer) error {
			_, err := e.mixture.Dump(w)
			return err
		})
	})
	if assignName != "" {
		g.Go(func() error {
			return WriteBlob(gctx, store, assignName, func(w io.Writer) error {
				_, err := e.assign.Dump(w, e.codec)
				return err
			})
		})
	}
	err := translateError(g.Wait())
	e.mu.Unlock()

	e.metrics.RecordDump(time.Since(start), err)
	e.logger.LogDump(ctx, groupsName, assignName, groups, err)
	return err
}

// Load replaces the engine state with a dump written by Dump. assignName
// may be empty, in which case no row assignments are restored. On error
// the engine is left unchanged.
func (e *Engine) Load(ctx context.Context, store blobstore.BlobStore, groupsName, assignName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		groupsData []byte
		assign     = NewAssignments()
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := OpenBlob(gctx, store, groupsName)
		if err != nil {
			return err
		}
		defer r.Close()
		groupsData, err = io.ReadAll(r)
		return err
	})
	if assignName != "" {
		g.Go(func() error {
			r, err := OpenBlob(gctx, store, assignName)
			if err != nil {
				return err
			}
			defer r.Close()
			assign, err = LoadAssignments(r, e.codec)
			return err
		})
	}
	err := g.Wait()

	var pm *mixture.ProductMixture
	if err == nil {
		pm, err = e.loadMixture(groupsData)
	}
	if err == nil && assignName != "" {
		err = checkAssignments(pm, assign)
	}
	err = translateError(err)

	groups := 0
	if err == nil {
		assign.grow(pm.GroupCount())
		e.mixture = pm
		e.assign = assign
		groups = pm.GroupCount()
		e.metrics.RecordGroups(groups)
	}
	e.logger.LogLoad(ctx, groupsName, assignName, groups, err)
	return err
}

func (e *Engine) loadMixture(data []byte) (*mixture.ProductMixture, error) {
	pm, err := mixture.New(e.mixture.Model(),
		mixture.WithCheckLevel(e.mixture.CheckLevel()),
		mixture.WithCodec(e.codec),
	)
	if err != nil {
		return nil, err
	}
	if err := pm.Load(bytes.NewReader(data), e.rng); err != nil {
		return nil, err
	}
	return pm, nil
}

func checkAssignments(pm *mixture.ProductMixture, a *Assignments) error {
	counts := pm.Counts()
	if a.GroupCount() > len(counts) {
		return fmt.Errorf("%w: assignments reference group %d of %d", ErrCorruptDump, a.GroupCount()-1, len(counts))
	}
	for g, n := range counts {
		if a.Count(g) != uint64(n) {
			return fmt.Errorf("%w: group %d holds %d values but %d rows are assigned", ErrCorruptDump, g, n, a.Count(g))
		}
	}
	return nil
}
