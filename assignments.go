package mixgo

import (
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/internal/stream"
)

// AssignmentRecord is one dumped row-to-group assignment.
type AssignmentRecord struct {
	RowID   uint64 `json:"row_id"`
	GroupID int    `json:"group_id"`
}

// Assignments maps row ids to the group they were added to.
//
// Group ids follow the mixture's slot numbering: when a slot is dissolved
// the last slot is renumbered into its place, and Assignments does the
// same.
type Assignments struct {
	groups []*roaring64.Bitmap
	rows   map[uint64]int
}

// NewAssignments creates an empty assignment table.
func NewAssignments() *Assignments {
	return &Assignments{rows: make(map[uint64]int)}
}

// Len returns the number of assigned rows.
func (a *Assignments) Len() int { return len(a.rows) }

// GroupCount returns the number of tracked groups.
func (a *Assignments) GroupCount() int { return len(a.groups) }

// Group returns the group row is assigned to.
func (a *Assignments) Group(rowID uint64) (int, bool) {
	g, ok := a.rows[rowID]
	return g, ok
}

// Count returns the number of rows in group g.
func (a *Assignments) Count(g int) uint64 {
	if g < 0 || g >= len(a.groups) {
		return 0
	}
	return a.groups[g].GetCardinality()
}

// Members returns a copy of the row ids in group g.
func (a *Assignments) Members(g int) *roaring64.Bitmap {
	if g < 0 || g >= len(a.groups) {
		return roaring64.New()
	}
	return a.groups[g].Clone()
}

func (a *Assignments) grow(n int) {
	for len(a.groups) < n {
		a.groups = append(a.groups, roaring64.New())
	}
}

func (a *Assignments) assign(rowID uint64, g int) {
	a.grow(g + 1)
	a.groups[g].Add(rowID)
	a.rows[rowID] = g
}

func (a *Assignments) unassign(rowID uint64) (int, bool) {
	g, ok := a.rows[rowID]
	if !ok {
		return 0, false
	}
	a.groups[g].Remove(rowID)
	delete(a.rows, rowID)
	return g, true
}

// removeGroup drops group g by moving the last group into its place.
func (a *Assignments) removeGroup(g int) {
	last := len(a.groups) - 1
	if g != last {
		moved := a.groups[last]
		it := moved.Iterator()
		for it.HasNext() {
			a.rows[it.Next()] = g
		}
		a.groups[g] = moved
	}
	a.groups[last] = nil
	a.groups = a.groups[:last]
}

// Dump writes one framed record per assigned row, ordered by group and
// then row id. It returns the number of records written.
func (a *Assignments) Dump(w io.Writer, c codec.Codec) (int, error) {
	sw := stream.NewWriter(w)
	for g, members := range a.groups {
		it := members.Iterator()
		for it.HasNext() {
			data, err := c.Marshal(&AssignmentRecord{RowID: it.Next(), GroupID: g})
			if err != nil {
				return sw.Count(), err
			}
			if err := sw.Write(data); err != nil {
				return sw.Count(), err
			}
		}
	}
	return sw.Count(), sw.Flush()
}

// LoadAssignments reads a dump written by Assignments.Dump.
func LoadAssignments(r io.Reader, c codec.Codec) (*Assignments, error) {
	a := NewAssignments()
	sr := stream.NewReader(r)
	for {
		data, err := sr.Next()
		if errors.Is(err, io.EOF) {
			return a, nil
		}
		if err != nil {
			return nil, err
		}
		var rec AssignmentRecord
		if err := c.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: assignment %d: %w", ErrCorruptDump, a.Len(), err)
		}
		if rec.GroupID < 0 {
			return nil, fmt.Errorf("%w: row %d has negative group %d", ErrCorruptDump, rec.RowID, rec.GroupID)
		}
		if _, dup := a.rows[rec.RowID]; dup {
			return nil, fmt.Errorf("%w: row %d assigned twice", ErrCorruptDump, rec.RowID)
		}
		a.assign(rec.RowID, rec.GroupID)
	}
}
