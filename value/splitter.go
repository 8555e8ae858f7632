package value

import (
	"fmt"

	"github.com/hupe1980/mixgo/model"
)

// Splitter partitions the columns of full rows across part rows and joins
// part rows back into full rows.
//
// Within every part, columns keep the physical packing order of the full
// row (booleans, counts, reals; then original column order), so each part
// row is a valid row of its part schema.
//
// A Splitter reuses scratch buffers in Join and is therefore not safe for
// concurrent use. Give each concurrent caller its own Splitter.
type Splitter struct {
	schema       Schema
	partSchemas  []Schema
	fullToPartID []uint32
	fullToPart   []uint32
	fullToPacked []uint32
	level        CheckLevel

	// scratch for Join
	sparsePos []int
	packedPos []int
}

// NewSplitter creates a splitter routing full column i to part
// fullToPartID[i].
func NewSplitter(schema Schema, fullToPartID []uint32, partCount int, level CheckLevel) (*Splitter, error) {
	total := schema.TotalSize()
	if partCount < 1 {
		return nil, fmt.Errorf("part count must be positive, got %d", partCount)
	}
	if len(fullToPartID) != total {
		return nil, &ErrShapeMismatch{Field: "full_to_partid", Want: total, Got: len(fullToPartID)}
	}

	s := &Splitter{
		schema:       schema,
		partSchemas:  make([]Schema, partCount),
		fullToPartID: make([]uint32, total),
		fullToPart:   make([]uint32, total),
		fullToPacked: make([]uint32, total),
		level:        level,
	}
	copy(s.fullToPartID, fullToPartID)

	for i, p := range fullToPartID {
		if int(p) >= partCount {
			return nil, fmt.Errorf("column %d: part id %d out of range %d", i, p, partCount)
		}
		dt := schema.DataTypeOf(i)
		s.fullToPacked[i] = uint32(s.partSchemas[p].Size(dt))
		s.partSchemas[p].grow(dt)
	}
	for i, p := range fullToPartID {
		dt := schema.DataTypeOf(i)
		s.fullToPart[i] = uint32(s.partSchemas[p].Base(dt)) + s.fullToPacked[i]
	}
	return s, nil
}

// Schema returns the full-row schema.
func (s *Splitter) Schema() Schema { return s.schema }

// PartCount returns the number of parts.
func (s *Splitter) PartCount() int { return len(s.partSchemas) }

// PartSchemas returns the per-part schemas. The slice must not be modified.
func (s *Splitter) PartSchemas() []Schema { return s.partSchemas }

// FullToPartID returns the part of each full column.
func (s *Splitter) FullToPartID() []uint32 { return s.fullToPartID }

// FullToPart returns the index of each full column within its part.
func (s *Splitter) FullToPart() []uint32 { return s.fullToPart }

// Validate checks a full row at the splitter's check level.
func (s *Splitter) Validate(full *Row) error {
	return s.schema.check(full, s.level)
}

// ValidateParts checks the part rows: one per part, all sharing one
// sparsity, each valid under its part schema at the splitter's check level.
func (s *Splitter) ValidateParts(parts []Row) error {
	if len(parts) != len(s.partSchemas) {
		return &ErrShapeMismatch{Field: "parts", Want: len(s.partSchemas), Got: len(parts)}
	}
	sparsity := parts[0].Observed.Sparsity
	for p := range parts {
		if got := parts[p].Observed.Sparsity; got != sparsity {
			return violation("part %d sparsity %s, want %s", p, got, sparsity)
		}
		if err := s.partSchemas[p].check(&parts[p], s.level); err != nil {
			return fmt.Errorf("part %d: %w", p, err)
		}
	}
	return nil
}

// Split routes each observed value of full into its part row.
// Every part row takes the sparsity of full. parts must have PartCount
// entries; their previous contents are overwritten.
func (s *Splitter) Split(full *Row, parts []Row) error {
	if len(parts) != len(s.partSchemas) {
		return &ErrShapeMismatch{Field: "parts", Want: len(s.partSchemas), Got: len(parts)}
	}
	if err := s.Validate(full); err != nil {
		return err
	}
	s.resetParts(full.Observed.Sparsity, parts)

	var pos [3]int
	switch full.Observed.Sparsity {
	case All:
		for i, p := range s.fullToPartID {
			dt := s.schema.DataTypeOf(i)
			if err := appendPacked(&parts[p], full, dt, i-s.schema.Base(dt)); err != nil {
				return err
			}
		}
	case Dense:
		for i, observed := range full.Observed.Dense {
			if !observed {
				continue
			}
			p := s.fullToPartID[i]
			dt := s.schema.DataTypeOf(i)
			parts[p].Observed.Dense[s.fullToPart[i]] = true
			if err := appendPacked(&parts[p], full, dt, pos[dt]); err != nil {
				return err
			}
			pos[dt]++
		}
	case Sparse:
		for _, i := range full.Observed.Sparse {
			if int(i) >= len(s.fullToPartID) {
				return violation("sparse index %d out of range %d", i, len(s.fullToPartID))
			}
			p := s.fullToPartID[i]
			dt := s.schema.DataTypeOf(int(i))
			parts[p].Observed.Sparse = append(parts[p].Observed.Sparse, s.fullToPart[i])
			if err := appendPacked(&parts[p], full, dt, pos[dt]); err != nil {
				return err
			}
			pos[dt]++
		}
	}

	if s.level >= CheckStrict {
		return s.ValidateParts(parts)
	}
	return nil
}

// SplitObserved routes only the observed descriptor of a full row,
// leaving the parts' packed values untouched.
func (s *Splitter) SplitObserved(full *Observed, parts []Row) error {
	if len(parts) != len(s.partSchemas) {
		return &ErrShapeMismatch{Field: "parts", Want: len(s.partSchemas), Got: len(parts)}
	}
	if s.level >= CheckBasic {
		if err := s.schema.ValidateObserved(full); err != nil {
			return err
		}
	}
	for p := range parts {
		o := &parts[p].Observed
		o.Reset(full.Sparsity)
		if full.Sparsity == Dense {
			o.Dense = resizeBools(o.Dense, s.partSchemas[p].TotalSize())
		}
	}

	switch full.Sparsity {
	case Dense:
		for i, observed := range full.Dense {
			if observed {
				parts[s.fullToPartID[i]].Observed.Dense[s.fullToPart[i]] = true
			}
		}
	case Sparse:
		for _, i := range full.Sparse {
			if int(i) >= len(s.fullToPartID) {
				return violation("sparse index %d out of range %d", i, len(s.fullToPartID))
			}
			o := &parts[s.fullToPartID[i]].Observed
			o.Sparse = append(o.Sparse, s.fullToPart[i])
		}
	}
	return nil
}

// Join merges part rows into full. It is the inverse of Split.
//
// Join is not safe for concurrent use.
func (s *Splitter) Join(full *Row, parts []Row) error {
	if err := s.ValidateParts(parts); err != nil {
		return err
	}
	sparsity := parts[0].Observed.Sparsity
	full.Reset(sparsity)

	partCount := len(s.partSchemas)
	s.packedPos = resizeInts(s.packedPos, partCount*len(model.DataTypes))
	packed := func(p uint32, dt model.DataType) *int {
		return &s.packedPos[int(p)*len(model.DataTypes)+int(dt)]
	}

	switch sparsity {
	case All:
		for i, p := range s.fullToPartID {
			dt := s.schema.DataTypeOf(i)
			if err := appendPacked(full, &parts[p], dt, int(s.fullToPacked[i])); err != nil {
				return err
			}
		}
	case Dense:
		full.Observed.Dense = resizeBools(full.Observed.Dense, s.schema.TotalSize())
		for i, p := range s.fullToPartID {
			part := &parts[p]
			local := int(s.fullToPart[i])
			if local >= len(part.Observed.Dense) || !part.Observed.Dense[local] {
				continue
			}
			full.Observed.Dense[i] = true
			dt := s.schema.DataTypeOf(i)
			pos := packed(p, dt)
			if err := appendPacked(full, part, dt, *pos); err != nil {
				return err
			}
			*pos++
		}
	case Sparse:
		s.sparsePos = resizeInts(s.sparsePos, partCount)
		for i, p := range s.fullToPartID {
			part := &parts[p]
			cursor := &s.sparsePos[p]
			if *cursor >= len(part.Observed.Sparse) || part.Observed.Sparse[*cursor] != s.fullToPart[i] {
				continue
			}
			*cursor++
			full.Observed.Sparse = append(full.Observed.Sparse, uint32(i))
			dt := s.schema.DataTypeOf(i)
			pos := packed(p, dt)
			if err := appendPacked(full, part, dt, *pos); err != nil {
				return err
			}
			*pos++
		}
		for p, cursor := range s.sparsePos {
			if cursor != len(parts[p].Observed.Sparse) {
				return violation("part %d: sparse index %d not consumed", p, parts[p].Observed.Sparse[cursor])
			}
		}
	}

	if s.level >= CheckStrict {
		return s.schema.Validate(full)
	}
	return nil
}

func (s *Splitter) resetParts(sparsity Sparsity, parts []Row) {
	for p := range parts {
		parts[p].Reset(sparsity)
		if sparsity == Dense {
			parts[p].Observed.Dense = resizeBools(parts[p].Observed.Dense, s.partSchemas[p].TotalSize())
		}
	}
}

// appendPacked appends src's packed value of type dt at pos to dst.
func appendPacked(dst, src *Row, dt model.DataType, pos int) error {
	switch dt {
	case model.Boolean:
		if pos >= len(src.Booleans) {
			return violation("boolean value %d missing", pos)
		}
		dst.Booleans = append(dst.Booleans, src.Booleans[pos])
	case model.Count:
		if pos >= len(src.Counts) {
			return violation("count value %d missing", pos)
		}
		dst.Counts = append(dst.Counts, src.Counts[pos])
	case model.Real:
		if pos >= len(src.Reals) {
			return violation("real value %d missing", pos)
		}
		dst.Reals = append(dst.Reals, src.Reals[pos])
	}
	return nil
}

func resizeInts(b []int, n int) []int {
	if cap(b) < n {
		return make([]int, n)
	}
	b = b[:n]
	clear(b)
	return b
}
