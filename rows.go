package mixgo

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/mixgo/internal/stream"
	"github.com/hupe1980/mixgo/value"
)

// RowSource yields rows for inference.
type RowSource interface {
	// Next fills row and returns its id. It returns io.EOF after the last row.
	Next(ctx context.Context, row *value.Row) (uint64, error)
}

// RowReader reads a framed row stream. Each record holds the uvarint row id
// followed by the binary row encoding.
type RowReader struct {
	sr *stream.Reader
}

// NewRowReader creates a RowReader.
func NewRowReader(r io.Reader) *RowReader {
	return &RowReader{sr: stream.NewReader(r)}
}

// Next implements RowSource.
func (r *RowReader) Next(_ context.Context, row *value.Row) (uint64, error) {
	data, err := r.sr.Next()
	if err != nil {
		return 0, err
	}
	id, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad row id at offset %d", value.ErrMalformedRow, r.sr.Offset())
	}
	if err := row.UnmarshalBinary(data[n:]); err != nil {
		return id, err
	}
	return id, nil
}

// RowWriter writes a framed row stream readable by RowReader.
type RowWriter struct {
	sw  *stream.Writer
	buf []byte
}

// NewRowWriter creates a RowWriter. Call Flush when done.
func NewRowWriter(w io.Writer) *RowWriter {
	return &RowWriter{sw: stream.NewWriter(w)}
}

// Write appends one row.
func (w *RowWriter) Write(rowID uint64, row *value.Row) error {
	buf := binary.AppendUvarint(w.buf[:0], rowID)
	buf, err := row.AppendBinary(buf)
	if err != nil {
		return err
	}
	w.buf = buf
	return w.sw.Write(buf)
}

// Count returns the number of rows written.
func (w *RowWriter) Count() int { return w.sw.Count() }

// Flush writes buffered data.
func (w *RowWriter) Flush() error { return w.sw.Flush() }

// SliceSource serves rows from memory. Row ids are slice positions.
type SliceSource struct {
	rows []value.Row
	pos  int
}

// RowsOf creates a SliceSource over rows.
func RowsOf(rows []value.Row) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next implements RowSource.
func (s *SliceSource) Next(_ context.Context, row *value.Row) (uint64, error) {
	if s.pos >= len(s.rows) {
		return 0, io.EOF
	}
	copyRow(row, &s.rows[s.pos])
	id := uint64(s.pos)
	s.pos++
	return id, nil
}

func copyRow(dst, src *value.Row) {
	dst.Observed.Sparsity = src.Observed.Sparsity
	dst.Observed.Dense = append(dst.Observed.Dense[:0], src.Observed.Dense...)
	dst.Observed.Sparse = append(dst.Observed.Sparse[:0], src.Observed.Sparse...)
	dst.Booleans = append(dst.Booleans[:0], src.Booleans...)
	dst.Counts = append(dst.Counts[:0], src.Counts...)
	dst.Reals = append(dst.Reals[:0], src.Reals...)
}
