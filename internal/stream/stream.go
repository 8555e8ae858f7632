package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/mixgo/internal/hash"
)

const (
	magic      = "MIXS"
	version    = 1
	headerSize = 8
	frameSize  = 8

	// MaxRecordSize bounds a single record payload.
	MaxRecordSize = 64 << 20
)

var (
	ErrInvalidHeader       = errors.New("invalid stream header")
	ErrIncompatibleVersion = errors.New("incompatible stream version")
	ErrInvalidCRC          = errors.New("invalid record checksum")
	ErrRecordTooLarge      = errors.New("record too large")
	ErrTruncated           = errors.New("truncated record")
)

// Writer appends records to an underlying writer.
//
// Writer buffers; call Flush when done.
type Writer struct {
	w       *bufio.Writer
	frame   [frameSize]byte
	started bool
	count   int
}

// NewWriter creates a record writer. The stream header is written with the
// first record or on Flush.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) writeHeader() error {
	if w.started {
		return nil
	}
	w.started = true
	var hdr [headerSize]byte
	copy(hdr[:4], magic)
	binary.LittleEndian.PutUint32(hdr[4:], version)
	_, err := w.w.Write(hdr[:])
	return err
}

// Write appends one record.
func (w *Writer) Write(payload []byte) error {
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(w.frame[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(w.frame[4:], hash.CRC32C(payload))
	if _, err := w.w.Write(w.frame[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Flush()
}

// Reader reads records written by Writer.
type Reader struct {
	r      *bufio.Reader
	buf    []byte
	frame  [frameSize]byte
	header bool
	offset int64
}

// NewReader creates a record reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) readHeader() error {
	if r.header {
		return nil
	}
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: file too small", ErrInvalidHeader)
		}
		return err
	}
	if string(hdr[:4]) != magic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, hdr[:4])
	}
	if v := binary.LittleEndian.Uint32(hdr[4:]); v != version {
		return fmt.Errorf("%w: %d", ErrIncompatibleVersion, v)
	}
	r.header = true
	r.offset = headerSize
	return nil
}

// Next returns the next record payload. The returned slice is valid until
// the next call. Next returns io.EOF at a clean end of stream.
func (r *Reader) Next() ([]byte, error) {
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r.r, r.frame[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncated, r.offset)
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(r.frame[0:])
	sum := binary.LittleEndian.Uint32(r.frame[4:])
	if n > MaxRecordSize {
		return nil, fmt.Errorf("%w: %d bytes at offset %d", ErrRecordTooLarge, n, r.offset)
	}
	if cap(r.buf) < int(n) {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w at offset %d", ErrTruncated, r.offset)
		}
		return nil, err
	}
	if hash.CRC32C(r.buf) != sum {
		return nil, fmt.Errorf("%w at offset %d", ErrInvalidCRC, r.offset)
	}
	r.offset += frameSize + int64(n)
	return r.buf, nil
}

// Offset returns the byte offset of the next record.
func (r *Reader) Offset() int64 { return r.offset }
