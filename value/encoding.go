package value

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Binary layout (all integers little endian):
//
//	[sparsity: 1 byte]
//	[observed: Dense  -> bools; Sparse -> uvarint n, n delta-coded uvarints]
//	[booleans: bools]
//	[counts:   uvarint n, n uvarints]
//	[reals:    uvarint n, n float32 bit patterns]
//
// where bools is [uvarint n][ceil(n/64) uint64 bit words].

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Row) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, 16+len(r.Counts)*2+len(r.Reals)*4))
}

// AppendBinary appends the binary encoding of r to b.
func (r *Row) AppendBinary(b []byte) ([]byte, error) {
	o := &r.Observed
	if o.Sparsity > None {
		return nil, fmt.Errorf("%w: invalid sparsity %d", ErrMalformedRow, uint8(o.Sparsity))
	}
	b = append(b, byte(o.Sparsity))
	switch o.Sparsity {
	case Dense:
		b = appendBools(b, o.Dense)
	case Sparse:
		b = binary.AppendUvarint(b, uint64(len(o.Sparse)))
		var prev uint32
		for _, i := range o.Sparse {
			b = binary.AppendUvarint(b, uint64(i-prev))
			prev = i
		}
	}

	b = appendBools(b, r.Booleans)

	b = binary.AppendUvarint(b, uint64(len(r.Counts)))
	for _, v := range r.Counts {
		b = binary.AppendUvarint(b, uint64(v))
	}

	b = binary.AppendUvarint(b, uint64(len(r.Reals)))
	for _, v := range r.Reals {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Existing slice capacity in r is reused.
func (r *Row) UnmarshalBinary(data []byte) error {
	d := decoder{buf: data}
	sparsity := Sparsity(d.readByte())
	if d.err == nil && sparsity > None {
		return fmt.Errorf("%w: invalid sparsity %d", ErrMalformedRow, uint8(sparsity))
	}
	r.Reset(sparsity)

	switch sparsity {
	case Dense:
		r.Observed.Dense = d.bools(r.Observed.Dense)
	case Sparse:
		n := d.length(1)
		var prev uint64
		for k := 0; k < n && d.err == nil; k++ {
			delta := d.uvarint()
			if k > 0 && delta == 0 {
				d.fail("sparse indices not increasing")
			}
			prev += delta
			if prev > math.MaxUint32 {
				d.fail("sparse index overflow")
			}
			r.Observed.Sparse = append(r.Observed.Sparse, uint32(prev))
		}
	}

	r.Booleans = d.bools(r.Booleans)

	n := d.length(1)
	for k := 0; k < n && d.err == nil; k++ {
		v := d.uvarint()
		if v > math.MaxUint32 {
			d.fail("count overflow")
		}
		r.Counts = append(r.Counts, uint32(v))
	}

	n = d.length(4)
	for k := 0; k < n && d.err == nil; k++ {
		r.Reals = append(r.Reals, math.Float32frombits(d.uint32()))
	}

	if d.err == nil && len(d.buf) != 0 {
		d.fail(fmt.Sprintf("%d trailing bytes", len(d.buf)))
	}
	return d.err
}

func appendBools(b []byte, values []bool) []byte {
	b = binary.AppendUvarint(b, uint64(len(values)))
	if len(values) == 0 {
		return b
	}
	bs := bitset.New(uint(len(values)))
	for i, v := range values {
		if v {
			bs.Set(uint(i))
		}
	}
	words := bs.Words()
	for w := range wordCount(len(values)) {
		var word uint64
		if w < len(words) {
			word = words[w]
		}
		b = binary.LittleEndian.AppendUint64(b, word)
	}
	return b
}

func wordCount(n int) int { return (n + 63) / 64 }

type decoder struct {
	buf []byte
	err error
}

func (d *decoder) fail(msg string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrMalformedRow, msg)
	}
}

func (d *decoder) readByte() byte {
	if d.err != nil {
		return 0
	}
	if len(d.buf) < 1 {
		d.fail("short buffer")
		return 0
	}
	v := d.buf[0]
	d.buf = d.buf[1:]
	return v
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.fail("bad uvarint")
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) uint32() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.buf) < 4 {
		d.fail("short buffer")
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf)
	d.buf = d.buf[4:]
	return v
}

// length reads an element count and checks it against the remaining bytes,
// given a minimum encoded size per element.
func (d *decoder) length(minSize int) int {
	n := d.uvarint()
	if d.err == nil && n > uint64(len(d.buf)/minSize) {
		d.fail(fmt.Sprintf("length %d exceeds buffer", n))
		return 0
	}
	return int(n)
}

func (d *decoder) bools(dst []bool) []bool {
	n := d.uvarint()
	if d.err != nil {
		return dst[:0]
	}
	if n > uint64(len(d.buf))*8 {
		d.fail(fmt.Sprintf("bitmask of %d bits exceeds buffer", n))
		return dst[:0]
	}
	words := wordCount(int(n))
	if words*8 > len(d.buf) {
		d.fail(fmt.Sprintf("bitmask of %d bits exceeds buffer", n))
		return dst[:0]
	}
	set := make([]uint64, words)
	for w := range set {
		set[w] = binary.LittleEndian.Uint64(d.buf[w*8:])
	}
	d.buf = d.buf[words*8:]
	bs := bitset.FromWithLength(uint(n), set)

	dst = resizeBools(dst, int(n))
	for i := range dst {
		dst[i] = bs.Test(uint(i))
	}
	return dst
}
