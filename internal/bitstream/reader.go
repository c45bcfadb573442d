// Package bitstream reads individual bits from a byte buffer, most
// significant bit first.
package bitstream

import "errors"

// ErrOutOfBounds is returned when a read would move past the last bit of
// the buffer.
var ErrOutOfBounds = errors.New("bitstream: read out of bounds")

// Reader is a forward-only cursor over the bits of a byte slice.
// The zero value reads from an empty buffer.
type Reader struct {
	data []byte
	pos  int // bit offset of the next read
}

// NewReader returns a Reader positioned at the first bit of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBit returns the bit under the cursor and advances by one.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= len(r.data)*8 {
		return false, ErrOutOfBounds
	}
	b := r.data[r.pos>>3]
	bit := (b>>(7-uint(r.pos&7)))&1 == 1
	r.pos++
	return bit, nil
}

// ReadByte assembles the next 8 bits into a byte. The first bit read
// becomes the most significant bit of the result.
func (r *Reader) ReadByte() (byte, error) {
	var v byte
	for i := 0; i < 8; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, nil
}

// Offset returns the number of bits consumed so far.
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}
