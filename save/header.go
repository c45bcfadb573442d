package save

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the length of the inner header in front of the Huffman stream.
const HeaderSize = 19

// Magic is the tag at offset 4 of the inner header.
var Magic = [3]byte{'W', 'S', 'G'}

// Header is the inner header of a block-decompressed container.
//
// InnerSize is stored big-endian, the remaining integers little-endian.
// Only Magic and PayloadSize drive decoding: PayloadSize is the exact
// Huffman output length. InnerSize, Version and Hash are reported as read
// and never checked, so saves written by other game builds still load.
type Header struct {
	InnerSize   uint32
	Magic       [3]byte
	Version     uint32
	Hash        uint32
	PayloadSize int32
}

// ParseHeader decodes the fixed header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTooShort, HeaderSize, len(b))
	}

	var h Header
	h.InnerSize = binary.BigEndian.Uint32(b[0:4])
	copy(h.Magic[:], b[4:7])
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, h.Magic[:])
	}
	h.Version = binary.LittleEndian.Uint32(b[7:11])
	h.Hash = binary.LittleEndian.Uint32(b[11:15])
	h.PayloadSize = int32(binary.LittleEndian.Uint32(b[15:19]))
	return h, nil
}
