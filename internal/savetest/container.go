package savetest

import (
	"crypto/sha1"
	"encoding/binary"

	lzo "github.com/rasky/go-lzo"
)

// Magic is the tag at offset 4 of the inner header.
var Magic = [3]byte{'W', 'S', 'G'}

// Header holds the fields of the 19-byte inner header.
type Header struct {
	InnerSize   uint32
	Magic       [3]byte
	Version     uint32
	Hash        uint32
	PayloadSize int32
}

// DefaultHeader returns a header for a payload of n bytes whose
// informational fields carry recognizable values.
func DefaultHeader(n int) Header {
	return Header{
		InnerSize:   uint32(n) + 15,
		Magic:       Magic,
		Version:     2,
		Hash:        0xC0FFEE42,
		PayloadSize: int32(n),
	}
}

// Bytes encodes h in its on-disk layout.
func (h Header) Bytes() []byte {
	b := make([]byte, 19)
	binary.BigEndian.PutUint32(b[0:4], h.InnerSize)
	copy(b[4:7], h.Magic[:])
	binary.LittleEndian.PutUint32(b[7:11], h.Version)
	binary.LittleEndian.PutUint32(b[11:15], h.Hash)
	binary.LittleEndian.PutUint32(b[15:19], uint32(h.PayloadSize))
	return b
}

// Intermediate returns the block-decompressed form of a container:
// the header followed by the Huffman-encoded payload.
func Intermediate(h Header, payload []byte) []byte {
	return append(h.Bytes(), EncodeHuffman(payload)...)
}

// Seal LZO-compresses intermediate and prepends the size prefix and the
// SHA-1 digest.
func Seal(intermediate []byte) []byte {
	compressed := lzo.Compress1X(intermediate)
	body := make([]byte, 4, 4+len(compressed))
	binary.BigEndian.PutUint32(body, uint32(len(intermediate)))
	body = append(body, compressed...)
	return Sign(body)
}

// Sign prepends the SHA-1 digest of body.
func Sign(body []byte) []byte {
	sum := sha1.Sum(body)
	return append(sum[:], body...)
}

// Container builds a complete, valid save container around payload.
func Container(payload []byte) []byte {
	return Seal(Intermediate(DefaultHeader(len(payload)), payload))
}
