package compression

import (
	"bytes"
	"errors"
	"fmt"

	lzo "github.com/rasky/go-lzo"
)

var (
	ErrBlockDecompress = errors.New("compression: block decompression failed")
	ErrBlockSize       = errors.New("compression: block size mismatch")
)

// BlockDecompressor expands a block-compressed payload whose decompressed
// length is known up front.
type BlockDecompressor interface {
	Decompress(src []byte, size int) ([]byte, error)
}

// LZO decompresses LZO1X streams, the block codec of save containers.
type LZO struct{}

// Decompress expands src and verifies the result is exactly size bytes.
func (LZO) Decompress(src []byte, size int) (out []byte, err error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrBlockSize, size)
	}

	// Corrupt input must surface as an error, never a panic.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: lzo1x: %v", ErrBlockDecompress, r)
		}
	}()

	out, err = lzo.Decompress1X(bytes.NewReader(src), len(src), size)
	if err != nil {
		return nil, fmt.Errorf("%w: lzo1x: %w", ErrBlockDecompress, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: got %d bytes, declared %d", ErrBlockSize, len(out), size)
	}
	return out, nil
}
