// Package save decodes game save containers.
//
// A container is a SHA-1 digest of everything after it, followed by an
// LZO1X-compressed body. The body starts with a 19-byte header tagged
// "WSG" and continues with a Huffman-coded protobuf record:
//
//	container:    digest[20] | size u32be | lzo1x(...)
//	intermediate: inner u32be | "WSG" | version u32le | hash u32le | size i32le | huffman(...)
//
// Decoding runs validate, block-decompress, header, huffman and parse in
// that order. The first failure ends the run and is returned as a
// *LoadError naming the stage.
package save

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Oberacda/Borderlands2SaveEditor/compression"
	"github.com/Oberacda/Borderlands2SaveEditor/internal/bitstream"
)

// Container layout
const (
	DigestSize       = sha1.Size
	sizePrefixSize   = 4
	MinContainerSize = DigestSize + sizePrefixSize
)

// Limits bound the sizes a container may declare. Zero fields use the
// matching DefaultLimits value.
type Limits struct {
	MaxFileSize    int64
	MaxBlockSize   int
	MaxPayloadSize int
}

// DefaultLimits are far above any real save while keeping a forged size
// field from forcing a huge allocation.
var DefaultLimits = Limits{
	MaxFileSize:    64 << 20,
	MaxBlockSize:   256 << 20,
	MaxPayloadSize: 256 << 20,
}

func (l Limits) withDefaults() Limits {
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = DefaultLimits.MaxFileSize
	}
	if l.MaxBlockSize <= 0 {
		l.MaxBlockSize = DefaultLimits.MaxBlockSize
	}
	if l.MaxPayloadSize <= 0 {
		l.MaxPayloadSize = DefaultLimits.MaxPayloadSize
	}
	return l
}

// DigestFunc computes the container checksum.
type DigestFunc func(data []byte) [DigestSize]byte

// SHA1Digest is the checksum used by save containers.
func SHA1Digest(data []byte) [DigestSize]byte {
	return sha1.Sum(data)
}

// Decoder decodes save containers. The zero value is ready to use with
// SHA-1, LZO1X, the protobuf record parser and DefaultLimits.
//
// A Decoder holds no per-call state and may be shared between goroutines.
type Decoder struct {
	Digest DigestFunc
	Block  compression.BlockDecompressor
	Parser RecordParser
	Limits Limits
	Logger *slog.Logger
}

func (d *Decoder) digest(data []byte) [DigestSize]byte {
	if d.Digest != nil {
		return d.Digest(data)
	}
	return SHA1Digest(data)
}

func (d *Decoder) block() compression.BlockDecompressor {
	if d.Block != nil {
		return d.Block
	}
	return compression.LZO{}
}

func (d *Decoder) parser() RecordParser {
	if d.Parser != nil {
		return d.Parser
	}
	return ProtoParser{}
}

func (d *Decoder) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Decode decodes an in-memory container.
func (d *Decoder) Decode(ctx context.Context, data []byte) (*SaveGame, error) {
	buf, err := d.unseal(data)
	if err != nil {
		return nil, err
	}
	if err := canceled(ctx, StageHeader); err != nil {
		return nil, err
	}
	return d.DecodeIntermediate(ctx, buf)
}

// DecodeIntermediate decodes an already block-decompressed buffer,
// starting at the header stage.
func (d *Decoder) DecodeIntermediate(ctx context.Context, buf []byte) (*SaveGame, error) {
	h, err := d.header(buf)
	if err != nil {
		return nil, err
	}
	if err := canceled(ctx, StageHuffman); err != nil {
		return nil, err
	}
	r := bitstream.NewReader(buf[HeaderSize:])
	tree, err := compression.BuildTree(r)
	if err != nil {
		return nil, stageError(StageHuffman, err)
	}
	return d.decodeRecord(ctx, r, tree, h)
}

// decodeRecord runs the rest of the huffman stage and the parse stage,
// reading symbols from r positioned after the tree description.
func (d *Decoder) decodeRecord(ctx context.Context, r *bitstream.Reader, tree *compression.Tree, h Header) (*SaveGame, error) {
	payload, err := compression.DecodeSymbols(r, tree, int(h.PayloadSize))
	if err != nil {
		return nil, stageError(StageHuffman, err)
	}
	if err := canceled(ctx, StageParse); err != nil {
		return nil, err
	}

	g, err := d.parser().ParseRecord(payload)
	if err != nil {
		return nil, stageError(StageParse, err)
	}
	return g, nil
}

// canceled reports a done context as a failure of the stage about to run.
func canceled(ctx context.Context, next Stage) error {
	if err := ctx.Err(); err != nil {
		return stageError(next, err)
	}
	return nil
}

// LoadFile reads the file at path and decodes it. The file is closed
// before decoding starts.
func (d *Decoder) LoadFile(ctx context.Context, path string) (*SaveGame, error) {
	data, err := d.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := d.Decode(ctx, data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return g, nil
}

// ReadFile reads the file at path, refusing files larger than
// Limits.MaxFileSize. Failures are reported at StageRead.
func (d *Decoder) ReadFile(path string) ([]byte, error) {
	limits := d.Limits.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageRead, Err: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageRead, Err: err}
	}
	if stat.Size() > limits.MaxFileSize {
		return nil, &LoadError{Path: path, Stage: StageRead,
			Err: fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, stat.Size(), limits.MaxFileSize)}
	}

	data, err := io.ReadAll(io.LimitReader(f, limits.MaxFileSize+1))
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageRead, Err: err}
	}
	if int64(len(data)) > limits.MaxFileSize {
		return nil, &LoadError{Path: path, Stage: StageRead,
			Err: fmt.Errorf("%w: grew past limit %d while reading", ErrFileTooLarge, limits.MaxFileSize)}
	}
	return data, nil
}

// unseal runs the validate and block-decompress stages.
func (d *Decoder) unseal(data []byte) ([]byte, error) {
	if err := d.validate(data); err != nil {
		return nil, err
	}

	limits := d.Limits.withDefaults()
	declared := binary.BigEndian.Uint32(data[DigestSize:MinContainerSize])
	if uint64(declared) > uint64(limits.MaxBlockSize) {
		return nil, stageError(StageBlockDecompress,
			fmt.Errorf("%w: block size %d exceeds limit %d", ErrInvalidSize, declared, limits.MaxBlockSize))
	}

	buf, err := d.block().Decompress(data[MinContainerSize:], int(declared))
	if err != nil {
		return nil, stageError(StageBlockDecompress, err)
	}
	d.logger().Debug("block decompressed",
		"compressed_size", len(data)-MinContainerSize,
		"declared_size", declared)
	return buf, nil
}

func (d *Decoder) validate(data []byte) error {
	if len(data) < MinContainerSize {
		return stageError(StageValidate,
			fmt.Errorf("%w: container has %d bytes, need at least %d", ErrTooShort, len(data), MinContainerSize))
	}
	sum := d.digest(data[DigestSize:])
	if !bytes.Equal(sum[:], data[:DigestSize]) {
		return stageError(StageValidate, ErrChecksumMismatch)
	}
	return nil
}

// header runs the header stage and checks the declared payload size.
func (d *Decoder) header(buf []byte) (Header, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return Header{}, stageError(StageHeader, err)
	}
	limits := d.Limits.withDefaults()
	if h.PayloadSize < 0 || int64(h.PayloadSize) > int64(limits.MaxPayloadSize) {
		return Header{}, stageError(StageHeader,
			fmt.Errorf("%w: payload size %d outside [0, %d]", ErrInvalidSize, h.PayloadSize, limits.MaxPayloadSize))
	}
	d.logger().Debug("header parsed",
		"inner_size", h.InnerSize,
		"version", h.Version,
		"hash", h.Hash,
		"payload_size", h.PayloadSize)
	return h, nil
}

// ContainerInfo describes a container without decoding its record.
type ContainerInfo struct {
	Size           int
	Digest         [DigestSize]byte
	BlockSize      int
	CompressedSize int
	Header         Header
	TreeNodes      int
	TreeSymbols    int
	TreeBits       int
}

// Inspect validates data, decompresses it and parses the header and the
// Huffman tree, without decoding the payload.
func (d *Decoder) Inspect(data []byte) (*ContainerInfo, error) {
	info, _, _, err := d.inspect(data)
	return info, err
}

// InspectRecord is Inspect followed by decoding the record, sharing one
// pass over the container.
func (d *Decoder) InspectRecord(ctx context.Context, data []byte) (*ContainerInfo, *SaveGame, error) {
	info, r, tree, err := d.inspect(data)
	if err != nil {
		return nil, nil, err
	}
	if err := canceled(ctx, StageHuffman); err != nil {
		return nil, nil, err
	}
	g, err := d.decodeRecord(ctx, r, tree, info.Header)
	if err != nil {
		return nil, nil, err
	}
	return info, g, nil
}

func (d *Decoder) inspect(data []byte) (*ContainerInfo, *bitstream.Reader, *compression.Tree, error) {
	buf, err := d.unseal(data)
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := d.header(buf)
	if err != nil {
		return nil, nil, nil, err
	}

	r := bitstream.NewReader(buf[HeaderSize:])
	tree, err := compression.BuildTree(r)
	if err != nil {
		return nil, nil, nil, stageError(StageHuffman, err)
	}

	info := &ContainerInfo{
		Size:           len(data),
		BlockSize:      len(buf),
		CompressedSize: len(data) - MinContainerSize,
		Header:         h,
		TreeNodes:      tree.Len(),
		TreeSymbols:    len(tree.Symbols()),
		TreeBits:       r.Offset(),
	}
	copy(info.Digest[:], data[:DigestSize])
	return info, r, tree, nil
}

var defaultDecoder Decoder

// Decode decodes an in-memory container with the default Decoder.
func Decode(data []byte) (*SaveGame, error) {
	return defaultDecoder.Decode(context.Background(), data)
}

// DecodeIntermediate decodes a block-decompressed buffer with the default Decoder.
func DecodeIntermediate(buf []byte) (*SaveGame, error) {
	return defaultDecoder.DecodeIntermediate(context.Background(), buf)
}

// LoadFile loads a save file with the default Decoder.
func LoadFile(path string) (*SaveGame, error) {
	return defaultDecoder.LoadFile(context.Background(), path)
}

// Inspect describes a container with the default Decoder.
func Inspect(data []byte) (*ContainerInfo, error) {
	return defaultDecoder.Inspect(data)
}
