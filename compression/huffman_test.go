package compression

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/bitstream"
	"github.com/Oberacda/Borderlands2SaveEditor/internal/savetest"
)

func TestBuildTreeSingleLeaf(t *testing.T) {
	// 1 then 'A' (0x41): 1010 0000 1...
	r := bitstream.NewReader([]byte{0xA0, 0x80})
	tree, err := BuildTree(r)
	require.NoError(t, err)
	require.Equal(t, 1, tree.Len())
	assert.Equal(t, Node{Leaf: true, Symbol: 'A'}, tree.Node(0))
	assert.Equal(t, 9, r.Offset())
}

func TestBuildTreePreOrder(t *testing.T) {
	// internal(leaf 'a', internal(leaf 'b', leaf 'c'))
	var w savetest.BitWriter
	w.WriteBit(false)
	w.WriteBit(true)
	_ = w.WriteByte('a')
	w.WriteBit(false)
	w.WriteBit(true)
	_ = w.WriteByte('b')
	w.WriteBit(true)
	_ = w.WriteByte('c')

	r := bitstream.NewReader(w.Bytes())
	tree, err := BuildTree(r)
	require.NoError(t, err)
	require.Equal(t, 5, tree.Len())

	root := tree.Node(0)
	assert.False(t, root.Leaf)
	assert.Equal(t, 1, root.Left)
	assert.Equal(t, 2, root.Right)
	assert.Equal(t, Node{Leaf: true, Symbol: 'a'}, tree.Node(1))
	assert.Equal(t, 3, tree.Node(2).Left)
	assert.Equal(t, 4, tree.Node(2).Right)
	assert.Equal(t, []byte("abc"), tree.Symbols())
	assert.Equal(t, w.Bits(), r.Offset())

	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(i)
		if !n.Leaf {
			assert.Greater(t, n.Left, i)
			assert.Greater(t, n.Right, i)
		}
	}
}

func TestBuildTreeFullAlphabet(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	r := bitstream.NewReader(savetest.EncodeHuffman(data))
	tree, err := BuildTree(r)
	require.NoError(t, err)
	assert.Equal(t, MaxTreeNodes, tree.Len())
	assert.Len(t, tree.Symbols(), 256)
}

func TestBuildTreeOverflow(t *testing.T) {
	// An unbroken run of internal-node flags never closes a subtree.
	r := bitstream.NewReader(bytes.Repeat([]byte{0x00}, 128))
	_, err := BuildTree(r)
	assert.ErrorIs(t, err, ErrTreeOverflow)
}

func TestBuildTreeOverflowWithLeaves(t *testing.T) {
	// A left-leaning chain of 300 internal nodes, each with a leaf on the
	// right, needs 601 nodes.
	var w savetest.BitWriter
	for i := 0; i < 300; i++ {
		w.WriteBit(false)
	}
	for i := 0; i < 301; i++ {
		w.WriteBit(true)
		_ = w.WriteByte(byte(i))
	}
	_, err := BuildTree(bitstream.NewReader(w.Bytes()))
	assert.ErrorIs(t, err, ErrTreeOverflow)
}

func TestBuildTreeTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"leaf without symbol", []byte{0x80}},
		{"unterminated right subtree", []byte{0x50, 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTree(bitstream.NewReader(tt.data))
			assert.ErrorIs(t, err, bitstream.ErrOutOfBounds)
		})
	}
}

func TestDecodeHuffmanRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bin := make([]byte, 4096)
	rng.Read(bin)
	alpha := make([]byte, 512)
	for i := range alpha {
		alpha[i] = byte(i)
	}
	inputs := map[string][]byte{
		"text":     []byte("The quick brown fox jumps over the lazy dog, again and again."),
		"skewed":   append(bytes.Repeat([]byte{'x'}, 900), []byte("yyz")...),
		"single":   bytes.Repeat([]byte{0x42}, 33),
		"two":      {0, 1, 1, 0, 0, 0, 1},
		"binary":   bin,
		"alphabet": alpha,
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			encoded := savetest.EncodeHuffman(data)
			got, err := DecodeHuffman(encoded, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, got)

			again, err := DecodeHuffman(encoded, len(data))
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestDecodeHuffmanExactLength(t *testing.T) {
	data := []byte("abracadabra")
	encoded := savetest.EncodeHuffman(data)

	got, err := DecodeHuffman(encoded, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abra"), got)

	got, err = DecodeHuffman(encoded, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeHuffmanTooLong(t *testing.T) {
	data := []byte("abracadabra")
	encoded := savetest.EncodeHuffman(data)

	_, err := DecodeHuffman(encoded, 10_000)
	if !errors.Is(err, bitstream.ErrOutOfBounds) {
		t.Fatalf("DecodeHuffman() error = %v, want ErrOutOfBounds", err)
	}
}

func TestDecodeHuffmanNegativeSize(t *testing.T) {
	_, err := DecodeHuffman(savetest.EncodeHuffman([]byte("ab")), -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestDecodeSymbolsSizeBeyondStream(t *testing.T) {
	// Two leaves: every symbol costs one bit, and only the 5 padding bits
	// after the description are left.
	var w savetest.BitWriter
	w.WriteBit(false)
	w.WriteBit(true)
	_ = w.WriteByte('a')
	w.WriteBit(true)
	_ = w.WriteByte('b')

	r := bitstream.NewReader(w.Bytes())
	tree, err := BuildTree(r)
	require.NoError(t, err)
	require.Equal(t, 5, r.Remaining())

	_, err = DecodeSymbols(r, tree, 200<<20)
	require.ErrorIs(t, err, bitstream.ErrOutOfBounds)
	assert.Contains(t, err.Error(), "5 bits")
	assert.Equal(t, w.Bits(), r.Offset(), "no bits consumed")

	got, err := DecodeSymbols(r, tree, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaaa"), got)
}

func TestDecodeSymbolsSingleLeafNeedsNoBits(t *testing.T) {
	r := bitstream.NewReader([]byte{0xA0, 0x80})
	tree, err := BuildTree(r)
	require.NoError(t, err)

	got, err := DecodeSymbols(r, tree, 100)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'A'}, 100), got)
}

func TestDecodeSymbolsCorruptTree(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
	}{
		{"empty", nil},
		{"child out of range", []Node{{Left: 1, Right: 9}, {Leaf: true}}},
		{"child points back", []Node{{Left: 0, Right: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bitstream.NewReader([]byte{0xFF, 0xFF})
			_, err := DecodeSymbols(r, &Tree{nodes: tt.nodes}, 2)
			assert.ErrorIs(t, err, ErrTreeCorrupt)
		})
	}
}

func TestDecodeSymbolsSharesReader(t *testing.T) {
	data := []byte("mississippi")
	encoded := savetest.EncodeHuffman(data)

	r := bitstream.NewReader(encoded)
	tree, err := BuildTree(r)
	require.NoError(t, err)
	start := r.Offset()

	got, err := DecodeSymbols(r, tree, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Greater(t, r.Offset(), start)
	assert.Less(t, r.Remaining(), 8)
}

func FuzzBuildTree(f *testing.F) {
	f.Add([]byte{0xA0, 0x80})
	f.Add(savetest.EncodeHuffman([]byte("hello, world")))
	f.Add(bytes.Repeat([]byte{0x00}, 70))
	f.Fuzz(func(t *testing.T, data []byte) {
		r := bitstream.NewReader(data)
		tree, err := BuildTree(r)
		if err != nil {
			return
		}
		if tree.Len() > MaxTreeNodes {
			t.Fatalf("tree has %d nodes, capacity %d", tree.Len(), MaxTreeNodes)
		}
		out, err := DecodeSymbols(r, tree, 64)
		if err == nil && len(out) != 64 {
			t.Fatalf("decoded %d symbols, want 64", len(out))
		}
	})
}
