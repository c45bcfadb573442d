// Package compression implements the two compression layers of a save
// container: the LZO1X block codec wrapping the whole payload, and the
// explicit-tree Huffman code used for the inner record.
package compression

import (
	"errors"
	"fmt"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/bitstream"
)

// The Huffman tree is stored in front of the encoded symbols as a
// pre-order walk: a 1 bit introduces a leaf followed by its 8-bit symbol,
// a 0 bit introduces an internal node followed by its left and then its
// right subtree. Left edges are taken on 0 bits while decoding.

var (
	ErrTreeOverflow = errors.New("compression: huffman tree overflow")
	ErrTreeCorrupt  = errors.New("compression: corrupted huffman tree")
	ErrInvalidSize  = errors.New("compression: invalid huffman output size")
)

// MaxTreeNodes is the node capacity of a tree over a byte alphabet:
// 256 leaves plus 255 internal nodes.
const MaxTreeNodes = 2*256 - 1

// Node is one entry of a Tree. Leaf nodes carry Symbol; internal nodes
// carry the table indices of their children.
type Node struct {
	Leaf   bool
	Symbol byte
	Left   int
	Right  int
}

// Tree is a flat, index-addressed Huffman tree. The root is at index 0
// and every child index is greater than its parent's.
type Tree struct {
	nodes []Node
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at index i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Symbols returns the leaf symbols in pre-order.
func (t *Tree) Symbols() []byte {
	var out []byte
	for _, n := range t.nodes {
		if n.Leaf {
			out = append(out, n.Symbol)
		}
	}
	return out
}

// pendingChild is a child slot of an internal node that has not been read yet.
type pendingChild struct {
	parent int
	right  bool
}

// BuildTree reads a serialized tree from r and leaves r positioned on
// the first bit after the description.
//
// The walk uses an explicit stack, so a hostile description costs at most
// MaxTreeNodes iterations and never recurses.
func BuildTree(r *bitstream.Reader) (*Tree, error) {
	nodes := make([]Node, 0, MaxTreeNodes)
	stack := make([]pendingChild, 0, 64)
	stack = append(stack, pendingChild{parent: -1})

	for len(stack) > 0 {
		slot := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(nodes) == MaxTreeNodes {
			return nil, fmt.Errorf("%w: more than %d nodes", ErrTreeOverflow, MaxTreeNodes)
		}
		idx := len(nodes)
		nodes = append(nodes, Node{})
		if slot.parent >= 0 {
			if slot.right {
				nodes[slot.parent].Right = idx
			} else {
				nodes[slot.parent].Left = idx
			}
		}

		leaf, err := r.ReadBit()
		if err != nil {
			return nil, fmt.Errorf("huffman tree node %d: %w", idx, err)
		}
		if leaf {
			sym, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("huffman tree leaf %d: %w", idx, err)
			}
			nodes[idx] = Node{Leaf: true, Symbol: sym}
			continue
		}

		// Right is pushed first so the left subtree is read first.
		stack = append(stack,
			pendingChild{parent: idx, right: true},
			pendingChild{parent: idx, right: false},
		)
	}

	return &Tree{nodes: nodes}, nil
}

// DecodeSymbols reads exactly size symbols from r using t. The stream
// carries no terminator, so size must come from the caller.
//
// When the root is internal every symbol costs at least one bit, so a size
// larger than the remaining bit count fails before the output is allocated.
func DecodeSymbols(r *bitstream.Reader, t *Tree, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return []byte{}, nil
	}
	if t == nil || len(t.nodes) == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrTreeCorrupt)
	}

	nodes := t.nodes
	if !nodes[0].Leaf && size > r.Remaining() {
		return nil, fmt.Errorf("huffman output of %d symbols needs more than the %d bits left: %w",
			size, r.Remaining(), bitstream.ErrOutOfBounds)
	}
	out := make([]byte, size)
	for i := range out {
		cur := 0
		for !nodes[cur].Leaf {
			bit, err := r.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("huffman symbol %d of %d: %w", i, size, err)
			}
			next := nodes[cur].Left
			if bit {
				next = nodes[cur].Right
			}
			if next <= cur || next >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d points to %d", ErrTreeCorrupt, cur, next)
			}
			cur = next
		}
		out[i] = nodes[cur].Symbol
	}
	return out, nil
}

// DecodeHuffman decodes a buffer holding a serialized tree followed by
// the encoded symbols, producing exactly size bytes.
func DecodeHuffman(src []byte, size int) ([]byte, error) {
	r := bitstream.NewReader(src)
	tree, err := BuildTree(r)
	if err != nil {
		return nil, err
	}
	return DecodeSymbols(r, tree, size)
}
