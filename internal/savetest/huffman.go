// Package savetest builds save containers for tests. It holds the write
// side of every layer the save package only reads: the explicit-tree
// Huffman encoder, LZO1X compression, the inner header and the SHA-1
// prefix.
package savetest

import "container/heap"

// BitWriter appends bits most significant bit first.
type BitWriter struct {
	buf   []byte
	nbits int
}

// WriteBit appends a single bit.
func (w *BitWriter) WriteBit(bit bool) {
	if w.nbits%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if bit {
		w.buf[len(w.buf)-1] |= 1 << (7 - uint(w.nbits%8))
	}
	w.nbits++
}

// WriteByte appends the 8 bits of b, high bit first.
func (w *BitWriter) WriteByte(b byte) error {
	for i := 7; i >= 0; i-- {
		w.WriteBit(b>>uint(i)&1 == 1)
	}
	return nil
}

// Bits returns the number of bits written.
func (w *BitWriter) Bits() int { return w.nbits }

// Bytes returns the written bits padded with zeros to a whole byte.
func (w *BitWriter) Bytes() []byte { return w.buf }

// TreeNode is a pointer-based Huffman tree used only for encoding.
type TreeNode struct {
	Symbol      byte
	Left, Right *TreeNode
	count       int
}

// Leaf reports whether n has no children.
func (n *TreeNode) Leaf() bool { return n.Left == nil && n.Right == nil }

type nodeHeap []*TreeNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count < h[j].count
	}
	return h[i].Symbol < h[j].Symbol
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*TreeNode)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// BuildTree returns a Huffman tree over the byte frequencies of data, or
// nil for empty input. A single distinct symbol yields a lone leaf.
func BuildTree(data []byte) *TreeNode {
	var freqs [256]int
	for _, b := range data {
		freqs[b]++
	}

	var h nodeHeap
	for sym, count := range freqs {
		if count > 0 {
			h = append(h, &TreeNode{Symbol: byte(sym), count: count})
		}
	}
	if len(h) == 0 {
		return nil
	}
	heap.Init(&h)
	for h.Len() > 1 {
		left := heap.Pop(&h).(*TreeNode)
		right := heap.Pop(&h).(*TreeNode)
		heap.Push(&h, &TreeNode{
			Symbol: left.Symbol,
			Left:   left,
			Right:  right,
			count:  left.count + right.count,
		})
	}
	return h[0]
}

// WriteTree serializes t in pre-order: 1 plus an 8-bit symbol for a
// leaf, 0 followed by both subtrees for an internal node.
func WriteTree(w *BitWriter, t *TreeNode) {
	if t.Leaf() {
		w.WriteBit(true)
		_ = w.WriteByte(t.Symbol)
		return
	}
	w.WriteBit(false)
	WriteTree(w, t.Left)
	WriteTree(w, t.Right)
}

// Codes returns the bit path of every leaf symbol, false for left.
func Codes(t *TreeNode) map[byte][]bool {
	codes := make(map[byte][]bool)
	var walk func(n *TreeNode, path []bool)
	walk = func(n *TreeNode, path []bool) {
		if n.Leaf() {
			codes[n.Symbol] = append([]bool(nil), path...)
			return
		}
		walk(n.Left, append(path, false))
		walk(n.Right, append(path, true))
	}
	walk(t, nil)
	return codes
}

// EncodeWithTree writes the tree description of t followed by the codes
// of data. Every byte of data must be a leaf of t.
func EncodeWithTree(t *TreeNode, data []byte) []byte {
	var w BitWriter
	WriteTree(&w, t)
	codes := Codes(t)
	for _, b := range data {
		for _, bit := range codes[b] {
			w.WriteBit(bit)
		}
	}
	return w.Bytes()
}

// EncodeHuffman encodes data with a tree built from its own frequencies.
// Empty input yields a single-leaf tree over symbol 0.
func EncodeHuffman(data []byte) []byte {
	t := BuildTree(data)
	if t == nil {
		t = &TreeNode{}
	}
	return EncodeWithTree(t, data)
}
