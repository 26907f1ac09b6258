package ast

import (
	"encoding/binary"
)

// FNV-1a parameters for 64-bit fingerprints.
const (
	fnvOffsetBasis = 14695981039346656037
	fnvPrime       = 1099511628211
)

// SimilarityHasher computes structural fingerprints for subtrees.
//
// The fingerprint is a pure, deterministic function of subtree structure
// and content: node type, data, child count, and the children's
// fingerprints. It is a heuristic equality pre-filter only: unequal hashes
// mean the subtrees are probably not equivalent; equal hashes prove nothing
// and must be confirmed by a match predicate.
//
// Hashes are computed on demand and memoized per hasher instance, keyed by
// wrapper identity. A hasher is not safe for concurrent use.
type SimilarityHasher struct {
	cache map[*TreeNode]uint64
}

// NewSimilarityHasher creates a hasher with an empty memo.
func NewSimilarityHasher() *SimilarityHasher {
	return &SimilarityHasher{
		cache: make(map[*TreeNode]uint64),
	}
}

// Hash returns the structural fingerprint of the subtree rooted at t.
// Returns 0 for a nil node.
func (h *SimilarityHasher) Hash(t *TreeNode) uint64 {
	if t == nil {
		return 0
	}

	if cached, ok := h.cache[t]; ok {
		return cached
	}

	sum := hashNodeContent(t.node)

	for _, child := range t.children {
		sum = mixUint64(sum, h.Hash(child))
	}

	h.cache[t] = sum

	return sum
}

// HashNode returns the structural fingerprint of a bare node subtree.
// Unlike Hash, results are not memoized.
func HashNode(n *Node) uint64 {
	if n == nil {
		return 0
	}

	sum := hashNodeContent(n)

	for _, child := range n.Children {
		sum = mixUint64(sum, HashNode(child))
	}

	return sum
}

func hashNodeContent(n *Node) uint64 {
	sum := mixString(fnvOffsetBasis, n.Type)
	sum = mixString(sum, n.Data)

	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(n.Children)))

	return mixBytes(sum, buf[:])
}

func mixString(sum uint64, s string) uint64 {
	for idx := 0; idx < len(s); idx++ {
		sum ^= uint64(s[idx])
		sum *= fnvPrime
	}

	// Separator byte keeps ("ab","c") distinct from ("a","bc").
	sum ^= 0xff
	sum *= fnvPrime

	return sum
}

func mixBytes(sum uint64, data []byte) uint64 {
	for _, b := range data {
		sum ^= uint64(b)
		sum *= fnvPrime
	}

	return sum
}

func mixUint64(sum, value uint64) uint64 {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], value)

	return mixBytes(sum, buf[:])
}
