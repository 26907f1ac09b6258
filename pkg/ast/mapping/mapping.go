// Package mapping implements the bidirectional correspondence store between
// the nodes of two trees.
package mapping

import (
	"github.com/astmap/astmap/pkg/ast"
)

// Pair is a single correspondence: First belongs to the first tree, Second
// to the second tree.
type Pair struct {
	First  *ast.TreeNode
	Second *ast.TreeNode
}

// Mapping is a mutable partial bijection between nodes of two trees, keyed
// by wrapper identity. At most one counterpart exists per node; connecting
// a pair disbands any stale pairings first. Not safe for concurrent use;
// single-writer discipline is assumed.
type Mapping struct {
	forward  map[*ast.TreeNode]*ast.TreeNode
	backward map[*ast.TreeNode]*ast.TreeNode
}

// New creates an empty mapping.
func New() *Mapping {
	return &Mapping{
		forward:  make(map[*ast.TreeNode]*ast.TreeNode),
		backward: make(map[*ast.TreeNode]*ast.TreeNode),
	}
}

// Len returns the number of connected pairs.
func (m *Mapping) Len() int {
	return len(m.forward)
}

// Connect removes any existing pairing for n1 and for n2, then establishes
// the pair (n1, n2). Both arguments must be non-nil.
func (m *Mapping) Connect(n1, n2 *ast.TreeNode) {
	if n1 == nil || n2 == nil {
		panic("mapping: Connect called with a nil node")
	}

	m.Disconnect(n1)
	m.Disconnect(n2)

	m.forward[n1] = n2
	m.backward[n2] = n1
}

// Disconnect removes the pairing of n, if any. A nil argument is a no-op.
func (m *Mapping) Disconnect(n *ast.TreeNode) {
	if n == nil {
		return
	}

	if counterpart, ok := m.forward[n]; ok {
		delete(m.forward, n)
		delete(m.backward, counterpart)
	}

	if counterpart, ok := m.backward[n]; ok {
		delete(m.backward, n)
		delete(m.forward, counterpart)
	}
}

// Get returns the counterpart of n, or nil if n is not connected.
// The lookup is symmetric: if Get(a) == b then Get(b) == a.
func (m *Mapping) Get(n *ast.TreeNode) *ast.TreeNode {
	if counterpart, ok := m.forward[n]; ok {
		return counterpart
	}

	return m.backward[n]
}

// Contains reports whether n participates in the mapping.
func (m *Mapping) Contains(n *ast.TreeNode) bool {
	if _, ok := m.forward[n]; ok {
		return true
	}

	_, ok := m.backward[n]

	return ok
}

// Connected reports whether n1 and n2 are connected to each other.
func (m *Mapping) Connected(n1, n2 *ast.TreeNode) bool {
	if n1 == nil || n2 == nil {
		return false
	}

	return m.Get(n1) == n2
}

// Pairs returns all connected pairs in arbitrary order. First elements are
// the nodes that were passed as the first argument to Connect.
func (m *Mapping) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.forward))

	for first, second := range m.forward {
		pairs = append(pairs, Pair{First: first, Second: second})
	}

	return pairs
}
